package main

import (
	"log"
	"time"

	api "cleanagent-backend/cmd/api"
	authdomain "cleanagent-backend/internal/auth/domain"
	authRepo "cleanagent-backend/internal/auth/repository"
	authUsecase "cleanagent-backend/internal/auth/usecase"
	"cleanagent-backend/internal/classify"
	cleandomain "cleanagent-backend/internal/clean/domain"
	cleanRepo "cleanagent-backend/internal/clean/repository"
	cleanUsecase "cleanagent-backend/internal/clean/usecase"
	"cleanagent-backend/internal/label"
	"cleanagent-backend/pkg/config"
	"cleanagent-backend/pkg/crypto"
	"cleanagent-backend/pkg/database"
	"cleanagent-backend/pkg/gmail"
	"cleanagent-backend/pkg/llm"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &cleandomain.Run{}, &cleandomain.Item{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Refresh tokens are encrypted at rest
	vault, err := crypto.NewVault(cfg.EncryptionKey)
	if err != nil {
		log.Fatal("Failed to initialize token vault (set ENCRYPTION_KEY, see cmd/genkey):", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	runRepo := cleanRepo.NewRunRepository(db)
	itemRepo := cleanRepo.NewItemRepository(db)

	// Gmail service handles both fetching and labeling sessions
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, vault, userRepo)

	// LLM provider behind the Oracle interface
	oracle, err := llm.NewOracle(llm.Config{
		Provider:      llm.ProviderType(cfg.LLMProvider),
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Fatal("Failed to initialize LLM provider:", err)
	}

	classifyEngine := classify.NewEngine(oracle, classify.Config{
		BatchSize:  cfg.LLMBatchSize,
		MaxWorkers: cfg.LLMMaxWorkers,
		BatchPause: 2 * time.Second,
	})
	labelEngine := label.NewEngine(gmailService)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, vault, cfg)
	cleanUsecaseInstance := cleanUsecase.NewCleanUsecase(userRepo, runRepo, itemRepo, gmailService, classifyEngine, labelEngine)

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, cleanUsecaseInstance, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
