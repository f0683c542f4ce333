package classify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	cleandomain "cleanagent-backend/internal/clean/domain"
	"cleanagent-backend/pkg/llm"

	"github.com/avast/retry-go/v4"
)

// Config tunes batching and concurrency. The defaults target OpenAI
// Tier 1 limits: 10 batches of 20 in flight stays well under 60 RPM.
type Config struct {
	BatchSize  int
	MaxWorkers int
	// BatchPause is the delay between sequential batches when
	// MaxWorkers <= 1 (free tier pacing)
	BatchPause time.Duration

	rateLimitAttempts int
	rateLimitDelay    time.Duration
}

// DefaultConfig returns the Tier 1 tuning
func DefaultConfig() Config {
	return Config{
		BatchSize:  20,
		MaxWorkers: 10,
		BatchPause: 2 * time.Second,
	}
}

// Engine classifies emails in concurrent batches against an LLM
type Engine struct {
	oracle llm.Oracle
	cfg    Config
}

func NewEngine(oracle llm.Oracle, cfg Config) *Engine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.rateLimitAttempts <= 0 {
		cfg.rateLimitAttempts = 3
	}
	if cfg.rateLimitDelay <= 0 {
		cfg.rateLimitDelay = 20 * time.Second
	}
	return &Engine{oracle: oracle, cfg: cfg}
}

// Classify returns exactly one Outcome per input email, in input order.
// A failed sub-batch yields ERROR outcomes for its emails only; other
// batches are unaffected.
func (e *Engine) Classify(ctx context.Context, emails []cleandomain.RawMessage) []Outcome {
	if len(emails) == 0 {
		return []Outcome{}
	}

	var batches [][]cleandomain.RawMessage
	for i := 0; i < len(emails); i += e.cfg.BatchSize {
		end := i + e.cfg.BatchSize
		if end > len(emails) {
			end = len(emails)
		}
		batches = append(batches, emails[i:end])
	}

	log.Printf("[Classify] Processing %d emails in %d batches (size %d, workers %d)",
		len(emails), len(batches), e.cfg.BatchSize, e.cfg.MaxWorkers)

	results := make([][]Outcome, len(batches))

	if e.cfg.MaxWorkers <= 1 {
		for i, batch := range batches {
			results[i] = e.classifyBatch(ctx, batch, i+1, len(batches))
			if i < len(batches)-1 && e.cfg.BatchPause > 0 {
				time.Sleep(e.cfg.BatchPause)
			}
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, e.cfg.MaxWorkers)
		for i, batch := range batches {
			wg.Add(1)
			go func(idx int, batch []cleandomain.RawMessage) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				results[idx] = e.classifyBatch(ctx, batch, idx+1, len(batches))
			}(i, batch)
		}
		wg.Wait()
	}

	outcomes := make([]Outcome, 0, len(emails))
	for _, batchOutcomes := range results {
		outcomes = append(outcomes, batchOutcomes...)
	}

	log.Printf("[Classify] Classification complete: %d/%d emails classified", len(outcomes), len(emails))
	return outcomes
}

// classifyBatch runs one prompt round trip with rate limit retries and
// never returns fewer outcomes than emails in the batch
func (e *Engine) classifyBatch(ctx context.Context, batch []cleandomain.RawMessage, batchNum, totalBatches int) []Outcome {
	prompt := buildPrompt(batch)

	var content string
	err := retry.Do(
		func() error {
			var callErr error
			content, callErr = e.oracle.Complete(ctx, systemPrompt, prompt)
			return callErr
		},
		retry.Context(ctx),
		retry.Attempts(uint(e.cfg.rateLimitAttempts)),
		retry.RetryIf(isRateLimit),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			wait := e.cfg.rateLimitDelay * time.Duration(n+1)
			log.Printf("[Classify] Batch %d: rate limit hit, waiting %s before retry %d/%d",
				batchNum, wait, n+2, e.cfg.rateLimitAttempts)
			return wait
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.Printf("[Classify] Batch %d error: %v", batchNum, err)
		return errorOutcomes(batch, fmt.Sprintf("Classification error: %v", err))
	}

	outcomes, err := parseResponse(content, batch)
	if err != nil {
		log.Printf("[Classify] Batch %d error: %v", batchNum, err)
		return errorOutcomes(batch, fmt.Sprintf("Classification error: %v", err))
	}

	log.Printf("[Classify] Batch %d/%d: classified %d/%d emails", batchNum, totalBatches, len(outcomes), len(batch))
	return outcomes
}

// isRateLimit detects provider throttling from the error text. Anything
// else fails the batch immediately.
func isRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "too many requests")
}

// Summarize counts outcomes per category, always including every
// taxonomy bucket plus ERROR so the rollup shape is stable
func Summarize(outcomes []Outcome) map[Category]int {
	summary := make(map[Category]int, len(Categories)+1)
	for _, cat := range Categories {
		summary[cat] = 0
	}
	summary[CategoryError] = 0
	for _, outcome := range outcomes {
		summary[outcome.Category]++
	}
	return summary
}
