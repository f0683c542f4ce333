package delivery

import (
	"errors"
	"fmt"
	"net/http"

	cleandto "cleanagent-backend/internal/clean/dto"
	"cleanagent-backend/internal/clean/usecase"

	"github.com/gin-gonic/gin"
)

type CleanHandler struct {
	cleanUsecase usecase.CleanUsecase
}

func NewCleanHandler(cleanUsecase usecase.CleanUsecase) *CleanHandler {
	return &CleanHandler{cleanUsecase: cleanUsecase}
}

// Clean starts the email cleaning pipeline for a user
func (h *CleanHandler) Clean(c *gin.Context) {
	var req cleandto.CleanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and count (1-100) are required"})
		return
	}

	resp, err := h.cleanUsecase.Clean(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, usecase.ErrInvalidCount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email count must be between 1 and 100"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": fmt.Sprintf("Failed to process emails: %v", err),
			})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
