package dto

import (
	"cleanagent-backend/internal/classify"
	cleandomain "cleanagent-backend/internal/clean/domain"
	"cleanagent-backend/internal/label"
)

type CleanRequest struct {
	Email string `json:"email" binding:"required,email"`
	Count int    `json:"count" binding:"required,min=1,max=100"`
}

// CleanResponse reports one cleaning run. Classifications, summary and
// labeling roll up over ALL fetched emails, including ones already
// processed by earlier runs, so the caller sees the full picture of
// what it asked about.
type CleanResponse struct {
	RunID           string                    `json:"run_id"`
	Message         string                    `json:"message"`
	Email           string                    `json:"email"`
	RequestedCount  int                       `json:"requested_count"`
	ActualCount     int                       `json:"actual_count"`
	Emails          []cleandomain.RawMessage  `json:"emails"`
	Classifications []classify.Outcome        `json:"classifications"`
	Summary         map[classify.Category]int `json:"summary,omitempty"`
	Labeling        *label.Result             `json:"labeling,omitempty"`
	Status          string                    `json:"status"`
}

const (
	StatusNoEmails  = "no_emails"
	StatusCompleted = "completed"
)
