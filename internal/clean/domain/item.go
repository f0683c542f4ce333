package domain

import (
	"fmt"
	"time"
)

// ItemStatus represents the processing state of a tracked message
type ItemStatus string

const (
	ItemStatusNew        ItemStatus = "NEW"
	ItemStatusProcessing ItemStatus = "PROCESSING"
	ItemStatusSuccess    ItemStatus = "SUCCESS"
	ItemStatusFailed     ItemStatus = "FAILED"
)

// MaxAttempts bounds the retry policy: an item is claimed at most twice
// within one run (initial pass + one retry).
const MaxAttempts = 2

// Item is one Gmail message tracked for one user. (user_id,
// gmail_message_id) is unique globally across all runs for that user, so
// a message tracked by any prior run (FAILED included) is never
// re-ingested by a later one.
type Item struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	UserID         string     `json:"user_id" gorm:"not null;uniqueIndex:uq_items_user_message;index"`
	RunID          string     `json:"run_id" gorm:"index;not null"`
	GmailMessageID string     `json:"gmail_message_id" gorm:"not null;uniqueIndex:uq_items_user_message"`
	Status         ItemStatus `json:"status" gorm:"index;not null"`

	// Classification output
	Category   string  `json:"category,omitempty" gorm:"index"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`

	AttemptCount int    `json:"attempt_count"`
	LastError    string `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewItem creates an item in the NEW state with zero attempts
func NewItem(userID, runID, gmailMessageID string) *Item {
	return &Item{
		UserID:         userID,
		RunID:          runID,
		GmailMessageID: gmailMessageID,
		Status:         ItemStatusNew,
	}
}

// Claim transitions the item to PROCESSING, increments the attempt
// counter and clears the last error. The only legal sources are NEW
// (first pass) and FAILED with a remaining attempt (retry pass).
func (i *Item) Claim() error {
	switch i.Status {
	case ItemStatusNew:
	case ItemStatusFailed:
		if i.AttemptCount >= MaxAttempts {
			return fmt.Errorf("item %s exhausted its %d attempts", i.GmailMessageID, MaxAttempts)
		}
	default:
		return fmt.Errorf("illegal item transition %s -> %s", i.Status, ItemStatusProcessing)
	}

	i.Status = ItemStatusProcessing
	i.AttemptCount++
	i.LastError = ""
	return nil
}

// MarkSuccess finishes the current processing pass successfully
func (i *Item) MarkSuccess() error {
	if i.Status != ItemStatusProcessing {
		return fmt.Errorf("illegal item transition %s -> %s", i.Status, ItemStatusSuccess)
	}
	i.Status = ItemStatusSuccess
	i.LastError = ""
	return nil
}

// MarkFailed finishes the current processing pass with an error
func (i *Item) MarkFailed(errText string) error {
	if i.Status != ItemStatusProcessing {
		return fmt.Errorf("illegal item transition %s -> %s", i.Status, ItemStatusFailed)
	}
	i.Status = ItemStatusFailed
	if errText == "" {
		errText = "Labeling failed"
	}
	i.LastError = errText
	return nil
}

// Retryable reports whether the retry pass may claim this item again
func (i *Item) Retryable() bool {
	return i.Status == ItemStatusFailed && i.AttemptCount < MaxAttempts
}
