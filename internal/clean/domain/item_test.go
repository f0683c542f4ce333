package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItemStartsFresh(t *testing.T) {
	item := NewItem("user-1", "run-1", "msg-1")

	assert.Equal(t, ItemStatusNew, item.Status)
	assert.Equal(t, 0, item.AttemptCount)
	assert.Empty(t, item.LastError)
}

func TestItemClaimFromNew(t *testing.T) {
	item := NewItem("user-1", "run-1", "msg-1")

	require.NoError(t, item.Claim())

	assert.Equal(t, ItemStatusProcessing, item.Status)
	assert.Equal(t, 1, item.AttemptCount)
}

func TestItemClaimFromFailedRetries(t *testing.T) {
	item := &Item{
		Status:       ItemStatusFailed,
		AttemptCount: 1,
		LastError:    "Labeling error: backend error",
	}

	require.NoError(t, item.Claim())

	assert.Equal(t, ItemStatusProcessing, item.Status)
	assert.Equal(t, 2, item.AttemptCount)
	assert.Empty(t, item.LastError, "claim must clear the previous error")
}

func TestItemClaimExhaustedAttempts(t *testing.T) {
	item := &Item{Status: ItemStatusFailed, AttemptCount: MaxAttempts}

	err := item.Claim()

	assert.Error(t, err)
	assert.Equal(t, ItemStatusFailed, item.Status)
	assert.Equal(t, MaxAttempts, item.AttemptCount)
}

func TestItemClaimIllegalSources(t *testing.T) {
	for _, status := range []ItemStatus{ItemStatusProcessing, ItemStatusSuccess} {
		item := &Item{Status: status}
		assert.Error(t, item.Claim(), "claim from %s must be rejected", status)
	}
}

func TestItemMarkSuccess(t *testing.T) {
	item := NewItem("user-1", "run-1", "msg-1")
	require.NoError(t, item.Claim())

	require.NoError(t, item.MarkSuccess())

	assert.Equal(t, ItemStatusSuccess, item.Status)
	assert.Empty(t, item.LastError)
}

func TestItemMarkSuccessOnlyFromProcessing(t *testing.T) {
	item := NewItem("user-1", "run-1", "msg-1")
	assert.Error(t, item.MarkSuccess())
}

func TestItemMarkFailedRecordsError(t *testing.T) {
	item := NewItem("user-1", "run-1", "msg-1")
	require.NoError(t, item.Claim())

	require.NoError(t, item.MarkFailed("Labeling error: invalid label"))

	assert.Equal(t, ItemStatusFailed, item.Status)
	assert.Equal(t, "Labeling error: invalid label", item.LastError)
}

func TestItemMarkFailedDefaultsError(t *testing.T) {
	item := NewItem("user-1", "run-1", "msg-1")
	require.NoError(t, item.Claim())

	require.NoError(t, item.MarkFailed(""))

	assert.Equal(t, "Labeling failed", item.LastError)
}

func TestItemRetryable(t *testing.T) {
	assert.True(t, (&Item{Status: ItemStatusFailed, AttemptCount: 1}).Retryable())
	assert.False(t, (&Item{Status: ItemStatusFailed, AttemptCount: MaxAttempts}).Retryable())
	assert.False(t, (&Item{Status: ItemStatusSuccess, AttemptCount: 1}).Retryable())
	assert.False(t, (&Item{Status: ItemStatusNew}).Retryable())
}

func TestItemFullRetryCycle(t *testing.T) {
	item := NewItem("user-1", "run-1", "msg-1")

	require.NoError(t, item.Claim())
	require.NoError(t, item.MarkFailed("Labeling error: transient"))
	require.True(t, item.Retryable())

	require.NoError(t, item.Claim())
	require.NoError(t, item.MarkSuccess())

	assert.Equal(t, ItemStatusSuccess, item.Status)
	assert.Equal(t, 2, item.AttemptCount)
	assert.Empty(t, item.LastError)
}
