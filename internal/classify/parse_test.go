package classify

import (
	"testing"

	cleandomain "cleanagent-backend/internal/clean/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchOf(ids ...string) []cleandomain.RawMessage {
	emails := make([]cleandomain.RawMessage, 0, len(ids))
	for _, id := range ids {
		emails = append(emails, cleandomain.RawMessage{ID: id, Subject: "Subject " + id})
	}
	return emails
}

func TestParseResponseCleanJSON(t *testing.T) {
	content := `[
		{"category": "MARKETING", "confidence": 0.9, "reason": "Promo"},
		{"category": "IMPORTANT_ACTION", "confidence": 0.95, "reason": "Meeting invite"}
	]`

	outcomes, err := parseResponse(content, batchOf("m1", "m2"))

	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "m1", outcomes[0].EmailID)
	assert.Equal(t, "Subject m1", outcomes[0].EmailSubject)
	assert.Equal(t, CategoryMarketing, outcomes[0].Category)
	assert.Equal(t, 0.9, outcomes[0].Confidence)
	assert.Equal(t, "m2", outcomes[1].EmailID)
	assert.Equal(t, CategoryImportantAction, outcomes[1].Category)
}

func TestParseResponseStripsCodeFences(t *testing.T) {
	content := "```json\n[{\"category\": \"AUTOMATED\", \"confidence\": 0.8, \"reason\": \"Receipt\"}]\n```"

	outcomes, err := parseResponse(content, batchOf("m1"))

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, CategoryAutomated, outcomes[0].Category)
}

func TestParseResponseRecoversArrayFromProse(t *testing.T) {
	content := `Here are the classifications:
[{"category": "LOW_VALUE_NOISE", "confidence": 0.7, "reason": "Spam-like"}]
Let me know if you need anything else.`

	outcomes, err := parseResponse(content, batchOf("m1"))

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, CategoryLowValueNoise, outcomes[0].Category)
}

func TestParseResponseUnparseable(t *testing.T) {
	_, err := parseResponse("I cannot classify these emails.", batchOf("m1"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse JSON response")
}

func TestParseResponsePadsMissingWithUnknown(t *testing.T) {
	content := `[{"category": "MARKETING", "confidence": 0.9, "reason": "Promo"}]`

	outcomes, err := parseResponse(content, batchOf("m1", "m2", "m3"))

	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.Equal(t, CategoryMarketing, outcomes[0].Category)
	for _, outcome := range outcomes[1:] {
		assert.Equal(t, CategoryUnknown, outcome.Category)
		assert.Equal(t, 0.0, outcome.Confidence)
		assert.Equal(t, "LLM did not return classification for this email", outcome.Reason)
	}
	assert.Equal(t, "m2", outcomes[1].EmailID)
	assert.Equal(t, "m3", outcomes[2].EmailID)
}

func TestParseResponseDropsSurplus(t *testing.T) {
	content := `[
		{"category": "MARKETING", "confidence": 0.9, "reason": "Promo"},
		{"category": "AUTOMATED", "confidence": 0.8, "reason": "Extra answer"}
	]`

	outcomes, err := parseResponse(content, batchOf("m1"))

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "m1", outcomes[0].EmailID)
}

func TestParseResponseCoercesInvalidCategory(t *testing.T) {
	content := `[{"category": "SHOPPING", "confidence": 0.9, "reason": "Looks promotional"}]`

	outcomes, err := parseResponse(content, batchOf("m1"))

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, CategoryUnknown, outcomes[0].Category)
	assert.Equal(t, 0.0, outcomes[0].Confidence)
}

func TestParseResponseFillsMissingFields(t *testing.T) {
	content := `[{"confidence": 0.5}]`

	outcomes, err := parseResponse(content, batchOf("m1"))

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, CategoryUnknown, outcomes[0].Category)
	assert.Equal(t, "No reason provided by LLM", outcomes[0].Reason)
}

func TestParseResponseMissingSubjectFallback(t *testing.T) {
	content := `[{"category": "MARKETING", "confidence": 0.9, "reason": "Promo"}]`

	outcomes, err := parseResponse(content, []cleandomain.RawMessage{{ID: "m1"}})

	require.NoError(t, err)
	assert.Equal(t, "No Subject", outcomes[0].EmailSubject)
}

func TestErrorOutcomes(t *testing.T) {
	outcomes := errorOutcomes(batchOf("m1", "m2"), "Classification error: boom")

	require.Len(t, outcomes, 2)
	for _, outcome := range outcomes {
		assert.Equal(t, CategoryError, outcome.Category)
		assert.Equal(t, 0.0, outcome.Confidence)
		assert.Equal(t, "Classification error: boom", outcome.Reason)
	}
}
