package label

import (
	"context"
	"errors"
	"fmt"
	"testing"

	authdomain "cleanagent-backend/internal/auth/domain"
	"cleanagent-backend/internal/classify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	labelErr    map[classify.Category]error
	applyErr    map[string]error
	applyCalls  []applyCall
	ensureCalls []classify.Category
}

type applyCall struct {
	labelID    string
	messageIDs []string
}

func (s *fakeSession) EnsureLabel(ctx context.Context, category classify.Category) (string, error) {
	s.ensureCalls = append(s.ensureCalls, category)
	if err := s.labelErr[category]; err != nil {
		return "", err
	}
	return "label-" + string(category), nil
}

func (s *fakeSession) BatchApplyLabel(ctx context.Context, labelID string, messageIDs []string) error {
	s.applyCalls = append(s.applyCalls, applyCall{labelID: labelID, messageIDs: messageIDs})
	return s.applyErr[labelID]
}

type fakeProvider struct {
	session *fakeSession
	err     error
}

func (p *fakeProvider) LabelSession(ctx context.Context, user *authdomain.User) (Session, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.session, nil
}

func testUser() *authdomain.User {
	return &authdomain.User{ID: "user-1", Email: "alice@example.com"}
}

func TestApplyLabelsGroupsByCategory(t *testing.T) {
	session := &fakeSession{}
	engine := NewEngine(&fakeProvider{session: session})

	outcomes := []classify.Outcome{
		{EmailID: "m1", Category: classify.CategoryMarketing},
		{EmailID: "m2", Category: classify.CategoryImportantAction},
		{EmailID: "m3", Category: classify.CategoryMarketing},
	}

	result, err := engine.ApplyLabels(context.Background(), testUser(), outcomes)

	require.NoError(t, err)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Equal(t, 3, result.Total)

	require.Len(t, session.applyCalls, 2)
	byLabel := map[string][]string{}
	for _, call := range session.applyCalls {
		byLabel[call.labelID] = call.messageIDs
	}
	assert.Equal(t, []string{"m1", "m3"}, byLabel["label-MARKETING"])
	assert.Equal(t, []string{"m2"}, byLabel["label-IMPORTANT_ACTION"])
}

func TestApplyLabelsErrorCategoryFallsBackToUnknown(t *testing.T) {
	session := &fakeSession{}
	engine := NewEngine(&fakeProvider{session: session})

	outcomes := []classify.Outcome{
		{EmailID: "m1", Category: classify.CategoryError},
	}

	result, err := engine.ApplyLabels(context.Background(), testUser(), outcomes)

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "UNKNOWN", result.Results[0].Label)
	assert.Equal(t, []classify.Category{classify.CategoryUnknown}, session.ensureCalls)
}

func TestApplyLabelsSessionFailure(t *testing.T) {
	engine := NewEngine(&fakeProvider{err: errors.New("token refresh failed")})

	result, err := engine.ApplyLabels(context.Background(), testUser(), []classify.Outcome{
		{EmailID: "m1", Category: classify.CategoryMarketing},
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "token refresh failed")
}

func TestApplyLabelsLabelCreationFailureIsolated(t *testing.T) {
	session := &fakeSession{
		labelErr: map[classify.Category]error{
			classify.CategoryMarketing: errors.New("label quota exceeded"),
		},
	}
	engine := NewEngine(&fakeProvider{session: session})

	outcomes := []classify.Outcome{
		{EmailID: "m1", Category: classify.CategoryMarketing},
		{EmailID: "m2", Category: classify.CategoryAutomated},
	}

	result, err := engine.ApplyLabels(context.Background(), testUser(), outcomes)

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)

	byID := map[string]ItemResult{}
	for _, item := range result.Results {
		byID[item.EmailID] = item
	}
	assert.False(t, byID["m1"].Success)
	assert.Equal(t, "Label ID not found for MARKETING", byID["m1"].Error)
	assert.True(t, byID["m2"].Success)
}

func TestApplyLabelsChunkFailureIsolated(t *testing.T) {
	session := &fakeSession{
		applyErr: map[string]error{
			"label-MARKETING": errors.New("backend error"),
		},
	}
	engine := NewEngine(&fakeProvider{session: session})

	outcomes := []classify.Outcome{
		{EmailID: "m1", Category: classify.CategoryMarketing},
		{EmailID: "m2", Category: classify.CategoryLowValueNoise},
	}

	result, err := engine.ApplyLabels(context.Background(), testUser(), outcomes)

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)

	byID := map[string]ItemResult{}
	for _, item := range result.Results {
		byID[item.EmailID] = item
	}
	assert.False(t, byID["m1"].Success)
	assert.Equal(t, "backend error", byID["m1"].Error)
	assert.True(t, byID["m2"].Success)
}

func TestApplyLabelsChunksLargeGroups(t *testing.T) {
	session := &fakeSession{}
	engine := NewEngine(&fakeProvider{session: session})
	engine.chunkSize = 2

	outcomes := make([]classify.Outcome, 5)
	for i := range outcomes {
		outcomes[i] = classify.Outcome{
			EmailID:  fmt.Sprintf("m%d", i+1),
			Category: classify.CategoryAutomated,
		}
	}

	result, err := engine.ApplyLabels(context.Background(), testUser(), outcomes)

	require.NoError(t, err)
	assert.Equal(t, 5, result.SuccessCount)
	require.Len(t, session.applyCalls, 3)
	assert.Len(t, session.applyCalls[0].messageIDs, 2)
	assert.Len(t, session.applyCalls[1].messageIDs, 2)
	assert.Len(t, session.applyCalls[2].messageIDs, 1)
}

func TestApplyLabelsSkipsEmptyIDs(t *testing.T) {
	session := &fakeSession{}
	engine := NewEngine(&fakeProvider{session: session})

	result, err := engine.ApplyLabels(context.Background(), testUser(), []classify.Outcome{
		{EmailID: "", Category: classify.CategoryMarketing},
		{EmailID: "m1", Category: classify.CategoryMarketing},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.SuccessCount)
}

func TestColorForKnownAndFallback(t *testing.T) {
	assert.Equal(t, Color{Text: "#ffffff", Background: "#fb4c2f"}, ColorFor(classify.CategoryImportantAction))
	assert.Equal(t, Color{Text: "#000000", Background: "#cccccc"}, ColorFor(classify.CategoryError))
}

func TestNameFor(t *testing.T) {
	assert.Equal(t, "MARKETING", NameFor(classify.CategoryMarketing))
	assert.Equal(t, "UNKNOWN", NameFor(classify.CategoryError))
	assert.Equal(t, "UNKNOWN", NameFor(classify.Category("BOGUS")))
}
