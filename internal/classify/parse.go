package classify

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	cleandomain "cleanagent-backend/internal/clean/domain"
)

// Outcome is one classification decision for one email
type Outcome struct {
	EmailID      string   `json:"email_id"`
	EmailSubject string   `json:"email_subject"`
	Category     Category `json:"category"`
	Confidence   float64  `json:"confidence"`
	Reason       string   `json:"reason"`
}

// rawOutcome is the model's answer before validation and ID attachment
type rawOutcome struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// parseResponse turns a model response into exactly one Outcome per
// email in the batch. Model answers are matched to emails positionally;
// missing answers are padded with UNKNOWN, invalid categories coerced to
// UNKNOWN with confidence 0, surplus answers dropped.
func parseResponse(content string, batch []cleandomain.RawMessage) ([]Outcome, error) {
	content = stripCodeFences(content)

	var raws []rawOutcome
	if err := json.Unmarshal([]byte(content), &raws); err != nil {
		// The model sometimes wraps the array in prose. Pull the widest
		// [...] span and retry before giving up.
		recovered := false
		if match := jsonArrayPattern.FindString(content); match != "" {
			if err2 := json.Unmarshal([]byte(match), &raws); err2 == nil {
				recovered = true
			}
		}
		if !recovered {
			preview := content
			if len(preview) > 200 {
				preview = preview[:200]
			}
			return nil, fmt.Errorf("could not parse JSON response: %w. Response preview: %s", err, preview)
		}
	}

	outcomes := make([]Outcome, 0, len(batch))
	for i, raw := range raws {
		if i >= len(batch) {
			break
		}
		outcome := Outcome{
			Category:   Category(raw.Category),
			Confidence: raw.Confidence,
			Reason:     raw.Reason,
		}
		if outcome.Category == "" {
			outcome.Category = CategoryUnknown
		}
		if outcome.Reason == "" {
			outcome.Reason = "No reason provided by LLM"
		}
		if !IsValid(outcome.Category) {
			outcome.Category = CategoryUnknown
			outcome.Confidence = 0.0
		}
		outcome.EmailID = batch[i].ID
		outcome.EmailSubject = subjectOf(batch[i])
		outcomes = append(outcomes, outcome)
	}

	for i := len(outcomes); i < len(batch); i++ {
		outcomes = append(outcomes, Outcome{
			EmailID:      batch[i].ID,
			EmailSubject: subjectOf(batch[i]),
			Category:     CategoryUnknown,
			Confidence:   0.0,
			Reason:       "LLM did not return classification for this email",
		})
	}

	return outcomes, nil
}

func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = content[7:]
	}
	if strings.HasPrefix(content, "```") {
		content = content[3:]
	}
	if strings.HasSuffix(content, "```") {
		content = content[:len(content)-3]
	}
	return strings.TrimSpace(content)
}

func subjectOf(email cleandomain.RawMessage) string {
	if email.Subject == "" {
		return "No Subject"
	}
	return email.Subject
}

// errorOutcomes marks a whole sub-batch as failed with one shared reason
func errorOutcomes(batch []cleandomain.RawMessage, reason string) []Outcome {
	outcomes := make([]Outcome, 0, len(batch))
	for _, email := range batch {
		outcomes = append(outcomes, Outcome{
			EmailID:      email.ID,
			EmailSubject: subjectOf(email),
			Category:     CategoryError,
			Confidence:   0.0,
			Reason:       reason,
		})
	}
	return outcomes
}
