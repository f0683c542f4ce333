package classify

import (
	"fmt"
	"strings"

	cleandomain "cleanagent-backend/internal/clean/domain"
)

// systemPrompt pins the model to JSON-only output
const systemPrompt = "You are an email classification assistant. Always return valid JSON only, no additional text."

// contentPreviewLimit caps the per-email content excerpt. Snippets are
// preferred over bodies since they are already short and pre-cleaned.
const contentPreviewLimit = 300

// buildPrompt renders the classification request for one batch of
// emails. The model is told exactly how many classifications to return
// and in what order; downstream parsing relies on that positional
// contract.
func buildPrompt(emails []cleandomain.RawMessage) string {
	var categories strings.Builder
	for i, cat := range Categories {
		info := Info(cat)
		fmt.Fprintf(&categories, "%d. %s (%s): %s\n", i+1, info.Name, cat, info.Description)
	}

	var emailsText strings.Builder
	for i, email := range emails {
		subject := email.Subject
		if subject == "" {
			subject = "No Subject"
		}
		from := email.From
		if from == "" {
			from = "Unknown"
		}
		fmt.Fprintf(&emailsText, "\n--- Email %d ---\n", i+1)
		fmt.Fprintf(&emailsText, "Subject: %s\n", subject)
		fmt.Fprintf(&emailsText, "From: %s\n", from)

		if email.Snippet != "" {
			fmt.Fprintf(&emailsText, "Content: %s\n", truncate(email.Snippet, contentPreviewLimit))
		} else if email.Body != "" {
			preview := truncate(email.Body, contentPreviewLimit)
			if len(email.Body) > contentPreviewLimit {
				preview += "..."
			}
			fmt.Fprintf(&emailsText, "Content: %s\n", preview)
		}
	}

	n := len(emails)
	return fmt.Sprintf(`You are an email classification assistant. Classify each email into one of these categories:

%s
CRITICAL REQUIREMENTS:
1. You MUST return exactly %d classifications, one for each email provided
2. Return classifications in the EXACT same order as the emails (Email 1 = first classification, Email 2 = second, etc.)
3. If you cannot confidently classify an email, use category "UNKNOWN" with confidence 0.0
4. Every email must have a classification - do not skip any emails

For each email, return a JSON object with:
- category: one of the category keys (IMPORTANT_ACTION, FYI_READ_LATER, MARKETING, AUTOMATED, LOW_VALUE_NOISE, or UNKNOWN if uncertain)
- confidence: a number between 0.0 and 1.0 indicating confidence
- reason: a brief explanation (1-2 sentences) for the classification

Emails to classify (%d total):
%s
Return ONLY valid JSON array with exactly %d classifications in this format:
[
  {
    "category": "IMPORTANT_ACTION",
    "confidence": 0.95,
    "reason": "Meeting invitation requires response"
  },
  {
    "category": "MARKETING",
    "confidence": 0.85,
    "reason": "Promotional newsletter"
  },
  ...
]

Remember: You must return exactly %d classifications, one for each email, in order.
`, categories.String(), n, n, emailsText.String(), n, n)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
