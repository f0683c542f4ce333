package classify

// Category is one bucket of the fixed classification taxonomy
type Category string

const (
	CategoryImportantAction Category = "IMPORTANT_ACTION"
	CategoryFYIReadLater    Category = "FYI_READ_LATER"
	CategoryMarketing       Category = "MARKETING"
	CategoryAutomated       Category = "AUTOMATED"
	CategoryLowValueNoise   Category = "LOW_VALUE_NOISE"
	CategoryUnknown         Category = "UNKNOWN"

	// CategoryError is an outcome sentinel, not part of the taxonomy the
	// model chooses from. It marks messages whose classification call
	// failed outright.
	CategoryError Category = "ERROR"
)

// CategoryInfo describes a taxonomy bucket for prompting and display
type CategoryInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Label       string `json:"label"`
}

// Categories lists the taxonomy in prompt order
var Categories = []Category{
	CategoryImportantAction,
	CategoryFYIReadLater,
	CategoryMarketing,
	CategoryAutomated,
	CategoryLowValueNoise,
	CategoryUnknown,
}

var categoryInfo = map[Category]CategoryInfo{
	CategoryImportantAction: {
		Name:        "Important Action Required",
		Description: "Emails requiring user action (meetings, tasks, urgent items, responses needed)",
		Label:       "IMPORTANT_ACTION",
	},
	CategoryFYIReadLater: {
		Name:        "FYI / Read Later",
		Description: "Informational emails that can be read later (newsletters, articles, updates)",
		Label:       "FYI_READ_LATER",
	},
	CategoryMarketing: {
		Name:        "Marketing / Promotions",
		Description: "Promotional and marketing content (sales, deals, ads, promotional newsletters)",
		Label:       "MARKETING",
	},
	CategoryAutomated: {
		Name:        "Automated / Transaction",
		Description: "Automated and transactional emails (receipts, confirmations, notifications, system messages)",
		Label:       "AUTOMATED",
	},
	CategoryLowValueNoise: {
		Name:        "Low Value / Noise",
		Description: "Low-value emails, spam-like content, or noise that doesn't require attention",
		Label:       "LOW_VALUE_NOISE",
	},
	CategoryUnknown: {
		Name:        "Unknown / Unclassified",
		Description: "Emails that could not be classified (fallback category)",
		Label:       "UNKNOWN",
	},
}

// IsValid reports whether c is a taxonomy category the model may return.
// ERROR is not valid here; it is produced only by the engine itself.
func IsValid(c Category) bool {
	_, ok := categoryInfo[c]
	return ok
}

// Info returns the display metadata for a category, falling back to the
// UNKNOWN bucket for anything outside the taxonomy
func Info(c Category) CategoryInfo {
	if info, ok := categoryInfo[c]; ok {
		return info
	}
	return CategoryInfo{Name: "Unknown", Description: "Unknown category", Label: "UNKNOWN"}
}
