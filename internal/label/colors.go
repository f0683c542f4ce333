package label

import "cleanagent-backend/internal/classify"

// Color is a Gmail label color pair. Values must come from Gmail's
// fixed label palette; arbitrary hex codes are rejected by the API.
type Color struct {
	Text       string
	Background string
}

var colorMap = map[classify.Category]Color{
	classify.CategoryImportantAction: {Text: "#ffffff", Background: "#fb4c2f"},
	classify.CategoryFYIReadLater:    {Text: "#ffffff", Background: "#16a766"},
	classify.CategoryMarketing:       {Text: "#000000", Background: "#fad165"},
	classify.CategoryAutomated:       {Text: "#ffffff", Background: "#4986e7"},
	classify.CategoryLowValueNoise:   {Text: "#ffffff", Background: "#666666"},
	classify.CategoryUnknown:         {Text: "#000000", Background: "#ffad47"},
}

// ColorFor returns the palette color for a category, with a neutral
// grey default for anything outside the taxonomy
func ColorFor(category classify.Category) Color {
	if color, ok := colorMap[category]; ok {
		return color
	}
	return Color{Text: "#000000", Background: "#cccccc"}
}

// NameFor maps a category to its Gmail label name. Taxonomy categories
// label as themselves; anything else (ERROR included) falls back to the
// UNKNOWN label.
func NameFor(category classify.Category) string {
	if classify.IsValid(category) {
		return string(category)
	}
	return string(classify.CategoryUnknown)
}
