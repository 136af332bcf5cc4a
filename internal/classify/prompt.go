package classify

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

const promptTemplate = `
You are an intelligent city monitoring agent for Bengaluru. Analyze the citizen report below (text and, when attached, a photo) and produce a concise structured summary.

Respond with a single raw JSON object, without markdown fences such as ` + "```json" + `, containing exactly these fields:
1. "title": a short, descriptive title for the event (e.g. "Tree Blocking Road on 12th Main").
2. "summary": a one-sentence summary of the situation.
3. "category": one value from this exact list: %s.

User description: %q

Your response MUST be only the JSON object.
`

// BuildPrompt renders the fixed instruction template around the user's text.
func BuildPrompt(description string) string {
	labels := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		labels[i] = "'" + string(c) + "'"
	}
	return fmt.Sprintf(promptTemplate, strings.Join(labels, ", "), description)
}
