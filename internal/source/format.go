package source

import (
	"fmt"
	"strings"

	"github.com/davidbz/searchmesh/internal/domain"
)

const snippetRunes = 200

// formatResults renders results as a numbered plain-text list.
func formatResults(p Profile, results []domain.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No %s results found.", p.Label())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s results (%d):\n", p.Label(), len(results))

	for i, r := range results {
		title := fieldText(r.Payload, p.TitleField, "title", "subject", "name")
		if title == "" {
			title = r.ID
		}
		fmt.Fprintf(&b, "%d. %s (score %.2f)\n", i+1, title, r.Score)

		if content := fieldText(r.Payload, p.ContentField, "content", "description", "text"); content != "" {
			fmt.Fprintf(&b, "   %s\n", snippet(content))
		}
		if url := fieldText(r.Payload, p.URLField, "url"); url != "" {
			fmt.Fprintf(&b, "   %s\n", url)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func fieldText(payload map[string]any, preferred string, fallbacks ...string) string {
	for _, key := range append([]string{preferred}, fallbacks...) {
		if key == "" {
			continue
		}
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if runes := []rune(s); len(runes) > snippetRunes {
		return string(runes[:snippetRunes]) + "..."
	}
	return s
}
