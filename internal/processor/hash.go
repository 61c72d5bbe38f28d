package processor

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/davidbz/searchmesh/internal/domain"
)

const hashPrefixRunes = 500

// ContentHash fingerprints the textual fields of a payload for duplicate detection.
// It returns an empty string when the payload carries no text.
func ContentHash(payload map[string]any) string {
	body := firstText(payload, contentFields)
	heading := firstText(payload, titleFields)

	text := strings.Join(strings.Fields(strings.ToLower(body+" "+heading)), " ")
	if text == "" {
		return ""
	}

	if runes := []rune(text); len(runes) > hashPrefixRunes {
		text = string(runes[:hashPrefixRunes])
	}

	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}

// resultHash falls back to the result id when the payload has no text.
// An empty hash means the result is never merged with another.
func resultHash(r domain.SearchResult) string {
	if h := ContentHash(r.Payload); h != "" {
		return h
	}

	id := r.ID
	if id == "" {
		id = stringify(r.Payload["id"])
	}
	if id == "" {
		return ""
	}
	return "id:" + strconv.FormatUint(xxhash.Sum64String(id), 16)
}
