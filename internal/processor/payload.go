// Package processor normalizes, filters, deduplicates and ranks search results
// coming from heterogeneous sources. Every function is pure and safe for concurrent use.
package processor

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// PayloadCarrier is implemented by result types that expose a payload mapping.
type PayloadCarrier interface {
	GetPayload() map[string]any
}

// ScoreCarrier is implemented by result types that expose a score.
type ScoreCarrier interface {
	GetScore() float64
}

var (
	contentFields  = []string{"content", "text", "description", "body"}
	titleFields    = []string{"title", "summary", "subject", "name"}
	clientFields   = []string{"client_id", "client", "customer_id", "organization_id", "tenant_id"}
	assigneeFields = []string{"assignee", "assignee_id", "owner", "author"}
	statusFields   = []string{"status", "resolution", "state"}
)

// ExtractPayload returns v as a plain mapping. Mappings are returned as is, carriers
// are unwrapped, anything else yields an empty mapping.
func ExtractPayload(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if t != nil {
			return t
		}
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = val
		}
		return out
	case PayloadCarrier:
		if p := t.GetPayload(); p != nil {
			return p
		}
	}
	return map[string]any{}
}

// ExtractScore reads a score from a mapping or a ScoreCarrier. It defaults to 0 and
// never panics.
func ExtractScore(v any) float64 {
	switch t := v.(type) {
	case ScoreCarrier:
		return finite(t.GetScore())
	case map[string]any:
		if f, ok := toFloat(t["score"]); ok {
			return finite(f)
		}
	}
	return 0
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// firstText returns the first non-empty textual value among keys.
func firstText(payload map[string]any, keys []string) string {
	for _, key := range keys {
		if s := stringify(payload[key]); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	case float64, float32, int, int32, int64, uint, uint32, uint64, json.Number, bool:
		return fmt.Sprint(t)
	}
	return ""
}

func hasAny(payload map[string]any, keys []string) bool {
	return firstText(payload, keys) != ""
}
