package domain

import "time"

// SearchResult is a single normalized hit from one source.
type SearchResult struct {
	ID          string         `json:"id,omitempty"`
	Score       float64        `json:"score"`
	VectorScore float64        `json:"vector_score"`
	Payload     map[string]any `json:"payload"`
	SourceType  string         `json:"source_type"`
}

// GetPayload returns the result payload.
func (r SearchResult) GetPayload() map[string]any {
	return r.Payload
}

// GetScore returns the result score.
func (r SearchResult) GetScore() float64 {
	return r.Score
}

// Filters narrows a search.
type Filters struct {
	StartDate *time.Time        `json:"start_date,omitempty"`
	EndDate   *time.Time        `json:"end_date,omitempty"`
	ClientID  string            `json:"client_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// SearchQuery is the input of a single-source search.
type SearchQuery struct {
	Query          string   `json:"query"`
	Filters        *Filters `json:"filters,omitempty"`
	Limit          int      `json:"limit"`
	ScoreThreshold float64  `json:"score_threshold"`
}

// SourceStatus describes how a single-source search ended.
type SourceStatus string

const (
	StatusOK          SourceStatus = "ok"
	StatusEmpty       SourceStatus = "empty"
	StatusCached      SourceStatus = "cached"
	StatusDegraded    SourceStatus = "degraded"
	StatusTimeout     SourceStatus = "timeout"
	StatusCircuitOpen SourceStatus = "circuit_open"
	StatusUnavailable SourceStatus = "unavailable"
	StatusError       SourceStatus = "error"
)

// SourceResponse is what a SearchClient returns instead of an error.
type SourceResponse struct {
	Source  string         `json:"source"`
	Results []SearchResult `json:"results"`
	Status  SourceStatus   `json:"status"`
	Dropped int            `json:"dropped,omitempty"`
	Elapsed time.Duration  `json:"elapsed"`
}

// SearchRequest is a multi-source search request.
type SearchRequest struct {
	Query          string   `json:"query"`
	Sources        []string `json:"sources,omitempty"`
	Filters        *Filters `json:"filters,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	ScoreThreshold float64  `json:"score_threshold,omitempty"`
	Format         bool     `json:"format,omitempty"`
}

// SearchResponse is the merged, ranked result of a multi-source search.
type SearchResponse struct {
	Query   string                  `json:"query"`
	Results []SearchResult          `json:"results"`
	Sources map[string]SourceStatus `json:"sources"`
	Text    map[string]string       `json:"text,omitempty"`
	Elapsed time.Duration           `json:"elapsed"`
}

// Document is a record to be embedded and stored in a source collection.
type Document struct {
	ID      string         `json:"id"`
	Text    string         `json:"text"`
	Payload map[string]any `json:"payload"`
}

// IndexRequest adds documents to one source.
type IndexRequest struct {
	Source    string     `json:"source"`
	Documents []Document `json:"documents"`
}

// IndexResponse reports how many documents were stored.
type IndexResponse struct {
	Source  string   `json:"source"`
	Indexed int      `json:"indexed"`
	Failed  []string `json:"failed,omitempty"`
}
