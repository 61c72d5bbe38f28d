// Package source implements per-source search clients: the vector-backed client,
// an adapter for searchers that do not speak domain.SearchClient, and the fallback
// client used when a source cannot be built.
package source

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidbz/searchmesh/internal/domain"
)

// Kind selects how a source is searched.
type Kind string

const (
	// KindVector searches a vector collection through the embedding provider.
	KindVector Kind = "vector"
	// KindStatic searches documents listed in the catalog, without external calls.
	KindStatic Kind = "static"
)

// Profile describes one knowledge source.
type Profile struct {
	Name           string           `yaml:"name"`
	DisplayName    string           `yaml:"display_name"`
	Kind           Kind             `yaml:"kind"`
	Collection     string           `yaml:"collection"`
	TitleField     string           `yaml:"title_field"`
	ContentField   string           `yaml:"content_field"`
	URLField       string           `yaml:"url_field"`
	RequiredFields []string         `yaml:"required_fields"`
	FilterFields   []string         `yaml:"filter_fields"`
	Timeout        time.Duration    `yaml:"timeout"`
	Documents      []map[string]any `yaml:"documents"`
}

// Label returns the human readable source name.
func (p Profile) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Name == "" {
		return "Source"
	}
	return strings.ToUpper(p.Name[:1]) + p.Name[1:]
}

// Validate checks that the profile can back a client.
func (p Profile) Validate() error {
	if p.Name == "" {
		return domain.Configuration(errors.New("source name is required"))
	}

	switch p.Kind {
	case KindVector, "":
		if p.Collection == "" {
			return domain.Configuration(fmt.Errorf("source %s: collection is required", p.Name))
		}
	case KindStatic:
	default:
		return domain.Configuration(fmt.Errorf("source %s: unknown kind %q", p.Name, p.Kind))
	}

	return nil
}

func (p Profile) allowsFilter(field string) bool {
	for _, f := range p.FilterFields {
		if f == field {
			return true
		}
	}
	return false
}

// DefaultProfiles returns the built-in ticketing, wiki and ERP sources.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:           "zendesk",
			DisplayName:    "Zendesk",
			Kind:           KindVector,
			Collection:     "zendesk_tickets",
			TitleField:     "subject",
			ContentField:   "description",
			URLField:       "url",
			RequiredFields: []string{"subject"},
			FilterFields:   []string{"client_id", "status", "priority"},
		},
		{
			Name:           "confluence",
			DisplayName:    "Confluence",
			Kind:           KindVector,
			Collection:     "confluence_pages",
			TitleField:     "title",
			ContentField:   "content",
			URLField:       "url",
			RequiredFields: []string{"title"},
			FilterFields:   []string{"client_id", "space"},
		},
		{
			Name:           "erp",
			DisplayName:    "ERP",
			Kind:           KindVector,
			Collection:     "erp_documents",
			TitleField:     "title",
			ContentField:   "content",
			RequiredFields: []string{"title"},
			FilterFields:   []string{"client_id", "document_type"},
		},
	}
}
