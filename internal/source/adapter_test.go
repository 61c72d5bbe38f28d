package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/resilience"
	"github.com/davidbz/searchmesh/internal/source"
)

func handbook() source.Profile {
	return source.Profile{
		Name:           "handbook",
		Kind:           source.KindStatic,
		RequiredFields: []string{"title"},
	}
}

func TestAdapter_StaticSearcher(t *testing.T) {
	searcher := source.NewStaticSearcher([]map[string]any{
		{"id": "1", "title": "Expense policy", "content": "Submit expenses within thirty days"},
		{"id": "2", "title": "Travel policy", "content": "Book travel through the portal"},
		{"id": "3", "content": "untitled expense note"},
	})

	adapter, err := source.NewAdapter(handbook(), searcher, resilience.NewRegistry(), source.Settings{})
	require.NoError(t, err)

	resp := adapter.Search(context.Background(), domain.SearchQuery{Query: "expense policy"})

	require.Equal(t, domain.StatusOK, resp.Status)
	require.Equal(t, 1, resp.Dropped)
	require.Len(t, resp.Results, 2)
	require.Equal(t, "1", resp.Results[0].ID)
	require.InDelta(t, 1.0, resp.Results[0].VectorScore, 1e-9)
	require.Equal(t, "handbook", resp.Results[0].SourceType)
	require.Equal(t, "Handbook", adapter.FormatForDisplay(resp.Results)[:8])
}

type mapSearcher struct {
	hits []any
	err  error
}

func (m mapSearcher) Query(context.Context, string, int) ([]any, error) {
	return m.hits, m.err
}

func TestAdapter_RawMappings(t *testing.T) {
	adapter, err := source.NewAdapter(handbook(), mapSearcher{hits: []any{
		map[string]any{"id": "a", "title": "Onboarding", "score": 0.6},
		"not a result",
	}}, resilience.NewRegistry(), source.Settings{})
	require.NoError(t, err)

	resp := adapter.Search(context.Background(), domain.SearchQuery{Query: "onboarding"})

	require.Len(t, resp.Results, 1)
	require.Equal(t, "a", resp.Results[0].ID)
	require.Equal(t, 1, resp.Dropped)
}

func TestAdapter_ErrorsBecomeStatus(t *testing.T) {
	adapter, err := source.NewAdapter(handbook(), mapSearcher{err: domain.Transient(errors.New("down"))},
		resilience.NewRegistry(), source.Settings{})
	require.NoError(t, err)

	resp := adapter.Search(context.Background(), domain.SearchQuery{Query: "anything"})

	require.Equal(t, domain.StatusDegraded, resp.Status)
	require.Empty(t, resp.Results)
}

func TestNewAdapter_RequiresSearcher(t *testing.T) {
	_, err := source.NewAdapter(handbook(), nil, resilience.NewRegistry(), source.Settings{})
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestProfile_Validate(t *testing.T) {
	for _, p := range source.DefaultProfiles() {
		require.NoError(t, p.Validate(), p.Name)
	}

	require.ErrorIs(t, source.Profile{}.Validate(), domain.ErrConfiguration)
	require.ErrorIs(t, source.Profile{Name: "x", Kind: "graph"}.Validate(), domain.ErrConfiguration)
	require.Equal(t, "Wiki", source.Profile{Name: "wiki"}.Label())
	require.Equal(t, "ERP", source.Profile{Name: "erp", DisplayName: "ERP"}.Label())
}
