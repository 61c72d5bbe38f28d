package factory

import (
	"context"
	"fmt"

	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/source"
)

// DefaultConstructor builds vector clients from deps and static sources from the
// documents listed in their profile.
func DefaultConstructor(deps source.Deps) Constructor {
	return func(_ context.Context, p source.Profile) (domain.SearchClient, error) {
		switch p.Kind {
		case source.KindVector, "":
			return source.NewVectorClient(p, deps)
		case source.KindStatic:
			return source.NewAdapter(p, source.NewStaticSearcher(p.Documents), deps.Breakers, deps.Settings)
		default:
			return nil, domain.Configuration(fmt.Errorf("unsupported source kind %q", p.Kind))
		}
	}
}
