// Package factory builds, caches and guards the per-source search clients.
package factory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/observability"
	"github.com/davidbz/searchmesh/internal/resilience"
	"github.com/davidbz/searchmesh/internal/source"
)

const (
	// ImportBreaker guards source resolution and the collection check.
	ImportBreaker = "client_import"
	// CreationBreaker guards client construction.
	CreationBreaker = "client_creation"
)

// State is the lifecycle state of a client slot.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
	StateFallback      State = "fallback"
)

// Constructor builds the client for a profile.
type Constructor func(ctx context.Context, p source.Profile) (domain.SearchClient, error)

// CollectionChecker reports whether a backend collection exists.
type CollectionChecker interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
}

// SlotStatus describes one configured source.
type SlotStatus struct {
	Source string      `json:"source"`
	Kind   source.Kind `json:"kind"`
	State  State       `json:"state"`
	Reason string      `json:"reason,omitempty"`
}

type slot struct {
	state  State
	client domain.SearchClient
	reason error
}

// Factory implements domain.ClientFactory. Clients are built lazily, cached for the
// life of the process and replaced only by Reset.
type Factory struct {
	mu       sync.RWMutex
	profiles map[string]source.Profile
	order    []string
	slots    map[string]*slot
	gens     map[string]uint64

	build        Constructor
	constructors map[string]Constructor
	checker      CollectionChecker
	breakers     *resilience.Registry
	events       domain.EventPublisher

	group singleflight.Group

	initOnce sync.Once
}

// Option configures a Factory.
type Option func(*Factory)

// WithConstructor overrides the constructor for one source.
func WithConstructor(sourceType string, c Constructor) Option {
	return func(f *Factory) {
		f.constructors[sourceType] = c
	}
}

// WithCollectionChecker verifies that vector collections exist before construction.
func WithCollectionChecker(checker CollectionChecker) Option {
	return func(f *Factory) {
		f.checker = checker
	}
}

// WithEvents publishes slot transitions.
func WithEvents(pub domain.EventPublisher) Option {
	return func(f *Factory) {
		f.events = pub
	}
}

// New creates a factory for profiles. build is the default constructor.
func New(profiles []source.Profile, build Constructor, breakers *resilience.Registry, opts ...Option) (*Factory, error) {
	if build == nil {
		return nil, errors.New("constructor cannot be nil")
	}
	if breakers == nil {
		return nil, errors.New("breaker registry cannot be nil")
	}

	f := &Factory{
		profiles:     make(map[string]source.Profile, len(profiles)),
		order:        make([]string, 0, len(profiles)),
		slots:        make(map[string]*slot, len(profiles)),
		gens:         make(map[string]uint64, len(profiles)),
		build:        build,
		constructors: make(map[string]Constructor),
		breakers:     breakers,
	}

	for _, p := range profiles {
		if p.Name == "" {
			return nil, errors.New("source name cannot be empty")
		}
		if _, exists := f.profiles[p.Name]; exists {
			return nil, fmt.Errorf("source %s configured twice", p.Name)
		}
		f.profiles[p.Name] = p
		f.order = append(f.order, p.Name)
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Sources returns the configured source names in configuration order.
func (f *Factory) Sources() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Initialize builds every configured client concurrently. It runs once; a failing
// source ends up with a fallback client and never fails the others.
func (f *Factory) Initialize(ctx context.Context) error {
	f.initOnce.Do(func() {
		logger := observability.FromContext(ctx)
		logger.Info("initializing search clients", observability.Strings("sources", f.order))

		var g errgroup.Group
		for _, name := range f.order {
			g.Go(func() error {
				f.GetClient(ctx, name)
				return nil
			})
		}
		_ = g.Wait()

		counts := make(map[State]int, 3)
		for _, s := range f.Status() {
			counts[s.State]++
		}
		logger.Info("search clients initialized",
			observability.Int("ready", counts[StateReady]),
			observability.Int("fallback", counts[StateFallback]),
			observability.Int("deferred", counts[StateUninitialized]),
		)
	})

	return ctx.Err()
}

// GetClient returns the cached client for sourceType, building it on first use.
// Concurrent first calls share one construction. Failures produce a fallback client.
// When a construction breaker refuses the attempt the fallback is not cached, so the
// slot is built once the breaker lets calls through again.
func (f *Factory) GetClient(ctx context.Context, sourceType string) domain.SearchClient {
	if client, _, ok := f.cached(sourceType); ok {
		return client
	}

	profile, known := f.profiles[sourceType]
	if !known {
		err := fmt.Errorf("%w: %s", domain.ErrUnknownSource, sourceType)
		observability.FromContext(ctx).Debug("unknown source requested", observability.String("source", sourceType))
		return source.NewFallbackClient(source.Profile{Name: sourceType}, err)
	}

	v, _, _ := f.group.Do(sourceType, func() (interface{}, error) {
		client, gen, ok := f.cached(sourceType)
		if ok {
			return client, nil
		}
		return f.create(context.WithoutCancel(ctx), profile, gen), nil
	})

	return v.(domain.SearchClient)
}

// GetAllClients returns a client for every configured source.
func (f *Factory) GetAllClients(ctx context.Context) map[string]domain.SearchClient {
	clients := make(map[string]domain.SearchClient, len(f.order))
	for _, name := range f.order {
		clients[name] = f.GetClient(ctx, name)
	}
	return clients
}

// Reset drops the slot for sourceType so the next GetClient rebuilds it. A
// construction still in flight is discarded when it finishes. The construction
// breakers and the source breaker are closed again.
func (f *Factory) Reset(ctx context.Context, sourceType string) bool {
	if _, known := f.profiles[sourceType]; !known {
		return false
	}

	f.mu.Lock()
	delete(f.slots, sourceType)
	f.gens[sourceType]++
	f.mu.Unlock()
	f.group.Forget(sourceType)

	f.breakers.Reset(ImportBreaker)
	f.breakers.Reset(CreationBreaker)
	f.breakers.Reset(source.BreakerName(sourceType))

	observability.FromContext(ctx).Info("search client reset", observability.String("source", sourceType))
	return true
}

// ResetAll drops every slot.
func (f *Factory) ResetAll(ctx context.Context) {
	for _, name := range f.order {
		f.Reset(ctx, name)
	}
}

// Status reports the state of every configured source.
func (f *Factory) Status() []SlotStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]SlotStatus, 0, len(f.order))
	for _, name := range f.order {
		st := SlotStatus{Source: name, Kind: f.profiles[name].Kind, State: StateUninitialized}
		if s, ok := f.slots[name]; ok {
			st.State = s.state
			if s.reason != nil {
				st.Reason = s.reason.Error()
			}
		}
		out = append(out, st)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// cached returns the slot's client, or the slot generation to build against.
func (f *Factory) cached(sourceType string) (domain.SearchClient, uint64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	s, ok := f.slots[sourceType]
	if !ok {
		return nil, f.gens[sourceType], false
	}
	return s.client, 0, true
}

// create resolves and constructs the client and stores the outcome in its slot,
// unless a breaker refused the attempt or the slot was reset since gen.
func (f *Factory) create(ctx context.Context, p source.Profile, gen uint64) domain.SearchClient {
	ctx = observability.WithSource(ctx, p.Name)
	logger := observability.FromContext(ctx)

	client, err := f.construct(ctx, p)

	if errors.Is(err, domain.ErrCircuitOpen) {
		logger.Warn("search client construction deferred, using fallback", observability.Error(err))
		return source.NewFallbackClient(p, err)
	}

	s := &slot{state: StateReady, client: client}
	if err != nil {
		logger.Warn("search client unavailable, using fallback", observability.Error(err))
		s = &slot{state: StateFallback, client: source.NewFallbackClient(p, err), reason: err}
	} else {
		logger.Info("search client ready")
	}

	f.mu.Lock()
	stale := f.gens[p.Name] != gen
	if !stale {
		f.slots[p.Name] = s
	}
	f.mu.Unlock()

	if stale {
		logger.Info("search client reset during construction, result discarded")
		return s.client
	}

	if f.events != nil {
		data := map[string]interface{}{"source": p.Name, "state": string(s.state)}
		if s.reason != nil {
			data["reason"] = s.reason.Error()
		}
		f.events.Publish(ctx, "client.created", data)
	}

	return s.client
}

func (f *Factory) construct(ctx context.Context, p source.Profile) (domain.SearchClient, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err := resilience.Do(ctx, f.breakers.Get(ImportBreaker), func(ctx context.Context) error {
		return f.checkCollection(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source %s: %w", p.Name, err)
	}

	build := f.build
	if c, ok := f.constructors[p.Name]; ok {
		build = c
	}

	client, err := resilience.Execute(ctx, f.breakers.Get(CreationBreaker), func(ctx context.Context) (domain.SearchClient, error) {
		client, err := build(ctx, p)
		if err == nil && client == nil {
			err = errors.New("constructor returned no client")
		}
		return client, err
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", p.Name, err)
	}

	return client, nil
}

// checkCollection verifies that a vector source's collection exists.
func (f *Factory) checkCollection(ctx context.Context, p source.Profile) error {
	if f.checker == nil || p.Kind == source.KindStatic {
		return nil
	}

	exists, err := f.checker.CollectionExists(ctx, p.Collection)
	if err != nil {
		return err
	}
	if !exists {
		return domain.Configuration(fmt.Errorf("collection %s does not exist", p.Collection))
	}
	return nil
}
