package factory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/factory"
	"github.com/davidbz/searchmesh/internal/mocks"
	"github.com/davidbz/searchmesh/internal/resilience"
	"github.com/davidbz/searchmesh/internal/source"
)

type countingConstructor struct {
	calls   atomic.Int32
	clients map[string]domain.SearchClient
}

func (c *countingConstructor) build(_ context.Context, p source.Profile) (domain.SearchClient, error) {
	c.calls.Add(1)
	return c.clients[p.Name], nil
}

func newClients(t *testing.T) map[string]domain.SearchClient {
	t.Helper()
	clients := make(map[string]domain.SearchClient)
	for _, p := range source.DefaultProfiles() {
		clients[p.Name] = mocks.NewMockSearchClient(t)
	}
	return clients
}

func TestFactory_FailingConstructorFallsBack(t *testing.T) {
	ctor := &countingConstructor{clients: newClients(t)}
	f, err := factory.New(source.DefaultProfiles(), ctor.build, resilience.NewRegistry(),
		factory.WithConstructor("zendesk", func(context.Context, source.Profile) (domain.SearchClient, error) {
			return nil, errors.New("zendesk sdk not installed")
		}),
	)
	require.NoError(t, err)

	require.NoError(t, f.Initialize(context.Background()))

	client := f.GetClient(context.Background(), "zendesk")
	_, isFallback := client.(*source.FallbackClient)
	require.True(t, isFallback)

	resp := client.Search(context.Background(), domain.SearchQuery{Query: "printer"})
	require.Empty(t, resp.Results)
	require.Equal(t, domain.StatusUnavailable, resp.Status)
	require.Contains(t, client.FormatForDisplay(nil), "unavailable")

	require.Same(t, ctor.clients["confluence"], f.GetClient(context.Background(), "confluence"))

	statuses := f.Status()
	require.Len(t, statuses, 3)
	byName := make(map[string]factory.SlotStatus)
	for _, s := range statuses {
		byName[s.Source] = s
	}
	require.Equal(t, factory.StateFallback, byName["zendesk"].State)
	require.Contains(t, byName["zendesk"].Reason, "zendesk sdk not installed")
	require.Equal(t, factory.StateReady, byName["confluence"].State)
	require.Equal(t, factory.StateReady, byName["erp"].State)
}

func TestFactory_GetClientBuildsOnce(t *testing.T) {
	ctor := &countingConstructor{clients: newClients(t)}
	f, err := factory.New(source.DefaultProfiles(), ctor.build, resilience.NewRegistry())
	require.NoError(t, err)

	require.Equal(t, factory.StateUninitialized, f.Status()[0].State)

	got := make([]domain.SearchClient, 20)
	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = f.GetClient(context.Background(), "erp")
		}()
	}
	wg.Wait()

	for _, client := range got {
		require.Same(t, ctor.clients["erp"], client)
	}

	require.Equal(t, int32(1), ctor.calls.Load())
}

func TestFactory_UnknownSource(t *testing.T) {
	ctor := &countingConstructor{clients: newClients(t)}
	f, err := factory.New(source.DefaultProfiles(), ctor.build, resilience.NewRegistry())
	require.NoError(t, err)

	client := f.GetClient(context.Background(), "jira")

	fallback, ok := client.(*source.FallbackClient)
	require.True(t, ok)
	require.ErrorIs(t, fallback.Reason(), domain.ErrUnknownSource)
	require.Equal(t, "jira", client.SourceName())
	require.Zero(t, ctor.calls.Load())
	require.Len(t, f.Status(), 3)
	require.False(t, f.Reset(context.Background(), "jira"))
}

func TestFactory_MissingCollection(t *testing.T) {
	backend := mocks.NewMockVectorBackend(t)
	backend.EXPECT().CollectionExists(mock.Anything, "zendesk_tickets").Return(false, nil).Once()

	ctor := &countingConstructor{clients: newClients(t)}
	f, err := factory.New(source.DefaultProfiles()[:1], ctor.build, resilience.NewRegistry(),
		factory.WithCollectionChecker(backend))
	require.NoError(t, err)

	client := f.GetClient(context.Background(), "zendesk")

	fallback, ok := client.(*source.FallbackClient)
	require.True(t, ok)
	require.ErrorIs(t, fallback.Reason(), domain.ErrConfiguration)
	require.Zero(t, ctor.calls.Load())
}

func TestFactory_CheckerFailureRecordedOnImportBreaker(t *testing.T) {
	backend := mocks.NewMockVectorBackend(t)
	backend.EXPECT().CollectionExists(mock.Anything, mock.Anything).
		Return(false, domain.Transient(errors.New("dial tcp: connection refused")))

	breakers := resilience.NewRegistry(resilience.WithFailureThreshold(3))
	ctor := &countingConstructor{clients: newClients(t)}
	f, err := factory.New(source.DefaultProfiles(), ctor.build, breakers, factory.WithCollectionChecker(backend))
	require.NoError(t, err)

	for name, client := range f.GetAllClients(context.Background()) {
		_, ok := client.(*source.FallbackClient)
		require.True(t, ok, name)
	}

	require.Equal(t, resilience.StateOpen, breakers.Get(factory.ImportBreaker).State())
	require.Zero(t, ctor.calls.Load())
}

func TestFactory_ResetRebuilds(t *testing.T) {
	clients := newClients(t)
	var attempts atomic.Int32
	build := func(_ context.Context, p source.Profile) (domain.SearchClient, error) {
		if attempts.Add(1) == 1 {
			return nil, domain.Transient(errors.New("timeout"))
		}
		return clients[p.Name], nil
	}

	breakers := resilience.NewRegistry(resilience.WithFailureThreshold(1))
	f, err := factory.New(source.DefaultProfiles()[:1], build, breakers)
	require.NoError(t, err)

	_, isFallback := f.GetClient(context.Background(), "zendesk").(*source.FallbackClient)
	require.True(t, isFallback)
	require.Equal(t, resilience.StateOpen, breakers.Get(factory.CreationBreaker).State())

	_, isFallback = f.GetClient(context.Background(), "zendesk").(*source.FallbackClient)
	require.True(t, isFallback, "fallback is cached until reset")

	require.True(t, f.Reset(context.Background(), "zendesk"))
	require.Equal(t, factory.StateUninitialized, f.Status()[0].State)
	require.Equal(t, resilience.StateClosed, breakers.Get(factory.CreationBreaker).State())

	require.Same(t, clients["zendesk"], f.GetClient(context.Background(), "zendesk"))
	require.Equal(t, int32(2), attempts.Load())
}

func TestFactory_OpenCreationBreakerDoesNotPinHealthySource(t *testing.T) {
	clients := newClients(t)
	build := func(_ context.Context, p source.Profile) (domain.SearchClient, error) {
		if p.Name == "erp" {
			return clients[p.Name], nil
		}
		return nil, errors.New("sdk not installed")
	}

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	breakers := resilience.NewRegistry(
		resilience.WithFailureThreshold(2),
		resilience.WithResetTimeout(time.Minute),
		resilience.WithClock(func() time.Time { return now }),
	)
	f, err := factory.New(source.DefaultProfiles(), build, breakers)
	require.NoError(t, err)

	f.GetClient(context.Background(), "zendesk")
	f.GetClient(context.Background(), "confluence")
	require.Equal(t, resilience.StateOpen, breakers.Get(factory.CreationBreaker).State())

	fallback, ok := f.GetClient(context.Background(), "erp").(*source.FallbackClient)
	require.True(t, ok)
	require.ErrorIs(t, fallback.Reason(), domain.ErrCircuitOpen)

	byName := make(map[string]factory.SlotStatus)
	for _, s := range f.Status() {
		byName[s.Source] = s
	}
	require.Equal(t, factory.StateUninitialized, byName["erp"].State)
	require.Equal(t, factory.StateFallback, byName["zendesk"].State)

	now = now.Add(2 * time.Minute)

	require.Same(t, clients["erp"], f.GetClient(context.Background(), "erp"))
	require.Equal(t, resilience.StateClosed, breakers.Get(factory.CreationBreaker).State())
}

func TestFactory_ResetDiscardsInFlightConstruction(t *testing.T) {
	clients := newClients(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	build := func(_ context.Context, p source.Profile) (domain.SearchClient, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return nil, errors.New("stale credentials")
		}
		return clients[p.Name], nil
	}

	f, err := factory.New(source.DefaultProfiles()[:1], build, resilience.NewRegistry())
	require.NoError(t, err)

	done := make(chan domain.SearchClient)
	go func() {
		done <- f.GetClient(context.Background(), "zendesk")
	}()

	<-started
	require.True(t, f.Reset(context.Background(), "zendesk"))
	close(release)

	_, isFallback := (<-done).(*source.FallbackClient)
	require.True(t, isFallback)
	require.Equal(t, factory.StateUninitialized, f.Status()[0].State)

	require.Same(t, clients["zendesk"], f.GetClient(context.Background(), "zendesk"))
	require.Equal(t, factory.StateReady, f.Status()[0].State)
	require.Equal(t, int32(2), calls.Load())
}

func TestFactory_ResetAll(t *testing.T) {
	ctor := &countingConstructor{clients: newClients(t)}
	f, err := factory.New(source.DefaultProfiles(), ctor.build, resilience.NewRegistry())
	require.NoError(t, err)

	require.NoError(t, f.Initialize(context.Background()))
	require.NoError(t, f.Initialize(context.Background()))
	require.Equal(t, int32(3), ctor.calls.Load())

	f.ResetAll(context.Background())
	for _, s := range f.Status() {
		require.Equal(t, factory.StateUninitialized, s.State)
	}

	require.Len(t, f.GetAllClients(context.Background()), 3)
	require.Equal(t, int32(6), ctor.calls.Load())
}

func TestFactory_PublishesSlotEvents(t *testing.T) {
	events := mocks.NewMockEventPublisher(t)
	events.EXPECT().Publish(mock.Anything, "client.created", map[string]interface{}{
		"source": "erp",
		"state":  "ready",
	}).Once()

	ctor := &countingConstructor{clients: newClients(t)}
	f, err := factory.New(source.DefaultProfiles()[2:], ctor.build, resilience.NewRegistry(), factory.WithEvents(events))
	require.NoError(t, err)

	f.GetClient(context.Background(), "erp")
}

func TestNew_Validation(t *testing.T) {
	build := func(context.Context, source.Profile) (domain.SearchClient, error) { return nil, nil }

	_, err := factory.New(nil, nil, resilience.NewRegistry())
	require.Error(t, err)

	_, err = factory.New(nil, build, nil)
	require.Error(t, err)

	dup := append(source.DefaultProfiles(), source.DefaultProfiles()[0])
	_, err = factory.New(dup, build, resilience.NewRegistry())
	require.ErrorContains(t, err, "configured twice")
}

func TestDefaultConstructor(t *testing.T) {
	deps := source.Deps{
		Embedder: mocks.NewMockEmbeddingGenerator(t),
		Backend:  mocks.NewMockVectorBackend(t),
		Breakers: resilience.NewRegistry(),
	}
	build := factory.DefaultConstructor(deps)

	client, err := build(context.Background(), source.DefaultProfiles()[0])
	require.NoError(t, err)
	require.IsType(t, &source.VectorClient{}, client)

	client, err = build(context.Background(), source.Profile{
		Name:      "handbook",
		Kind:      source.KindStatic,
		Documents: []map[string]any{{"id": "1", "title": "Leave policy"}},
	})
	require.NoError(t, err)
	require.IsType(t, &source.Adapter{}, client)

	_, err = build(context.Background(), source.Profile{Name: "graph", Kind: "graph"})
	require.ErrorIs(t, err, domain.ErrConfiguration)
}
