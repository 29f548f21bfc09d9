package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Noise-unit/Noise-Map/internal/ingest"
	"github.com/Noise-unit/Noise-Map/internal/maplayer"
)

const zonesDoc = `{"type":"FeatureCollection","features":[
	{"type":"Feature","geometry":{"type":"Point","coordinates":[-61.2,13.1]},"properties":{"ZONE_NAME":"harbour"}}
]}`

const roadsDoc = `{"type":"FeatureCollection","features":[
	{"type":"Feature","geometry":{"type":"LineString","coordinates":[[-61.2,13.1],[-61.3,13.2]]},"properties":{"road":"coastal"}}
]}`

// mapFetcher serves canned documents and records fetch counts. Preload
// fetches configs from concurrent goroutines, so the counts are locked.
type mapFetcher struct {
	docs    map[string]string
	mu      sync.Mutex
	fetches map[string]int
}

func newMapFetcher(docs map[string]string) *mapFetcher {
	return &mapFetcher{docs: docs, fetches: make(map[string]int)}
}

func (f *mapFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[url]
}

func (f *mapFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.fetches[url]++
	f.mu.Unlock()
	doc, ok := f.docs[url]
	if !ok {
		return nil, fmt.Errorf("status 404")
	}
	return []byte(doc), nil
}

func preloadFixture(t *testing.T) (*Registry, *Preloader, *mapFetcher, *maplayer.MemorySurface, chan Event) {
	t.Helper()
	bus := NewEventBus()
	ch := bus.Subscribe()
	t.Cleanup(func() { bus.Unsubscribe(ch) })

	registry := NewRegistry(nil)
	surface := maplayer.NewMemorySurface()
	fetcher := newMapFetcher(map[string]string{
		"http://repo/zones.geojson": zonesDoc,
		"http://repo/roads.geojson": roadsDoc,
	})
	ing := ingest.New(ingest.NewNormalizer(nil), nil, nil)
	p := NewPreloader(registry, ing, fetcher, surface, bus, nil)
	return registry, p, fetcher, surface, ch
}

var preloadConfigs = []LayerConfig{
	{ID: "zones", Name: "Noise Zones", Type: TypeZone, URL: "http://repo/zones.geojson"},
	{ID: "roads", Name: "Road Network", Type: TypeRoads, URL: "http://repo/roads.geojson"},
	{ID: "missing", Name: "Broken", Type: TypeOther, URL: "http://repo/missing.geojson"},
}

func TestPreloadCommitsEntries(t *testing.T) {
	registry, p, _, _, _ := preloadFixture(t)
	p.Preload(context.Background(), preloadConfigs)

	zones, ok := registry.Get(PartitionRepo, "zones")
	require.True(t, ok)
	require.False(t, zones.Active, "non-roads entries start inactive")
	require.Equal(t, DefaultRepoOpacity, zones.Opacity)
	require.Equal(t, TypeZone, zones.Meta.Type)
	require.Equal(t, "ZONE_NAME", zones.Meta.LabelField)
	require.Equal(t, "http://repo/zones.geojson", zones.Meta.Source)
	require.Len(t, zones.Features, 1)
}

func TestPreloadToleratesPerConfigFailure(t *testing.T) {
	registry, p, _, _, ch := preloadFixture(t)
	p.Preload(context.Background(), preloadConfigs)

	require.False(t, registry.Has(PartitionRepo, "missing"), "failed config must leave no trace")
	require.True(t, registry.Has(PartitionRepo, "zones"))
	require.True(t, registry.Has(PartitionRepo, "roads"))

	// The ready notification still fires after the full attempt.
	sawReady := false
	for len(ch) > 0 {
		if ev := <-ch; ev.Action == ReadyAction {
			sawReady = true
		}
	}
	require.True(t, sawReady)
}

func TestPreloadIdempotent(t *testing.T) {
	registry, p, fetcher, _, _ := preloadFixture(t)
	p.Preload(context.Background(), preloadConfigs)
	p.Preload(context.Background(), preloadConfigs)

	require.Len(t, registry.List(PartitionRepo), 2)
	require.Equal(t, 1, fetcher.count("http://repo/zones.geojson"), "second run must skip existing ids")

	// Failed configs are retried on the next run.
	require.Equal(t, 2, fetcher.count("http://repo/missing.geojson"))
}

func TestPreloadForcesRoads(t *testing.T) {
	registry, p, _, surface, _ := preloadFixture(t)
	p.Preload(context.Background(), preloadConfigs)

	roads, ok := registry.Get(PartitionRepo, RoadsLayerID)
	require.True(t, ok)
	require.True(t, roads.Active, "roads must be forced active")
	require.Equal(t, RoadsBaseOpacity, roads.Opacity)
	require.True(t, surface.Has(roads.Layer), "roads handle must be attached to the map surface")

	// A later toggle is overridden by the next preload run.
	registry.SetActive(PartitionRepo, RoadsLayerID, false)
	p.Preload(context.Background(), preloadConfigs)
	roads, _ = registry.Get(PartitionRepo, RoadsLayerID)
	require.True(t, roads.Active)
	require.Equal(t, 1, surface.Len(), "surface attach is idempotent")
}

func TestPreloadReadyFiresOncePerRun(t *testing.T) {
	_, p, _, _, ch := preloadFixture(t)
	p.Preload(context.Background(), preloadConfigs)

	ready := 0
	for len(ch) > 0 {
		if ev := <-ch; ev.Action == ReadyAction {
			ready++
		}
	}
	require.Equal(t, 1, ready)
}
