package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Noise-unit/Noise-Map/internal/ingest"
	"github.com/Noise-unit/Noise-Map/internal/maplayer"
)

// Fetcher retrieves a repo layer's source document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches documents over HTTP. No timeout is set; a stalled
// fetch only delays that one config's availability.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch performs a GET and returns the response body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Preloader brings every configured repo layer into the registry exactly
// once. Failures are per-config: a fetch or build failure is logged and
// that config is skipped, never aborting the rest of the set.
type Preloader struct {
	registry *Registry
	ingestor *ingest.Ingestor
	fetcher  Fetcher
	surface  maplayer.Surface
	bus      *EventBus
	guess    LabelGuesser

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewPreloader creates a Preloader. guess may be nil to use the default
// label guesser.
func NewPreloader(registry *Registry, ingestor *ingest.Ingestor, fetcher Fetcher, surface maplayer.Surface, bus *EventBus, guess LabelGuesser) *Preloader {
	return &Preloader{
		registry: registry,
		ingestor: ingestor,
		fetcher:  fetcher,
		surface:  surface,
		bus:      bus,
		guess:    guess,
		inflight: make(map[string]struct{}),
	}
}

// Preload fetches and commits every config in the set, then fires the
// "repo layers ready" notification and applies the roads-forcing policy.
// Configs whose id is already present in the repo partition, or already
// being loaded by a concurrent invocation, are skipped.
func (p *Preloader) Preload(ctx context.Context, configs []LayerConfig) {
	var wg sync.WaitGroup
	for _, cfg := range configs {
		if !p.claim(cfg.ID) {
			slog.Debug("preload: skipping layer already present or in flight", "id", cfg.ID)
			continue
		}
		wg.Add(1)
		go func(cfg LayerConfig) {
			defer wg.Done()
			defer p.release(cfg.ID)
			p.preloadOne(ctx, cfg)
		}(cfg)
	}
	wg.Wait()

	if p.bus != nil {
		p.bus.Publish(Event{Resource: string(PartitionRepo), Action: ReadyAction})
	}
	p.forceRoads()
}

// claim reserves an id for this run. Returns false when the registry
// already holds the entry or another goroutine is loading it.
func (p *Preloader) claim(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.registry.Has(PartitionRepo, id) {
		return false
	}
	if _, busy := p.inflight[id]; busy {
		return false
	}
	p.inflight[id] = struct{}{}
	return true
}

func (p *Preloader) release(id string) {
	p.mu.Lock()
	delete(p.inflight, id)
	p.mu.Unlock()
}

func (p *Preloader) preloadOne(ctx context.Context, cfg LayerConfig) {
	data, err := p.fetcher.Fetch(ctx, cfg.URL)
	if err != nil {
		slog.Warn("preload: fetch failed", "id", cfg.ID, "url", cfg.URL, "error", err)
		return
	}

	result, err := p.ingestor.GeoJSON(cfg.URL, data)
	if err != nil {
		slog.Warn("preload: build failed", "id", cfg.ID, "error", err)
		return
	}

	opacity := DefaultRepoOpacity
	if cfg.Type == TypeRoads {
		opacity = RoadsBaseOpacity
	}

	p.registry.Put(PartitionRepo, &Entry{
		ID:       cfg.ID,
		Name:     cfg.Name,
		Layer:    result.Layer,
		Features: result.Features,
		Active:   false,
		Opacity:  opacity,
		Meta: LayerMeta{
			Type:       cfg.Type,
			Source:     cfg.URL,
			LabelField: ResolveLabelField(cfg, result.Features, p.guess),
		},
	})
	slog.Info("preload: layer ready", "id", cfg.ID, "features", len(result.Features))
}

// forceRoads activates the reserved roads layer, attaches it to the map
// surface and restores its base opacity. This runs after every preload
// attempt and overrides any toggle state accumulated meanwhile; the roads
// layer has no panel row, so there is nothing for a user to re-toggle.
func (p *Preloader) forceRoads() {
	entry, ok := p.registry.Get(PartitionRepo, RoadsLayerID)
	if !ok {
		return
	}
	p.registry.SetActive(PartitionRepo, RoadsLayerID, true)
	if p.surface != nil && entry.Layer != nil && !p.surface.Has(entry.Layer) {
		p.surface.Add(entry.Layer)
	}
	p.registry.SetOpacity(PartitionRepo, RoadsLayerID, RoadsBaseOpacity)
}
