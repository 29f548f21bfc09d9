package service

import (
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/Noise-unit/Noise-Map/internal/maplayer"
)

// Registry is the two-partition store of layer entries. It is an explicit
// service object; collaborators receive it by injection rather than via a
// package global. All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	parts map[Partition]*partition
	bus   *EventBus
}

// partition keeps entries keyed by id plus their insertion order, so the
// aggregate feature query is stable across calls.
type partition struct {
	entries map[string]*Entry
	order   []string
}

func newPartition() *partition {
	return &partition{entries: make(map[string]*Entry)}
}

// NewRegistry creates an empty registry. bus may be nil; mutation events
// are then dropped.
func NewRegistry(bus *EventBus) *Registry {
	return &Registry{
		parts: map[Partition]*partition{
			PartitionUploaded: newPartition(),
			PartitionRepo:     newPartition(),
		},
		bus: bus,
	}
}

// Put inserts or replaces an entry by id within the given partition.
// Opacity is clamped to [0,1].
func (r *Registry) Put(part Partition, entry *Entry) {
	entry.Opacity = clamp01(entry.Opacity)

	r.mu.Lock()
	p := r.parts[part]
	if _, exists := p.entries[entry.ID]; !exists {
		p.order = append(p.order, entry.ID)
	}
	p.entries[entry.ID] = entry
	r.mu.Unlock()

	r.publish(Event{Resource: string(part), Action: "created", ID: entry.ID})
}

// Get returns the entry with the given id from the partition.
func (r *Registry) Get(part Partition, id string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.parts[part].entries[id]
	return e, ok
}

// Has reports whether an entry with the given id exists in the partition.
func (r *Registry) Has(part Partition, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.parts[part].entries[id]
	return ok
}

// List returns the partition's entries in insertion order.
func (r *Registry) List(part Partition) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.parts[part]
	out := make([]*Entry, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.entries[id])
	}
	return out
}

// Remove deletes an uploaded entry. Repo entries are never removed, only
// deactivated; removal requests against the repo partition are ignored.
// Returns true if an entry was removed.
func (r *Registry) Remove(part Partition, id string) bool {
	if part != PartitionUploaded {
		return false
	}

	r.mu.Lock()
	p := r.parts[part]
	if _, ok := p.entries[id]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(p.entries, id)
	for i, oid := range p.order {
		if oid == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.publish(Event{Resource: string(part), Action: "deleted", ID: id})
	return true
}

// SetActive toggles an entry's visibility. A missing id is not an error;
// it means the layer is not ready yet and the toggle is dropped.
func (r *Registry) SetActive(part Partition, id string, active bool) {
	r.mu.Lock()
	e, ok := r.parts[part].entries[id]
	if ok {
		e.Active = active
	}
	r.mu.Unlock()

	if ok {
		r.publish(Event{Resource: string(part), Action: "updated", ID: id})
	}
}

// SetOpacity updates an entry's opacity, clamped to [0,1], and forwards
// the value to the renderable handle when it supports the capability.
// A missing id is silently ignored.
func (r *Registry) SetOpacity(part Partition, id string, value float64) {
	value = clamp01(value)

	r.mu.Lock()
	e, ok := r.parts[part].entries[id]
	if ok {
		e.Opacity = value
		// Handles carry no locking of their own; capability calls happen
		// under the registry lock.
		if setter, can := e.Layer.(maplayer.OpacitySetter); can {
			setter.SetOpacity(value)
		}
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	r.publish(Event{Resource: string(part), Action: "updated", ID: id})
}

// AllActiveFeatures concatenates the features of every active entry, in
// partition order (uploaded then repo) and insertion order within each
// partition. This is the sole read surface for analysis collaborators.
func (r *Registry) AllActiveFeatures() []*geojson.Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*geojson.Feature
	for _, part := range []Partition{PartitionUploaded, PartitionRepo} {
		p := r.parts[part]
		for _, id := range p.order {
			e := p.entries[id]
			if !e.Active || len(e.Features) == 0 {
				continue
			}
			out = append(out, e.Features...)
		}
	}
	return out
}

func (r *Registry) publish(e Event) {
	if r.bus != nil {
		r.bus.Publish(e)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
