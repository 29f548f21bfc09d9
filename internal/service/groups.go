package service

// GroupByType partitions repo layer configs into buckets keyed by their
// type, preserving each config's relative order of appearance.
func GroupByType(configs []LayerConfig) map[string][]LayerConfig {
	buckets := make(map[string][]LayerConfig)
	for _, cfg := range configs {
		buckets[cfg.Type] = append(buckets[cfg.Type], cfg)
	}
	return buckets
}

// PanelGroup is one rendered bucket of the layer panel.
type PanelGroup struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Layers []LayerConfig `json:"layers"`
}

// PanelGroups walks the declared group order and fills each bucket with
// its matching configs. The reserved roads type never produces user-facing
// rows: that layer is registry-visible and map-visible but not
// panel-visible. Empty buckets are omitted.
func PanelGroups(groups []GroupDefinition, configs []LayerConfig) []PanelGroup {
	buckets := GroupByType(configs)

	var out []PanelGroup
	for _, g := range groups {
		if g.ID == TypeRoads {
			continue
		}
		members := make([]LayerConfig, 0, len(buckets[g.ID]))
		for _, cfg := range buckets[g.ID] {
			if cfg.Type == TypeRoads {
				continue
			}
			members = append(members, cfg)
		}
		if len(members) == 0 {
			continue
		}
		out = append(out, PanelGroup{ID: g.ID, Title: g.Title, Layers: members})
	}
	return out
}
