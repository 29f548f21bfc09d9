package service

import "github.com/paulmach/orb/geojson"

// Type-specific default label properties for known repo layer types.
var typeLabelDefaults = map[string]string{
	TypeMunicipality: "NAME",
	TypeZone:         "ZONE_NAME",
}

// LabelGuesser inspects a feature set and guesses which property should
// serve as a human label. Returns "" when it has no opinion.
type LabelGuesser func(features []*geojson.Feature) string

// labelCandidates are checked in order by the default guesser.
var labelCandidates = []string{"name", "Name", "NAME", "title", "label", "id"}

// GuessLabelField is the default LabelGuesser. It scans the features for
// the first candidate property any of them carries.
func GuessLabelField(features []*geojson.Feature) string {
	for _, f := range features {
		if f == nil || f.Properties == nil {
			continue
		}
		for _, key := range labelCandidates {
			if _, ok := f.Properties[key]; ok {
				return key
			}
		}
	}
	return ""
}

// ResolveLabelField determines the label property for a layer. Precedence,
// first match wins: the config's explicit labelField, the type default,
// the guesser's pick, then "". The result is stored on the entry's meta
// and is authoritative; styling and analysis must not recompute it.
func ResolveLabelField(cfg LayerConfig, features []*geojson.Feature, guess LabelGuesser) string {
	if cfg.LabelField != "" {
		return cfg.LabelField
	}
	if def, ok := typeLabelDefaults[cfg.Type]; ok {
		return def
	}
	if len(features) == 0 {
		return ""
	}
	if guess == nil {
		guess = GuessLabelField
	}
	return guess(features)
}
