package config

import "sort"

var Presets = map[string]map[string]*Config{
	"sir": {
		"year": {
			Model: "sir", Method: "rk45", T1: 365, RelTol: 1e-9, AbsTol: 1e-12,
		},
		"outbreak": {
			Model: "sir", Method: "rk45", T1: 120, RelTol: 1e-9, AbsTol: 1e-12,
		},
		"slow": {
			Model: "sir", Method: "rk45", T1: 365, RelTol: 1e-9, AbsTol: 1e-12,
			Rates: map[string]float64{"infect": 0.3},
		},
		"coarse": {
			Model: "sir", Method: "rk4", T1: 365, Dt: 0.5,
		},
	},
	"sird": {
		"year": {
			Model: "sird", Method: "rk45", T1: 365, RelTol: 1e-9, AbsTol: 1e-12,
		},
		"lethal": {
			Model: "sird", Method: "rk45", T1: 365, RelTol: 1e-9, AbsTol: 1e-12,
			Rates: map[string]float64{"death": 0.03},
		},
	},
	"sirds": {
		"year": {
			Model: "sirds", Method: "rk45", T1: 365, RelTol: 1e-9, AbsTol: 1e-12,
		},
		"endemic": {
			Model: "sirds", Method: "rk45", T1: 5 * 365, RelTol: 1e-9, AbsTol: 1e-12,
		},
	},
	"sirds2": {
		"year": {
			Model: "sirds2", Method: "rk45", T1: 365, RelTol: 1e-9, AbsTol: 1e-12,
		},
		"isolated": {
			Model: "sirds2", Method: "rk45", T1: 365, RelTol: 1e-9, AbsTol: 1e-12,
			Rates: map[string]float64{"i_yo": 0, "i_oy": 0},
		},
		"old-only": {
			Model: "sirds2", Method: "rk45", T1: 365, RelTol: 1e-9, AbsTol: 1e-12,
			Initial: map[string]float64{"Sy": 1, "Iy": 0},
		},
	},
}

// GetPreset returns a copy of a named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
