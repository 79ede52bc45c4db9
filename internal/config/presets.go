package config

// Presets are starter materials with measured properties in the canonical
// units of the builtin symbol library. Values are textbook numbers, good
// enough for demos and sweeps.
var Presets = map[string]map[string]float64{
	"fused_silica": {
		"shear_modulus": 31.0,
		"bulk_modulus":  36.8,
		"density":       2.20,
		"band_gap":      8.9,
	},
	"silicon": {
		"shear_modulus": 66.0,
		"bulk_modulus":  97.8,
		"density":       2.33,
		"band_gap":      1.12,
	},
	"diamond": {
		"shear_modulus": 534.0,
		"bulk_modulus":  443.0,
		"density":       3.51,
		"band_gap":      5.47,
	},
	"aluminum": {
		"shear_modulus": 26.0,
		"bulk_modulus":  76.0,
		"poisson_ratio": 0.33,
		"density":       2.70,
	},
	"steel": {
		"shear_modulus": 79.3,
		"bulk_modulus":  160.0,
		"poisson_ratio": 0.30,
		"density":       7.85,
	},
}

func GetPreset(name string) map[string]float64 {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
