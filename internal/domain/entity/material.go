package entity

import "strings"

// MaterialSpec holds the per-kilogram price and density of one material.
type MaterialSpec struct {
	PricePerKg      float64
	DensityGramsCm3 float64
}

// DefaultMaterialKey is used whenever a request names no material or an
// unknown one. An unknown material never fails a quote.
const DefaultMaterialKey = "aluminium"

// Materials is the process-wide material table, keyed by canonical key.
// It is built once at startup and read-only afterwards.
type Materials map[string]MaterialSpec

// DefaultMaterials returns the built-in price list.
func DefaultMaterials() Materials {
	return Materials{
		"aluminium":    {PricePerKg: 7, DensityGramsCm3: 2.70},
		"aluminium-t6": {PricePerKg: 13, DensityGramsCm3: 2.70},
		"kupfer":       {PricePerKg: 15, DensityGramsCm3: 8.96},
		"edelstahl":    {PricePerKg: 7.5, DensityGramsCm3: 7.90},
		"c45":          {PricePerKg: 2, DensityGramsCm3: 7.85},
		"st37":         {PricePerKg: 1.5, DensityGramsCm3: 7.85},
	}
}

// materialAliases maps display spellings seen on inbound forms to canonical
// keys.
var materialAliases = map[string]string{
	"alu":          "aluminium",
	"aluminium t6": "aluminium-t6",
	"c45 stahl":    "c45",
	"st37/st52":    "st37",
	"st52":         "st37",
}

// Resolve looks up an arbitrary user-supplied material name and returns the
// canonical key with its spec, falling back to the default material when the
// name is unknown or empty.
func (m Materials) Resolve(key string) (string, MaterialSpec) {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := materialAliases[k]; ok {
		k = alias
	}
	if spec, ok := m[k]; ok {
		return k, spec
	}
	return DefaultMaterialKey, m[DefaultMaterialKey]
}
