package agents

// RegionProfile describes how a named stretch of coastline modifies the
// baseline wind: a fixed multiplier plus a human-readable modifier label.
type RegionProfile struct {
	WindMultiplier float64
	Label          string
}

// Regions maps region names to their wind profiles. Adding a region is a
// data change here, not a code change. Multipliers stay within 0.95-1.10.
var Regions = map[string]RegionProfile{
	"Bretagne":         {WindMultiplier: 1.10, Label: "exposed headlands"},
	"Pays de la Loire": {WindMultiplier: 0.95, Label: "sheltered bays"},
	"Landes":           {WindMultiplier: 1.05, Label: "open beach break"},
	"Pays Basque":      {WindMultiplier: 0.98, Label: "cliff shadow"},
}

// passThrough is applied to regions with no profile.
var passThrough = RegionProfile{WindMultiplier: 1.0, Label: "unmapped"}

func regionProfile(region string) RegionProfile {
	if p, ok := Regions[region]; ok {
		return p
	}
	return passThrough
}
