package landtype

import "github.com/rotisserie/eris"

// Range is a half-open [Min, Max) interval.
type Range struct {
	Min float64
	Max float64
}

// Draw maps a uniform u in [0,1) onto the range.
func (r Range) Draw(u float64) float64 {
	return r.Min + u*(r.Max-r.Min)
}

// RiskRule attaches a warning to a record. A rule with HealthBelow > 0 fires
// when the drawn aura health is below that cutoff; otherwise it fires with
// the given Probability.
type RiskRule struct {
	Text        string
	Probability float64
	HealthBelow int
}

// HealthLinked reports whether the rule depends on the aura health draw.
func (r RiskRule) HealthLinked() bool {
	return r.HealthBelow > 0
}

// Profile holds the metric ranges and advisory text for one land type.
type Profile struct {
	AuraHealth      Range
	VegetationIndex Range
	SoilMoisture    Range
	CropDensity     Range
	Recommendations []string
	Risks           []RiskRule
}

// ProfileFor returns the profile for t. The returned slices are fresh copies.
func ProfileFor(t LandType) (Profile, error) {
	var p Profile
	switch t {
	case Agriculture:
		p = Profile{
			AuraHealth:      Range{60, 95},
			VegetationIndex: Range{0.5, 0.9},
			SoilMoisture:    Range{0.3, 0.7},
			CropDensity:     Range{0.6, 0.95},
			Recommendations: []string{
				"Apply organic fertilizer to boost soil nutrients",
				"Consider crop rotation next season",
				"Monitor irrigation schedule closely",
			},
			Risks: []RiskRule{
				{Text: "Pest infestation risk detected", HealthBelow: 70},
				{Text: "Water stress possible in coming weeks", Probability: 0.3},
			},
		}
	case Forest:
		p = Profile{
			AuraHealth:      Range{70, 100},
			VegetationIndex: Range{0.7, 0.95},
			SoilMoisture:    Range{0.4, 0.8},
			CropDensity:     Range{0.1, 0.3},
			Recommendations: []string{
				"Maintain natural forest cover",
				"Consider agroforestry practices at the margins",
				"Protect biodiversity corridors",
			},
			Risks: []RiskRule{
				{Text: "Canopy thinning observed", HealthBelow: 75},
				{Text: "Fire danger elevated in dry season", Probability: 0.2},
			},
		}
	case Urban:
		p = Profile{
			AuraHealth:      Range{20, 50},
			VegetationIndex: Range{0.05, 0.3},
			SoilMoisture:    Range{0.05, 0.25},
			CropDensity:     Range{0, 0.1},
			Recommendations: []string{
				"Explore rooftop and terrace gardening",
				"Install rainwater harvesting",
				"Use vertical farming for leafy greens",
			},
			Risks: []RiskRule{
				{Text: "Soil sealing limits cultivation", HealthBelow: 35},
				{Text: "Urban heat island effect", Probability: 0.5},
			},
		}
	case Water:
		p = Profile{
			AuraHealth:      Range{40, 70},
			VegetationIndex: Range{0, 0.15},
			SoilMoisture:    Range{0.9, 1},
			CropDensity:     Range{0, 0.05},
			Recommendations: []string{
				"Consider aquaculture opportunities",
				"Plant buffer strips along the shoreline",
				"Test water quality regularly",
			},
			Risks: []RiskRule{
				{Text: "Shoreline erosion detected", HealthBelow: 50},
				{Text: "Algal bloom risk", Probability: 0.25},
			},
		}
	case Barren:
		p = Profile{
			AuraHealth:      Range{5, 30},
			VegetationIndex: Range{0, 0.15},
			SoilMoisture:    Range{0, 0.2},
			CropDensity:     Range{0, 0.1},
			Recommendations: []string{
				"Start soil restoration with cover crops",
				"Add compost and organic matter",
				"Plant drought-tolerant native species",
			},
			Risks: []RiskRule{
				{Text: "Severe soil erosion", HealthBelow: 20},
				{Text: "Desertification risk", Probability: 0.4},
			},
		}
	default:
		return Profile{}, eris.Wrapf(ErrUnknownLandType, "no profile for %q", string(t))
	}
	return p, nil
}
