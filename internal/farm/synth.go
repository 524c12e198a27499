// Package farm turns land parcels into synthetic farm metric records and
// serves them: the synthesizer, the in-memory registry, the lookup service
// and its HTTP handler.
package farm

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/aura-cli/internal/fixture"
	"github.com/sells-group/aura-cli/internal/geo"
	"github.com/sells-group/aura-cli/internal/landtype"
	"github.com/sells-group/aura-cli/internal/model"
)

// Global ranges shared by every land type.
var (
	TemperatureRange = landtype.Range{Min: 25, Max: 40} // °C
	RainfallRange    = landtype.Range{Min: 0, Max: 300} // mm
)

// Rand returns a uniform value in [0,1).
type Rand func() float64

// NewRand returns a random source. A zero seed uses the process-wide
// generator; any other seed gives a reproducible PCG sequence.
func NewRand(seed uint64) Rand {
	if seed == 0 {
		return rand.Float64
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).Float64
}

// SynthOption configures a Synthesizer.
type SynthOption func(*Synthesizer)

// WithRand sets the random source.
func WithRand(r Rand) SynthOption {
	return func(s *Synthesizer) {
		s.rand = r
	}
}

// WithClock sets the clock used for LastUpdated.
func WithClock(now func() time.Time) SynthOption {
	return func(s *Synthesizer) {
		s.now = now
	}
}

// Synthesizer produces FarmMetrics records from parcels. It is safe for
// concurrent use; draws for a single record are taken as one block.
type Synthesizer struct {
	mu   sync.Mutex
	rand Rand
	now  func() time.Time
}

// NewSynthesizer creates a Synthesizer with an unseeded source by default.
func NewSynthesizer(opts ...SynthOption) *Synthesizer {
	s := &Synthesizer{
		rand: NewRand(0),
		now:  time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Synthesize derives one record for a parcel. index is the parcel's
// position among parcels of the same land type, so the first Forest parcel
// becomes FOREST_1 regardless of where it sits in the fixture.
// Draw order is aura health, vegetation index, soil moisture, crop density,
// temperature, rainfall, then one draw per probability-based risk rule.
func (s *Synthesizer) Synthesize(p fixture.Parcel, index int) (model.FarmMetrics, error) {
	if index < 0 {
		return model.FarmMetrics{}, eris.Errorf("farm: negative parcel index %d", index)
	}

	centroid, err := geo.Centroid(p.Ring)
	if err != nil {
		return model.FarmMetrics{}, eris.Wrapf(err, "farm: synthesize %q", p.Name)
	}
	bbox, err := geo.BoundingBoxOf(p.Ring)
	if err != nil {
		return model.FarmMetrics{}, eris.Wrapf(err, "farm: synthesize %q", p.Name)
	}

	profile, err := landtype.ProfileFor(p.LandType)
	if err != nil {
		return model.FarmMetrics{}, eris.Wrapf(err, "farm: synthesize %q", p.Name)
	}

	m := model.FarmMetrics{
		FarmID:          FarmID(p.LandType, index),
		Name:            p.Name,
		LandType:        p.LandType,
		Centroid:        centroid,
		AreaApprox:      bbox.AreaKm2(),
		BoundingBox:     bbox,
		Recommendations: append([]string{}, profile.Recommendations...),
		RiskFactors:     []string{},
	}

	s.mu.Lock()
	m.AuraHealth = clampInt(int(math.Round(profile.AuraHealth.Draw(s.rand()))), 0, 100)
	m.VegetationIndex = clampRatio(round3(profile.VegetationIndex.Draw(s.rand())))
	m.SoilMoisture = clampRatio(round3(profile.SoilMoisture.Draw(s.rand())))
	m.CropDensity = clampRatio(round3(profile.CropDensity.Draw(s.rand())))
	m.Temperature = floor1(TemperatureRange.Draw(s.rand()))
	m.Rainfall = floor1(RainfallRange.Draw(s.rand()))
	for _, rule := range profile.Risks {
		if rule.HealthLinked() {
			if m.AuraHealth < rule.HealthBelow {
				m.RiskFactors = append(m.RiskFactors, rule.Text)
			}
			continue
		}
		if s.rand() < rule.Probability {
			m.RiskFactors = append(m.RiskFactors, rule.Text)
		}
	}
	m.LastUpdated = s.now().UTC()
	s.mu.Unlock()

	return m, nil
}

// FarmID formats the identifier for the parcel at index: "<LAND_TYPE>_<index+1>".
func FarmID(lt landtype.LandType, index int) string {
	return fmt.Sprintf("%s_%d", lt.IDPrefix(), index+1)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// floor1 truncates to one decimal so a half-open range stays half-open.
func floor1(v float64) float64 {
	return math.Floor(v*10) / 10
}

func clampRatio(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
