// Package model holds the farm record and snapshot types shared across
// aura-cli packages.
package model

import (
	"time"

	"github.com/sells-group/aura-cli/internal/geo"
	"github.com/sells-group/aura-cli/internal/landtype"
)

// FarmMetrics is the synthesized environmental record for one land parcel.
type FarmMetrics struct {
	FarmID          string            `json:"farmId" yaml:"farmId"`
	Name            string            `json:"name,omitempty" yaml:"name,omitempty"`
	LandType        landtype.LandType `json:"landType" yaml:"landType"`
	Centroid        geo.LatLng        `json:"centroid" yaml:"centroid"`
	AreaApprox      float64           `json:"areaApprox" yaml:"areaApprox"` // km², planar approximation
	BoundingBox     geo.BoundingBox   `json:"boundingBox" yaml:"boundingBox"`
	AuraHealth      int               `json:"auraHealth" yaml:"auraHealth"`
	VegetationIndex float64           `json:"vegetationIndex" yaml:"vegetationIndex"`
	SoilMoisture    float64           `json:"soilMoisture" yaml:"soilMoisture"`
	CropDensity     float64           `json:"cropDensity" yaml:"cropDensity"`
	Temperature     float64           `json:"temperature" yaml:"temperature"` // °C
	Rainfall        float64           `json:"rainfall" yaml:"rainfall"`       // mm
	Recommendations []string          `json:"recommendations" yaml:"recommendations"`
	RiskFactors     []string          `json:"riskFactors" yaml:"riskFactors"`
	LastUpdated     time.Time         `json:"lastUpdated" yaml:"lastUpdated"`
}

// Clone returns a deep copy so callers cannot mutate registry state.
func (m FarmMetrics) Clone() FarmMetrics {
	out := m
	out.Recommendations = append([]string(nil), m.Recommendations...)
	out.RiskFactors = append([]string(nil), m.RiskFactors...)
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	if out.RiskFactors == nil {
		out.RiskFactors = []string{}
	}
	return out
}

// Summary returns the selection-list view of the record.
func (m FarmMetrics) Summary() FarmSummary {
	return FarmSummary{
		ID:         m.FarmID,
		Name:       m.Name,
		LandType:   m.LandType,
		AreaApprox: m.AreaApprox,
	}
}

// FarmSummary is one entry of the farm selection list.
type FarmSummary struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name,omitempty" yaml:"name,omitempty"`
	LandType   landtype.LandType `json:"landType" yaml:"landType"`
	AreaApprox float64           `json:"areaApprox" yaml:"areaApprox"`
}

// Snapshot is a stored copy of a farm record taken at refresh time.
type Snapshot struct {
	ID        string            `json:"id"`
	FarmID    string            `json:"farm_id"`
	LandType  landtype.LandType `json:"land_type"`
	Metrics   FarmMetrics       `json:"metrics"`
	Boundary  []byte            `json:"-"` // EWKB polygon, SRID 4326
	CreatedAt time.Time         `json:"created_at"`
}
