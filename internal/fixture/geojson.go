package fixture

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/aura-cli/internal/landtype"
)

//go:embed parcels.geojson
var defaultParcels []byte

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Properties struct {
		Name     string `json:"name"`
		LandType string `json:"land_type"`
	} `json:"properties"`
	Geometry json.RawMessage `json:"geometry"`
}

// Default returns the five reference parcels (Agriculture, Forest, Urban,
// Water, Barren) in that order.
func Default() ([]Parcel, error) {
	return LoadGeoJSON(bytes.NewReader(defaultParcels))
}

// LoadGeoJSONFile reads a FeatureCollection from disk.
func LoadGeoJSONFile(path string) ([]Parcel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fixture: open %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadGeoJSON(f)
}

// LoadGeoJSON decodes a FeatureCollection of Polygon features. Each feature
// needs a land_type property; name is optional. Only the exterior ring is
// kept.
func LoadGeoJSON(r io.Reader) ([]Parcel, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, eris.Wrap(err, "fixture: decode geojson")
	}
	if fc.Type != "FeatureCollection" {
		return nil, eris.Errorf("fixture: expected FeatureCollection, got %q", fc.Type)
	}

	parcels := make([]Parcel, 0, len(fc.Features))
	for i, feat := range fc.Features {
		name := feat.Properties.Name
		if name == "" {
			name = "feature " + strconv.Itoa(i)
		}

		lt, err := landtype.Parse(feat.Properties.LandType)
		if err != nil {
			return nil, eris.Wrapf(err, "fixture: feature %d", i)
		}

		var g geom.T
		if err := geojson.Unmarshal(feat.Geometry, &g); err != nil {
			return nil, eris.Wrapf(err, "fixture: feature %d geometry", i)
		}
		poly, ok := g.(*geom.Polygon)
		if !ok || poly.NumLinearRings() == 0 {
			return nil, eris.Errorf("fixture: feature %d (%s) is not a polygon", i, name)
		}

		p, err := NewParcel(name, lt, poly.LinearRing(0))
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, p)
	}

	zap.L().Debug("fixture: loaded geojson parcels", zap.Int("count", len(parcels)))
	return parcels, nil
}
