// Package geo provides planar helpers over land parcel rings: centroid,
// bounding box, and a rough area in square kilometres.
//
// Rings are go-geom linear rings in (lng, lat) order, closed (first vertex
// repeated last). None of the helpers here are geodesic; they are meant for
// small, near-rectangular, non-polar parcels.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ErrInvalidGeometry is returned for malformed or degenerate rings.
var ErrInvalidGeometry = eris.New("geo: invalid geometry")

// kmPerDegreeLat is the length of one degree of latitude.
const kmPerDegreeLat = 111.0

// minRingPoints is the smallest closed ring: a triangle plus its closing vertex.
const minRingPoints = 4

// LatLng is a geographic coordinate.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// BoundingBox holds the extrema of a ring.
type BoundingBox struct {
	North float64 `json:"north" yaml:"north"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	West  float64 `json:"west" yaml:"west"`
}

// NewRing builds a ring from [lng, lat] pairs and validates it.
func NewRing(coords [][2]float64) (*geom.LinearRing, error) {
	flat := make([]float64, 0, len(coords)*2)
	for _, c := range coords {
		flat = append(flat, c[0], c[1])
	}
	ring := geom.NewLinearRingFlat(geom.XY, flat)
	if err := Validate(ring); err != nil {
		return nil, err
	}
	return ring, nil
}

// Validate checks that the ring is closed, has at least four points, only
// finite coordinates, and at least three distinct vertices.
func Validate(ring *geom.LinearRing) error {
	if ring == nil {
		return eris.Wrap(ErrInvalidGeometry, "nil ring")
	}

	n := ring.NumCoords()
	if n < minRingPoints {
		return eris.Wrapf(ErrInvalidGeometry, "ring has %d points, need at least %d", n, minRingPoints)
	}

	for i := 0; i < n; i++ {
		c := ring.Coord(i)
		if !finite(c.X()) || !finite(c.Y()) {
			return eris.Wrapf(ErrInvalidGeometry, "vertex %d is not finite", i)
		}
	}

	first, last := ring.Coord(0), ring.Coord(n-1)
	if first.X() != last.X() || first.Y() != last.Y() {
		return eris.Wrap(ErrInvalidGeometry, "ring is not closed")
	}

	if d := distinctVertices(ring); d < 3 {
		return eris.Wrapf(ErrInvalidGeometry, "ring has %d distinct vertices, need at least 3", d)
	}

	return nil
}

// Centroid returns the arithmetic mean of the ring's vertices, excluding the
// closing duplicate. It is not area-weighted.
func Centroid(ring *geom.LinearRing) (LatLng, error) {
	if err := Validate(ring); err != nil {
		return LatLng{}, err
	}

	n := ring.NumCoords() - 1
	var sumLng, sumLat float64
	for i := 0; i < n; i++ {
		c := ring.Coord(i)
		sumLng += c.X()
		sumLat += c.Y()
	}

	return LatLng{
		Lat: sumLat / float64(n),
		Lng: sumLng / float64(n),
	}, nil
}

// BoundingBoxOf returns the min/max latitude and longitude across all vertices.
func BoundingBoxOf(ring *geom.LinearRing) (BoundingBox, error) {
	if err := Validate(ring); err != nil {
		return BoundingBox{}, err
	}

	b := ring.Bounds()
	return BoundingBox{
		North: b.Max(1),
		South: b.Min(1),
		East:  b.Max(0),
		West:  b.Min(0),
	}, nil
}

// ApproxAreaKm2 treats the bounding box as a rectangle: the latitude span is
// converted at 111 km per degree and the longitude span is additionally
// scaled by the cosine of the box's mean latitude.
func ApproxAreaKm2(ring *geom.LinearRing) (float64, error) {
	bbox, err := BoundingBoxOf(ring)
	if err != nil {
		return 0, err
	}
	return bbox.AreaKm2(), nil
}

// AreaKm2 is the planar area of the box in square kilometres.
func (b BoundingBox) AreaKm2() float64 {
	meanLat := (b.North + b.South) / 2
	latKm := (b.North - b.South) * kmPerDegreeLat
	lngKm := (b.East - b.West) * kmPerDegreeLat * math.Cos(meanLat*math.Pi/180)
	return latKm * lngKm
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() LatLng {
	return LatLng{
		Lat: (b.North + b.South) / 2,
		Lng: (b.East + b.West) / 2,
	}
}

func distinctVertices(ring *geom.LinearRing) int {
	seen := make(map[[2]float64]struct{}, ring.NumCoords())
	for _, c := range ring.Coords() {
		seen[[2]float64{c.X(), c.Y()}] = struct{}{}
	}
	return len(seen)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
