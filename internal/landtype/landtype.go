// Package landtype defines the land-cover categories a parcel may carry and
// the metric profile attached to each of them.
package landtype

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownLandType is returned when a label or value is not one of the
// known categories.
var ErrUnknownLandType = eris.New("landtype: unknown land type")

// LandType is a land-cover category.
type LandType string

// Known land types, in fixture order.
const (
	Agriculture LandType = "Agriculture"
	Forest      LandType = "Forest"
	Urban       LandType = "Urban"
	Water       LandType = "Water"
	Barren      LandType = "Barren"
)

// All returns every land type in fixture order.
func All() []LandType {
	return []LandType{Agriculture, Forest, Urban, Water, Barren}
}

// Parse resolves a label case-insensitively ("forest", "FOREST", " Forest ").
func Parse(s string) (LandType, error) {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(s))
	for _, t := range All() {
		if fold.String(string(t)) == want {
			return t, nil
		}
	}
	return "", eris.Wrapf(ErrUnknownLandType, "label %q", s)
}

// Valid reports whether t is one of the known categories.
func (t LandType) Valid() bool {
	switch t {
	case Agriculture, Forest, Urban, Water, Barren:
		return true
	}
	return false
}

// IDPrefix is the upper-cased label used in farm identifiers.
func (t LandType) IDPrefix() string {
	return cases.Upper(language.Und).String(string(t))
}

func (t LandType) String() string { return string(t) }
