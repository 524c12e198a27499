package farm

import (
	"fmt"
	"strings"

	"github.com/sells-group/aura-cli/internal/geo"
)

// Map link defaults.
const (
	DefaultMapBaseURL = "https://www.google.com/maps"
	DefaultMapZoom    = 14
)

// MapLinker builds deep links to an external map viewer. Coordinates are not
// range-checked.
type MapLinker struct {
	BaseURL string
	Zoom    int
}

// URL returns "<base>/@<lat>,<lng>,<zoom>z".
func (l MapLinker) URL(c geo.LatLng) string {
	base := strings.TrimRight(l.BaseURL, "/")
	if base == "" {
		base = DefaultMapBaseURL
	}
	zoom := l.Zoom
	if zoom <= 0 {
		zoom = DefaultMapZoom
	}
	return fmt.Sprintf("%s/@%.6f,%.6f,%dz", base, c.Lat, c.Lng, zoom)
}
