package game

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"
)

// ErrUnknownRequest is returned for a help request id that is not posted.
var ErrUnknownRequest = eris.New("game: unknown help request")

// HelpRequest is a problem posted to the knowledge exchange. Other farmers
// bid solutions; the best one earns the guru points.
type HelpRequest struct {
	ID       string `json:"id"`
	Farmer   string `json:"farmer"`
	Problem  string `json:"problem"`
	Location string `json:"location"`
	Bids     int    `json:"bids"`
	Reward   int    `json:"rewardGuruPoints"`
	Posted   string `json:"posted"`
	Icon     string `json:"icon"`
}

// Guru is a recognised problem solver.
type Guru struct {
	Name       string `json:"name"`
	Initials   string `json:"initials"`
	GuruPoints int    `json:"guruPoints"`
	Solutions  int    `json:"solutions"`
	Specialty  string `json:"specialty"`
	Rank       int    `json:"rank"`
}

// PlaceBid records one more offered solution on request id. The input slice
// is not modified.
func PlaceBid(requests []HelpRequest, id string) ([]HelpRequest, HelpRequest, error) {
	i := slices.IndexFunc(requests, func(r HelpRequest) bool { return r.ID == id })
	if i < 0 {
		return requests, HelpRequest{}, eris.Wrapf(ErrUnknownRequest, "request %q", id)
	}
	out := slices.Clone(requests)
	out[i].Bids++
	return out, out[i], nil
}

// RankGurus orders gurus by guru points, then solutions, then name, and
// fills in rank and initials. The input is not modified.
func RankGurus(gurus []Guru) []Guru {
	out := slices.Clone(gurus)
	slices.SortStableFunc(out, func(a, b Guru) int {
		if c := cmp.Compare(b.GuruPoints, a.GuruPoints); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Solutions, a.Solutions); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	for i := range out {
		out[i].Rank = i + 1
		out[i].Initials = Initials(out[i].Name)
	}
	return out
}
