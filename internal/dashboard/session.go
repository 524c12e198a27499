// Package dashboard tracks the farmer's current farm selection and keeps a
// slow, superseded fetch from overwriting a newer one.
package dashboard

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/aura-cli/internal/game"
	"github.com/sells-group/aura-cli/internal/model"
)

// ErrStaleSelection is returned by Select when a newer selection was made
// while the fetch was in flight. The result has been discarded.
var ErrStaleSelection = eris.New("dashboard: stale selection")

// Fetcher loads a farm record. Satisfied by *farm.Service.
type Fetcher interface {
	FetchFarmData(ctx context.Context, id string) (model.FarmMetrics, error)
}

// View is what the dashboard renders.
type View struct {
	Farmer     game.Farmer        `json:"farmer"`
	AuraBand   game.Band          `json:"auraBand"`
	SelectedID string             `json:"selectedId,omitempty"`
	Pending    bool               `json:"pending"`
	Farm       *model.FarmMetrics `json:"farm,omitempty"`
}

// Session is one farmer's dashboard state.
type Session struct {
	fetcher Fetcher

	mu         sync.Mutex
	gen        uint64
	applied    uint64
	farmer     game.Farmer
	selectedID string
	farm       *model.FarmMetrics

	items    []game.MarketItem
	requests []game.HelpRequest
}

// NewSession starts a session for farmer with the default marketplace
// listing and help-request board.
func NewSession(fetcher Fetcher, farmer game.Farmer) *Session {
	return &Session{
		fetcher:  fetcher,
		farmer:   farmer,
		items:    game.DefaultMarketItems(),
		requests: game.DefaultHelpRequests(),
	}
}

// Select makes id the active farm and fetches it. Each call takes a new
// generation; if another Select starts before this one's fetch returns, this
// call returns ErrStaleSelection and leaves the session untouched. An
// accepted result also overwrites the farmer's aura health. A failed fetch
// ends the pending state and puts the selection back on the last farm shown,
// so the client can retry.
func (s *Session) Select(ctx context.Context, id string) (model.FarmMetrics, error) {
	s.mu.Lock()
	s.gen++
	token := s.gen
	s.selectedID = id
	s.mu.Unlock()

	m, err := s.fetcher.FetchFarmData(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if current := s.gen; current != token {
		zap.L().Debug("dashboard: discarded stale fetch",
			zap.String("farm_id", id),
			zap.Uint64("generation", token),
			zap.Uint64("current", current),
		)
		return model.FarmMetrics{}, eris.Wrapf(ErrStaleSelection, "farm %s (generation %d, current %d)", id, token, current)
	}
	s.applied = token
	if err != nil {
		s.selectedID = ""
		if s.farm != nil {
			s.selectedID = s.farm.FarmID
		}
		return model.FarmMetrics{}, err
	}

	m = m.Clone()
	s.farm = &m
	s.farmer.AuraHealth = m.AuraHealth
	return m.Clone(), nil
}

// SetProfile applies profile-setup changes. Blank values are ignored.
func (s *Session) SetProfile(name, location string) game.Farmer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := strings.TrimSpace(name); n != "" {
		s.farmer.Name = n
	}
	if l := strings.TrimSpace(location); l != "" {
		s.farmer.Location = l
	}
	return s.farmer
}

// Snapshot returns the current view.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Farmer:     s.farmer,
		AuraBand:   game.AuraBand(s.farmer.AuraHealth),
		SelectedID: s.selectedID,
		Pending:    s.applied != s.gen,
	}
	v.Farmer.Badges = append([]string(nil), s.farmer.Badges...)
	if s.farm != nil {
		m := s.farm.Clone()
		v.Farm = &m
	}
	return v
}

// MarketItems returns the marketplace listing.
func (s *Session) MarketItems() []game.MarketItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]game.MarketItem(nil), s.items...)
}

// Redeem spends the farmer's green credits on item id.
func (s *Session) Redeem(id string) (game.Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := game.FindItem(s.items, id)
	if err != nil {
		return game.Redemption{}, err
	}
	f, err := game.Redeem(s.farmer, item)
	if err != nil {
		return game.Redemption{}, err
	}
	s.farmer = f

	zap.L().Info("dashboard: redeemed item",
		zap.String("item", item.ID),
		zap.Int("cost", item.Cost),
		zap.Int("remaining", f.GreenCredits),
	)
	return game.Redemption{Item: item, Remaining: f.GreenCredits}, nil
}

// HelpRequests returns the knowledge-exchange board.
func (s *Session) HelpRequests() []game.HelpRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]game.HelpRequest(nil), s.requests...)
}

// Bid offers a solution to help request id.
func (s *Session) Bid(id string) (game.HelpRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests, req, err := game.PlaceBid(s.requests, id)
	if err != nil {
		return game.HelpRequest{}, err
	}
	s.requests = requests
	return req, nil
}
