package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/aura-cli/internal/farm"
	"github.com/sells-group/aura-cli/internal/game"
)

// Handler serves the dashboard and gamification endpoints.
type Handler struct {
	session *Session
}

// NewHandler creates a dashboard handler over session.
func NewHandler(session *Session) *Handler {
	return &Handler{session: session}
}

// Routes returns the dashboard routes on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// Register adds the dashboard and game routes to r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Post("/dashboard/select", h.selectFarm)
	r.Put("/dashboard/profile", h.profile)
	r.Get("/leaderboard", h.leaderboard)
	r.Get("/quests", h.quests)
	r.Get("/riddle", h.riddle)
	r.Post("/riddle/answer", h.answer)
	r.Get("/marketplace", h.marketplace)
	r.Post("/marketplace/redeem", h.redeem)
	r.Get("/community", h.community)
	r.Post("/community/requests/{id}/bids", h.bid)
}

type dashboardBody struct {
	View
	Guild GuildView          `json:"guild"`
	Boss  game.BossChallenge `json:"boss"`
}

// GuildView is a guild with its progress band.
type GuildView struct {
	game.Guild
	ProgressBand game.Band `json:"progressBand"`
}

func (h *Handler) dashboard(w http.ResponseWriter, _ *http.Request) {
	g := game.DefaultGuild()
	farm.WriteJSON(w, http.StatusOK, dashboardBody{
		View:  h.session.Snapshot(),
		Guild: GuildView{Guild: g, ProgressBand: game.ProgressBand(g.Progress)},
		Boss:  game.DefaultBossChallenge(),
	})
}

func (h *Handler) selectFarm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FarmID string `json:"farmId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FarmID == "" {
		farm.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "farmId is required"})
		return
	}

	if _, err := h.session.Select(r.Context(), req.FarmID); err != nil {
		if eris.Is(err, ErrStaleSelection) {
			farm.WriteJSON(w, http.StatusConflict, map[string]string{"error": "superseded by a newer selection"})
			return
		}
		farm.WriteError(w, r, err)
		return
	}
	farm.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		farm.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	farm.WriteJSON(w, http.StatusOK, h.session.SetProfile(req.Name, req.Location))
}

func (h *Handler) leaderboard(w http.ResponseWriter, _ *http.Request) {
	farm.WriteJSON(w, http.StatusOK, game.Leaderboard(game.DefaultLeaderboard()))
}

func (h *Handler) quests(w http.ResponseWriter, r *http.Request) {
	quests := game.DefaultQuests()
	if v := r.URL.Query().Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			farm.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "completed must be true or false"})
			return
		}
		quests = game.FilterQuests(quests, completed)
	}
	farm.WriteJSON(w, http.StatusOK, quests)
}

func (h *Handler) riddle(w http.ResponseWriter, _ *http.Request) {
	farm.WriteJSON(w, http.StatusOK, game.DefaultRiddle())
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Option int `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		farm.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	riddle := game.DefaultRiddle()
	correct, err := riddle.Check(req.Option)
	if err != nil {
		farm.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp := map[string]any{"correct": correct}
	if correct {
		resp["reward"] = riddle.Reward
	}
	farm.WriteJSON(w, http.StatusOK, resp)
}

type marketplaceBody struct {
	GreenCredits int                                     `json:"greenCredits"`
	Categories   map[game.ItemCategory][]game.MarketItem `json:"categories"`
	Schemes      []SchemeView                            `json:"schemes"`
}

// SchemeView is a scheme with its progress band.
type SchemeView struct {
	game.Scheme
	ProgressBand game.Band `json:"progressBand"`
}

func (h *Handler) marketplace(w http.ResponseWriter, _ *http.Request) {
	items := h.session.MarketItems()
	body := marketplaceBody{
		GreenCredits: h.session.Snapshot().Farmer.GreenCredits,
		Categories:   make(map[game.ItemCategory][]game.MarketItem, 3),
	}
	for _, c := range []game.ItemCategory{game.CategoryBenefit, game.CategoryKnowledge, game.CategoryVirtual} {
		body.Categories[c] = game.ItemsByCategory(items, c)
	}
	for _, sc := range game.DefaultSchemes() {
		body.Schemes = append(body.Schemes, SchemeView{Scheme: sc, ProgressBand: game.SchemeBand(sc.Progress)})
	}
	farm.WriteJSON(w, http.StatusOK, body)
}

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID string `json:"itemId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		farm.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "itemId is required"})
		return
	}

	res, err := h.session.Redeem(req.ItemID)
	switch {
	case eris.Is(err, game.ErrUnknownItem):
		farm.WriteJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case eris.Is(err, game.ErrInsufficientCredits):
		farm.WriteJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		farm.WriteError(w, r, err)
	default:
		farm.WriteJSON(w, http.StatusOK, res)
	}
}

type communityBody struct {
	Requests []game.HelpRequest `json:"requests"`
	Gurus    []game.Guru        `json:"gurus"`
}

func (h *Handler) community(w http.ResponseWriter, _ *http.Request) {
	farm.WriteJSON(w, http.StatusOK, communityBody{
		Requests: h.session.HelpRequests(),
		Gurus:    game.RankGurus(game.DefaultGurus()),
	})
}

func (h *Handler) bid(w http.ResponseWriter, r *http.Request) {
	req, err := h.session.Bid(chi.URLParam(r, "id"))
	if eris.Is(err, game.ErrUnknownRequest) {
		farm.WriteJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		farm.WriteError(w, r, err)
		return
	}
	farm.WriteJSON(w, http.StatusOK, req)
}
