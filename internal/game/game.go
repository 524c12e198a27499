// Package game holds the gamification layer shown next to the farm
// dashboard: farmer profile, guild, quests, boss challenge, leaderboard and
// the daily riddle, plus the green-credits marketplace and the community
// knowledge exchange.
package game

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrInvalidOption is returned when a riddle answer index is out of range.
var ErrInvalidOption = eris.New("game: invalid riddle option")

// Farmer is the signed-in player profile.
type Farmer struct {
	Name                string   `json:"name"`
	Location            string   `json:"location"`
	CropType            string   `json:"cropType"`
	FarmSize            string   `json:"farmSize"`
	SustainabilityScore int      `json:"sustainabilityScore"`
	Level               int      `json:"level"`
	TotalPoints         int      `json:"totalPoints"`
	GreenCredits        int      `json:"greenCredits"`
	Badges              []string `json:"badges"`
	Rank                int      `json:"rank"`
	Guild               string   `json:"guild"`
	Title               string   `json:"title"`
	AuraHealth          int      `json:"auraHealth"`
	StreakDays          int      `json:"streakDays"`
}

// Guild is a team of farmers working on a shared challenge.
type Guild struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Logo             string `json:"logo"`
	Members          int    `json:"members"`
	Level            int    `json:"level"`
	CurrentChallenge string `json:"currentChallenge"`
	Progress         int    `json:"progress"`
	Rank             int    `json:"rank"`
}

// BossChallenge is a community-wide objective.
type BossChallenge struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Progress     int    `json:"progress"`
	Participants int    `json:"participants"`
	Reward       string `json:"reward"`
	TimeLeft     string `json:"timeLeft"`
}

// QuestType distinguishes solo, guild and boss quests.
type QuestType string

// Quest types.
const (
	QuestIndividual QuestType = "individual"
	QuestGuild      QuestType = "guild"
	QuestBoss       QuestType = "boss"
)

// Quest is a sustainability task worth points.
type Quest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Difficulty  string    `json:"difficulty"`
	Points      int       `json:"points"`
	Progress    int       `json:"progress"`
	Deadline    time.Time `json:"deadline"`
	Completed   bool      `json:"completed"`
	Type        QuestType `json:"type"`
	Reward      string    `json:"reward,omitempty"`
}

// LeaderboardEntry is one ranked farmer.
type LeaderboardEntry struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
	Avatar   string `json:"avatar"`
	Title    string `json:"title"`
	Guild    string `json:"guild"`
}

// DailyRiddle is a multiple-choice question with a reward.
type DailyRiddle struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"-"`
	Reward   string   `json:"reward"`
}

// Check reports whether option is the right answer.
func (r DailyRiddle) Check(option int) (bool, error) {
	if option < 0 || option >= len(r.Options) {
		return false, eris.Wrapf(ErrInvalidOption, "option %d of %d", option, len(r.Options))
	}
	return option == r.Correct, nil
}

// Band is a coarse rating used for colouring.
type Band string

// Bands.
const (
	BandThriving Band = "thriving"
	BandModerate Band = "moderate"
	BandCritical Band = "critical"

	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// AuraBand rates an aura health score: >=80 thriving, >=60 moderate.
func AuraBand(health int) Band {
	switch {
	case health >= 80:
		return BandThriving
	case health >= 60:
		return BandModerate
	default:
		return BandCritical
	}
}

// ProgressBand rates a progress percentage: >=80 high, >=50 medium.
func ProgressBand(progress int) Band {
	switch {
	case progress >= 80:
		return BandHigh
	case progress >= 50:
		return BandMedium
	default:
		return BandLow
	}
}

// NewFarmer returns the default farmer with the profile-setup overrides
// applied. Blank values keep the default.
func NewFarmer(name, location string) Farmer {
	f := DefaultFarmer()
	if n := strings.TrimSpace(name); n != "" {
		f.Name = n
	}
	if l := strings.TrimSpace(location); l != "" {
		f.Location = l
	}
	return f
}

// Leaderboard sorts entries by score (descending, ties by name) and assigns
// ranks 1..n. The input is not modified.
func Leaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b LeaderboardEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// FilterQuests returns quests whose completion state matches completed.
func FilterQuests(quests []Quest, completed bool) []Quest {
	out := make([]Quest, 0, len(quests))
	for _, q := range quests {
		if q.Completed == completed {
			out = append(out, q)
		}
	}
	return out
}
