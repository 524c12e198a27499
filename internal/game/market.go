package game

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

var (
	// ErrInsufficientCredits is returned when an item costs more than the
	// farmer's green-credit balance.
	ErrInsufficientCredits = eris.New("game: insufficient green credits")
	// ErrUnknownItem is returned for a marketplace id that is not listed.
	ErrUnknownItem = eris.New("game: unknown marketplace item")
)

// ItemCategory groups marketplace items.
type ItemCategory string

// Marketplace categories.
const (
	CategoryBenefit   ItemCategory = "benefit"
	CategoryKnowledge ItemCategory = "knowledge"
	CategoryVirtual   ItemCategory = "virtual"
)

// MarketItem is something green credits can buy.
type MarketItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    ItemCategory `json:"category"`
	Cost        int          `json:"cost"`
	Description string       `json:"description"`
}

// Redemption is the result of spending credits on an item.
type Redemption struct {
	Item      MarketItem `json:"item"`
	Remaining int        `json:"remaining"`
}

// FindItem looks up an item by id.
func FindItem(items []MarketItem, id string) (MarketItem, error) {
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return MarketItem{}, eris.Wrapf(ErrUnknownItem, "item %q", id)
}

// ItemsByCategory returns the items of one category in listing order.
func ItemsByCategory(items []MarketItem, c ItemCategory) []MarketItem {
	out := make([]MarketItem, 0, len(items))
	for _, it := range items {
		if it.Category == c {
			out = append(out, it)
		}
	}
	return out
}

// Redeem spends the item's cost from the farmer's green credits and returns
// the updated farmer. The balance never goes negative.
func Redeem(f Farmer, item MarketItem) (Farmer, error) {
	if item.Cost <= 0 {
		return f, eris.Errorf("game: item %q has no price", item.ID)
	}
	if item.Cost > f.GreenCredits {
		return f, eris.Wrapf(ErrInsufficientCredits, "%s costs %d, balance %d", item.Name, item.Cost, f.GreenCredits)
	}
	f.GreenCredits -= item.Cost
	return f, nil
}

// SchemeStatus is how close a farmer is to a government scheme.
type SchemeStatus string

// Scheme statuses.
const (
	SchemeEligible       SchemeStatus = "eligible"
	SchemeAlmostEligible SchemeStatus = "almost_eligible"
	SchemeInProgress     SchemeStatus = "in_progress"
)

// Scheme tracks eligibility for a subsidy or support programme.
type Scheme struct {
	Name        string       `json:"name"`
	Requirement string       `json:"requirement"`
	Progress    int          `json:"progress"`
	Status      SchemeStatus `json:"status"`
}

// SchemeBand rates eligibility progress: >=90 high, >=70 medium.
func SchemeBand(progress int) Band {
	switch {
	case progress >= 90:
		return BandHigh
	case progress >= 70:
		return BandMedium
	default:
		return BandLow
	}
}

// Initials returns the first letter of each word of name, upper-cased.
func Initials(name string) string {
	var b strings.Builder
	for _, w := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
