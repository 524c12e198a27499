package game

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMarketItems_Categories(t *testing.T) {
	t.Parallel()

	items := DefaultMarketItems()
	for _, c := range []ItemCategory{CategoryBenefit, CategoryKnowledge, CategoryVirtual} {
		assert.Len(t, ItemsByCategory(items, c), 3, "category %s", c)
	}

	seen := make(map[string]bool)
	for _, it := range items {
		assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
		seen[it.ID] = true
		assert.Positive(t, it.Cost)
	}
}

func TestFindItem(t *testing.T) {
	t.Parallel()

	it, err := FindItem(DefaultMarketItems(), "soil-testing-guide")
	require.NoError(t, err)
	assert.Equal(t, 75, it.Cost)

	_, err = FindItem(DefaultMarketItems(), "tractor")
	assert.True(t, eris.Is(err, ErrUnknownItem))
}

func TestRedeem(t *testing.T) {
	t.Parallel()

	f := DefaultFarmer()
	require.Equal(t, 340, f.GreenCredits)

	item, err := FindItem(DefaultMarketItems(), "fertilizer-discount")
	require.NoError(t, err)
	got, err := Redeem(f, item)
	require.NoError(t, err)
	assert.Equal(t, 140, got.GreenCredits)
	assert.Equal(t, 340, f.GreenCredits, "input must not be modified")

	exact := MarketItem{ID: "x", Name: "Exact", Cost: 140}
	got, err = Redeem(got, exact)
	require.NoError(t, err)
	assert.Zero(t, got.GreenCredits)
}

func TestRedeem_InsufficientCredits(t *testing.T) {
	t.Parallel()

	f := DefaultFarmer()
	loan, err := FindItem(DefaultMarketItems(), "loan-interest")
	require.NoError(t, err)

	got, err := Redeem(f, loan)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInsufficientCredits))
	assert.Contains(t, err.Error(), "balance 340")
	assert.Equal(t, 340, got.GreenCredits)

	_, err = Redeem(f, MarketItem{ID: "free"})
	assert.Error(t, err)
}

func TestSchemeBand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, BandHigh, SchemeBand(92))
	assert.Equal(t, BandHigh, SchemeBand(90))
	assert.Equal(t, BandMedium, SchemeBand(85))
	assert.Equal(t, BandMedium, SchemeBand(70))
	assert.Equal(t, BandLow, SchemeBand(67))
}

func TestInitials(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DRP", Initials("Dr. Ramesh Patil"))
	assert.Equal(t, "KD", Initials("  kavita   deshmukh "))
	assert.Equal(t, "", Initials(""))
}
