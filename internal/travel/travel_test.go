package travel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisit_Idempotent(t *testing.T) {
	visited, added := Visit(nil, "de")
	require.True(t, added)
	assert.Equal(t, []string{"DE"}, visited)

	again, added := Visit(visited, "DE")
	assert.False(t, added)
	assert.Equal(t, visited, again)

	_, added = Visit(visited, "  ")
	assert.False(t, added)
}

func TestFreedomProgress_NoTargets(t *testing.T) {
	assert.InDelta(t, 12.5, FreedomProgress(1250, nil), 0.001)
	assert.Equal(t, 100.0, FreedomProgress(15000, nil))
	assert.Equal(t, 0.0, FreedomProgress(-300, nil))
}

func TestFreedomProgress_WithTargets(t *testing.T) {
	targets := []Target{
		{ID: "a", EstimatedCost: 1000, FundedAmount: 250},
		{ID: "b", EstimatedCost: 2000, FundedAmount: 0},
	}
	assert.Equal(t, 8.0, FreedomProgress(1250, targets))

	targets[1].FundedAmount = 5000
	assert.Equal(t, 100.0, FreedomProgress(0, targets))
}

func TestNewTargetAndFund(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewTarget("", 100, PriorityHigh, now)
	assert.ErrorIs(t, err, ErrDestinationRequired)
	_, err = NewTarget("JP", -1, PriorityHigh, now)
	assert.ErrorIs(t, err, ErrInvalidCost)

	tg, err := NewTarget("JP", 2400, "", now)
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, tg.Priority)
	assert.Zero(t, tg.FundedAmount)

	out, err := Fund([]Target{tg}, tg.ID, 600)
	require.NoError(t, err)
	assert.Equal(t, 600.0, out[0].FundedAmount)

	_, err = Fund(out, tg.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = Fund(out, "nope", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestResolve(t *testing.T) {
	cases := map[string]string{
		"jp":           "JP",
		"Germany":      "DE",
		"germny":       "DE",
		"New  Zealand": "NZ",
		"UK":           "GB",
		"Switzerlnd":   "CH",
		"portugl":      "PT",
	}
	for in, want := range cases {
		c, ok := Resolve(in)
		if assert.True(t, ok, in) {
			assert.Equal(t, want, c.Code, in)
		}
	}

	_, ok := Resolve("Atlantis")
	assert.False(t, ok)
	_, ok = Resolve("")
	assert.False(t, ok)
}

func TestTrinkets(t *testing.T) {
	tr := Trinkets([]string{"NO", "XX", "JP"})
	require.Len(t, tr, 2)
	assert.Equal(t, "Viking Helmet", tr[0].Name)
	assert.Equal(t, "trinket-jp", tr[1].ID)
}
