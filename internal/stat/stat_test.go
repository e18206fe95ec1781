package stat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	l := Defaults()

	assert.Equal(t, 1250, l.Capital)
	assert.Equal(t, 1, l.Sovereignty)
	assert.Equal(t, 50, l.Aesthetics)
	assert.Equal(t, 45, l.Intellect)
	assert.Equal(t, 30, l.Kindred)
	assert.Equal(t, 70, l.Vitality)
}

func TestParse_CaseInsensitive(t *testing.T) {
	n, ok := Parse("CAPITAL")
	assert.True(t, ok)
	assert.Equal(t, Capital, n)

	n, ok = Parse(" Vitality ")
	assert.True(t, ok)
	assert.Equal(t, Vitality, n)

	_, ok = Parse("charisma")
	assert.False(t, ok)
}

func TestLedger_AddIsInverse(t *testing.T) {
	start := Defaults()
	for _, n := range All {
		got := start.Add(n, 37).Add(n, -37)
		assert.Equal(t, start, got, n)
	}
}

func TestLedger_AddUnknownIsNoop(t *testing.T) {
	start := Defaults()
	assert.Equal(t, start, start.Add(Name("luck"), 10))
}

func TestLedger_AddDoesNotClamp(t *testing.T) {
	l := Defaults().Add(Sovereignty, -50).Add(Vitality, 500)
	assert.Equal(t, -49, l.Sovereignty)
	assert.Equal(t, 570, l.Vitality)
}

func TestLedger_Fill(t *testing.T) {
	l := Defaults()
	assert.InDelta(t, 12.5, l.Fill(Capital), 0.001)
	assert.InDelta(t, 70, l.Fill(Vitality), 0.001)

	l = l.Set(Vitality, 250).Set(Kindred, -5)
	assert.Equal(t, 100.0, l.Fill(Vitality))
	assert.Equal(t, 0.0, l.Fill(Kindred))
}

func TestLedger_LegacyMirrorsLedger(t *testing.T) {
	l := Defaults().Add(Intellect, 20)
	legacy := l.Legacy()

	assert.Len(t, legacy, 6)
	assert.Equal(t, 65, legacy["intellect"])
	assert.Equal(t, 1250, legacy["capital"])
}

func TestLedger_Readings(t *testing.T) {
	r := Defaults().Readings()
	assert.Equal(t, Reading{Value: 1250, Max: 10000}, r[Capital])
	assert.Equal(t, Reading{Value: 1, Max: 100}, r[Sovereignty])
}
