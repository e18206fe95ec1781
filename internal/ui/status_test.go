package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"terranova/internal/game"
	"terranova/internal/relic"
	"terranova/internal/stat"
)

func TestBarClampsAndFills(t *testing.T) {
	assert.Equal(t, 14, strings.Count(Bar(70, 20), "█"))
	assert.Equal(t, 6, strings.Count(Bar(70, 20), "░"))
	assert.Equal(t, 10, strings.Count(Bar(0, 10), "░"))
	assert.Equal(t, 10, strings.Count(Bar(150, 10), "█"))
	assert.Empty(t, Bar(50, 0))
}

func TestRenderStatus(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	st := game.Initial(now)
	out := RenderStatus(st, now)

	assert.Contains(t, out, "Terra Nova")
	assert.Contains(t, out, "Aspiring Architect")
	assert.Contains(t, out, "1250 / 10000")
	for _, n := range stat.All {
		assert.Contains(t, out, string(n))
	}
	assert.Contains(t, out, "The Bureaucrat's Maze")
	assert.Contains(t, out, "731 days to 2028-06-01")
	assert.Contains(t, out, "1/3 done")
	assert.NotContains(t, out, "LEVEL UP")
}

func TestRenderStatusShowsPendingLevelUp(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	st := game.Initial(now)
	st.PendingLevelUp = &relic.LevelUp{Stat: stat.Capital, Relic: relic.Catalog()[0]}

	out := RenderStatus(st, now)
	assert.Contains(t, out, "LEVEL UP")
	assert.Contains(t, out, "Golden Coffer")
}
