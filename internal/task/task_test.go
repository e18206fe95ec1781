package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terranova/internal/stat"
)

func TestRewardFor(t *testing.T) {
	assert.Equal(t, Reward{stat.Capital: 50, stat.Intellect: 5}, RewardFor(CategoryWork))
	assert.Equal(t, Reward{stat.Kindred: 10, stat.Aesthetics: 5}, RewardFor(CategoryPersonal))
	assert.Equal(t, RewardFor(CategoryOther), RewardFor(Category("chores")))
}

func TestReward_ApplyAndReverse(t *testing.T) {
	start := stat.Defaults()
	r := RewardFor(CategoryWork)

	done := r.Apply(start, 1)
	assert.Equal(t, 1300, done.Capital)
	assert.Equal(t, 50, done.Intellect)

	assert.Equal(t, start, r.Apply(done, -1))
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryStudy, ParseCategory("Study"))
	assert.Equal(t, CategoryOther, ParseCategory("gardening"))
	assert.Equal(t, CategoryOther, ParseCategory(""))
}

func TestNormalize(t *testing.T) {
	got := Normalize(Task{ID: "x", Category: "WORK"})
	assert.Equal(t, "Untitled Task", got.Title)
	assert.Equal(t, CategoryWork, got.Category)
	assert.Equal(t, DefaultDuration, got.Duration)
}

func TestSamples(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	s := Samples(now)
	require.Len(t, s, 3)
	assert.True(t, s[1].IsCompleted)
	assert.Equal(t, CategoryHealth, s[1].Category)
	assert.Equal(t, now, *s[0].StartTime)
}
