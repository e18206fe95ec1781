package dream

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func mustNew(t *testing.T, title string) Dream {
	t.Helper()
	d, err := New(title, title+" described", now)
	require.NoError(t, err)
	return d
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", "x", now)
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = New("Skydive", "   ", now)
	assert.ErrorIs(t, err, ErrDescriptionRequired)

	d, err := New("Skydive", "Over the Alps", now)
	require.NoError(t, err)
	assert.Equal(t, IconPending, d.Icon.State)
	assert.Empty(t, d.Icon.URL)
	assert.Equal(t, "Skydive Over the Alps", IconPrompt(d))
	assert.Contains(t, d.ID, "dream-")
}

func TestNewID_UniqueWithinSameMillisecond(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := NewID(now)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestToggle(t *testing.T) {
	dreams := []Dream{mustNew(t, "a")}
	id := dreams[0].ID

	done, ok := Toggle(dreams, id, now)
	require.True(t, ok)
	assert.True(t, done[0].Completed)
	require.NotNil(t, done[0].CompletedAt)

	undone, ok := Toggle(done, id, now)
	require.True(t, ok)
	assert.False(t, undone[0].Completed)
	assert.Nil(t, undone[0].CompletedAt)
	assert.False(t, undone[0].IsPinned)

	_, ok = Toggle(dreams, "missing", now)
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	dreams := []Dream{mustNew(t, "a"), mustNew(t, "b")}
	out, ok := Remove(dreams, dreams[0].ID)
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].Title)
	assert.Len(t, dreams, 2)
}

func TestPin_FourthRejected(t *testing.T) {
	dreams := []Dream{mustNew(t, "a"), mustNew(t, "b"), mustNew(t, "c"), mustNew(t, "d")}
	var err error
	for i := 0; i < 3; i++ {
		dreams, err = Pin(dreams, dreams[i].ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, PinnedCount(dreams))

	_, err = Pin(dreams, dreams[3].ID)
	assert.ErrorIs(t, err, ErrPinLimit)

	// Re-pinning an already pinned dream is not a new slot.
	_, err = Pin(dreams, dreams[0].ID)
	assert.NoError(t, err)
}

func TestPin_NotEligible(t *testing.T) {
	dreams := []Dream{mustNew(t, "a"), mustNew(t, "b")}
	dreams, _ = Toggle(dreams, dreams[0].ID, now)
	dreams, _ = Archive(dreams, dreams[1].ID, now)

	_, err := Pin(dreams, dreams[0].ID)
	assert.ErrorIs(t, err, ErrNotPinnable)
	_, err = Pin(dreams, dreams[1].ID)
	assert.ErrorIs(t, err, ErrNotPinnable)
	_, err = Pin(dreams, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchive_ClearsPinAndFreesSlot(t *testing.T) {
	dreams := []Dream{mustNew(t, "a"), mustNew(t, "b"), mustNew(t, "c"), mustNew(t, "d")}
	for i := 0; i < 3; i++ {
		dreams, _ = Pin(dreams, dreams[i].ID)
	}

	dreams, ok := Archive(dreams, dreams[0].ID, now)
	require.True(t, ok)
	assert.False(t, dreams[0].IsPinned)
	assert.NotNil(t, dreams[0].ArchivedAt)

	dreams, err := Pin(dreams, dreams[3].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, PinnedCount(dreams))

	assert.Len(t, Visible(dreams), 3)
	assert.Len(t, Archived(dreams), 1)

	restored, ok := Restore(dreams, dreams[0].ID)
	require.True(t, ok)
	assert.Nil(t, restored[0].ArchivedAt)
	assert.False(t, restored[0].IsPinned)
}

func TestSetQuestType(t *testing.T) {
	dreams := []Dream{mustNew(t, "a")}
	out, err := SetQuestType(dreams, dreams[0].ID, QuestMain)
	require.NoError(t, err)
	assert.Equal(t, QuestMain, out[0].QuestType)

	_, err = SetQuestType(dreams, dreams[0].ID, "epic")
	assert.ErrorIs(t, err, ErrInvalidQuestType)

	qt, err := ParseQuestType("SIDE")
	require.NoError(t, err)
	assert.Equal(t, QuestSide, qt)
}

func TestSetIcon_RemovedDream(t *testing.T) {
	dreams := []Dream{mustNew(t, "a")}
	_, ok := SetIcon(dreams, "gone", Icon{State: IconReady, URL: "data:x"})
	assert.False(t, ok)

	out, ok := SetIcon(dreams, dreams[0].ID, Icon{State: IconReady, URL: "data:x"})
	require.True(t, ok)
	assert.Equal(t, IconReady, out[0].Icon.State)
}

func TestUnmarshal_LegacyIconURL(t *testing.T) {
	var dreams []Dream
	err := json.Unmarshal([]byte(`[
		{"id":"a","title":"A","description":"x","iconUrl":"data:image/png;base64,AAA"},
		{"id":"b","title":"B","description":"y","iconUrl":""},
		{"id":"c","title":"C","description":"z","icon":{"state":"pending"}}
	]`), &dreams)
	require.NoError(t, err)

	assert.Equal(t, Icon{State: IconReady, URL: "data:image/png;base64,AAA"}, dreams[0].Icon)
	assert.Equal(t, IconFailed, dreams[1].Icon.State)
	assert.Equal(t, IconPending, dreams[2].Icon.State)

	settled := Settle(dreams)
	assert.Equal(t, IconFailed, settled[2].Icon.State)
	assert.Equal(t, IconReady, settled[0].Icon.State)
}

func TestToggle_CompletingReleasesPin(t *testing.T) {
	dreams := []Dream{mustNew(t, "a"), mustNew(t, "b"), mustNew(t, "c"), mustNew(t, "d")}
	dreams, err := Pin(dreams, dreams[0].ID)
	require.NoError(t, err)

	dreams, _ = Toggle(dreams, dreams[0].ID, now)
	assert.False(t, dreams[0].IsPinned)
	for i := 1; i < 4; i++ {
		dreams, err = Pin(dreams, dreams[i].ID)
		require.NoError(t, err)
	}

	dreams, _ = Toggle(dreams, dreams[0].ID, now)
	assert.False(t, dreams[0].Completed)
	assert.False(t, dreams[0].IsPinned)
	assert.Equal(t, MaxPinned, PinnedCount(dreams))

	_, err = Pin(dreams, dreams[0].ID)
	assert.ErrorIs(t, err, ErrPinLimit)
}

func TestSettle_TrimsStoredPins(t *testing.T) {
	dreams := []Dream{mustNew(t, "a"), mustNew(t, "b"), mustNew(t, "c"), mustNew(t, "d"), mustNew(t, "e")}
	for i := range dreams {
		dreams[i].IsPinned = true
	}
	at := now
	dreams[0].Completed = true
	dreams[0].CompletedAt = &at

	settled := Settle(dreams)
	assert.False(t, settled[0].IsPinned)
	assert.True(t, settled[1].IsPinned)
	assert.True(t, settled[3].IsPinned)
	assert.False(t, settled[4].IsPinned)
	assert.Equal(t, MaxPinned, PinnedCount(settled))
	assert.True(t, dreams[4].IsPinned)
}
