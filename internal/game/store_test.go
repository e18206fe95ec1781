package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"terranova/internal/dream"
	"terranova/internal/stat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIcons struct {
	ref     string
	err     error
	release chan struct{}
}

func (f *fakeIcons) Generate(ctx context.Context, _ string) (string, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.ref, f.err
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Clock == nil {
		opts.Clock = NewFakeClock(t0)
	}
	s := NewStore(opts)
	t.Cleanup(s.Close)
	return s
}

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) record(_ State, c Change) {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	r.mu.Unlock()
}

func (r *recorder) all() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change(nil), r.changes...)
}

func TestStoreNotifiesWithDirtySlices(t *testing.T) {
	s := newTestStore(t, Options{})
	rec := &recorder{}
	cancel := s.Subscribe(rec.record)

	s.ToggleTask("1")
	s.UpdateStat("nonsense", 3)
	s.AddKindred(0)

	changes := rec.all()
	require.Len(t, changes, 1)
	assert.Equal(t, "task_toggled", changes[0].Action)
	assert.True(t, changes[0].Touches(SliceTasks))
	assert.True(t, changes[0].Touches(SliceGameState))
	assert.False(t, changes[0].Touches(SliceDreams))

	cancel()
	s.AddVitality(1)
	assert.Len(t, rec.all(), 1)
}

func TestStoreSequenceIsOrdered(t *testing.T) {
	s := newTestStore(t, Options{})
	rec := &recorder{}
	s.Subscribe(rec.record)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddCapital(1)
		}()
	}
	wg.Wait()

	changes := rec.all()
	require.Len(t, changes, 20)
	for i, c := range changes {
		assert.Equal(t, uint64(i+1), c.Seq)
	}
	assert.Equal(t, 1270, s.Snapshot().Stats.Capital)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestStore(t, Options{})
	snap := s.Snapshot()
	snap.Tasks[0].Title = "mutated"
	assert.NotEqual(t, "mutated", s.Snapshot().Tasks[0].Title)
}

func TestPendingLevelUpHoldsOneRelic(t *testing.T) {
	s := newTestStore(t, Options{})
	rec := &recorder{}
	s.Subscribe(rec.record)

	// Starting capital already clears the first capital relic.
	st := s.AddAesthetics(30)
	require.NotNil(t, st.PendingLevelUp)
	assert.Equal(t, "relic-capital-1000", st.PendingLevelUp.Relic.ID)
	require.NotNil(t, rec.all()[0].LevelUp)

	// The magic mirror also qualifies but waits for the slot.
	st = s.AddAesthetics(1)
	assert.Equal(t, "relic-capital-1000", st.PendingLevelUp.Relic.ID)
	assert.Nil(t, rec.all()[1].LevelUp)

	st, claimed := s.ClaimLevelUp()
	require.NotNil(t, claimed)
	assert.Equal(t, "relic-capital-1000", claimed.Relic.ID)
	require.NotNil(t, st.PendingLevelUp)
	assert.Equal(t, "relic-aesthetics-75", st.PendingLevelUp.Relic.ID)
	assert.True(t, st.Relics[0].Unlocked)
	require.NotNil(t, st.Relics[0].UnlockedAt)
	assert.Equal(t, t0, *st.Relics[0].UnlockedAt)
}

func TestClearedLevelUpReturnsOnNextStatChange(t *testing.T) {
	s := newTestStore(t, Options{})
	st := s.AddIntellect(1)
	require.NotNil(t, st.PendingLevelUp)

	st = s.ClearPendingLevelUp()
	assert.Nil(t, st.PendingLevelUp)
	st = s.ToggleDream("missing")
	assert.Nil(t, st.PendingLevelUp)

	st = s.AddIntellect(1)
	require.NotNil(t, st.PendingLevelUp)
	assert.Equal(t, "relic-capital-1000", st.PendingLevelUp.Relic.ID)
}

func TestCheckMilestonesDoesNotStage(t *testing.T) {
	s := newTestStore(t, Options{})
	lu, ok := s.CheckMilestones()
	require.True(t, ok)
	assert.Equal(t, stat.Capital, lu.Stat)
	assert.Nil(t, s.Snapshot().PendingLevelUp)

	s.UnlockRelic(lu.Relic.ID)
	_, ok = s.CheckMilestones()
	assert.False(t, ok)
}

func TestCompleteQuestTwiceNotifiesOnce(t *testing.T) {
	s := newTestStore(t, Options{})
	rec := &recorder{}
	s.Subscribe(rec.record)

	s.CompleteQuest("2")
	st := s.CompleteQuest("2")
	assert.Equal(t, 1275, st.Stats.Capital)
	assert.Len(t, rec.all(), 1)
}

func TestStampsFollowTheClock(t *testing.T) {
	clock := NewFakeClock(t0)
	s := newTestStore(t, Options{Clock: clock})

	clock.Advance(36 * time.Hour)
	st := s.CompleteQuest("2")
	var done *time.Time
	for _, q := range st.Quests {
		if q.ID == "2" {
			done = q.CompletedAt
		}
	}
	require.NotNil(t, done)
	assert.Equal(t, t0.Add(36*time.Hour), *done)

	clock.Advance(time.Hour)
	d, err := s.AddDream("Sail", "Cross the Atlantic")
	require.NoError(t, err)
	st = s.ToggleDream(d.ID)
	require.NotNil(t, st.Dreams[0].CompletedAt)
	assert.Equal(t, t0.Add(37*time.Hour), *st.Dreams[0].CompletedAt)
}

func TestDaysUntil(t *testing.T) {
	freedom := time.Date(2028, time.June, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 731, DaysUntil(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), freedom))
	assert.Equal(t, 0, DaysUntil(freedom.Add(time.Hour), freedom))
	assert.Equal(t, 0, DaysUntil(freedom.Add(-time.Hour), freedom))
}

func TestAddDreamWithoutGeneratorFailsIcon(t *testing.T) {
	s := newTestStore(t, Options{})
	d, err := s.AddDream("Lisbon flat", "Sunny, near the river")
	require.NoError(t, err)
	assert.Equal(t, dream.IconFailed, d.Icon.State)
	assert.Equal(t, dream.QuestSide, d.QuestType)

	_, err = s.AddDream("  ", "x")
	assert.ErrorIs(t, err, dream.ErrTitleRequired)
}

func TestAddDreamPatchesIconInBackground(t *testing.T) {
	gen := &fakeIcons{ref: "data:image/png;base64,AAAA"}
	s := newTestStore(t, Options{Icons: gen})
	rec := &recorder{}
	s.Subscribe(rec.record)

	d, err := s.AddDream("Vespa", "A mint green scooter")
	require.NoError(t, err)
	assert.Equal(t, dream.IconPending, d.Icon.State)
	s.Wait()

	st := s.Snapshot()
	require.Len(t, st.Dreams, 1)
	assert.Equal(t, dream.Icon{State: dream.IconReady, URL: gen.ref}, st.Dreams[0].Icon)

	changes := rec.all()
	require.Len(t, changes, 2)
	assert.Equal(t, "dream_added", changes[0].Action)
	assert.Equal(t, "dream_icon_ready", changes[1].Action)
	assert.Equal(t, d.ID, changes[1].Subject)
}

func TestAddDreamIconFailure(t *testing.T) {
	s := newTestStore(t, Options{Icons: &fakeIcons{err: errors.New("quota")}})
	_, err := s.AddDream("Piano", "An upright in the corner")
	require.NoError(t, err)
	s.Wait()
	assert.Equal(t, dream.IconFailed, s.Snapshot().Dreams[0].Icon.State)
}

func TestRemovedDreamIgnoresLateIcon(t *testing.T) {
	gen := &fakeIcons{ref: "late", release: make(chan struct{})}
	s := newTestStore(t, Options{Icons: gen})
	d, err := s.AddDream("Boat", "Small sailboat")
	require.NoError(t, err)

	s.RemoveDream(d.ID)
	close(gen.release)
	s.Wait()
	assert.Empty(t, s.Snapshot().Dreams)
}

func TestIconTimeoutMarksFailed(t *testing.T) {
	gen := &fakeIcons{release: make(chan struct{})}
	s := newTestStore(t, Options{Icons: gen, IconTimeout: 10 * time.Millisecond})
	_, err := s.AddDream("Cabin", "Log cabin in the woods")
	require.NoError(t, err)
	s.Wait()
	assert.Equal(t, dream.IconFailed, s.Snapshot().Dreams[0].Icon.State)
}

func TestPinLimit(t *testing.T) {
	s := newTestStore(t, Options{})
	var ids []string
	for _, title := range []string{"a", "b", "c", "d"} {
		d, err := s.AddDream(title, "desc "+title)
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}
	for _, id := range ids[:3] {
		_, err := s.PinDream(id)
		require.NoError(t, err)
	}
	_, err := s.PinDream(ids[3])
	assert.ErrorIs(t, err, dream.ErrPinLimit)

	s.ArchiveDream(ids[0])
	_, err = s.PinDream(ids[3])
	assert.NoError(t, err)

	// Completing and reopening a pinned dream must not push the count past the cap.
	s.RestoreDream(ids[0])
	s.ToggleDream(ids[1])
	_, err = s.PinDream(ids[0])
	require.NoError(t, err)
	st := s.ToggleDream(ids[1])
	assert.LessOrEqual(t, dream.PinnedCount(st.Dreams), dream.MaxPinned)
	_, err = s.PinDream(ids[1])
	assert.ErrorIs(t, err, dream.ErrPinLimit)
}

func TestHydrateMergesPresentDocuments(t *testing.T) {
	s := newTestStore(t, Options{})
	rec := &recorder{}
	s.Subscribe(rec.record)

	capital := 4200
	st := s.Hydrate(Remote{
		GameState: &GameStateDoc{Capital: &capital, VisitedCountries: []string{"jp", "JP", "fr"}},
		Dreams:    []dream.Dream{{ID: "d1", Title: "t", Description: "d", Icon: dream.Icon{State: dream.IconPending}}},
	})
	assert.True(t, st.Hydrated)
	assert.Equal(t, 4200, st.Stats.Capital)
	assert.Equal(t, 1, st.Stats.Sovereignty)
	assert.Equal(t, []string{"JP", "FR"}, st.Visited)
	assert.Len(t, st.Tasks, 3)
	assert.Equal(t, dream.IconFailed, st.Dreams[0].Icon.State)
	require.NotNil(t, st.PendingLevelUp)

	changes := rec.all()
	require.Len(t, changes, 1)
	assert.Empty(t, changes[0].Dirty)

	again := s.Hydrate(Remote{GameState: &GameStateDoc{Capital: &capital}})
	assert.Equal(t, st.Stats, again.Stats)
	assert.Len(t, rec.all(), 1)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := newTestStore(t, Options{})
	src.LogVisit("it")
	src.ToggleTask("3")
	_, err := src.SetMilestone("vitality", 90)
	require.NoError(t, err)
	want := src.Snapshot()

	var remote Remote
	for _, sl := range AllSlices {
		b, err := EncodeSlice(want, sl)
		require.NoError(t, err)
		require.NoError(t, DecodeSlice(sl, b, &remote))
	}

	dst := newTestStore(t, Options{})
	got := dst.Hydrate(remote)
	assert.Equal(t, want.Stats, got.Stats)
	assert.Equal(t, want.Visited, got.Visited)
	assert.Equal(t, want.Milestones, got.Milestones)
	assert.Equal(t, want.Tasks[2].IsCompleted, got.Tasks[2].IsCompleted)

	assert.Error(t, DecodeSlice(SliceTasks, []byte("{"), &remote))
	before := remote.Tasks
	assert.Error(t, DecodeSlice(SliceTasks, []byte(`[{"id":"x","title":"ok"},{"id":"y","title":7}]`), &remote))
	assert.Equal(t, before, remote.Tasks, "a failed decode leaves the previous value")
	_, err = EncodeSlice(want, Slice("bogus"))
	assert.Error(t, err)
}

func TestConfiguredFreedomDateSurvivesHydrateAndReset(t *testing.T) {
	target := time.Date(2027, time.January, 15, 0, 0, 0, 0, time.UTC)
	s := newTestStore(t, Options{FreedomDate: target})
	assert.True(t, s.Snapshot().FreedomDate.Equal(target))

	s.Hydrate(Remote{GameState: &GameStateDoc{}})
	assert.True(t, s.Snapshot().FreedomDate.Equal(target))

	s.SetFreedomDate(target.AddDate(1, 0, 0))
	s.Reset()
	assert.True(t, s.Snapshot().FreedomDate.Equal(target))
}
