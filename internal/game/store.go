package game

import (
	"context"
	"log"
	"sync"
	"time"

	"terranova/internal/avatar"
	"terranova/internal/dream"
	"terranova/internal/icon"
	"terranova/internal/navigator"
	"terranova/internal/quest"
	"terranova/internal/relic"
	"terranova/internal/stat"
	"terranova/internal/task"
	"terranova/internal/travel"
)

type Options struct {
	Clock       Clock
	Icons       icon.Generator
	IconTimeout time.Duration
	Logger      *log.Logger
	// FreedomDate replaces DefaultFreedomDate for fresh and reset profiles.
	FreedomDate time.Time
}

// Store owns the game state. Every mutation goes through apply, which commits
// the next snapshot and tells subscribers which documents changed.
type Store struct {
	mu    sync.Mutex
	state State
	seq   uint64

	// notifyMu keeps subscriber delivery in commit order.
	notifyMu sync.Mutex
	subs     map[int]func(State, Change)
	nextSub  int

	clock       Clock
	icons       icon.Generator
	iconTimeout time.Duration
	logger      *log.Logger
	freedomDate time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewStore(opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.IconTimeout <= 0 {
		opts.IconTimeout = 60 * time.Second
	}
	st := Initial(opts.Clock.Now())
	if !opts.FreedomDate.IsZero() {
		st.FreedomDate = opts.FreedomDate.UTC()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		state:       st,
		subs:        map[int]func(State, Change){},
		clock:       opts.Clock,
		icons:       opts.Icons,
		iconTimeout: opts.IconTimeout,
		logger:      opts.Logger,
		freedomDate: opts.FreedomDate,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Snapshot returns a copy of the current state that the caller may keep.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn for every committed change. fn runs synchronously
// after the commit and must not call mutating Store methods.
func (s *Store) Subscribe(fn func(State, Change)) (cancel func()) {
	s.notifyMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.notifyMu.Unlock()
	return func() {
		s.notifyMu.Lock()
		delete(s.subs, id)
		s.notifyMu.Unlock()
	}
}

type transition func(State) (State, []Slice, error)

func (s *Store) apply(action, subject string, fn transition) (State, error) {
	s.mu.Lock()
	prev := s.state
	next, d, err := fn(prev)
	if err != nil {
		s.mu.Unlock()
		return prev.Clone(), err
	}

	if next.Stats != prev.Stats {
		next.Avatar = avatar.Derive(next.Stats, next.Avatar)
		next, _ = stage(next)
	}
	var staged *relic.LevelUp
	if next.PendingLevelUp != nil && !samePending(prev.PendingLevelUp, next.PendingLevelUp) {
		lu := *next.PendingLevelUp
		staged = &lu
	}
	if len(d) == 0 && samePending(prev.PendingLevelUp, next.PendingLevelUp) && next.Hydrated == prev.Hydrated {
		s.mu.Unlock()
		return prev.Clone(), nil
	}

	s.seq++
	s.state = next
	ch := Change{Seq: s.seq, Action: action, Dirty: d, LevelUp: staged, Subject: subject}
	snap := next.Clone()

	s.notifyMu.Lock()
	s.mu.Unlock()
	for _, fn := range s.subs {
		fn(snap.Clone(), ch)
	}
	s.notifyMu.Unlock()
	return snap, nil
}

func samePending(a, b *relic.LevelUp) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Relic.ID == b.Relic.ID
}

func noErr(fn func(State) (State, []Slice)) transition {
	return func(st State) (State, []Slice, error) {
		next, d := fn(st)
		return next, d, nil
	}
}

func (s *Store) now() time.Time { return s.clock.Now() }

func (s *Store) UpdateStat(name string, delta int) State {
	st, _ := s.apply("stat_updated", name, noErr(func(st State) (State, []Slice) {
		return UpdateStat(st, name, delta)
	}))
	return st
}

func (s *Store) AddCapital(n int) State     { return s.UpdateStat(string(stat.Capital), n) }
func (s *Store) AddSovereignty(n int) State { return s.UpdateStat(string(stat.Sovereignty), n) }
func (s *Store) AddAesthetics(n int) State  { return s.UpdateStat(string(stat.Aesthetics), n) }
func (s *Store) AddIntellect(n int) State   { return s.UpdateStat(string(stat.Intellect), n) }
func (s *Store) AddKindred(n int) State     { return s.UpdateStat(string(stat.Kindred), n) }
func (s *Store) AddVitality(n int) State    { return s.UpdateStat(string(stat.Vitality), n) }

func (s *Store) SetMilestone(name string, target int) (State, error) {
	return s.apply("milestone_set", name, func(st State) (State, []Slice, error) {
		return SetMilestone(st, name, target)
	})
}

// CheckMilestones reports the next relic that qualifies, without staging it.
func (s *Store) CheckMilestones() (relic.LevelUp, bool) {
	st := s.Snapshot()
	return relic.Check(st.Relics, st.Stats, st.Milestones)
}

func (s *Store) UnlockRelic(id string) State {
	st, _ := s.apply("relic_unlocked", id, noErr(func(st State) (State, []Slice) {
		return UnlockRelic(st, id, s.now())
	}))
	return st
}

func (s *Store) ClearPendingLevelUp() State {
	st, _ := s.apply("level_up_cleared", "", noErr(ClearPendingLevelUp))
	return st
}

// ClaimLevelUp unlocks the pending relic and stages the next one, if any.
func (s *Store) ClaimLevelUp() (State, *relic.LevelUp) {
	var claimed *relic.LevelUp
	st, _ := s.apply("relic_unlocked", "", noErr(func(st State) (State, []Slice) {
		next, d, c := ClaimLevelUp(st, s.now())
		claimed = c
		return next, d
	}))
	return st, claimed
}

func (s *Store) ImportTasks(tasks []task.Task) State {
	st, _ := s.apply("tasks_imported", "", noErr(func(st State) (State, []Slice) {
		return ImportTasks(st, tasks)
	}))
	return st
}

func (s *Store) ToggleTask(id string) State {
	st, _ := s.apply("task_toggled", id, noErr(func(st State) (State, []Slice) {
		return ToggleTask(st, id)
	}))
	return st
}

func (s *Store) ClearCompletedTasks() State {
	st, _ := s.apply("tasks_cleared", "", noErr(ClearCompletedTasks))
	return st
}

func (s *Store) AddQuest(d quest.Descriptor) (State, quest.Quest) {
	var q quest.Quest
	st, _ := s.apply("quest_added", d.Title, noErr(func(st State) (State, []Slice) {
		next, dirty, added := AddQuest(st, d, s.now())
		q = added
		return next, dirty
	}))
	return st, q
}

func (s *Store) CompleteQuest(id string) State {
	st, _ := s.apply("quest_completed", id, noErr(func(st State) (State, []Slice) {
		return CompleteQuest(st, id, s.now())
	}))
	return st
}

// AddDream inserts the dream with a pending icon and returns right away.
// The icon is generated in the background and patched in by id.
func (s *Store) AddDream(title, description string) (dream.Dream, error) {
	d, err := dream.New(title, description, s.now())
	if err != nil {
		return dream.Dream{}, err
	}
	if s.icons == nil {
		d.Icon = dream.Icon{State: dream.IconFailed}
	}
	if _, err := s.apply("dream_added", d.ID, noErr(func(st State) (State, []Slice) {
		return AddDream(st, d)
	})); err != nil {
		return dream.Dream{}, err
	}
	if s.icons != nil {
		s.wg.Add(1)
		go s.enrichIcon(d)
	}
	return d, nil
}

func (s *Store) enrichIcon(d dream.Dream) {
	defer s.wg.Done()
	ctx, cancel := context.WithTimeout(s.ctx, s.iconTimeout)
	defer cancel()

	ref, err := s.icons.Generate(ctx, dream.IconPrompt(d))
	if err != nil {
		s.logger.Printf("dream icon failed id=%s err=%v", d.ID, err)
		s.SetDreamIcon(d.ID, dream.Icon{State: dream.IconFailed})
		return
	}
	s.SetDreamIcon(d.ID, dream.Icon{State: dream.IconReady, URL: ref})
}

// SetDreamIcon patches an icon; a dream removed meanwhile is ignored.
func (s *Store) SetDreamIcon(id string, ic dream.Icon) State {
	action := "dream_icon_ready"
	if ic.State == dream.IconFailed {
		action = "dream_icon_failed"
	}
	st, _ := s.apply(action, id, noErr(func(st State) (State, []Slice) {
		return SetDreamIcon(st, id, ic)
	}))
	return st
}

// Wait blocks until background icon generation has finished.
func (s *Store) Wait() { s.wg.Wait() }

// Close cancels outstanding icon requests and waits for them to settle.
func (s *Store) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Store) ToggleDream(id string) State {
	st, _ := s.apply("dream_toggled", id, noErr(func(st State) (State, []Slice) {
		return ToggleDream(st, id, s.now())
	}))
	return st
}

func (s *Store) RemoveDream(id string) State {
	st, _ := s.apply("dream_removed", id, noErr(func(st State) (State, []Slice) {
		return RemoveDream(st, id)
	}))
	return st
}

func (s *Store) PinDream(id string) (State, error) {
	return s.apply("dream_pinned", id, func(st State) (State, []Slice, error) {
		return PinDream(st, id)
	})
}

func (s *Store) UnpinDream(id string) State {
	st, _ := s.apply("dream_unpinned", id, noErr(func(st State) (State, []Slice) {
		return UnpinDream(st, id)
	}))
	return st
}

func (s *Store) ArchiveDream(id string) State {
	st, _ := s.apply("dream_archived", id, noErr(func(st State) (State, []Slice) {
		return ArchiveDream(st, id, s.now())
	}))
	return st
}

func (s *Store) RestoreDream(id string) State {
	st, _ := s.apply("dream_restored", id, noErr(func(st State) (State, []Slice) {
		return RestoreDream(st, id)
	}))
	return st
}

func (s *Store) SetDreamQuestType(id string, qt dream.QuestType) (State, error) {
	return s.apply("dream_quest_type_set", id, func(st State) (State, []Slice, error) {
		return SetDreamQuestType(st, id, qt)
	})
}

func (s *Store) LogVisit(code string) State {
	st, _ := s.apply("country_visited", code, noErr(func(st State) (State, []Slice) {
		return LogVisit(st, code)
	}))
	return st
}

func (s *Store) AddTravelDream(destination string, estimatedCost float64, priority travel.Priority) (State, travel.Target, error) {
	t, err := travel.NewTarget(destination, estimatedCost, priority, s.now())
	if err != nil {
		return s.Snapshot(), travel.Target{}, err
	}
	st, err := s.apply("travel_dream_added", t.ID, noErr(func(st State) (State, []Slice) {
		return AddTravelDream(st, t)
	}))
	return st, t, err
}

func (s *Store) FundTravelDream(id string, amount float64) (State, error) {
	return s.apply("travel_dream_funded", id, func(st State) (State, []Slice, error) {
		return FundTravelDream(st, id, amount)
	})
}

func (s *Store) SetSurgeryComplete(done bool) State {
	st, _ := s.apply("surgery_set", "", noErr(func(st State) (State, []Slice) {
		return SetSurgeryComplete(st, done)
	}))
	return st
}

func (s *Store) AddBaseItem(item string) State {
	st, _ := s.apply("base_item_added", item, noErr(func(st State) (State, []Slice) {
		return AddBaseItem(st, item)
	}))
	return st
}

func (s *Store) SetBase(typ avatar.BaseType, description string) State {
	st, _ := s.apply("base_set", string(typ), noErr(func(st State) (State, []Slice) {
		return SetBase(st, typ, description)
	}))
	return st
}

func (s *Store) SetFreedomDate(t time.Time) State {
	st, _ := s.apply("freedom_date_set", "", noErr(func(st State) (State, []Slice) {
		return SetFreedomDate(st, t)
	}))
	return st
}

func (s *Store) ApplyNavigator(resp navigator.Response) State {
	st, _ := s.apply("navigator_applied", "", noErr(func(st State) (State, []Slice) {
		return ApplyNavigator(st, resp, s.now())
	}))
	return st
}

// Hydrate merges r into the store once and flips the hydrated flag. Later
// calls are no-ops. Hydration dirties nothing, so it is never written back.
func (s *Store) Hydrate(r Remote) State {
	st, _ := s.apply("hydrated", "", noErr(func(st State) (State, []Slice) {
		return Hydrate(st, r)
	}))
	return st
}

func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Hydrated
}

func (s *Store) Reset() State {
	st, _ := s.apply("reset", "", noErr(func(st State) (State, []Slice) {
		next, d := Reset(st, s.now())
		if !s.freedomDate.IsZero() {
			next.FreedomDate = s.freedomDate.UTC()
		}
		return next, d
	}))
	return st
}
