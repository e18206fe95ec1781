package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"terranova/internal/avatar"
	"terranova/internal/dream"
	"terranova/internal/navigator"
	"terranova/internal/quest"
	"terranova/internal/relic"
	"terranova/internal/stat"
	"terranova/internal/task"
	"terranova/internal/travel"
)

// The functions in this file are the pure transitions behind Store. Each takes
// a snapshot and returns the next one together with the documents it dirtied.
// An empty dirty list means nothing changed.

var (
	ErrUnknownStat      = errors.New("unknown stat")
	ErrInvalidMilestone = errors.New("milestone must not be negative")
)

// NavigatorQuestXP and NavigatorQuestGold are the rewards of a quest suggested by the navigator.
const (
	NavigatorQuestXP   = 25
	NavigatorQuestGold = 50
	NavigatorQuestType = "navigator"
)

func UpdateStat(s State, name string, delta int) (State, []Slice) {
	n, ok := stat.Parse(name)
	if !ok || delta == 0 {
		return s, nil
	}
	s.Stats = s.Stats.Add(n, delta)
	return s, dirty(SliceGameState)
}

func SetMilestone(s State, name string, target int) (State, []Slice, error) {
	n, ok := stat.Parse(name)
	if !ok {
		return s, nil, fmt.Errorf("%w: %q", ErrUnknownStat, name)
	}
	if target < 0 {
		return s, nil, ErrInvalidMilestone
	}
	ms := relic.CloneMilestones(s.Milestones)
	ms[n] = target
	s.Milestones = ms
	return s, dirty(SliceGameState), nil
}

func UnlockRelic(s State, id string, now time.Time) (State, []Slice) {
	relics, ok := relic.Unlock(s.Relics, id, now)
	if !ok {
		return s, nil
	}
	s.Relics = relics
	return s, dirty(SliceRelics)
}

// ClaimLevelUp unlocks the staged relic and empties the slot so the next
// qualifying relic can be staged.
func ClaimLevelUp(s State, now time.Time) (State, []Slice, *relic.LevelUp) {
	if s.PendingLevelUp == nil {
		return s, nil, nil
	}
	claimed := *s.PendingLevelUp
	s, d := UnlockRelic(s, claimed.Relic.ID, now)
	s.PendingLevelUp = nil
	s, _ = stage(s)
	claimed.Relic.Unlocked = true
	return s, d, &claimed
}

// ClearPendingLevelUp empties the slot without unlocking anything. The slot is
// refilled on the next stat change.
func ClearPendingLevelUp(s State) (State, []Slice) {
	s.PendingLevelUp = nil
	return s, nil
}

// stage fills the pending level-up slot when it is empty. The slot holds at
// most one relic; a second qualifying relic waits until the slot is cleared.
func stage(s State) (State, *relic.LevelUp) {
	if s.PendingLevelUp != nil {
		return s, nil
	}
	lu, ok := relic.Check(s.Relics, s.Stats, s.Milestones)
	if !ok {
		return s, nil
	}
	s.PendingLevelUp = &lu
	return s, &lu
}

func ImportTasks(s State, tasks []task.Task) (State, []Slice) {
	if len(tasks) == 0 {
		return s, nil
	}
	out := make([]task.Task, 0, len(s.Tasks)+len(tasks))
	out = append(out, s.Tasks...)
	for _, t := range tasks {
		out = append(out, task.Normalize(t))
	}
	s.Tasks = out
	return s, dirty(SliceTasks)
}

// ToggleTask flips completion and credits (or takes back) the category reward.
func ToggleTask(s State, id string) (State, []Slice) {
	for i, t := range s.Tasks {
		if t.ID != id {
			continue
		}
		multiplier := 1
		if t.IsCompleted {
			multiplier = -1
		}
		tasks := task.Clone(s.Tasks)
		tasks[i].IsCompleted = !t.IsCompleted
		s.Tasks = tasks
		s.Stats = task.RewardFor(t.Category).Apply(s.Stats, multiplier)
		return s, dirty(SliceTasks, SliceGameState)
	}
	return s, nil
}

// ClearCompletedTasks drops completed tasks. Rewards already credited stay.
func ClearCompletedTasks(s State) (State, []Slice) {
	out := make([]task.Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		if !t.IsCompleted {
			out = append(out, t)
		}
	}
	if len(out) == len(s.Tasks) {
		return s, nil
	}
	s.Tasks = out
	return s, dirty(SliceTasks)
}

func AddQuest(s State, d quest.Descriptor, now time.Time) (State, []Slice, quest.Quest) {
	q := quest.New(d, now)
	out := make([]quest.Quest, 0, len(s.Quests)+1)
	out = append(out, s.Quests...)
	s.Quests = append(out, q)
	return s, dirty(SliceQuests), q
}

// CompleteQuest pays the quest's gold into capital exactly once.
func CompleteQuest(s State, id string, now time.Time) (State, []Slice) {
	quests, q, ok := quest.Complete(s.Quests, id, now)
	if !ok {
		return s, nil
	}
	s.Quests = quests
	s.Stats = s.Stats.Add(stat.Capital, q.Gold)
	return s, dirty(SliceQuests, SliceGameState)
}

func AddDream(s State, d dream.Dream) (State, []Slice) {
	out := make([]dream.Dream, 0, len(s.Dreams)+1)
	out = append(out, s.Dreams...)
	s.Dreams = append(out, d)
	return s, dirty(SliceDreams)
}

func ToggleDream(s State, id string, now time.Time) (State, []Slice) {
	return dreamsChanged(s, func(ds []dream.Dream) ([]dream.Dream, bool) { return dream.Toggle(ds, id, now) })
}

func RemoveDream(s State, id string) (State, []Slice) {
	return dreamsChanged(s, func(ds []dream.Dream) ([]dream.Dream, bool) { return dream.Remove(ds, id) })
}

func UnpinDream(s State, id string) (State, []Slice) {
	return dreamsChanged(s, func(ds []dream.Dream) ([]dream.Dream, bool) { return dream.Unpin(ds, id) })
}

func ArchiveDream(s State, id string, now time.Time) (State, []Slice) {
	return dreamsChanged(s, func(ds []dream.Dream) ([]dream.Dream, bool) { return dream.Archive(ds, id, now) })
}

func RestoreDream(s State, id string) (State, []Slice) {
	return dreamsChanged(s, func(ds []dream.Dream) ([]dream.Dream, bool) { return dream.Restore(ds, id) })
}

func SetDreamIcon(s State, id string, icon dream.Icon) (State, []Slice) {
	return dreamsChanged(s, func(ds []dream.Dream) ([]dream.Dream, bool) { return dream.SetIcon(ds, id, icon) })
}

func PinDream(s State, id string) (State, []Slice, error) {
	already := false
	for _, d := range s.Dreams {
		if d.ID == id && d.IsPinned {
			already = true
		}
	}
	ds, err := dream.Pin(s.Dreams, id)
	if err != nil || already {
		return s, nil, err
	}
	s.Dreams = ds
	return s, dirty(SliceDreams), nil
}

func SetDreamQuestType(s State, id string, qt dream.QuestType) (State, []Slice, error) {
	ds, err := dream.SetQuestType(s.Dreams, id, qt)
	if err != nil {
		return s, nil, err
	}
	s.Dreams = ds
	return s, dirty(SliceDreams), nil
}

func dreamsChanged(s State, fn func([]dream.Dream) ([]dream.Dream, bool)) (State, []Slice) {
	ds, ok := fn(s.Dreams)
	if !ok {
		return s, nil
	}
	s.Dreams = ds
	return s, dirty(SliceDreams)
}

// LogVisit records a country once and awards the visit bonus to sovereignty.
func LogVisit(s State, code string) (State, []Slice) {
	visited, added := travel.Visit(s.Visited, code)
	if !added {
		return s, nil
	}
	s.Visited = visited
	s.Stats = s.Stats.Add(stat.Sovereignty, travel.VisitBonus)
	return s, dirty(SliceGameState)
}

func AddTravelDream(s State, t travel.Target) (State, []Slice) {
	out := make([]travel.Target, 0, len(s.TravelDreams)+1)
	out = append(out, s.TravelDreams...)
	s.TravelDreams = append(out, t)
	return s, dirty(SliceGameState)
}

func FundTravelDream(s State, id string, amount float64) (State, []Slice, error) {
	targets, err := travel.Fund(s.TravelDreams, id, amount)
	if err != nil {
		return s, nil, err
	}
	s.TravelDreams = targets
	return s, dirty(SliceGameState), nil
}

func SetSurgeryComplete(s State, done bool) (State, []Slice) {
	if s.Avatar.Appearance.SurgeryComplete == done {
		return s, nil
	}
	a := s.Avatar
	a.Appearance.SurgeryComplete = done
	s.Avatar = avatar.Derive(s.Stats, a)
	return s, dirty(SliceGameState)
}

func AddBaseItem(s State, item string) (State, []Slice) {
	b, ok := avatar.AddItem(s.Base, item)
	if !ok {
		return s, nil
	}
	s.Base = b
	return s, dirty(SliceGameState)
}

func SetBase(s State, typ avatar.BaseType, description string) (State, []Slice) {
	b := avatar.CloneBase(s.Base)
	b.Type = typ
	if d := strings.TrimSpace(description); d != "" {
		b.Description = d
	}
	s.Base = b
	return s, dirty(SliceGameState)
}

func SetFreedomDate(s State, t time.Time) (State, []Slice) {
	if t.IsZero() || t.Equal(s.FreedomDate) {
		return s, nil
	}
	s.FreedomDate = t.UTC()
	return s, dirty(SliceGameState)
}

// ApplyNavigator credits every nonzero stat change from a navigator reply and
// files its suggested quest, if any.
func ApplyNavigator(s State, resp navigator.Response, now time.Time) (State, []Slice) {
	var d []Slice
	for _, n := range stat.All {
		delta := resp.StatChanges[n]
		if delta == 0 {
			continue
		}
		s.Stats = s.Stats.Add(n, delta)
		d = dirty(SliceGameState)
	}
	if q := resp.Quest; q != nil && strings.TrimSpace(q.Title) != "" {
		typ := q.SpecialType
		if strings.TrimSpace(typ) == "" {
			typ = NavigatorQuestType
		}
		s, _, _ = AddQuest(s, quest.Descriptor{
			Title:       q.Title,
			Description: q.Description,
			XP:          NavigatorQuestXP,
			Gold:        NavigatorQuestGold,
			Type:        typ,
			SpecialType: q.SpecialType,
		}, now)
		d = append(d, SliceQuests)
	}
	return s, d
}

// Reset returns to a fresh profile while keeping the hydration flag, so the
// reset itself is mirrored.
func Reset(s State, now time.Time) (State, []Slice) {
	next := Initial(now)
	next.Hydrated = s.Hydrated
	return next, AllSlices
}
