package game

import (
	"slices"
	"time"

	"terranova/internal/avatar"
	"terranova/internal/dream"
	"terranova/internal/quest"
	"terranova/internal/relic"
	"terranova/internal/stat"
	"terranova/internal/task"
	"terranova/internal/travel"
)

// Slice names one independently persisted document.
type Slice string

const (
	SliceGameState Slice = "gameState"
	SliceTasks     Slice = "tasks"
	SliceQuests    Slice = "quests"
	SliceRelics    Slice = "relics"
	SliceDreams    Slice = "dreams"
)

var AllSlices = []Slice{SliceGameState, SliceTasks, SliceQuests, SliceRelics, SliceDreams}

// DefaultFreedomDate is the target date a fresh profile counts down to.
var DefaultFreedomDate = time.Date(2028, time.June, 1, 0, 0, 0, 0, time.UTC)

// State is an immutable snapshot of the whole aggregate. Actions never modify
// the slices of a State they receive; they build new ones.
type State struct {
	Stats          stat.Ledger      `json:"stats"`
	Milestones     relic.Milestones `json:"milestones"`
	Tasks          []task.Task      `json:"tasks"`
	Quests         []quest.Quest    `json:"quests"`
	Relics         []relic.Relic    `json:"relics"`
	Dreams         []dream.Dream    `json:"dreams"`
	Visited        []string         `json:"visitedCountries"`
	TravelDreams   []travel.Target  `json:"travelDreams"`
	Avatar         avatar.Avatar    `json:"avatar"`
	Base           avatar.Base      `json:"base"`
	FreedomDate    time.Time        `json:"freedomDate"`
	PendingLevelUp *relic.LevelUp   `json:"pendingLevelUp,omitempty"`
	Hydrated       bool             `json:"isHydrated"`
}

// Initial is the state of a profile that has never synced.
func Initial(now time.Time) State {
	return State{
		Stats:        stat.Defaults(),
		Milestones:   relic.Milestones{},
		Tasks:        task.Samples(now),
		Quests:       quest.Seeds(now),
		Relics:       relic.Catalog(),
		Dreams:       []dream.Dream{},
		Visited:      []string{},
		TravelDreams: []travel.Target{},
		Avatar:       avatar.Default(),
		Base:         avatar.DefaultBase(),
		FreedomDate:  DefaultFreedomDate,
	}
}

// Clone deep-copies everything a caller could mutate.
func (s State) Clone() State {
	s.Milestones = relic.CloneMilestones(s.Milestones)
	s.Tasks = task.Clone(s.Tasks)
	s.Quests = quest.Clone(s.Quests)
	s.Relics = relic.Clone(s.Relics)
	s.Dreams = dream.Clone(s.Dreams)
	s.Visited = travel.CloneVisited(s.Visited)
	s.TravelDreams = travel.CloneTargets(s.TravelDreams)
	s.Base = avatar.CloneBase(s.Base)
	if s.PendingLevelUp != nil {
		lu := *s.PendingLevelUp
		s.PendingLevelUp = &lu
	}
	return s
}

// Change describes one committed action.
type Change struct {
	Seq     uint64         `json:"seq"`
	Action  string         `json:"action"`
	Dirty   []Slice        `json:"dirty"`
	LevelUp *relic.LevelUp `json:"levelUp,omitempty"`
	Subject string         `json:"subject,omitempty"`
}

func (c Change) Touches(s Slice) bool {
	return slices.Contains(c.Dirty, s)
}

func dirty(s ...Slice) []Slice { return s }
