package game

import (
	"encoding/json"
	"fmt"
	"time"

	"terranova/internal/avatar"
	"terranova/internal/dream"
	"terranova/internal/quest"
	"terranova/internal/relic"
	"terranova/internal/stat"
	"terranova/internal/task"
	"terranova/internal/travel"
)

// GameStateDoc is the stored form of the gameState slice. Stat fields are
// pointers so a missing field can fall back to its initial value.
type GameStateDoc struct {
	Capital          *int             `json:"capital,omitempty"`
	Sovereignty      *int             `json:"sovereignty,omitempty"`
	Aesthetics       *int             `json:"aesthetics,omitempty"`
	Intellect        *int             `json:"intellect,omitempty"`
	Kindred          *int             `json:"kindred,omitempty"`
	Vitality         *int             `json:"vitality,omitempty"`
	FreedomDate      *time.Time       `json:"freedomDate,omitempty"`
	Avatar           *avatar.Avatar   `json:"avatar,omitempty"`
	Base             *avatar.Base     `json:"base,omitempty"`
	Milestones       relic.Milestones `json:"milestones,omitempty"`
	VisitedCountries []string         `json:"visitedCountries,omitempty"`
	TravelDreams     []travel.Target  `json:"travelDreams,omitempty"`
}

// Remote is whatever hydration managed to read. Nil or empty fields mean the
// document was absent and local defaults stay in place.
type Remote struct {
	GameState *GameStateDoc
	Tasks     []task.Task
	Quests    []quest.Quest
	Relics    []relic.Relic
	Dreams    []dream.Dream
}

func intp(v int) *int { return &v }

func gameStateDoc(s State) GameStateDoc {
	fd := s.FreedomDate
	av := s.Avatar
	base := avatar.CloneBase(s.Base)
	return GameStateDoc{
		Capital:          intp(s.Stats.Capital),
		Sovereignty:      intp(s.Stats.Sovereignty),
		Aesthetics:       intp(s.Stats.Aesthetics),
		Intellect:        intp(s.Stats.Intellect),
		Kindred:          intp(s.Stats.Kindred),
		Vitality:         intp(s.Stats.Vitality),
		FreedomDate:      &fd,
		Avatar:           &av,
		Base:             &base,
		Milestones:       relic.CloneMilestones(s.Milestones),
		VisitedCountries: travel.CloneVisited(s.Visited),
		TravelDreams:     travel.CloneTargets(s.TravelDreams),
	}
}

// EncodeSlice renders one document of s.
func EncodeSlice(s State, sl Slice) ([]byte, error) {
	switch sl {
	case SliceGameState:
		return json.Marshal(gameStateDoc(s))
	case SliceTasks:
		return json.Marshal(s.Tasks)
	case SliceQuests:
		return json.Marshal(s.Quests)
	case SliceRelics:
		return json.Marshal(s.Relics)
	case SliceDreams:
		return json.Marshal(s.Dreams)
	default:
		return nil, fmt.Errorf("unknown slice %q", sl)
	}
}

// DecodeSlice parses one stored document into r. r is left untouched when the
// document does not decode.
func DecodeSlice(sl Slice, b []byte, r *Remote) error {
	var err error
	switch sl {
	case SliceGameState:
		var doc GameStateDoc
		if err = json.Unmarshal(b, &doc); err == nil {
			r.GameState = &doc
		}
	case SliceTasks:
		var tasks []task.Task
		if err = json.Unmarshal(b, &tasks); err == nil {
			r.Tasks = tasks
		}
	case SliceQuests:
		var quests []quest.Quest
		if err = json.Unmarshal(b, &quests); err == nil {
			r.Quests = quests
		}
	case SliceRelics:
		var relics []relic.Relic
		if err = json.Unmarshal(b, &relics); err == nil {
			r.Relics = relics
		}
	case SliceDreams:
		var dreams []dream.Dream
		if err = json.Unmarshal(b, &dreams); err == nil {
			r.Dreams = dreams
		}
	default:
		return fmt.Errorf("unknown slice %q", sl)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", sl, err)
	}
	return nil
}

func statOr(v *int, n stat.Name) int {
	if v != nil {
		return *v
	}
	p, _ := stat.PolicyFor(n)
	return p.Initial
}

// Hydrate merges a remote snapshot into local state once. Present documents
// overwrite their slice; absent or empty ones leave defaults and seed data.
func Hydrate(s State, r Remote) (State, []Slice) {
	if s.Hydrated {
		return s, nil
	}
	s.Hydrated = true

	if g := r.GameState; g != nil {
		s.Stats = stat.Ledger{
			Capital:     statOr(g.Capital, stat.Capital),
			Sovereignty: statOr(g.Sovereignty, stat.Sovereignty),
			Aesthetics:  statOr(g.Aesthetics, stat.Aesthetics),
			Intellect:   statOr(g.Intellect, stat.Intellect),
			Kindred:     statOr(g.Kindred, stat.Kindred),
			Vitality:    statOr(g.Vitality, stat.Vitality),
		}
		if g.FreedomDate != nil && !g.FreedomDate.IsZero() {
			s.FreedomDate = g.FreedomDate.UTC()
		}
		if g.Avatar != nil {
			s.Avatar = avatar.Normalize(*g.Avatar)
		}
		if g.Base != nil {
			s.Base = avatar.NormalizeBase(*g.Base)
		}
		ms := relic.Milestones{}
		for k, v := range g.Milestones {
			if n, ok := stat.Parse(string(k)); ok {
				ms[n] = v
			}
		}
		s.Milestones = ms
		if g.VisitedCountries != nil {
			visited := []string{}
			for _, code := range g.VisitedCountries {
				visited, _ = travel.Visit(visited, code)
			}
			s.Visited = visited
		}
		if g.TravelDreams != nil {
			s.TravelDreams = travel.CloneTargets(g.TravelDreams)
		}
	}

	if len(r.Tasks) > 0 {
		tasks := make([]task.Task, 0, len(r.Tasks))
		for _, t := range r.Tasks {
			tasks = append(tasks, task.Normalize(t))
		}
		s.Tasks = tasks
	}
	if len(r.Quests) > 0 {
		s.Quests = quest.Clone(r.Quests)
	}
	if len(r.Relics) > 0 {
		relics := make([]relic.Relic, 0, len(r.Relics))
		for _, rl := range r.Relics {
			relics = append(relics, relic.Normalize(rl))
		}
		s.Relics = relics
	}
	if len(r.Dreams) > 0 {
		s.Dreams = dream.Settle(r.Dreams)
	}
	return s, nil
}
