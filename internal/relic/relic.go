package relic

import (
	"strings"
	"time"

	"terranova/internal/stat"
)

type Relic struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Unlocked       bool       `json:"unlocked"`
	UnlockedAt     *time.Time `json:"unlockedAt,omitempty"`
	UnlockedByStat stat.Name  `json:"unlockedByStat,omitempty"`
	RequiredValue  *int       `json:"requiredValue,omitempty"`
}

// Milestones holds the optional user target per stat.
type Milestones map[stat.Name]int

// LevelUp is a relic that qualified for unlock together with the stat that earned it.
type LevelUp struct {
	Stat  stat.Name `json:"stat"`
	Relic Relic     `json:"relic"`
}

func milestone(id, name, desc string, s stat.Name, required int) Relic {
	return Relic{
		ID:             id,
		Name:           name,
		Description:    desc,
		UnlockedByStat: s,
		RequiredValue:  &required,
	}
}

// Catalog returns a fresh copy of the milestone relics in tie-break order.
func Catalog() []Relic {
	return []Relic{
		milestone("relic-capital-1000", "Golden Coffer", "A chest overflowing with gold coins.", stat.Capital, 1000),
		milestone("relic-capital-5000", "Merchant's Signet", "A ring worn by the wealthiest merchants.", stat.Capital, 5000),
		milestone("relic-sovereignty-25", "Blue Seal of Authority", "An official seal from the bureaucracy.", stat.Sovereignty, 25),
		milestone("relic-sovereignty-50", "German Eagle Crest", "The mark of true sovereignty.", stat.Sovereignty, 50),
		milestone("relic-aesthetics-75", "Magic Mirror", "Shows only the most refined reflection.", stat.Aesthetics, 75),
		milestone("relic-intellect-60", "Scholar's Quill", "A quill that writes with wisdom.", stat.Intellect, 60),
		milestone("relic-intellect-90", "Tome of Knowledge", "Contains the secrets of the ancients.", stat.Intellect, 90),
		milestone("relic-kindred-50", "Heart Locket", "Holds the bonds of true friendship.", stat.Kindred, 50),
		milestone("relic-vitality-80", "Elixir of Life", "Bubbling with pure vitality.", stat.Vitality, 80),
	}
}

// Check returns the first locked relic, in list order, whose stat has reached
// both its required value and the user's milestone for that stat (when one is set).
func Check(relics []Relic, l stat.Ledger, ms Milestones) (LevelUp, bool) {
	for _, r := range relics {
		if r.Unlocked || r.RequiredValue == nil || r.UnlockedByStat == "" {
			continue
		}
		v := l.Get(r.UnlockedByStat)
		if v < *r.RequiredValue {
			continue
		}
		if target, ok := ms[r.UnlockedByStat]; ok && v < target {
			continue
		}
		return LevelUp{Stat: r.UnlockedByStat, Relic: r}, true
	}
	return LevelUp{}, false
}

// Unlock marks id unlocked and returns a new slice. Unlocking an already
// unlocked or unknown relic reports false and returns the input unchanged.
func Unlock(relics []Relic, id string, now time.Time) ([]Relic, bool) {
	for i, r := range relics {
		if r.ID != id {
			continue
		}
		if r.Unlocked {
			return relics, false
		}
		out := make([]Relic, len(relics))
		copy(out, relics)
		at := now.UTC()
		out[i].Unlocked = true
		out[i].UnlockedAt = &at
		return out, true
	}
	return relics, false
}

// Normalize fills defaults on a relic loaded from storage.
func Normalize(r Relic) Relic {
	if strings.TrimSpace(r.Name) == "" {
		r.Name = "Unknown Relic"
	}
	if strings.TrimSpace(r.Description) == "" {
		r.Description = "A mysterious artifact."
	}
	if r.UnlockedByStat != "" {
		if n, ok := stat.Parse(string(r.UnlockedByStat)); ok {
			r.UnlockedByStat = n
		}
	}
	if !r.Unlocked {
		r.UnlockedAt = nil
	}
	return r
}

func Clone(src []Relic) []Relic {
	out := make([]Relic, len(src))
	copy(out, src)
	return out
}

func CloneMilestones(src Milestones) Milestones {
	out := make(Milestones, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
