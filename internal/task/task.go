package task

import (
	"strings"
	"time"

	"terranova/internal/stat"
)

type Category string

const (
	CategoryWork     Category = "work"
	CategoryAdmin    Category = "admin"
	CategoryStudy    Category = "study"
	CategoryHealth   Category = "health"
	CategoryPersonal Category = "personal"
	CategoryOther    Category = "other"
)

var Categories = []Category{CategoryWork, CategoryAdmin, CategoryStudy, CategoryHealth, CategoryPersonal, CategoryOther}

const DefaultDuration = 30

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    Category   `json:"category"`
	IsCompleted bool       `json:"isCompleted"`
	IsAllDay    bool       `json:"isAllDay"`
	Duration    int        `json:"duration"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// Reward is the stat delta credited when a task of a category completes.
type Reward map[stat.Name]int

var rewards = map[Category]Reward{
	CategoryWork:     {stat.Capital: 50, stat.Intellect: 5},
	CategoryAdmin:    {stat.Capital: 10, stat.Sovereignty: 5},
	CategoryStudy:    {stat.Intellect: 20, stat.Capital: 5},
	CategoryHealth:   {stat.Vitality: 15, stat.Sovereignty: 5},
	CategoryPersonal: {stat.Kindred: 10, stat.Aesthetics: 5},
	CategoryOther:    {stat.Capital: 5, stat.Intellect: 5},
}

func RewardFor(c Category) Reward {
	r, ok := rewards[c]
	if !ok {
		r = rewards[CategoryOther]
	}
	out := make(Reward, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Apply credits the reward scaled by multiplier (+1 on completion, -1 on reversal).
func (r Reward) Apply(l stat.Ledger, multiplier int) stat.Ledger {
	for _, n := range stat.All {
		if v, ok := r[n]; ok {
			l = l.Add(n, v*multiplier)
		}
	}
	return l
}

func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// Normalize fills defaults on a task loaded from storage.
func Normalize(t Task) Task {
	if strings.TrimSpace(t.Title) == "" {
		t.Title = "Untitled Task"
	}
	t.Category = ParseCategory(string(t.Category))
	if t.Duration <= 0 {
		t.Duration = DefaultDuration
	}
	return t
}

func Clone(src []Task) []Task {
	out := make([]Task, len(src))
	copy(out, src)
	return out
}
