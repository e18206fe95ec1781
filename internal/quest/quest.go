package quest

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

const (
	DefaultXP   = 25
	DefaultGold = 50
	DefaultType = "normal"
)

type Quest struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	XP          int        `json:"xp"`
	Gold        int        `json:"gold"`
	Type        string     `json:"type"`
	Status      Status     `json:"status"`
	SpecialType string     `json:"specialType,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// UnmarshalJSON applies the stored-document defaults for fields that are absent.
func (q *Quest) UnmarshalJSON(b []byte) error {
	type plain Quest
	var aux struct {
		plain
		XP   *int    `json:"xp"`
		Gold *int    `json:"gold"`
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*q = Quest(aux.plain)
	q.XP = DefaultXP
	if aux.XP != nil {
		q.XP = *aux.XP
	}
	q.Gold = DefaultGold
	if aux.Gold != nil {
		q.Gold = *aux.Gold
	}
	q.Type = DefaultType
	if aux.Type != nil && strings.TrimSpace(*aux.Type) != "" {
		q.Type = *aux.Type
	}
	if q.Status != StatusCompleted {
		q.Status = StatusActive
	}
	return nil
}

// Descriptor is the caller-supplied part of a new quest.
type Descriptor struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	XP          int    `json:"xp"`
	Gold        int    `json:"gold"`
	Type        string `json:"type"`
	SpecialType string `json:"specialType,omitempty"`
}

func New(d Descriptor, now time.Time) Quest {
	id := strings.TrimSpace(d.ID)
	if id == "" {
		id = "quest-" + uuid.NewString()
	}
	typ := strings.TrimSpace(d.Type)
	if typ == "" {
		typ = DefaultType
	}
	return Quest{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		XP:          d.XP,
		Gold:        d.Gold,
		Type:        typ,
		Status:      StatusActive,
		SpecialType: d.SpecialType,
		CreatedAt:   now.UTC(),
	}
}

// Complete transitions id to completed. It reports the completed quest and
// false when the quest is missing or was already completed.
func Complete(quests []Quest, id string, now time.Time) ([]Quest, Quest, bool) {
	for i, q := range quests {
		if q.ID != id {
			continue
		}
		if q.Status == StatusCompleted {
			return quests, q, false
		}
		out := Clone(quests)
		at := now.UTC()
		out[i].Status = StatusCompleted
		out[i].CompletedAt = &at
		return out, out[i], true
	}
	return quests, Quest{}, false
}

func Active(quests []Quest) []Quest {
	out := make([]Quest, 0, len(quests))
	for _, q := range quests {
		if q.Status == StatusActive {
			out = append(out, q)
		}
	}
	return out
}

func Clone(src []Quest) []Quest {
	out := make([]Quest, len(src))
	copy(out, src)
	return out
}
