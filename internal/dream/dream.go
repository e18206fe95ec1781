package dream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxPinned is the number of dreams that can be pinned as active quests at once.
const MaxPinned = 3

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrNotFound            = errors.New("dream not found")
	ErrNotPinnable         = errors.New("completed or archived dreams cannot be pinned")
	ErrPinLimit            = fmt.Errorf("at most %d dreams can be pinned", MaxPinned)
	ErrInvalidQuestType    = errors.New("quest type must be main or side")
)

type IconState string

const (
	IconPending IconState = "pending"
	IconReady   IconState = "ready"
	IconFailed  IconState = "failed"
)

type Icon struct {
	State IconState `json:"state"`
	URL   string    `json:"url,omitempty"`
}

type QuestType string

const (
	QuestMain QuestType = "main"
	QuestSide QuestType = "side"
)

type Dream struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        Icon       `json:"icon"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	QuestType   QuestType  `json:"questType,omitempty"`
	IsPinned    bool       `json:"isPinned,omitempty"`
	ArchivedAt  *time.Time `json:"archivedAt,omitempty"`
	Category    string     `json:"category,omitempty"`
}

// UnmarshalJSON also accepts the older flat "iconUrl" field.
func (d *Dream) UnmarshalJSON(b []byte) error {
	type plain Dream
	var aux struct {
		plain
		Icon    *Icon  `json:"icon"`
		IconURL string `json:"iconUrl"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*d = Dream(aux.plain)
	switch {
	case aux.Icon != nil:
		d.Icon = *aux.Icon
	case aux.IconURL != "":
		d.Icon = Icon{State: IconReady, URL: aux.IconURL}
	default:
		d.Icon = Icon{State: IconFailed}
	}
	return nil
}

// New validates input and returns a dream whose icon is still pending.
func New(title, description string, now time.Time) (Dream, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return Dream{}, ErrTitleRequired
	}
	if description == "" {
		return Dream{}, ErrDescriptionRequired
	}
	return Dream{
		ID:          NewID(now),
		Title:       title,
		Description: description,
		Icon:        Icon{State: IconPending},
		CreatedAt:   now.UTC(),
		QuestType:   QuestSide,
	}, nil
}

// NewID keeps the millisecond prefix for ordering and adds a random suffix so
// dreams added within the same millisecond stay distinct.
func NewID(now time.Time) string {
	return fmt.Sprintf("dream-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

// IconPrompt is the text sent to the icon generator.
func IconPrompt(d Dream) string {
	return d.Title + " " + d.Description
}

func indexOf(dreams []Dream, id string) int {
	for i, d := range dreams {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func Clone(src []Dream) []Dream {
	out := make([]Dream, len(src))
	copy(out, src)
	return out
}

func update(dreams []Dream, id string, fn func(*Dream)) ([]Dream, bool) {
	i := indexOf(dreams, id)
	if i < 0 {
		return dreams, false
	}
	out := Clone(dreams)
	fn(&out[i])
	return out, true
}

// Toggle flips completion. Completing a dream releases its pin; reopening it
// does not pin it again.
func Toggle(dreams []Dream, id string, now time.Time) ([]Dream, bool) {
	return update(dreams, id, func(d *Dream) {
		d.Completed = !d.Completed
		if d.Completed {
			at := now.UTC()
			d.CompletedAt = &at
			d.IsPinned = false
		} else {
			d.CompletedAt = nil
		}
	})
}

func Remove(dreams []Dream, id string) ([]Dream, bool) {
	i := indexOf(dreams, id)
	if i < 0 {
		return dreams, false
	}
	out := make([]Dream, 0, len(dreams)-1)
	out = append(out, dreams[:i]...)
	out = append(out, dreams[i+1:]...)
	return out, true
}

// SetIcon patches the icon of id. A dream removed while its icon was being
// generated is reported as not found.
func SetIcon(dreams []Dream, id string, icon Icon) ([]Dream, bool) {
	return update(dreams, id, func(d *Dream) { d.Icon = icon })
}

func eligible(d Dream) bool {
	return !d.Completed && d.ArchivedAt == nil
}

// PinnedCount counts pinned dreams that still hold an active quest slot.
func PinnedCount(dreams []Dream) int {
	n := 0
	for _, d := range dreams {
		if d.IsPinned && eligible(d) {
			n++
		}
	}
	return n
}

func Pin(dreams []Dream, id string) ([]Dream, error) {
	i := indexOf(dreams, id)
	if i < 0 {
		return dreams, ErrNotFound
	}
	d := dreams[i]
	if !eligible(d) {
		return dreams, ErrNotPinnable
	}
	if d.IsPinned {
		return dreams, nil
	}
	if PinnedCount(dreams) >= MaxPinned {
		return dreams, ErrPinLimit
	}
	out, _ := update(dreams, id, func(d *Dream) { d.IsPinned = true })
	return out, nil
}

func Unpin(dreams []Dream, id string) ([]Dream, bool) {
	i := indexOf(dreams, id)
	if i < 0 || !dreams[i].IsPinned {
		return dreams, false
	}
	return update(dreams, id, func(d *Dream) { d.IsPinned = false })
}

// Archive moves a dream to history and releases its pin.
func Archive(dreams []Dream, id string, now time.Time) ([]Dream, bool) {
	i := indexOf(dreams, id)
	if i < 0 || dreams[i].ArchivedAt != nil {
		return dreams, false
	}
	return update(dreams, id, func(d *Dream) {
		at := now.UTC()
		d.ArchivedAt = &at
		d.IsPinned = false
	})
}

func Restore(dreams []Dream, id string) ([]Dream, bool) {
	i := indexOf(dreams, id)
	if i < 0 || dreams[i].ArchivedAt == nil {
		return dreams, false
	}
	return update(dreams, id, func(d *Dream) { d.ArchivedAt = nil })
}

func ParseQuestType(s string) (QuestType, error) {
	switch QuestType(strings.ToLower(strings.TrimSpace(s))) {
	case QuestMain:
		return QuestMain, nil
	case QuestSide:
		return QuestSide, nil
	default:
		return "", ErrInvalidQuestType
	}
}

func SetQuestType(dreams []Dream, id string, qt QuestType) ([]Dream, error) {
	if qt != QuestMain && qt != QuestSide {
		return dreams, ErrInvalidQuestType
	}
	out, ok := update(dreams, id, func(d *Dream) { d.QuestType = qt })
	if !ok {
		return dreams, ErrNotFound
	}
	return out, nil
}

// Visible is the default list view: everything not archived.
func Visible(dreams []Dream) []Dream {
	out := make([]Dream, 0, len(dreams))
	for _, d := range dreams {
		if d.ArchivedAt == nil {
			out = append(out, d)
		}
	}
	return out
}

func Archived(dreams []Dream) []Dream {
	out := make([]Dream, 0)
	for _, d := range dreams {
		if d.ArchivedAt != nil {
			out = append(out, d)
		}
	}
	return out
}

// Settle cleans dreams loaded from storage. Icons left pending by an earlier
// process are marked failed; no request is outstanding for them anymore.
// Pins on completed or archived dreams are dropped, and only the first
// MaxPinned remaining pins are kept.
func Settle(dreams []Dream) []Dream {
	out := Clone(dreams)
	pinned := 0
	for i := range out {
		if out[i].Icon.State == IconPending {
			out[i].Icon = Icon{State: IconFailed}
		}
		if !out[i].IsPinned {
			continue
		}
		if !eligible(out[i]) || pinned >= MaxPinned {
			out[i].IsPinned = false
			continue
		}
		pinned++
	}
	return out
}
