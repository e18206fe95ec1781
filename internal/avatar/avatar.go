package avatar

import (
	"errors"
	"strings"

	"terranova/internal/stat"
)

// LevelThresholds are the total stat points needed for each level, starting at level 1.
var LevelThresholds = []float64{0, 500, 1500, 3000, 5000, 7500, 10000}

const MaxLevel = 10

const (
	ClothesCasual   = "casual"
	ClothesBusiness = "business"
	ClothesElite    = "elite"
)

type Appearance struct {
	TravelerCloak   bool   `json:"travelerCloak"`
	Aura            bool   `json:"aura"`
	Clothes         string `json:"clothes"`
	SurgeryComplete bool   `json:"surgeryComplete"`
}

type Avatar struct {
	Level      int        `json:"level"`
	Appearance Appearance `json:"appearance"`
}

func Default() Avatar {
	return Avatar{
		Level:      1,
		Appearance: Appearance{Clothes: ClothesCasual},
	}
}

// TotalPoints weighs capital at one point per hundred.
func TotalPoints(l stat.Ledger) float64 {
	return float64(l.Capital)/100 +
		float64(l.Sovereignty+l.Aesthetics+l.Intellect+l.Kindred+l.Vitality)
}

func LevelFor(l stat.Ledger) int {
	total := TotalPoints(l)
	level := 1
	for i, th := range LevelThresholds {
		if total >= th {
			level = i + 1
		}
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return level
}

// Derive recomputes level and appearance from the ledger. Only the surgery
// flag is user state; everything else follows the level.
func Derive(l stat.Ledger, a Avatar) Avatar {
	level := LevelFor(l)
	clothes := ClothesElite
	switch {
	case level <= 3:
		clothes = ClothesCasual
	case level <= 6:
		clothes = ClothesBusiness
	}
	return Avatar{
		Level: level,
		Appearance: Appearance{
			TravelerCloak:   level >= 5,
			Aura:            level >= 8 || a.Appearance.SurgeryComplete,
			Clothes:         clothes,
			SurgeryComplete: a.Appearance.SurgeryComplete,
		},
	}
}

func Title(clothes string) string {
	switch clothes {
	case ClothesBusiness:
		return "Rising Sovereign"
	case ClothesElite:
		return "Grand Architect"
	default:
		return "Aspiring Architect"
	}
}

func Normalize(a Avatar) Avatar {
	if a.Level <= 0 {
		a.Level = 1
	}
	if strings.TrimSpace(a.Appearance.Clothes) == "" {
		a.Appearance.Clothes = ClothesCasual
	}
	return a
}

type BaseType string

const (
	BaseDorm      BaseType = "dorm"
	BaseApartment BaseType = "apartment"
	BasePenthouse BaseType = "penthouse"
)

var ErrInvalidBaseType = errors.New("base type must be dorm, apartment or penthouse")

func ParseBaseType(s string) (BaseType, error) {
	switch b := BaseType(strings.ToLower(strings.TrimSpace(s))); b {
	case BaseDorm, BaseApartment, BasePenthouse:
		return b, nil
	default:
		return "", ErrInvalidBaseType
	}
}

type Base struct {
	Type        BaseType `json:"type"`
	Description string   `json:"description"`
	Level       int      `json:"level"`
	Items       []string `json:"items"`
	HasPet      bool     `json:"hasPet"`
}

func DefaultItems() []string { return []string{"desk", "bed", "ramen"} }

func DefaultBase() Base {
	return Base{
		Type:        BaseDorm,
		Description: "A small student dorm in Germany. Messy desk, instant ramen.",
		Level:       1,
		Items:       DefaultItems(),
	}
}

func NormalizeBase(b Base) Base {
	if _, err := ParseBaseType(string(b.Type)); err != nil {
		b.Type = BaseDorm
	}
	if b.Level <= 0 {
		b.Level = 1
	}
	if b.Items == nil {
		b.Items = DefaultItems()
	}
	return b
}

// AddItem appends item unless the base already has it.
func AddItem(b Base, item string) (Base, bool) {
	item = strings.ToLower(strings.TrimSpace(item))
	if item == "" {
		return b, false
	}
	for _, it := range b.Items {
		if it == item {
			return b, false
		}
	}
	items := make([]string, 0, len(b.Items)+1)
	items = append(items, b.Items...)
	b.Items = append(items, item)
	return b, true
}

func CloneBase(b Base) Base {
	items := make([]string, len(b.Items))
	copy(items, b.Items)
	b.Items = items
	return b
}
