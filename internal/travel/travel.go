package travel

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// VisitBonus is the sovereignty awarded for each newly visited country.
const VisitBonus = 2

// FreedomCapital is the capital that counts as full freedom when no trips are planned.
const FreedomCapital = 10000

var (
	ErrDestinationRequired = errors.New("destination is required")
	ErrInvalidCost         = errors.New("estimated cost must not be negative")
	ErrInvalidPriority     = errors.New("priority must be high, medium or low")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrNotFound            = errors.New("travel dream not found")
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	case "":
		return PriorityMedium, nil
	default:
		return "", ErrInvalidPriority
	}
}

// Target is a trip the user is saving towards.
type Target struct {
	ID            string   `json:"id"`
	Destination   string   `json:"destination"`
	EstimatedCost float64  `json:"estimatedCost"`
	FundedAmount  float64  `json:"fundedAmount"`
	Priority      Priority `json:"priority"`
	Notes         string   `json:"notes,omitempty"`
}

func NewTarget(destination string, estimatedCost float64, priority Priority, now time.Time) (Target, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return Target{}, ErrDestinationRequired
	}
	if estimatedCost < 0 || math.IsNaN(estimatedCost) {
		return Target{}, ErrInvalidCost
	}
	if priority == "" {
		priority = PriorityMedium
	}
	return Target{
		ID:            fmt.Sprintf("travel-%d", now.UnixNano()),
		Destination:   destination,
		EstimatedCost: estimatedCost,
		Priority:      priority,
	}, nil
}

func Fund(targets []Target, id string, amount float64) ([]Target, error) {
	if amount <= 0 || math.IsNaN(amount) {
		return targets, ErrInvalidAmount
	}
	for i, t := range targets {
		if t.ID != id {
			continue
		}
		out := CloneTargets(targets)
		out[i].FundedAmount += amount
		return out, nil
	}
	return targets, ErrNotFound
}

// Visit adds an upper-cased code to the visited set. It reports false when the
// code was already present.
func Visit(visited []string, code string) ([]string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return visited, false
	}
	for _, v := range visited {
		if v == code {
			return visited, false
		}
	}
	out := make([]string, 0, len(visited)+1)
	out = append(out, visited...)
	out = append(out, code)
	return out, true
}

// FreedomProgress is the percentage, 0 to 100, of travel goals funded.
// Without any planned trip, progress follows capital towards FreedomCapital.
func FreedomProgress(capital int, targets []Target) float64 {
	var total, funded float64
	for _, t := range targets {
		total += t.EstimatedCost
		funded += t.FundedAmount
	}
	if total == 0 {
		return clampPercent(float64(capital) / FreedomCapital * 100)
	}
	return clampPercent(math.Round(funded / total * 100))
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func CloneTargets(src []Target) []Target {
	out := make([]Target, len(src))
	copy(out, src)
	return out
}

func CloneVisited(src []string) []string {
	out := make([]string, len(src))
	copy(out, src)
	return out
}
