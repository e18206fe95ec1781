package stat

import (
	"math"
	"strings"
)

type Name string

const (
	Capital     Name = "capital"
	Sovereignty Name = "sovereignty"
	Aesthetics  Name = "aesthetics"
	Intellect   Name = "intellect"
	Kindred     Name = "kindred"
	Vitality    Name = "vitality"
)

// All lists the stats in display order.
var All = []Name{Capital, Sovereignty, Aesthetics, Intellect, Kindred, Vitality}

type Policy struct {
	Initial int `json:"initial"`
	Max     int `json:"max"`
}

var policies = map[Name]Policy{
	Capital:     {Initial: 1250, Max: 10000},
	Sovereignty: {Initial: 1, Max: 100},
	Aesthetics:  {Initial: 50, Max: 100},
	Intellect:   {Initial: 45, Max: 100},
	Kindred:     {Initial: 30, Max: 100},
	Vitality:    {Initial: 70, Max: 100},
}

func PolicyFor(n Name) (Policy, bool) {
	p, ok := policies[n]
	return p, ok
}

// Parse resolves a stat name case-insensitively ("CAPITAL" and "capital" are the same stat).
func Parse(s string) (Name, bool) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	_, ok := policies[n]
	return n, ok
}

// Ledger is the canonical representation of the six vitals.
// Values are never clamped; only display percentages are.
type Ledger struct {
	Capital     int `json:"capital"`
	Sovereignty int `json:"sovereignty"`
	Aesthetics  int `json:"aesthetics"`
	Intellect   int `json:"intellect"`
	Kindred     int `json:"kindred"`
	Vitality    int `json:"vitality"`
}

func Defaults() Ledger {
	return Ledger{
		Capital:     policies[Capital].Initial,
		Sovereignty: policies[Sovereignty].Initial,
		Aesthetics:  policies[Aesthetics].Initial,
		Intellect:   policies[Intellect].Initial,
		Kindred:     policies[Kindred].Initial,
		Vitality:    policies[Vitality].Initial,
	}
}

func (l *Ledger) field(n Name) *int {
	switch n {
	case Capital:
		return &l.Capital
	case Sovereignty:
		return &l.Sovereignty
	case Aesthetics:
		return &l.Aesthetics
	case Intellect:
		return &l.Intellect
	case Kindred:
		return &l.Kindred
	case Vitality:
		return &l.Vitality
	default:
		return nil
	}
}

func (l Ledger) Get(n Name) int {
	if p := l.field(n); p != nil {
		return *p
	}
	return 0
}

// Add returns a copy with delta applied to n. Unknown names leave the ledger unchanged.
func (l Ledger) Add(n Name, delta int) Ledger {
	if p := l.field(n); p != nil {
		*p += delta
	}
	return l
}

// Set returns a copy with n overwritten.
func (l Ledger) Set(n Name, v int) Ledger {
	if p := l.field(n); p != nil {
		*p = v
	}
	return l
}

// Fill is the display percentage of n relative to its max, clamped to [0, 100].
func (l Ledger) Fill(n Name) float64 {
	p, ok := policies[n]
	if !ok || p.Max <= 0 {
		return 0
	}
	pct := float64(l.Get(n)) / float64(p.Max) * 100
	return math.Max(0, math.Min(100, pct))
}

// Legacy is the flattened stats object older clients read.
// It is always derived from the ledger.
func (l Ledger) Legacy() map[string]int {
	out := make(map[string]int, len(All))
	for _, n := range All {
		out[string(n)] = l.Get(n)
	}
	return out
}

type Reading struct {
	Value int `json:"value"`
	Max   int `json:"max"`
}

func (l Ledger) Readings() map[Name]Reading {
	out := make(map[Name]Reading, len(All))
	for _, n := range All {
		out[n] = Reading{Value: l.Get(n), Max: policies[n].Max}
	}
	return out
}
