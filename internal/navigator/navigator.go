package navigator

import (
	"context"
	"strings"
	"unicode/utf8"

	"terranova/internal/stat"
)

const MaxInputLength = 1000

const (
	MessageNotConfigured = "The navigator is not configured. Set DEEPSEEK_API_KEY to enable it."
	MessageEmptyInput    = "Please provide a valid input."
	MessageUnparsable    = "I had trouble understanding that, Architect. Could you rephrase?"
	MessageUplinkFailed  = "The Uplink is static... I could not process your request."
	MessageAcknowledged  = "The simulation acknowledges your input."
)

type Status string

const (
	StatusOK            Status = "ok"
	StatusNotConfigured Status = "not_configured"
	StatusInvalidInput  Status = "invalid_input"
	StatusFailed        Status = "failed"
)

type QuestSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Reward      string `json:"reward,omitempty"`
	SpecialType string `json:"specialType,omitempty"`
}

// Response is what the navigator made of one free-text report.
// A Response with Status other than StatusOK carries no stat changes.
type Response struct {
	StatChanges map[stat.Name]int `json:"statChanges"`
	Quest       *QuestSuggestion  `json:"quest,omitempty"`
	Message     string            `json:"message"`
	Status      Status            `json:"status"`
}

// Parser turns a free-text report into stat changes. Implementations never
// return an error; failures degrade to a Response with a zero delta.
type Parser interface {
	Parse(ctx context.Context, input string, readings map[stat.Name]stat.Reading) Response
	Configured() bool
}

func fallback(status Status, message string) Response {
	return Response{StatChanges: map[stat.Name]int{}, Message: message, Status: status}
}

// SanitizeInput trims, strips angle brackets and caps the length of user text.
func SanitizeInput(in string) string {
	out := strings.TrimSpace(in)
	out = strings.NewReplacer("<", "", ">", "").Replace(out)
	if utf8.RuneCountInString(out) > MaxInputLength {
		out = string([]rune(out)[:MaxInputLength])
	}
	return out
}

// Disabled is used when no API key is configured.
type Disabled struct{}

func (Disabled) Parse(context.Context, string, map[stat.Name]stat.Reading) Response {
	return fallback(StatusNotConfigured, MessageNotConfigured)
}

func (Disabled) Configured() bool { return false }
