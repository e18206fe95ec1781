package navigator

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"terranova/internal/stat"
)

//go:embed reply.schema.json
var replySchemaJSON string

var (
	replySchemaOnce sync.Once
	replySchema     *jsonschema.Schema
	replySchemaErr  error
)

var ErrNoJSON = errors.New("reply contains no JSON object")

// MaxStatDelta bounds a single stat change in a reply. reply.schema.json
// carries the same bound.
const MaxStatDelta = 100000

func compiledReplySchema() (*jsonschema.Schema, error) {
	replySchemaOnce.Do(func() {
		replySchema, replySchemaErr = jsonschema.CompileString("reply.schema.json", replySchemaJSON)
	})
	return replySchema, replySchemaErr
}

// extractObject returns the outermost {...} span of a model reply, which may
// wrap the JSON in prose or code fences.
func extractObject(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

type wireQuest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      any    `json:"reward"`
	SpecialType string `json:"specialType"`
}

type wireReply struct {
	StatUpdates       map[string]float64 `json:"statUpdates"`
	StatChanges       map[string]float64 `json:"statChanges"`
	NarrativeResponse string             `json:"narrativeResponse"`
	Message           string             `json:"message"`
	NewQuest          *wireQuest         `json:"newQuest"`
	Quest             *wireQuest         `json:"quest"`
}

// DecodeReply validates a model reply and maps both naming conventions onto Response.
func DecodeReply(content string) (Response, error) {
	body, ok := extractObject(content)
	if !ok {
		return Response{}, ErrNoJSON
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Response{}, fmt.Errorf("decode reply: %w", err)
	}
	schema, err := compiledReplySchema()
	if err != nil {
		return Response{}, fmt.Errorf("compile reply schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Response{}, fmt.Errorf("validate reply: %w", err)
	}

	var w wireReply
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return Response{}, fmt.Errorf("decode reply: %w", err)
	}

	raw := w.StatUpdates
	if raw == nil {
		raw = w.StatChanges
	}
	changes := make(map[stat.Name]int, len(raw))
	for k, v := range raw {
		n, ok := stat.Parse(k)
		if !ok {
			continue
		}
		if math.IsNaN(v) || math.Abs(v) > MaxStatDelta {
			return Response{}, fmt.Errorf("stat %s change %v out of range", k, v)
		}
		if d := int(math.Round(v)); d != 0 {
			changes[n] += d
		}
	}

	msg := strings.TrimSpace(w.NarrativeResponse)
	if msg == "" {
		msg = strings.TrimSpace(w.Message)
	}
	if msg == "" {
		msg = MessageAcknowledged
	}

	q := w.NewQuest
	if q == nil {
		q = w.Quest
	}
	var suggestion *QuestSuggestion
	if q != nil && strings.TrimSpace(q.Title) != "" {
		desc := strings.TrimSpace(q.Description)
		if desc == "" {
			desc = "Complete this quest to progress"
		}
		suggestion = &QuestSuggestion{
			Title:       strings.TrimSpace(q.Title),
			Description: desc,
			Reward:      rewardText(q.Reward),
			SpecialType: strings.TrimSpace(q.SpecialType),
		}
	}

	return Response{StatChanges: changes, Quest: suggestion, Message: msg, Status: StatusOK}, nil
}

func rewardText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return ""
	}
}
