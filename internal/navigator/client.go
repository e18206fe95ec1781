package navigator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"terranova/internal/stat"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *log.Logger
}

// New returns Disabled when cfg has no API key.
func New(cfg Config, logger *log.Logger) Parser {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Disabled{}
	}
	return NewClient(cfg, nil, logger)
}

func NewClient(cfg Config, hc *http.Client, logger *log.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{cfg: cfg, http: hc, logger: logger}
}

func (c *Client) Configured() bool { return true }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) Parse(ctx context.Context, input string, readings map[stat.Name]stat.Reading) Response {
	clean := SanitizeInput(input)
	if clean == "" {
		return fallback(StatusInvalidInput, MessageEmptyInput)
	}

	content, err := c.complete(ctx, []chatMessage{
		{Role: "system", Content: SystemPrompt(readings)},
		{Role: "user", Content: clean},
	})
	if err != nil {
		c.logger.Printf("navigator: uplink failed err=%v", err)
		return fallback(StatusFailed, MessageUplinkFailed)
	}

	resp, err := DecodeReply(content)
	if err != nil {
		c.logger.Printf("navigator: unusable reply err=%v", err)
		return fallback(StatusFailed, MessageUnparsable)
	}
	return resp
}

func (c *Client) complete(ctx context.Context, msgs []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:          c.cfg.Model,
		Messages:       msgs,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", err
	}
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if res.StatusCode/100 != 2 {
		return "", fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(b)))
	}

	var out chatResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty completion")
	}
	return out.Choices[0].Message.Content, nil
}

// SystemPrompt frames the model as the game master and lists the current stats.
func SystemPrompt(readings map[stat.Name]stat.Reading) string {
	var b strings.Builder
	b.WriteString(`You are "The Navigator", the Game Master of Terra Nova, a pixel-art RPG simulation of real life.
Translate the player's real-life actions into stat changes.

Stats:
- sovereignty: citizenship, legal status, paperwork
- capital: wealth, savings, financial independence
- intellect: knowledge, deep work, skills
- aesthetics: fitness, grooming, fashion, environment
- kindred: social life, family, relationships
- vitality: health, sleep, energy, mood

Current stats:
`)
	for _, n := range stat.All {
		r, ok := readings[n]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %d/%d\n", n, r.Value, r.Max)
	}
	b.WriteString(`
Reply with one JSON object and nothing else:
{"statUpdates": {"sovereignty": 0, "capital": 0, "intellect": 0, "aesthetics": 0, "kindred": 0, "vitality": 0},
 "narrativeResponse": "at most two sentences in character",
 "newQuest": {"title": "...", "description": "...", "specialType": "bureaucracy|homesickness|random"}}
newQuest is optional. Small tasks are worth +1 to +5, major achievements +10 to +20, setbacks -1 to -10.`)
	return b.String()
}
