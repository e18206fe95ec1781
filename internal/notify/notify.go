package notify

import (
	"log"
	"strings"
	"time"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notice is a short transient message for the user.
type Notice struct {
	Seq     uint64    `json:"seq"`
	Level   Level     `json:"level"`
	Source  string    `json:"source,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Notifier interface {
	Notify(n Notice)
}

func Info(source, msg string) Notice  { return Notice{Level: LevelInfo, Source: source, Message: msg} }
func Warn(source, msg string) Notice  { return Notice{Level: LevelWarn, Source: source, Message: msg} }
func Error(source, msg string) Notice { return Notice{Level: LevelError, Source: source, Message: msg} }

// Log writes notices to a logger as key=value lines.
type Log struct {
	Logger *log.Logger
}

func (l Log) Notify(n Notice) {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	src := n.Source
	if src == "" {
		src = "-"
	}
	logger.Printf("notice level=%s source=%s msg=%q", n.Level, src, strings.TrimSpace(n.Message))
}

// Multi fans a notice out to every non-nil notifier in order.
type Multi []Notifier

func (m Multi) Notify(n Notice) {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	for _, x := range m {
		if x != nil {
			x.Notify(n)
		}
	}
}

type Discard struct{}

func (Discard) Notify(Notice) {}
