package notify

import (
	"fmt"
	"html"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram forwards notices to one chat. Sends happen on a worker goroutine
// so Notify never waits on the network; when the queue is full the notice
// is dropped and logged.
type Telegram struct {
	api      sender
	chatID   int64
	minLevel Level
	logger   *log.Logger

	jobs chan Notice
	wg   sync.WaitGroup
	once sync.Once
}

func NewTelegram(token string, chatID int64, minLevel Level, logger *log.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newTelegram(api, chatID, minLevel, logger), nil
}

func newTelegram(api sender, chatID int64, minLevel Level, logger *log.Logger) *Telegram {
	if logger == nil {
		logger = log.Default()
	}
	if minLevel == "" {
		minLevel = LevelInfo
	}
	t := &Telegram{
		api:      api,
		chatID:   chatID,
		minLevel: minLevel,
		logger:   logger,
		jobs:     make(chan Notice, 64),
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for n := range t.jobs {
			t.send(n)
		}
	}()
	return t
}

func rank(l Level) int {
	switch l {
	case LevelError:
		return 2
	case LevelWarn:
		return 1
	default:
		return 0
	}
}

func (t *Telegram) Notify(n Notice) {
	if rank(n.Level) < rank(t.minLevel) {
		return
	}
	select {
	case t.jobs <- n:
	default:
		t.logger.Printf("telegram notice dropped reason=queue_full msg=%q", n.Message)
	}
}

func format(n Notice) string {
	icon := "ℹ️"
	switch n.Level {
	case LevelWarn:
		icon = "⚠️"
	case LevelError:
		icon = "❌"
	}
	if n.Source == "" {
		return fmt.Sprintf("%s %s", icon, html.EscapeString(n.Message))
	}
	return fmt.Sprintf("%s <b>%s</b>\n%s", icon, html.EscapeString(n.Source), html.EscapeString(n.Message))
}

func (t *Telegram) send(n Notice) {
	msg := tgbotapi.NewMessage(t.chatID, format(n))
	msg.ParseMode = "HTML"
	if _, err := t.api.Send(msg); err != nil {
		t.logger.Printf("telegram notice failed err=%v", err)
	}
}

// Close drains queued notices and stops the worker.
func (t *Telegram) Close() {
	t.once.Do(func() {
		close(t.jobs)
		t.wg.Wait()
	})
}
