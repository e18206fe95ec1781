package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"terranova/internal/game"
	"terranova/internal/relic"
)

// liveEvent is one committed change as sent to websocket clients.
type liveEvent struct {
	Seq     uint64         `json:"seq"`
	Action  string         `json:"action"`
	Subject string         `json:"subject,omitempty"`
	Dirty   []game.Slice   `json:"dirty"`
	LevelUp *relic.LevelUp `json:"levelUp,omitempty"`
}

// hub fans store changes out to connected clients. Publishing never blocks:
// a client whose buffer is full is disconnected.
type hub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
	log     *log.Logger

	upgrader websocket.Upgrader
}

func newHub(logger *log.Logger) *hub {
	return &hub{
		clients: map[chan []byte]struct{}{},
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *hub) publish(_ game.State, ch game.Change) {
	b, err := json.Marshal(liveEvent{Seq: ch.Seq, Action: ch.Action, Subject: ch.Subject, Dirty: ch.Dirty, LevelUp: ch.LevelUp})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for out := range h.clients {
		select {
		case out <- b:
		default:
			delete(h.clients, out)
			close(out)
		}
	}
}

func (h *hub) join() chan []byte {
	out := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[out] = struct{}{}
	h.mu.Unlock()
	return out
}

func (h *hub) leave(out chan []byte) {
	h.mu.Lock()
	if _, ok := h.clients[out]; ok {
		delete(h.clients, out)
		close(out)
	}
	h.mu.Unlock()
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	out := h.join()
	defer h.leave(out)

	// Reader: only to notice the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()
	for {
		select {
		case <-gone:
			return
		case b, ok := <-out:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"), time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.log.Printf("live write failed err=%v", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
