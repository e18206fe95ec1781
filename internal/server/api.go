package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"terranova/internal/avatar"
	"terranova/internal/dream"
	"terranova/internal/game"
	"terranova/internal/mirror"
	"terranova/internal/navigator"
	"terranova/internal/notify"
	"terranova/internal/quest"
	"terranova/internal/stat"
	"terranova/internal/task"
	"terranova/internal/telemetry"
	"terranova/internal/travel"
)

const maxBodyBytes = 1 << 20

// API holds what the handlers depend on.
type API struct {
	Store     *game.Store
	Sync      *mirror.Engine
	Navigator navigator.Parser
	Notices   *notify.Ring
	Notifier  notify.Notifier
	Telemetry telemetry.Repository
	Logger    *log.Logger
	Now       func() time.Time

	live *hub
}

func (a *API) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

func (a *API) notice(n notify.Notice) {
	if a.Notifier != nil {
		a.Notifier.Notify(n)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dream.ErrNotFound), errors.Is(err, travel.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dream.ErrPinLimit):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (a *API) writeState(w http.ResponseWriter, code int, st game.State) {
	writeJSON(w, code, newStateView(st, a.now()))
}

// Register mounts every API route on mux.
func (a *API) Register(mux *http.ServeMux, rr *RouteRegistry) {
	if a.Logger == nil {
		a.Logger = log.Default()
	}
	if a.Navigator == nil {
		a.Navigator = navigator.Disabled{}
	}
	if a.live == nil {
		a.live = newHub(a.Logger)
		a.Store.Subscribe(a.live.publish)
	}

	Handle(mux, rr, "GET /api/state", "Current snapshot with derived views", "", func(w http.ResponseWriter, r *http.Request) {
		a.writeState(w, http.StatusOK, a.Store.Snapshot())
	})

	Handle(mux, rr, "POST /api/stats/{name}", "Add a delta to one stat", `{"delta":5}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Delta int `json:"delta"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		name := r.PathValue("name")
		if _, ok := stat.Parse(name); !ok {
			writeErr(w, http.StatusBadRequest, "unknown stat")
			return
		}
		a.writeState(w, http.StatusOK, a.Store.UpdateStat(name, body.Delta))
	})

	Handle(mux, rr, "PUT /api/milestones/{name}", "Set the milestone target of a stat", `{"target":2000}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Target int `json:"target"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		st, err := a.Store.SetMilestone(r.PathValue("name"), body.Target)
		if err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		a.writeState(w, http.StatusOK, st)
	})

	Handle(mux, rr, "GET /api/milestones/check", "Next relic that qualifies, if any", "", func(w http.ResponseWriter, r *http.Request) {
		lu, ok := a.Store.CheckMilestones()
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"levelUp": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"levelUp": lu})
	})

	Handle(mux, rr, "POST /api/relics/{id}/unlock", "Unlock a relic", "", func(w http.ResponseWriter, r *http.Request) {
		a.writeState(w, http.StatusOK, a.Store.UnlockRelic(r.PathValue("id")))
	})

	Handle(mux, rr, "POST /api/level-up/claim", "Unlock the pending relic", "", func(w http.ResponseWriter, r *http.Request) {
		st, claimed := a.Store.ClaimLevelUp()
		if claimed == nil {
			writeErr(w, http.StatusConflict, "no pending level-up")
			return
		}
		a.writeState(w, http.StatusOK, st)
	})

	Handle(mux, rr, "DELETE /api/level-up", "Dismiss the pending level-up", "", func(w http.ResponseWriter, r *http.Request) {
		a.writeState(w, http.StatusOK, a.Store.ClearPendingLevelUp())
	})

	Handle(mux, rr, "POST /api/tasks/import", "Import tasks from a JSON array or object", `[{"title":"Standup","category":"work"}]`, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeErr(w, http.StatusBadRequest, "could not read body")
			return
		}
		tasks, err := task.ParseImport(raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		st := a.Store.ImportTasks(tasks)
		writeJSON(w, http.StatusOK, map[string]any{"imported": len(tasks), "state": newStateView(st, a.now())})
	})

	Handle(mux, rr, "POST /api/tasks/{id}/toggle", "Toggle task completion", "", func(w http.ResponseWriter, r *http.Request) {
		a.writeState(w, http.StatusOK, a.Store.ToggleTask(r.PathValue("id")))
	})

	Handle(mux, rr, "DELETE /api/tasks/completed", "Drop completed tasks", "", func(w http.ResponseWriter, r *http.Request) {
		a.writeState(w, http.StatusOK, a.Store.ClearCompletedTasks())
	})

	Handle(mux, rr, "POST /api/quests", "Add a quest", `{"title":"Open a bank account","gold":100}`, func(w http.ResponseWriter, r *http.Request) {
		var d quest.Descriptor
		if !decodeBody(w, r, &d) {
			return
		}
		if strings.TrimSpace(d.Title) == "" {
			writeErr(w, http.StatusBadRequest, "title is required")
			return
		}
		st, q := a.Store.AddQuest(d)
		writeJSON(w, http.StatusCreated, map[string]any{"quest": q, "state": newStateView(st, a.now())})
	})

	Handle(mux, rr, "POST /api/quests/{id}/complete", "Complete a quest and pay its gold", "", func(w http.ResponseWriter, r *http.Request) {
		a.writeState(w, http.StatusOK, a.Store.CompleteQuest(r.PathValue("id")))
	})

	a.registerDreams(mux, rr)
	a.registerTravel(mux, rr)

	Handle(mux, rr, "PUT /api/avatar/surgery", "Set the surgery flag", `{"complete":true}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Complete bool `json:"complete"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		a.writeState(w, http.StatusOK, a.Store.SetSurgeryComplete(body.Complete))
	})

	Handle(mux, rr, "POST /api/base/items", "Add an item to the base", `{"item":"plant"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Item string `json:"item"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if strings.TrimSpace(body.Item) == "" {
			writeErr(w, http.StatusBadRequest, "item is required")
			return
		}
		a.writeState(w, http.StatusOK, a.Store.AddBaseItem(body.Item))
	})

	Handle(mux, rr, "PUT /api/base", "Move to another base", `{"type":"apartment","description":"Two rooms in Kreuzberg"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		typ, err := avatar.ParseBaseType(body.Type)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		a.writeState(w, http.StatusOK, a.Store.SetBase(typ, body.Description))
	})

	Handle(mux, rr, "PUT /api/freedom-date", "Set the freedom countdown target", `{"date":"2028-06-01"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Date string `json:"date"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		t, err := time.Parse("2006-01-02", strings.TrimSpace(body.Date))
		if err != nil {
			writeErr(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		a.writeState(w, http.StatusOK, a.Store.SetFreedomDate(t))
	})

	Handle(mux, rr, "POST /api/navigator", "Report progress in free text", `{"input":"Paid rent and went for a run"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Input string `json:"input"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		readings := a.Store.Snapshot().Stats.Readings()
		resp := a.Navigator.Parse(r.Context(), body.Input, readings)
		st := a.Store.Snapshot()
		switch resp.Status {
		case navigator.StatusOK:
			st = a.Store.ApplyNavigator(resp)
		case navigator.StatusNotConfigured:
			a.notice(notify.Warn("navigator", resp.Message))
		case navigator.StatusFailed:
			a.notice(notify.Error("navigator", resp.Message))
		}
		writeJSON(w, http.StatusOK, map[string]any{"response": resp, "state": newStateView(st, a.now())})
	})

	Handle(mux, rr, "POST /api/reset", "Reset to a fresh profile", "", func(w http.ResponseWriter, r *http.Request) {
		a.writeState(w, http.StatusOK, a.Store.Reset())
	})

	Handle(mux, rr, "GET /api/notices", "Recent notices after a sequence number", "", func(w http.ResponseWriter, r *http.Request) {
		if a.Notices == nil {
			writeJSON(w, http.StatusOK, []notify.Notice{})
			return
		}
		after, _ := strconv.ParseUint(r.URL.Query().Get("after"), 10, 64)
		writeJSON(w, http.StatusOK, a.Notices.List(after))
	})

	Handle(mux, rr, "GET /api/telemetry/stats", "Event summary since a date", "", func(w http.ResponseWriter, r *http.Request) {
		if a.Telemetry == nil {
			writeErr(w, http.StatusNotFound, "telemetry disabled")
			return
		}
		since := time.Time{}
		if v := r.URL.Query().Get("since"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				writeErr(w, http.StatusBadRequest, "since must be YYYY-MM-DD")
				return
			}
			since = t
		}
		events, err := a.Telemetry.GetEvents(since, nil)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		stats, err := telemetry.CalculateStats(events, since)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	Handle(mux, rr, "GET /api/sync/stats", "Sync engine counters", "", func(w http.ResponseWriter, r *http.Request) {
		if a.Sync == nil {
			writeJSON(w, http.StatusOK, mirror.Stats{Hydrated: a.Store.Hydrated()})
			return
		}
		writeJSON(w, http.StatusOK, a.Sync.Stats())
	})

	Handle(mux, rr, "POST /api/sync/flush", "Write pending documents now", "", func(w http.ResponseWriter, r *http.Request) {
		if a.Sync == nil {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
		if err := a.Sync.Flush(r.Context()); err != nil {
			writeErr(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": a.Sync.Stats()})
	})

	Handle(mux, rr, "GET /api/live", "Websocket feed of committed changes", "", a.live.serve)

	Handle(mux, rr, "GET /api/routes", "This list", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rr.List())
	})
}
