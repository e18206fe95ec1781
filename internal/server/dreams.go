package server

import (
	"net/http"

	"terranova/internal/dream"
	"terranova/internal/notify"
)

func (a *API) registerDreams(mux *http.ServeMux, rr *RouteRegistry) {
	Handle(mux, rr, "POST /api/dreams", "Add a dream; its icon follows in the background", `{"title":"Vespa","description":"Mint green scooter"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		d, err := a.Store.AddDream(body.Title, body.Description)
		if err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		if d.Icon.State == dream.IconFailed {
			a.notice(notify.Warn("icons", "Icon generation is not configured"))
		}
		writeJSON(w, http.StatusCreated, map[string]any{"dream": d, "state": newStateView(a.Store.Snapshot(), a.now())})
	})

	Handle(mux, rr, "POST /api/dreams/{id}/toggle", "Toggle dream completion", "", func(w http.ResponseWriter, r *http.Request) {
		a.writeState(w, http.StatusOK, a.Store.ToggleDream(r.PathValue("id")))
	})

	Handle(mux, rr, "DELETE /api/dreams/{id}", "Delete a dream", "", func(w http.ResponseWriter, r *http.Request) {
		a.writeState(w, http.StatusOK, a.Store.RemoveDream(r.PathValue("id")))
	})

	Handle(mux, rr, "POST /api/dreams/{id}/pin", "Pin a dream as an active quest", "", func(w http.ResponseWriter, r *http.Request) {
		st, err := a.Store.PinDream(r.PathValue("id"))
		if err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		a.writeState(w, http.StatusOK, st)
	})

	Handle(mux, rr, "DELETE /api/dreams/{id}/pin", "Unpin a dream", "", func(w http.ResponseWriter, r *http.Request) {
		a.writeState(w, http.StatusOK, a.Store.UnpinDream(r.PathValue("id")))
	})

	Handle(mux, rr, "POST /api/dreams/{id}/archive", "Archive a dream", "", func(w http.ResponseWriter, r *http.Request) {
		a.writeState(w, http.StatusOK, a.Store.ArchiveDream(r.PathValue("id")))
	})

	Handle(mux, rr, "POST /api/dreams/{id}/restore", "Restore an archived dream", "", func(w http.ResponseWriter, r *http.Request) {
		a.writeState(w, http.StatusOK, a.Store.RestoreDream(r.PathValue("id")))
	})

	Handle(mux, rr, "PUT /api/dreams/{id}/quest-type", "Mark a dream as main or side quest", `{"questType":"main"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			QuestType string `json:"questType"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		qt, err := dream.ParseQuestType(body.QuestType)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		st, err := a.Store.SetDreamQuestType(r.PathValue("id"), qt)
		if err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		a.writeState(w, http.StatusOK, st)
	})
}
