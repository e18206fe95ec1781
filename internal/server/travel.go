package server

import (
	"net/http"

	"terranova/internal/travel"
)

func (a *API) registerTravel(mux *http.ServeMux, rr *RouteRegistry) {
	Handle(mux, rr, "GET /api/travel/countries", "Country catalog", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, travel.Countries())
	})

	Handle(mux, rr, "POST /api/travel/visits", "Log a visited country by code or name", `{"country":"Portugal"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Country string `json:"country"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		c, ok := travel.Resolve(body.Country)
		if !ok {
			writeErr(w, http.StatusNotFound, "unknown country")
			return
		}
		st := a.Store.LogVisit(c.Code)
		writeJSON(w, http.StatusOK, map[string]any{"country": c, "state": newStateView(st, a.now())})
	})

	Handle(mux, rr, "POST /api/travel/dreams", "Add a trip to save for", `{"destination":"Kyoto","estimatedCost":3000,"priority":"high"}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Destination   string  `json:"destination"`
			EstimatedCost float64 `json:"estimatedCost"`
			Priority      string  `json:"priority"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		p, err := travel.ParsePriority(body.Priority)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		st, t, err := a.Store.AddTravelDream(body.Destination, body.EstimatedCost, p)
		if err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"travelDream": t, "state": newStateView(st, a.now())})
	})

	Handle(mux, rr, "POST /api/travel/dreams/{id}/fund", "Put money towards a trip", `{"amount":250}`, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount float64 `json:"amount"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		st, err := a.Store.FundTravelDream(r.PathValue("id"), body.Amount)
		if err != nil {
			writeErr(w, statusFor(err), err.Error())
			return
		}
		a.writeState(w, http.StatusOK, st)
	})
}
