package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"terranova/internal/dream"
	"terranova/internal/mirror"
	"terranova/internal/stat"
	staticfiles "terranova/static"
)

//go:generate templ generate

type pageData struct {
	View   StateView
	Sync   mirror.Stats
	Routes []RouteDoc
}

type statRow struct {
	Name    string
	Reading string
	Fill    string
}

func (d pageData) headline() string {
	av := d.View.AvatarView
	return fmt.Sprintf("Level %d %s · %.0f points", av.Level, av.Title, av.TotalPoints)
}

func (d pageData) statRows() []statRow {
	rows := make([]statRow, 0, len(stat.All))
	for _, n := range stat.All {
		b := d.View.StatBars[n]
		rows = append(rows, statRow{
			Name:    string(n),
			Reading: fmt.Sprintf("%d / %d", b.Value, b.Max),
			Fill:    strconv.FormatFloat(b.Fill, 'f', 0, 64),
		})
	}
	return rows
}

func (d pageData) freedomLine() string {
	return fmt.Sprintf("Freedom progress %.0f%% · %d days to %s",
		d.View.FreedomProgress, d.View.DaysToFreedom, d.View.FreedomDate.Format("2006-01-02"))
}

func (d pageData) syncLine() string {
	return fmt.Sprintf("configured=%t hydrated=%t batches=%d failures=%d pending=%d",
		d.Sync.Configured, d.Sync.Hydrated, d.Sync.Batches, d.Sync.Failures, d.Sync.Pending)
}

func goldLabel(gold int) string { return fmt.Sprintf("(%d gold)", gold) }

func dreamLabel(dr dream.Dream) string {
	if dr.IsPinned {
		return dr.Title + " 📌"
	}
	return dr.Title
}

// RegisterPage mounts the status page at GET /.
func (a *API) RegisterPage(mux *http.ServeMux, rr *RouteRegistry) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		d := pageData{View: newStateView(a.Store.Snapshot(), a.now()), Routes: rr.List()}
		if a.Sync != nil {
			d.Sync = a.Sync.Stats()
		} else {
			d.Sync.Hydrated = a.Store.Hydrated()
		}
		templ.Handler(statusPage(d)).ServeHTTP(w, r)
	})
}

// RegisterStatic serves the embedded stylesheet and scripts under /static/.
func RegisterStatic(mux *http.ServeMux) {
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticfiles.EmbeddedFS()))))
}
