package serverapp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terranova/internal/config"
	"terranova/internal/game"
	"terranova/internal/navigator"
	"terranova/internal/notify"
	"terranova/internal/persistence"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Backend = persistence.BackendMemory
	cfg.Storage.DataDir = t.TempDir()
	cfg.Sync.DebounceMS = 10
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, docs persistence.Store) (*App, *syncBuffer) {
	t.Helper()
	logs := &syncBuffer{}
	app, err := New(Options{
		Config:    cfg,
		Logger:    log.New(logs, "", 0),
		Clock:     game.NewFakeClock(time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)),
		Documents: docs,
		Navigator: navigator.Disabled{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app, logs
}

func request(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestReadyAfterHydrate(t *testing.T) {
	app, _ := newTestApp(t, testConfig(t), persistence.NewMemory())
	h := app.Handler()

	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, request(h, http.MethodGet, "/readyz", "").Code)

	require.NoError(t, app.Hydrate(context.Background()))
	rr := request(h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestProgressSurvivesRestart(t *testing.T) {
	docs := persistence.NewMemory()
	cfg := testConfig(t)

	first, _ := newTestApp(t, cfg, docs)
	require.NoError(t, first.Hydrate(context.Background()))
	rr := request(first.Handler(), http.MethodPost, "/api/stats/capital", `{"delta":250}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, first.Close(context.Background()))

	second, _ := newTestApp(t, cfg, docs)
	require.NoError(t, second.Hydrate(context.Background()))
	assert.Equal(t, 1500, second.Store.Snapshot().Stats.Capital)
}

func TestLevelUpBecomesNotice(t *testing.T) {
	app, logs := newTestApp(t, testConfig(t), persistence.NewMemory())
	require.NoError(t, app.Hydrate(context.Background()))

	request(app.Handler(), http.MethodPost, "/api/stats/vitality", `{"delta":1}`)

	notices := app.Notices.List(0)
	require.NotEmpty(t, notices)
	last := notices[len(notices)-1]
	assert.Equal(t, "relics", last.Source)
	assert.Equal(t, notify.LevelInfo, last.Level)
	assert.Contains(t, last.Message, "Golden Coffer")
	assert.Contains(t, logs.String(), "source=relics")
}

func TestConfigEndpointHidesSecrets(t *testing.T) {
	cfg := testConfig(t)
	cfg.Navigator.APIKey = "sk-very-secret"
	cfg.Notify.TelegramToken = "123:abc"
	app, _ := newTestApp(t, cfg, persistence.NewMemory())

	rr := request(app.Handler(), http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "sk-very-secret")
	assert.NotContains(t, rr.Body.String(), "123:abc")

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "memory", out["storage"].(map[string]any)["backend"])
}

func TestFeatureHintsAreLogged(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = persistence.BackendNone
	app, logs := newTestApp(t, cfg, nil)
	out := logs.String()
	assert.Contains(t, out, "[storage]")
	assert.Contains(t, out, "[navigator]")
	assert.Contains(t, out, "[icons]")

	var sources []string
	for _, n := range app.Notices.List(0) {
		assert.Equal(t, notify.LevelWarn, n.Level)
		sources = append(sources, n.Source)
	}
	assert.Equal(t, []string{"storage", "navigator", "icons"}, sources)
}

func TestBackupScheduleValidation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = persistence.BackendFile
	cfg.Backup.Cron = "every tuesday"
	cfg.Backup.Dir = t.TempDir()
	_, err := New(Options{Config: cfg, Logger: log.New(io.Discard, "", 0)})
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Backup.Cron = "0 3 * * *"
	_, logs := newTestApp(t, cfg, nil)
	assert.Contains(t, logs.String(), "backups skipped")
}

func TestConfiguredFreedomDate(t *testing.T) {
	cfg := testConfig(t)
	cfg.Game.FreedomDate = "2027-09-01"
	app, _ := newTestApp(t, cfg, persistence.NewMemory())
	assert.Equal(t, "2027-09-01", app.Store.Snapshot().FreedomDate.Format("2006-01-02"))
}
