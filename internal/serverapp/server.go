package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"terranova/internal/config"
	"terranova/internal/game"
	"terranova/internal/httpmw"
	"terranova/internal/icon"
	"terranova/internal/mirror"
	"terranova/internal/navigator"
	"terranova/internal/notify"
	"terranova/internal/ops"
	"terranova/internal/persistence"
	"terranova/internal/server"
	"terranova/internal/telemetry"
)

type Options struct {
	Config *config.Config
	Logger *log.Logger

	// The fields below replace what Config would build; tests use them.
	Clock     game.Clock
	Documents persistence.Store
	Navigator navigator.Parser
	Icons     icon.Generator
}

// App is the wired game: store, sync engine, notices, backups and HTTP.
type App struct {
	cfg    *config.Config
	logger *log.Logger

	Store    *game.Store
	Sync     *mirror.Engine
	Notices  *notify.Ring
	Notifier notify.Notifier

	docs      persistence.Store
	telegram  *notify.Telegram
	backups   *ops.Scheduler
	telemetry telemetry.Repository
	handler   http.Handler
	srv       *http.Server
	unsub     []func()
}

func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	cfg := opts.Config

	docs := opts.Documents
	if docs == nil {
		var err error
		docs, err = persistence.Open(persistence.Options{
			Backend:    cfg.Storage.Backend,
			DataDir:    cfg.Storage.DataDir,
			SQLitePath: cfg.Storage.SQLitePath,
			UserID:     cfg.Storage.UserID,
		})
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
	}

	icons := opts.Icons
	if icons == nil {
		icons = icon.New(icon.Config{
			BaseURL: cfg.Icons.BaseURL,
			APIKey:  cfg.Icons.APIKey,
			Model:   cfg.Icons.Model,
			Timeout: time.Duration(cfg.Icons.TimeoutMS) * time.Millisecond,
		})
	}
	nav := opts.Navigator
	if nav == nil {
		nav = navigator.New(navigator.Config{
			BaseURL: cfg.Navigator.BaseURL,
			APIKey:  cfg.Navigator.APIKey,
			Model:   cfg.Navigator.Model,
			Timeout: time.Duration(cfg.Navigator.TimeoutMS) * time.Millisecond,
		}, opts.Logger)
	}

	storeOpts := game.Options{
		Clock:       opts.Clock,
		Icons:       icons,
		IconTimeout: time.Duration(cfg.Icons.TimeoutMS) * time.Millisecond,
		Logger:      opts.Logger,
	}
	if fd, ok := cfg.Game.ParsedFreedomDate(); ok {
		storeOpts.FreedomDate = fd
	}
	store := game.NewStore(storeOpts)

	a := &App{
		cfg:       cfg,
		logger:    opts.Logger,
		Store:     store,
		Notices:   notify.NewRing(cfg.Notify.RingSize),
		docs:      docs,
		telemetry: telemetry.NewMemoryRepository(),
	}

	notifiers := notify.Multi{a.Notices, notify.Log{Logger: opts.Logger}}
	if strings.TrimSpace(cfg.Notify.TelegramToken) != "" && cfg.Notify.TelegramChatID != 0 {
		tg, err := notify.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, notify.Level(cfg.Notify.TelegramMinLevel), opts.Logger)
		if err != nil {
			opts.Logger.Printf("telegram disabled err=%v", err)
		} else {
			a.telegram = tg
			notifiers = append(notifiers, tg)
		}
	}
	a.Notifier = notifiers

	rec := telemetry.NewRecorder(a.telemetry, opts.Logger)
	a.Sync = mirror.New(store, docs, mirror.Options{
		Debounce:     cfg.Sync.Debounce(),
		WriteTimeout: cfg.Sync.WriteTimeout(),
		Logger:       opts.Logger,
		OnBatch: func(b mirror.Batch) {
			rec.OnBatch(b)
			if b.Err != nil {
				a.Notifier.Notify(notify.Error("sync", fmt.Sprintf("could not save %d document(s): %v", len(b.Failed), b.Err)))
			}
		},
	})
	a.unsub = append(a.unsub,
		store.Subscribe(rec.OnChange),
		store.Subscribe(a.onLevelUp),
	)

	if spec := strings.TrimSpace(cfg.Backup.Cron); spec != "" {
		if !keepsFiles(cfg.Storage.Backend) {
			opts.Logger.Printf("backups skipped: storage backend %q keeps nothing on disk", cfg.Storage.Backend)
		} else {
			s, err := ops.NewScheduler(ops.SchedulerOptions{
				DataDir:      cfg.Storage.DataDir,
				BackupDir:    cfg.Backup.Dir,
				Spec:         spec,
				Keep:         cfg.Backup.Keep,
				BeforeBackup: a.Sync.Flush,
				OnResult:     a.onBackup,
				Logger:       opts.Logger,
			})
			if err != nil {
				a.close()
				return nil, err
			}
			a.backups = s
		}
	}

	api := &server.API{
		Store:     store,
		Sync:      a.Sync,
		Navigator: nav,
		Notices:   a.Notices,
		Notifier:  a.Notifier,
		Telemetry: a.telemetry,
		Logger:    opts.Logger,
	}
	a.handler = a.buildHandler(api)

	a.featureHints(docs, nav, icons)
	return a, nil
}

func (a *App) buildHandler(api *server.API) http.Handler {
	mux := http.NewServeMux()
	rr := &server.RouteRegistry{}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "terranova",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !a.Store.Hydrated() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "game state not loaded yet",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "terranova",
			"storage": a.docs.IsConfigured(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("GET /api/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(a.cfg); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	api.Register(mux, rr)
	api.RegisterPage(mux, rr)
	server.RegisterStatic(mux)

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(a.logger, "/healthz", "/readyz", "/static/"),
		httpmw.WithRequestID,
		httpmw.WithRecover(a.logger),
	)
}

func (a *App) Handler() http.Handler { return a.handler }

// Hydrate loads the stored documents once. The store stays usable with
// defaults if loading fails.
func (a *App) Hydrate(ctx context.Context) error {
	err := a.Sync.Hydrate(ctx)
	if err != nil {
		a.Notifier.Notify(notify.Warn("sync", "could not load saved progress, starting from defaults"))
	}
	return err
}

// Run hydrates, starts the backup schedule and serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.Hydrate(ctx); err != nil {
		a.logger.Printf("hydrate failed err=%v", err)
	}
	if a.backups != nil {
		a.backups.Start()
	}

	a.srv = &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Printf("listening on %s", a.cfg.Server.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Printf("http shutdown err=%v", err)
	}
	return a.Close(shutdownCtx)
}

// Close writes pending documents and releases everything New opened.
func (a *App) Close(ctx context.Context) error {
	if a.backups != nil {
		a.backups.Stop()
	}
	err := a.Sync.Close(ctx)
	a.close()
	return err
}

func (a *App) close() {
	for _, fn := range a.unsub {
		fn()
	}
	a.unsub = nil
	a.Store.Close()
	if a.telegram != nil {
		a.telegram.Close()
	}
	if err := a.docs.Close(); err != nil {
		a.logger.Printf("storage close err=%v", err)
	}
}

func (a *App) onLevelUp(_ game.State, ch game.Change) {
	if ch.LevelUp == nil {
		return
	}
	a.Notifier.Notify(notify.Info("relics", fmt.Sprintf("%s is ready to claim (%s)", ch.LevelUp.Relic.Name, ch.LevelUp.Stat)))
}

func (a *App) onBackup(path string, err error) {
	if err != nil {
		a.Notifier.Notify(notify.Error("backup", err.Error()))
		return
	}
	a.Notifier.Notify(notify.Info("backup", "saved "+path))
}

func keepsFiles(backend string) bool {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case persistence.BackendFile, persistence.BackendSQLite:
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// featureHints logs and posts a notice for every feature left disabled by
// missing configuration.
func (a *App) featureHints(docs persistence.Store, nav navigator.Parser, icons icon.Generator) {
	hint := func(source, msg string) {
		a.logger.Printf("[%s] %s", source, msg)
		a.Notices.Notify(notify.Warn(source, msg))
	}
	if !docs.IsConfigured() {
		hint("storage", fmt.Sprintf("backend %q: progress will not survive a restart", a.cfg.Storage.Backend))
	}
	if !nav.Configured() {
		hint("navigator", "DEEPSEEK_API_KEY unset; progress reports will not change stats")
	}
	if _, ok := icons.(icon.Disabled); ok {
		hint("icons", "GEMINI_API_KEY unset; dreams get a fallback icon")
	}
	if strings.TrimSpace(a.cfg.Notify.TelegramToken) != "" && a.cfg.Notify.TelegramChatID == 0 {
		hint("notify", "TELEGRAM_TOKEN set without TELEGRAM_CHAT_ID; telegram disabled")
	}
}
