package root

import (
	"context"
	"io"
	"log"

	"terranova/internal/config"
	"terranova/internal/game"
	"terranova/internal/mirror"
	"terranova/internal/persistence"
)

// openGame loads the stored profile without starting the server. cleanup
// writes back anything the command changed.
func openGame(ctx context.Context, cfg *config.Config) (*game.Store, func() error, error) {
	docs, err := persistence.Open(persistence.Options{
		Backend:    cfg.Storage.Backend,
		DataDir:    cfg.Storage.DataDir,
		SQLitePath: cfg.Storage.SQLitePath,
		UserID:     cfg.Storage.UserID,
	})
	if err != nil {
		return nil, nil, err
	}
	quiet := log.New(io.Discard, "", 0)
	opts := game.Options{Logger: quiet}
	if fd, ok := cfg.Game.ParsedFreedomDate(); ok {
		opts.FreedomDate = fd
	}
	store := game.NewStore(opts)
	engine := mirror.New(store, docs, mirror.Options{
		Debounce:     cfg.Sync.Debounce(),
		WriteTimeout: cfg.Sync.WriteTimeout(),
		Logger:       quiet,
	})
	if err := engine.Hydrate(ctx); err != nil {
		store.Close()
		_ = docs.Close()
		return nil, nil, err
	}
	cleanup := func() error {
		err := engine.Close(context.Background())
		store.Close()
		if cerr := docs.Close(); err == nil {
			err = cerr
		}
		return err
	}
	return store, cleanup, nil
}
