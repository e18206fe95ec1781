package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TERRANOVA_STORAGE", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, ":42069", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, time.Second, cfg.Sync.Debounce())
	assert.Equal(t, "deepseek-chat", cfg.Navigator.Model)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terranova.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":8080"
storage:
  backend: sqlite
  data_dir: /var/lib/terranova
sync:
  debounce_ms: 250
game:
  freedom_date: "2029-01-15"
`), 0o644))
	t.Setenv("TERRANOVA_DATA_DIR", "/tmp/tn")
	t.Setenv("DEEPSEEK_API_KEY", " sk-test ")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/tn", cfg.Storage.DataDir)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.Debounce())
	assert.Equal(t, "sk-test", cfg.Navigator.APIKey)
	assert.Equal(t, int64(-100123), cfg.Notify.TelegramChatID)

	fd, ok := cfg.Game.ParsedFreedomDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2029, 1, 15, 0, 0, 0, 0, time.UTC), fd)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Storage.Backend = "s3"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownStorage)

	cfg = Default()
	cfg.Sync.DebounceMS = -5
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidDebounce)

	cfg = Default()
	cfg.Game.FreedomDate = "soon"
	assert.Error(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
