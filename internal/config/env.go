package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overrides file settings with environment variables. Secrets are
// only ever read from the environment.
func (c *Config) ApplyEnv() {
	if v := getEnv("TERRANOVA_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := getEnv("TERRANOVA_STORAGE"); v != "" {
		c.Storage.Backend = v
	}
	if v := getEnv("TERRANOVA_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := getEnv("TERRANOVA_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := getEnv("TERRANOVA_USER_ID"); v != "" {
		c.Storage.UserID = v
	}
	if val := getEnvInt("TERRANOVA_SYNC_DEBOUNCE_MS"); val > 0 {
		c.Sync.DebounceMS = val
	}
	if v := getEnv("TERRANOVA_BACKUP_CRON"); v != "" {
		c.Backup.Cron = v
	}
	c.Navigator.APIKey = getEnv("DEEPSEEK_API_KEY")
	c.Icons.APIKey = getEnv("GEMINI_API_KEY")
	c.Notify.TelegramToken = getEnv("TELEGRAM_TOKEN")
	if val := getEnvInt64("TELEGRAM_CHAT_ID"); val != 0 {
		c.Notify.TelegramChatID = val
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvInt(key string) int {
	val := getEnv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvInt64(key string) int64 {
	val := getEnv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return num
}
