package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reload runs the one-time Load first so it cannot later overwrite what the
// test loaded.
func reload(t *testing.T, jsonPath, envPath string) error {
	t.Helper()
	_ = Load()
	return loadFromFiles(jsonPath, envPath)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadFromFiles_Precedence(t *testing.T) {
	jsonPath := writeFile(t, "app.json", `{"app_port": 8100, "api_auth": true, "low_stock_threshold": 5, "nested": {"x": 1}}`)
	envPath := writeFile(t, ".env", "# comment\nAPP_PORT=8200\nREPORT_LOG=\"/var/log/crm/report.txt\"\nbogus line\n")
	t.Setenv("LOW_STOCK_THRESHOLD", "7")
	t.Setenv("SCHEDULE_REPORT", "15 6 * * *")
	t.Setenv("HOME_UNRELATED", "ignored")

	require.NoError(t, reload(t, jsonPath, envPath))

	assert.Equal(t, "8200", AppPort())
	assert.True(t, APIAuth())
	assert.Equal(t, 7, LowStockThreshold())
	assert.Equal(t, "/var/log/crm/report.txt", ReportLog())
	assert.Equal(t, "15 6 * * *", Schedule("report"))
	assert.Equal(t, "", Get("HOME_UNRELATED", ""))
	assert.Equal(t, "", Get("NESTED", ""))
}

func TestLoadFromFiles_MissingFilesUseDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, reload(t, filepath.Join(dir, "none.json"), filepath.Join(dir, ".env")))

	assert.Equal(t, "sqlite", DatabaseDriver())
	assert.Equal(t, "crm.db", DatabaseDSN())
	assert.Equal(t, "/tmp/crm_heartbeat_log.txt", HeartbeatLog())
	assert.Equal(t, "*/5 * * * *", Schedule("HEARTBEAT"))
	assert.Equal(t, 10, LowStockIncrement())
	assert.Equal(t, 7, ReminderWindowDays())
	assert.Equal(t, 100, GraphQLMaxPage())
	assert.False(t, ReminderMail())
}

func TestLoadFromFiles_BadJSON(t *testing.T) {
	bad := writeFile(t, "app.json", `{not json`)
	err := reload(t, bad, filepath.Join(t.TempDir(), ".env"))
	assert.ErrorContains(t, err, "decode")
}

func TestTypedGetters(t *testing.T) {
	require.NoError(t, reload(t, filepath.Join(t.TempDir(), "x.json"), filepath.Join(t.TempDir(), ".env")))

	Set("RATE_LIMIT_PER_MINUTE", "abc")
	assert.Equal(t, 60, GetInt("RATE_LIMIT_PER_MINUTE", 60))
	Set("RATE_LIMIT_PER_MINUTE", "30")
	assert.Equal(t, 30, GetInt("RATE_LIMIT_PER_MINUTE", 60))

	Set("REMINDER_MAIL", "on")
	assert.True(t, ReminderMail())
	Set("REMINDER_MAIL", "maybe")
	assert.False(t, GetBool("REMINDER_MAIL", false))

	Set("db_driver", "oracle")
	assert.Equal(t, "sqlite", DatabaseDriver())
	Set("DB_DRIVER", "postgres")
	assert.Contains(t, DatabaseDSN(), "dbname=crm")

	Set("QUEUE_DRIVER", "Redis")
	assert.Equal(t, "redis", QueueDriver())
}
