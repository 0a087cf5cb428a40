package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
source:
  token: test-token
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 2.0, cfg.Retry.BackoffMultiple)
	assert.Equal(t, "0 * * * *", cfg.Schedule.Fetch)
	assert.Equal(t, "0 */6 * * *", cfg.Schedule.Sync)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_WB_TOKEN", "secret-from-env")

	cfg, err := Load(writeConfig(t, `
source:
  token: ${TEST_WB_TOKEN}
`))
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env", cfg.Source.Token)
}

func TestLoadRejectsMissingToken(t *testing.T) {
	_, err := Load(writeConfig(t, `
server:
  port: 9090
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.token")
}

func TestLoadRejectsInvalidCron(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
schedule:
  fetch: "every hour please"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid fetch schedule")

	_, err = Load(writeConfig(t, minimalConfig+`
schedule:
  sync: "61 * * * *"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sync schedule")
}

func TestLoadRejectsSheetWithoutSpreadsheetID(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
sheets:
  - id: main
    sheet_name: stocks_coefs
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spreadsheet_id")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
