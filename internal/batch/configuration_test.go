package batch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/manage_repos/internal/batch"
)

func TestDefaultConfigurationValuesUseRootKey(testInstance *testing.T) {
	require.Equal(testInstance, map[string]any{
		"tools.manage.concurrency":             1,
		"tools.manage.continue_on_error":       false,
		"tools.manage.disable_terminal_prompt": false,
		"tools.manage.command_timeout":         "0s",
	}, batch.DefaultConfigurationValues("tools.manage"))
}

func TestConfigurationSanitizeClampsValues(testInstance *testing.T) {
	sanitized := batch.Configuration{Concurrency: -3, CommandTimeout: -time.Second}.Sanitize()
	require.Equal(testInstance, 1, sanitized.Concurrency)
	require.Zero(testInstance, sanitized.CommandTimeout)

	preserved := batch.Configuration{Concurrency: 4, CommandTimeout: time.Minute}.Sanitize()
	require.Equal(testInstance, 4, preserved.Concurrency)
	require.Equal(testInstance, time.Minute, preserved.CommandTimeout)
}

func TestConfigurationEnvironmentVariables(testInstance *testing.T) {
	require.Nil(testInstance, batch.DefaultConfiguration().EnvironmentVariables())
	require.Equal(testInstance,
		map[string]string{"GIT_TERMINAL_PROMPT": "0"},
		batch.Configuration{DisableTerminalPrompt: true}.EnvironmentVariables(),
	)
}
