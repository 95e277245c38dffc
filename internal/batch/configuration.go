package batch

import "time"

const (
	concurrencyConfigurationKeyConstant           = "concurrency"
	continueOnErrorConfigurationKeyConstant       = "continue_on_error"
	disableTerminalPromptConfigurationKeyConstant = "disable_terminal_prompt"
	commandTimeoutConfigurationKeyConstant        = "command_timeout"
	configurationKeySeparatorConstant             = "."
	gitTerminalPromptEnvironmentNameConstant      = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant        = "0"
	minimumConcurrencyConstant                    = 1
)

// Configuration captures the tunables of a bulk run.
type Configuration struct {
	// Concurrency bounds how many repositories are processed at once; one keeps the run sequential.
	Concurrency int `mapstructure:"concurrency"`
	// ContinueOnError reports failures per repository and keeps going instead of aborting.
	ContinueOnError bool `mapstructure:"continue_on_error"`
	// DisableTerminalPrompt makes git fail instead of waiting for credentials.
	DisableTerminalPrompt bool `mapstructure:"disable_terminal_prompt"`
	// CommandTimeout limits the time spent on one repository; zero disables the limit.
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
}

// DefaultConfiguration returns the sequential, fail-fast, no-timeout configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
		Concurrency:           minimumConcurrencyConstant,
		ContinueOnError:       false,
		DisableTerminalPrompt: false,
		CommandTimeout:        0,
	}
}

// DefaultConfigurationValues exposes the defaults as configuration keys beneath rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + concurrencyConfigurationKeyConstant:           defaults.Concurrency,
		rootKey + configurationKeySeparatorConstant + continueOnErrorConfigurationKeyConstant:       defaults.ContinueOnError,
		rootKey + configurationKeySeparatorConstant + disableTerminalPromptConfigurationKeyConstant: defaults.DisableTerminalPrompt,
		rootKey + configurationKeySeparatorConstant + commandTimeoutConfigurationKeyConstant:        defaults.CommandTimeout.String(),
	}
}

// Sanitize clamps values into their supported ranges.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	if sanitized.Concurrency < minimumConcurrencyConstant {
		sanitized.Concurrency = minimumConcurrencyConstant
	}
	if sanitized.CommandTimeout < 0 {
		sanitized.CommandTimeout = 0
	}
	return sanitized
}

// EnvironmentVariables returns the variables applied to every git invocation.
func (configuration Configuration) EnvironmentVariables() map[string]string {
	if !configuration.DisableTerminalPrompt {
		return nil
	}
	return map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptDisabledValueConstant}
}
