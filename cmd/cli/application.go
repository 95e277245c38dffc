package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/manage_repos/internal/actions"
	"github.com/temirov/manage_repos/internal/batch"
	"github.com/temirov/manage_repos/internal/execshell"
	"github.com/temirov/manage_repos/internal/repos/dependencies"
	"github.com/temirov/manage_repos/internal/repos/discovery"
	"github.com/temirov/manage_repos/internal/repos/shared"
	"github.com/temirov/manage_repos/internal/status"
	"github.com/temirov/manage_repos/internal/ui"
	"github.com/temirov/manage_repos/internal/utils"
	flagutils "github.com/temirov/manage_repos/internal/utils/flags"
	pathutils "github.com/temirov/manage_repos/internal/utils/path"
)

const (
	applicationNameConstant                 = "manage-repos"
	applicationUsageConstant                = applicationNameConstant + " [flags] PATH"
	applicationShortDescriptionConstant     = "Run one git operation across every repository beneath a directory"
	applicationLongDescriptionConstant      = "manage-repos finds every git repository beneath PATH and applies a single operation to each of them: listing, status summaries, staging, committing, branch checkout, or synchronization with remotes.\n\nWhen several operation flags are supplied only the first one in this order runs: --list, --status, --status-remote, --add, --pull, --push, --fetch-all, --changes_to_remote, --checkout, --commit."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	listFlagNameConstant                    = "list"
	listFlagShorthandConstant               = "l"
	listFlagUsageConstant                   = "Print the path of every repository found."
	statusFlagNameConstant                  = "status"
	statusFlagShorthandConstant             = "s"
	statusFlagUsageConstant                 = "Summarize the working-tree status of every repository."
	statusRemoteFlagNameConstant            = "status-remote"
	statusRemoteFlagUsageConstant           = "Refresh remote references and print git status for every repository."
	checkoutFlagNameConstant                = "checkout"
	checkoutFlagUsageConstant               = "Switch every repository to the named branch, creating it when missing."
	addFlagNameConstant                     = "add"
	addFlagUsageConstant                    = "Stage every change in repositories that have unstaged changes."
	commitFlagNameConstant                  = "commit"
	commitFlagUsageConstant                 = "Commit tracked changes with the given message in repositories that have staged changes."
	pushFlagNameConstant                    = "push"
	pushFlagUsageConstant                   = "Push every branch of every repository and set upstreams."
	pullFlagNameConstant                    = "pull"
	pullFlagUsageConstant                   = "Pull the active branch of every repository."
	fetchAllFlagNameConstant                = "fetch-all"
	fetchAllFlagUsageConstant               = "Fetch from every remote of every repository."
	changesToRemoteFlagNameConstant         = "changes_to_remote"
	changesToRemoteFlagUsageConstant        = "Checkout, add, commit, and push in one pass; requires --checkout and --commit."
	concurrencyFlagNameConstant             = "concurrency"
	concurrencyFlagUsageConstant            = "Override the number of repositories processed at once."
	continueOnErrorFlagNameConstant         = "continue-on-error"
	continueOnErrorFlagUsageConstant        = "Keep processing remaining repositories after a failure."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	toolsConfigurationKeyConstant           = "tools"
	manageConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".manage"
	environmentPrefixConstant               = "MANAGEREPOS"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationDirectoryNameConstant  = applicationNameConstant
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	executorCreationErrorTemplateConstant   = "unable to create git executor: %w"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	noOptionSpecifiedMessageConstant        = "No option specified..."
	searchingRepositoriesMessageConstant    = "Searching for repos..."
	repositoriesDiscoveredMessageConstant   = "repositories discovered"
	logFieldRootConstant                    = "root"
	logFieldOperationConstant               = "operation"
	logFieldRepositoryCountConstant         = "repository_count"
	standardOutputLineTemplateConstant      = "%s\n"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration groups tool-specific configuration.
type ApplicationToolsConfiguration struct {
	Manage batch.Configuration `mapstructure:"manage"`
}

// ApplicationDependencies allows callers to replace the collaborators that touch the filesystem or git.
// Nil fields fall back to operating system implementations.
type ApplicationDependencies struct {
	GitExecutor          shared.GitExecutor
	RepositoryDiscoverer shared.RepositoryDiscoverer
	FileSystem           shared.FileSystem
	LoggerFactory        *utils.LoggerFactory
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	consoleLogger         *zap.Logger
	resolvedLogFormat     utils.LogFormat
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	concurrencyFlagValue  int
	continueOnErrorFlag   bool
	selection             batch.Selection
	dependencies          ApplicationDependencies
}

// NewApplication assembles a CLI application backed by the operating system.
func NewApplication() *Application {
	return NewApplicationWithDependencies(ApplicationDependencies{})
}

// NewApplicationWithDependencies assembles a CLI application with the provided collaborators.
func NewApplicationWithDependencies(applicationDependencies ApplicationDependencies) *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	loggerFactory := applicationDependencies.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = utils.NewLoggerFactory()
	}

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       loggerFactory,
		logger:              zap.NewNop(),
		consoleLogger:       zap.NewNop(),
		dependencies:        applicationDependencies,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationUsageConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	flagutils.AddChoiceFlag(
		cobraCommand.PersistentFlags(),
		&application.logLevelFlagValue,
		logLevelFlagNameConstant,
		string(utils.LogLevelInfo),
		[]string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)},
		logLevelFlagUsageConstant,
	)
	flagutils.AddChoiceFlag(
		cobraCommand.PersistentFlags(),
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		string(utils.LogFormatConsole),
		[]string{string(utils.LogFormatConsole), string(utils.LogFormatStructured), string(utils.LogFormatAuto)},
		logFormatFlagUsageConstant,
	)

	operationFlags := cobraCommand.Flags()
	operationFlags.BoolVarP(&application.selection.List, listFlagNameConstant, listFlagShorthandConstant, false, listFlagUsageConstant)
	operationFlags.BoolVarP(&application.selection.Status, statusFlagNameConstant, statusFlagShorthandConstant, false, statusFlagUsageConstant)
	operationFlags.BoolVar(&application.selection.StatusRemote, statusRemoteFlagNameConstant, false, statusRemoteFlagUsageConstant)
	operationFlags.StringVar(&application.selection.CheckoutBranch, checkoutFlagNameConstant, "", checkoutFlagUsageConstant)
	operationFlags.BoolVar(&application.selection.Add, addFlagNameConstant, false, addFlagUsageConstant)
	operationFlags.StringVar(&application.selection.CommitMessage, commitFlagNameConstant, "", commitFlagUsageConstant)
	operationFlags.BoolVar(&application.selection.Push, pushFlagNameConstant, false, pushFlagUsageConstant)
	operationFlags.BoolVar(&application.selection.Pull, pullFlagNameConstant, false, pullFlagUsageConstant)
	operationFlags.BoolVar(&application.selection.FetchAll, fetchAllFlagNameConstant, false, fetchAllFlagUsageConstant)
	operationFlags.BoolVar(&application.selection.ChangesToRemote, changesToRemoteFlagNameConstant, false, changesToRemoteFlagUsageConstant)
	operationFlags.IntVar(&application.concurrencyFlagValue, concurrencyFlagNameConstant, 0, concurrencyFlagUsageConstant)
	operationFlags.BoolVar(&application.continueOnErrorFlag, continueOnErrorFlagNameConstant, false, continueOnErrorFlagUsageConstant)
	operationFlags.SortFlags = false

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the root command and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, userConfigurationDirectoryNameConstant))
	}
	return searchPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range batch.DefaultConfigurationValues(manageConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.localFlagChanged(command, concurrencyFlagNameConstant) {
		application.configuration.Tools.Manage.Concurrency = application.concurrencyFlagValue
	}

	if application.localFlagChanged(command, continueOnErrorFlagNameConstant) {
		application.configuration.Tools.Manage.ContinueOnError = application.continueOnErrorFlag
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger
	application.resolvedLogFormat = loggerOutputs.ResolvedFormat

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, string(application.resolvedLogFormat)),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	return application.resolvedLogFormat == utils.LogFormatConsole
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	invocation, planError := batch.Plan(application.selection)
	if planError != nil {
		var usageError batch.UsageError
		if errors.As(planError, &usageError) {
			fmt.Fprintf(command.OutOrStdout(), standardOutputLineTemplateConstant, usageError.Message)
			fmt.Fprintln(command.OutOrStdout())
			_ = command.Help()
		}
		return planError
	}

	fileSystem := dependencies.ResolveFileSystem(application.dependencies.FileSystem)
	rootResolver := discovery.NewRootResolver(fileSystem, pathutils.NewHomeExpander())
	root, rootError := rootResolver.ResolveRoot(arguments[0])
	if rootError != nil {
		return rootError
	}

	if invocation.Operation == batch.OperationNone {
		fmt.Fprintf(command.OutOrStdout(), standardOutputLineTemplateConstant, noOptionSpecifiedMessageConstant)
		return nil
	}

	manageConfiguration := application.configuration.Tools.Manage.Sanitize()

	application.consoleLogger.Info(searchingRepositoriesMessageConstant)
	application.logger.Debug(
		searchingRepositoriesMessageConstant,
		zap.String(logFieldRootConstant, root),
		zap.String(logFieldOperationConstant, invocation.Operation.String()),
	)

	repositoryDiscoverer := dependencies.ResolveRepositoryDiscoverer(application.dependencies.RepositoryDiscoverer, application.logger)
	repositories, discoveryError := repositoryDiscoverer.DiscoverRepositories(root)
	if discoveryError != nil {
		return discoveryError
	}

	application.logger.Debug(
		repositoriesDiscoveredMessageConstant,
		zap.String(logFieldRootConstant, root),
		zap.Int(logFieldRepositoryCountConstant, len(repositories)),
	)

	var commandEventObserver execshell.CommandEventObserver
	if application.humanReadableLoggingEnabled() {
		commandEventObserver = ui.NewConsoleCommandEventLogger(application.consoleLogger)
	}

	gitExecutor, executorError := dependencies.ResolveGitExecutor(application.dependencies.GitExecutor, application.logger, commandEventObserver)
	if executorError != nil {
		return fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}

	environmentVariables := manageConfiguration.EnvironmentVariables()

	statusService, statusServiceError := status.NewService(gitExecutor, environmentVariables)
	if statusServiceError != nil {
		return statusServiceError
	}

	actionService, actionServiceError := actions.NewService(actions.Dependencies{
		GitExecutor:          gitExecutor,
		EnvironmentVariables: environmentVariables,
	})
	if actionServiceError != nil {
		return actionServiceError
	}

	runner, runnerError := batch.NewRunner(batch.Dependencies{
		Actions:         actionService,
		StatusDescriber: statusService,
		Output:          command.OutOrStdout(),
		Logger:          application.logger,
	}, manageConfiguration)
	if runnerError != nil {
		return runnerError
	}

	return runner.Run(command.Context(), invocation, repositories)
}

func (application *Application) flushLogger() error {
	var syncErrors []error
	for _, logger := range []*zap.Logger{application.logger, application.consoleLogger} {
		if syncError := application.syncLoggerInstance(logger); syncError != nil {
			syncErrors = append(syncErrors, syncError)
		}
	}
	return errors.Join(syncErrors...)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func (application *Application) localFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	return command.Flags().Changed(strings.TrimSpace(flagName))
}
