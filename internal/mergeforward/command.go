package mergeforward

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/mergeforward/internal/execshell"
	"github.com/temirov/mergeforward/internal/gitrepo"
	"github.com/temirov/mergeforward/internal/properties"
	"github.com/temirov/mergeforward/internal/ui"
	pathutils "github.com/temirov/mergeforward/internal/utils/path"
)

const (
	runCommandUseConstant                 = "run"
	runCommandShortDescriptionConstant    = "Merge master forward and record lint_revision"
	runCommandLongDescriptionConstant     = "run classifies the branch under build, merges the fetched master into feature branches with a deterministic merge commit, and records the lint_revision build property."
	branchFlagNameConstant                = "branch"
	branchFlagUsageConstant               = "Branch under build (defaults to configuration, then the checked-out branch)"
	repositoryFlagNameConstant            = "repository"
	repositoryFlagUsageConstant           = "Path to the repository working tree"
	remoteFlagNameConstant                = "remote"
	remoteFlagUsageConstant               = "Remote name or URL to fetch master from"
	fetchReleaseFlagNameConstant          = "fetch-release"
	fetchReleaseFlagUsageConstant         = "Fetch master for release branches instead of requiring an existing FETCH_HEAD"
	propertiesFileFlagNameConstant        = "properties-file"
	propertiesFileFlagUsageConstant       = "YAML file receiving build properties"
	lintRevisionOutputTemplateConstant    = "%s=%s\n"
	branchResolutionErrorTemplateConstant = "unable to determine branch: %w"
	branchResolvedLogMessageConstant      = "branch resolved from repository"
	logFieldRepositoryConstant            = "repository"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	PropertyRecorder             properties.Recorder
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		Long:  runCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(branchFlagNameConstant, "", branchFlagUsageConstant)
	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagUsageConstant)
	command.Flags().String(remoteFlagNameConstant, "", remoteFlagUsageConstant)
	command.Flags().Bool(fetchReleaseFlagNameConstant, false, fetchReleaseFlagUsageConstant)
	command.Flags().String(propertiesFileFlagNameConstant, "", propertiesFileFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration, flagError := builder.applyFlagOverrides(command, builder.resolveConfiguration())
	if flagError != nil {
		return flagError
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(gitExecutor, configuration.RepositoryPath)
	if managerError != nil {
		return managerError
	}

	branchName := configuration.BranchName
	if len(branchName) == 0 {
		currentBranch, branchError := repositoryManager.CurrentBranch(command.Context())
		if branchError != nil {
			return fmt.Errorf(branchResolutionErrorTemplateConstant, branchError)
		}
		branchName = currentBranch
		logger.Debug(
			branchResolvedLogMessageConstant,
			zap.String(logFieldBranchConstant, branchName),
			zap.String(logFieldRepositoryConstant, repositoryManager.RepositoryPath()),
		)
	}

	propertyRecorder, recorderError := builder.resolvePropertyRecorder(configuration)
	if recorderError != nil {
		return recorderError
	}

	workflow, workflowError := NewWorkflow(
		Dependencies{Logger: logger, Repository: repositoryManager, PropertyRecorder: propertyRecorder},
		Options{
			Remote:       configuration.Remote,
			Identity:     gitrepo.Identity{Name: configuration.Identity.Name, Email: configuration.Identity.Email},
			FetchRelease: configuration.FetchRelease,
		},
	)
	if workflowError != nil {
		return workflowError
	}

	result, runError := workflow.Run(command.Context(), branchName)
	if runError != nil {
		return runError
	}

	fmt.Fprintf(command.OutOrStdout(), lintRevisionOutputTemplateConstant, LintRevisionPropertyName, result.LintRevision)
	return nil
}

func (builder *CommandBuilder) applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) (CommandConfiguration, error) {
	overridden := configuration
	flagSet := command.Flags()

	stringOverrides := []struct {
		flagName string
		target   *string
	}{
		{flagName: branchFlagNameConstant, target: &overridden.BranchName},
		{flagName: repositoryFlagNameConstant, target: &overridden.RepositoryPath},
		{flagName: remoteFlagNameConstant, target: &overridden.Remote},
		{flagName: propertiesFileFlagNameConstant, target: &overridden.PropertiesFile},
	}
	for _, override := range stringOverrides {
		if !flagSet.Changed(override.flagName) {
			continue
		}
		flagValue, flagError := flagSet.GetString(override.flagName)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		*override.target = flagValue
	}

	if flagSet.Changed(fetchReleaseFlagNameConstant) {
		fetchRelease, flagError := flagSet.GetBool(fetchReleaseFlagNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		overridden.FetchRelease = fetchRelease
	}

	sanitized := overridden.Sanitize()
	homeExpander := pathutils.NewHomeExpander()
	sanitized.RepositoryPath = homeExpander.Expand(sanitized.RepositoryPath)
	sanitized.PropertiesFile = homeExpander.Expand(sanitized.PropertiesFile)
	return sanitized, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	var observers []execshell.CommandEventObserver
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observers...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolvePropertyRecorder(configuration CommandConfiguration) (properties.Recorder, error) {
	if builder.PropertyRecorder != nil {
		return builder.PropertyRecorder, nil
	}
	if len(strings.TrimSpace(configuration.PropertiesFile)) == 0 {
		return properties.NewMemoryStore(), nil
	}
	return properties.NewFileStore(configuration.PropertiesFile)
}
