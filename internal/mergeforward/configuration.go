package mergeforward

import "strings"

const (
	configurationRepositoryKeyConstant     = "repository"
	configurationRemoteKeyConstant         = "remote"
	configurationBranchKeyConstant         = "branch"
	configurationFetchReleaseKeyConstant   = "fetch_release"
	configurationPropertiesFileKeyConstant = "properties_file"
	configurationIdentityNameKeyConstant   = "identity.name"
	configurationIdentityEmailKeyConstant  = "identity.email"
	configurationKeySeparatorConstant      = "."

	// DefaultRepositoryPath is the working directory used when no repository is configured.
	DefaultRepositoryPath = "."
	// DefaultIdentityName stamps merge commits when no identity is configured.
	DefaultIdentityName = "Merge Forward Bot"
	// DefaultIdentityEmail stamps merge commits when no identity is configured.
	DefaultIdentityEmail = "buildbot@example.com"
)

// IdentityConfiguration names the author and committer of merge commits.
type IdentityConfiguration struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// CommandConfiguration captures configuration values for the merge-forward run command.
type CommandConfiguration struct {
	RepositoryPath string                `mapstructure:"repository"`
	Remote         string                `mapstructure:"remote"`
	BranchName     string                `mapstructure:"branch"`
	FetchRelease   bool                  `mapstructure:"fetch_release"`
	PropertiesFile string                `mapstructure:"properties_file"`
	Identity       IdentityConfiguration `mapstructure:"identity"`
}

// DefaultCommandConfiguration provides baseline configuration values for merge-forward.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath: DefaultRepositoryPath,
		Remote:         DefaultRemote,
		BranchName:     "",
		FetchRelease:   false,
		PropertiesFile: "",
		Identity: IdentityConfiguration{
			Name:  DefaultIdentityName,
			Email: DefaultIdentityEmail,
		},
	}
}

// DefaultConfigurationValues returns the viper defaults rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := strings.TrimSpace(rootKey)
	if len(prefix) > 0 {
		prefix += configurationKeySeparatorConstant
	}

	return map[string]any{
		prefix + configurationRepositoryKeyConstant:     defaults.RepositoryPath,
		prefix + configurationRemoteKeyConstant:         defaults.Remote,
		prefix + configurationBranchKeyConstant:         defaults.BranchName,
		prefix + configurationFetchReleaseKeyConstant:   defaults.FetchRelease,
		prefix + configurationPropertiesFileKeyConstant: defaults.PropertiesFile,
		prefix + configurationIdentityNameKeyConstant:   defaults.Identity.Name,
		prefix + configurationIdentityEmailKeyConstant:  defaults.Identity.Email,
	}
}

// Sanitize trims configuration values and restores defaults for blank required fields.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.RepositoryPath = valueOrDefault(configuration.RepositoryPath, defaults.RepositoryPath)
	sanitized.Remote = valueOrDefault(configuration.Remote, defaults.Remote)
	sanitized.BranchName = strings.TrimSpace(configuration.BranchName)
	sanitized.PropertiesFile = strings.TrimSpace(configuration.PropertiesFile)
	sanitized.Identity.Name = valueOrDefault(configuration.Identity.Name, defaults.Identity.Name)
	sanitized.Identity.Email = valueOrDefault(configuration.Identity.Email, defaults.Identity.Email)

	return sanitized
}

func valueOrDefault(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallback
	}
	return trimmed
}
