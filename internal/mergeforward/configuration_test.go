package mergeforward_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mergeforward/internal/mergeforward"
)

func TestDefaultConfigurationValuesUseRootKey(t *testing.T) {
	values := mergeforward.DefaultConfigurationValues("tools.merge_forward")
	require.Equal(t, ".", values["tools.merge_forward.repository"])
	require.Equal(t, "origin", values["tools.merge_forward.remote"])
	require.Equal(t, false, values["tools.merge_forward.fetch_release"])
	require.Equal(t, "Merge Forward Bot", values["tools.merge_forward.identity.name"])
	require.Equal(t, "buildbot@example.com", values["tools.merge_forward.identity.email"])
	require.Len(t, values, 7)
}

func TestCommandConfigurationSanitize(t *testing.T) {
	sanitized := mergeforward.CommandConfiguration{
		RepositoryPath: "  ",
		Remote:         " upstream ",
		BranchName:     " my-feature\n",
		PropertiesFile: " props.yaml ",
		Identity:       mergeforward.IdentityConfiguration{Name: "", Email: " ci@example.org "},
	}.Sanitize()

	require.Equal(t, mergeforward.CommandConfiguration{
		RepositoryPath: mergeforward.DefaultRepositoryPath,
		Remote:         "upstream",
		BranchName:     "my-feature",
		PropertiesFile: "props.yaml",
		Identity:       mergeforward.IdentityConfiguration{Name: mergeforward.DefaultIdentityName, Email: "ci@example.org"},
	}, sanitized)
}
