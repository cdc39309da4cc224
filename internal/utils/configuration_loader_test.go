package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mergeforward/internal/utils"
)

const (
	testEnvironmentPrefixConstant          = "TESTMERGEFORWARD"
	testRemoteEnvironmentVariableConstant  = testEnvironmentPrefixConstant + "_TOOLS_MERGE_FORWARD_REMOTE"
	testRemoteKeyConstant                  = "tools.merge_forward.remote"
	testLogLevelKeyConstant                = "common.log_level"
	testConfigurationNameConstant          = "config"
	testConfigurationTypeConstant          = "yaml"
	testConfigFileNameConstant             = "config.yaml"
	testConfigContentTemplateConstant      = "tools:\n  merge_forward:\n    remote: %s\n"
	configurationLoaderSubtestNameTemplate = "%d_%s"
)

type configurationFixture struct {
	Common struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"common"`
	Tools struct {
		MergeForward struct {
			Remote string `mapstructure:"remote"`
		} `mapstructure:"merge_forward"`
	} `mapstructure:"tools"`
}

func TestConfigurationLoaderLayering(testInstance *testing.T) {
	testCases := []struct {
		name              string
		embeddedRemote    string
		fileRemote        string
		environmentRemote string
		expectedRemote    string
	}{
		{name: "defaults apply", expectedRemote: "origin"},
		{name: "embedded overrides defaults", embeddedRemote: "embedded", expectedRemote: "embedded"},
		{name: "file overrides embedded", embeddedRemote: "embedded", fileRemote: "upstream", expectedRemote: "upstream"},
		{name: "environment overrides file", embeddedRemote: "embedded", fileRemote: "upstream", environmentRemote: "https://github.com/ClusterHQ/flocker", expectedRemote: "https://github.com/ClusterHQ/flocker"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(configurationLoaderSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			configurationDirectory := testInstance.TempDir()
			configurationFilePath := ""
			if len(testCase.fileRemote) > 0 {
				configurationFilePath = filepath.Join(configurationDirectory, testConfigFileNameConstant)
				require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(fmt.Sprintf(testConfigContentTemplateConstant, testCase.fileRemote)), 0o600))
			}
			if len(testCase.environmentRemote) > 0 {
				testInstance.Setenv(testRemoteEnvironmentVariableConstant, testCase.environmentRemote)
			}

			loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
			if len(testCase.embeddedRemote) > 0 {
				loader.SetEmbeddedConfiguration([]byte(fmt.Sprintf(testConfigContentTemplateConstant, testCase.embeddedRemote)), testConfigurationTypeConstant)
			}

			loaded := configurationFixture{}
			metadata, loadError := loader.LoadConfiguration(configurationFilePath, map[string]any{
				testRemoteKeyConstant:   "origin",
				testLogLevelKeyConstant: "info",
			}, &loaded)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedRemote, loaded.Tools.MergeForward.Remote)
			require.Equal(testInstance, "info", loaded.Common.LogLevel)
			require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderFindsFileInSearchPath(testInstance *testing.T) {
	searchDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(searchDirectory, testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(fmt.Sprintf(testConfigContentTemplateConstant, "upstream")), 0o600))

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir(), searchDirectory})

	loaded := configurationFixture{}
	metadata, loadError := loader.LoadConfiguration("", nil, &loaded)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "upstream", loaded.Tools.MergeForward.Remote)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderRejectsMissingExplicitFile(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)

	loaded := configurationFixture{}
	_, loadError := loader.LoadConfiguration(filepath.Join(testInstance.TempDir(), "absent.yaml"), nil, &loaded)
	require.Error(testInstance, loadError)
}

func TestConfigurationLoaderRequiresTarget(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	_, loadError := loader.LoadConfiguration("", nil, nil)
	require.ErrorIs(testInstance, loadError, utils.ErrConfigurationTargetRequired)
}
