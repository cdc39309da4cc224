package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesWorkflowCommands(t *testing.T) {
	formatter := CommandMessageFormatter{}
	testCases := []struct {
		name            string
		arguments       []string
		result          ExecutionResult
		expectedStart   string
		expectedSuccess string
		expectedFailure string
	}{
		{
			name:            "fetch",
			arguments:       []string{"fetch", "origin", "master"},
			result:          ExecutionResult{ExitCode: 128, StandardError: "fatal: could not read from remote\n"},
			expectedStart:   "Fetching master from origin in /workspace/repo",
			expectedSuccess: "Fetched master from origin in /workspace/repo",
			expectedFailure: "Failed to fetch master from origin in /workspace/repo (exit code 128: fatal: could not read from remote)",
		},
		{
			name:            "merge",
			arguments:       []string{"merge", "--no-ff", "--no-stat", "FETCH_HEAD"},
			result:          ExecutionResult{ExitCode: 1},
			expectedStart:   "Merging FETCH_HEAD into /workspace/repo",
			expectedSuccess: "Merged FETCH_HEAD into /workspace/repo",
			expectedFailure: "Failed to merge FETCH_HEAD into /workspace/repo (exit code 1)",
		},
		{
			name:            "previous_revision",
			arguments:       []string{"rev-parse", "HEAD~1"},
			result:          ExecutionResult{StandardOutput: "c1\n", ExitCode: 128},
			expectedStart:   "Resolving HEAD~1 in /workspace/repo",
			expectedSuccess: "HEAD~1 in /workspace/repo resolved to c1",
			expectedFailure: "Failed to resolve HEAD~1 in /workspace/repo (exit code 128)",
		},
		{
			name:            "reference_probe",
			arguments:       []string{"rev-parse", "--verify", "--quiet", "FETCH_HEAD^{commit}"},
			result:          ExecutionResult{ExitCode: 1},
			expectedStart:   "Checking whether FETCH_HEAD^{commit} exists in /workspace/repo",
			expectedSuccess: "FETCH_HEAD^{commit} exists in /workspace/repo",
			expectedFailure: "FETCH_HEAD^{commit} does not exist in /workspace/repo",
		},
		{
			name:            "current_branch",
			arguments:       []string{"rev-parse", "--abbrev-ref", "HEAD"},
			result:          ExecutionResult{StandardOutput: "HEAD\n", ExitCode: 128},
			expectedStart:   "Identifying current branch in /workspace/repo",
			expectedSuccess: "/workspace/repo is in a detached HEAD state",
			expectedFailure: "Failed to identify current branch in /workspace/repo (exit code 128)",
		},
		{
			name:            "merge_base",
			arguments:       []string{"merge-base", "HEAD", "FETCH_HEAD"},
			result:          ExecutionResult{StandardOutput: "b1\n", ExitCode: 1},
			expectedStart:   "Computing merge base of HEAD and FETCH_HEAD in /workspace/repo",
			expectedSuccess: "Merge base of HEAD and FETCH_HEAD in /workspace/repo is b1",
			expectedFailure: "Failed to compute merge base of HEAD and FETCH_HEAD in /workspace/repo (exit code 1)",
		},
		{
			name:            "commit_date",
			arguments:       []string{"log", "--format=%ci", "-n1", "FETCH_HEAD"},
			result:          ExecutionResult{StandardOutput: "2015-03-01 10:00:00 +0000\n", ExitCode: 128},
			expectedStart:   "Reading commit date of FETCH_HEAD in /workspace/repo",
			expectedSuccess: "commit date of FETCH_HEAD in /workspace/repo is 2015-03-01 10:00:00 +0000",
			expectedFailure: "Failed to read commit date of FETCH_HEAD in /workspace/repo (exit code 128)",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := ShellCommand{
				Name:    CommandGit,
				Details: CommandDetails{Arguments: testCase.arguments, WorkingDirectory: "/workspace/repo"},
			}

			require.Equal(t, testCase.expectedStart, formatter.BuildStartedMessage(command))
			require.Equal(t, testCase.expectedSuccess, formatter.BuildSuccessMessage(command, testCase.result))
			require.Equal(t, testCase.expectedFailure, formatter.BuildFailureMessage(command, testCase.result))
		})
	}
}

func TestCommandMessageFormatterFallsBackToGenericMessages(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"status", "--porcelain"}}}

	require.Equal(t, "Running git status --porcelain", formatter.BuildStartedMessage(command))
	require.Equal(t, "git status --porcelain failed: permission denied", formatter.BuildExecutionFailureMessage(command, errors.New("permission denied")))
	require.Equal(t, "git status --porcelain failed: unknown error", formatter.BuildExecutionFailureMessage(command, nil))
}

func TestCommandMessageFormatterUsesCurrentDirectoryLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"fetch", "https://example.com/repo.git", "master"}}}

	require.Equal(t, "Fetching master from https://example.com/repo.git in current directory", formatter.BuildStartedMessage(command))
}
