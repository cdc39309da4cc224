package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mergeforward/internal/execshell"
	"github.com/temirov/mergeforward/internal/gitrepo"
)

const (
	testRepositoryPathConstant = "/builds/flocker"
	testRemoteConstant         = "https://github.com/example/flocker"
)

type scriptedResponse struct {
	result execshell.ExecutionResult
	err    error
}

type scriptedGitExecutor struct {
	responses        []scriptedResponse
	recordedCommands []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	if len(executor.responses) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	response := executor.responses[0]
	executor.responses = executor.responses[1:]
	return response.result, response.err
}

func newManager(t *testing.T, executor *scriptedGitExecutor) *gitrepo.RepositoryManager {
	t.Helper()
	manager, creationError := gitrepo.NewRepositoryManager(executor, testRepositoryPathConstant)
	require.NoError(t, creationError)
	return manager
}

func TestNewRepositoryManagerValidatesDependencies(t *testing.T) {
	_, missingExecutorError := gitrepo.NewRepositoryManager(nil, testRepositoryPathConstant)
	require.ErrorIs(t, missingExecutorError, gitrepo.ErrGitExecutorNotConfigured)

	_, missingPathError := gitrepo.NewRepositoryManager(&scriptedGitExecutor{}, "  ")
	require.ErrorIs(t, missingPathError, gitrepo.ErrRepositoryPathRequired)

	manager, creationError := gitrepo.NewRepositoryManager(&scriptedGitExecutor{}, " /builds/flocker ")
	require.NoError(t, creationError)
	require.Equal(t, testRepositoryPathConstant, manager.RepositoryPath())
}

func TestRepositoryManagerCommandLines(t *testing.T) {
	testCases := []struct {
		name              string
		invoke            func(manager *gitrepo.RepositoryManager) (string, error)
		response          execshell.ExecutionResult
		expectedArguments []string
		expectedOutput    string
	}{
		{
			name: "fetch",
			invoke: func(manager *gitrepo.RepositoryManager) (string, error) {
				return "", manager.Fetch(context.Background(), testRemoteConstant, "master")
			},
			expectedArguments: []string{"fetch", testRemoteConstant, "master"},
		},
		{
			name: "rev_parse",
			invoke: func(manager *gitrepo.RepositoryManager) (string, error) {
				return manager.RevParse(context.Background(), gitrepo.PreviousHeadReference)
			},
			response:          execshell.ExecutionResult{StandardOutput: "c1\n"},
			expectedArguments: []string{"rev-parse", "HEAD~1"},
			expectedOutput:    "c1\n",
		},
		{
			name: "merge_base",
			invoke: func(manager *gitrepo.RepositoryManager) (string, error) {
				return manager.MergeBase(context.Background(), gitrepo.HeadReference, gitrepo.FetchHeadReference)
			},
			response:          execshell.ExecutionResult{StandardOutput: "b1\n"},
			expectedArguments: []string{"merge-base", "HEAD", "FETCH_HEAD"},
			expectedOutput:    "b1\n",
		},
		{
			name: "log",
			invoke: func(manager *gitrepo.RepositoryManager) (string, error) {
				return manager.Log(context.Background(), gitrepo.FetchHeadReference, gitrepo.CommitDateFormat)
			},
			response:          execshell.ExecutionResult{StandardOutput: "2015-03-01 10:00:00 +0000\n"},
			expectedArguments: []string{"log", "--format=%ci", "-n1", "FETCH_HEAD"},
			expectedOutput:    "2015-03-01 10:00:00 +0000\n",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			executor := &scriptedGitExecutor{responses: []scriptedResponse{{result: testCase.response}}}
			manager := newManager(t, executor)

			output, invocationError := testCase.invoke(manager)
			require.NoError(t, invocationError)
			require.Equal(t, testCase.expectedOutput, output)
			require.Len(t, executor.recordedCommands, 1)

			recordedCommand := executor.recordedCommands[0]
			require.Equal(t, testCase.expectedArguments, recordedCommand.Arguments)
			require.Equal(t, testRepositoryPathConstant, recordedCommand.WorkingDirectory)
			require.Equal(t, "0", recordedCommand.EnvironmentVariables["GIT_TERMINAL_PROMPT"])
		})
	}
}

func TestRepositoryManagerMergeStampsIdentityAndDate(t *testing.T) {
	executor := &scriptedGitExecutor{}
	manager := newManager(t, executor)

	mergeError := manager.Merge(context.Background(), gitrepo.MergeRequest{
		Reference: gitrepo.FetchHeadReference,
		Identity:  gitrepo.Identity{Name: "Merge Forward Bot", Email: "buildbot@example.com"},
		Date:      "2015-03-01 10:00:00 +0000\n",
	})
	require.NoError(t, mergeError)
	require.Len(t, executor.recordedCommands, 1)

	recordedCommand := executor.recordedCommands[0]
	require.Equal(t, []string{"merge", "--no-ff", "--no-stat", "FETCH_HEAD"}, recordedCommand.Arguments)
	require.Equal(t, map[string]string{
		"GIT_AUTHOR_NAME":     "Merge Forward Bot",
		"GIT_AUTHOR_EMAIL":    "buildbot@example.com",
		"GIT_AUTHOR_DATE":     "2015-03-01 10:00:00 +0000",
		"GIT_COMMITTER_NAME":  "Merge Forward Bot",
		"GIT_COMMITTER_EMAIL": "buildbot@example.com",
		"GIT_COMMITTER_DATE":  "2015-03-01 10:00:00 +0000",
		"GIT_TERMINAL_PROMPT": "0",
	}, recordedCommand.EnvironmentVariables)
}

func TestRepositoryManagerMergeWithoutDateLeavesDatesUnset(t *testing.T) {
	executor := &scriptedGitExecutor{}
	manager := newManager(t, executor)

	require.NoError(t, manager.Merge(context.Background(), gitrepo.MergeRequest{
		Reference: gitrepo.FetchHeadReference,
		Identity:  gitrepo.Identity{Name: "Merge Forward Bot", Email: "buildbot@example.com"},
	}))

	environmentVariables := executor.recordedCommands[0].EnvironmentVariables
	require.NotContains(t, environmentVariables, "GIT_AUTHOR_DATE")
	require.NotContains(t, environmentVariables, "GIT_COMMITTER_DATE")
}

func TestRepositoryManagerValidatesArguments(t *testing.T) {
	executor := &scriptedGitExecutor{}
	manager := newManager(t, executor)

	require.ErrorIs(t, manager.Fetch(context.Background(), "", "master"), gitrepo.ErrRemoteRequired)
	require.ErrorIs(t, manager.Fetch(context.Background(), "origin", " "), gitrepo.ErrReferenceRequired)
	require.ErrorIs(t, manager.Merge(context.Background(), gitrepo.MergeRequest{Reference: "FETCH_HEAD"}), gitrepo.ErrIdentityIncomplete)
	require.ErrorIs(t, manager.Merge(context.Background(), gitrepo.MergeRequest{}), gitrepo.ErrReferenceRequired)

	_, revParseError := manager.RevParse(context.Background(), "")
	require.ErrorIs(t, revParseError, gitrepo.ErrReferenceRequired)

	_, mergeBaseError := manager.MergeBase(context.Background(), "HEAD", "")
	require.ErrorIs(t, mergeBaseError, gitrepo.ErrReferenceRequired)

	_, logError := manager.Log(context.Background(), "", gitrepo.CommitDateFormat)
	require.ErrorIs(t, logError, gitrepo.ErrReferenceRequired)

	require.Empty(t, executor.recordedCommands)
}

func TestRepositoryManagerReferenceExists(t *testing.T) {
	unexpectedFailure := execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 128}}
	testCases := []struct {
		name           string
		response       scriptedResponse
		expectedExists bool
		expectError    bool
	}{
		{
			name:           "present",
			response:       scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "f1\n"}},
			expectedExists: true,
		},
		{
			name:     "absent",
			response: scriptedResponse{err: execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 1}}},
		},
		{
			name:        "not_a_repository",
			response:    scriptedResponse{err: unexpectedFailure},
			expectError: true,
		},
		{
			name:        "runner_failure",
			response:    scriptedResponse{err: execshell.CommandExecutionError{Cause: errors.New("git missing")}},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			executor := &scriptedGitExecutor{responses: []scriptedResponse{testCase.response}}
			manager := newManager(t, executor)

			exists, probeError := manager.ReferenceExists(context.Background(), gitrepo.FetchHeadReference)
			if testCase.expectError {
				require.Error(t, probeError)
			} else {
				require.NoError(t, probeError)
			}
			require.Equal(t, testCase.expectedExists, exists)
			require.Equal(t, []string{"rev-parse", "--verify", "--quiet", "FETCH_HEAD^{commit}"}, executor.recordedCommands[0].Arguments)
		})
	}
}

func TestRepositoryManagerCurrentBranch(t *testing.T) {
	executor := &scriptedGitExecutor{responses: []scriptedResponse{
		{result: execshell.ExecutionResult{StandardOutput: "release/1.2.3\n"}},
		{result: execshell.ExecutionResult{StandardOutput: "HEAD\n"}},
	}}
	manager := newManager(t, executor)

	branchName, branchError := manager.CurrentBranch(context.Background())
	require.NoError(t, branchError)
	require.Equal(t, "release/1.2.3", branchName)

	_, detachedError := manager.CurrentBranch(context.Background())
	require.ErrorIs(t, detachedError, gitrepo.ErrDetachedHead)
	require.Equal(t, []string{"rev-parse", "--abbrev-ref", "HEAD"}, executor.recordedCommands[1].Arguments)
}
