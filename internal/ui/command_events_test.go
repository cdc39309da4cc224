package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/mergeforward/internal/execshell"
	"github.com/temirov/mergeforward/internal/ui"
)

func TestConsoleCommandEventLoggerLevels(t *testing.T) {
	fetchCommand := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"fetch", "origin", "master"}, WorkingDirectory: "/builds/repo"},
	}

	testCases := []struct {
		name            string
		emit            func(eventLogger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "started",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandStarted(fetchCommand)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Fetching master from origin in /builds/repo",
		},
		{
			name: "completed",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(fetchCommand, execshell.ExecutionResult{})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Fetched master from origin in /builds/repo",
		},
		{
			name: "non_zero_exit",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(fetchCommand, execshell.ExecutionResult{ExitCode: 128})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: "Failed to fetch master from origin in /builds/repo (exit code 128)",
		},
		{
			name: "execution_failure",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandExecutionFailed(fetchCommand, errors.New("git not found"))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: "Unable to fetch master from origin in /builds/repo: git not found",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.emit(eventLogger)

			entries := observedLogs.All()
			require.Len(t, entries, 1)
			require.Equal(t, testCase.expectedLevel, entries[0].Level)
			require.Equal(t, testCase.expectedMessage, entries[0].Message)
		})
	}
}

func TestConsoleCommandEventLoggerToleratesNilReceiver(t *testing.T) {
	var eventLogger *ui.ConsoleCommandEventLogger
	require.NotPanics(t, func() {
		eventLogger.CommandStarted(execshell.ShellCommand{})
		eventLogger.CommandCompleted(execshell.ShellCommand{}, execshell.ExecutionResult{})
		eventLogger.CommandExecutionFailed(execshell.ShellCommand{}, nil)
	})
}
