package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	environmentAssignmentSeparatorConstant  = "="
	interruptedCommandErrorTemplateConstant = "%w: %w"

	// processWaitDelayConstant caps the wait for pipes still held by grandchildren after cancellation.
	processWaitDelayConstant = 2 * time.Second
)

// OSCommandRunner executes commands as child processes.
type OSCommandRunner struct {
	environmentProvider func() []string
}

// NewOSCommandRunner constructs a runner that inherits the process environment.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{environmentProvider: os.Environ}
}

// Run executes the command and captures both output streams.
// A non-zero exit is reported through ExecutionResult.ExitCode, not as an error.
// A command interrupted by its context returns an error wrapping the context error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executable.Dir = command.Details.WorkingDirectory
	executable.Env = runner.mergeEnvironment(command.Details.EnvironmentVariables)
	executable.WaitDelay = processWaitDelayConstant

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	executionResult := ExecutionResult{}
	runError := executable.Run()
	executionResult.StandardOutput = standardOutputBuffer.String()
	executionResult.StandardError = standardErrorBuffer.String()

	if runError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			if errors.Is(runError, contextError) {
				return ExecutionResult{}, runError
			}
			return ExecutionResult{}, fmt.Errorf(interruptedCommandErrorTemplateConstant, contextError, runError)
		}
		var exitError *exec.ExitError
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		executionResult.ExitCode = exitError.ExitCode()
	}

	return executionResult, nil
}

// mergeEnvironment overlays overrides on the inherited environment, dropping inherited duplicates.
func (runner *OSCommandRunner) mergeEnvironment(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}

	inherited := []string{}
	if runner.environmentProvider != nil {
		inherited = runner.environmentProvider()
	}

	merged := make([]string, 0, len(inherited)+len(overrides))
	for _, assignment := range inherited {
		environmentKey, _, _ := strings.Cut(assignment, environmentAssignmentSeparatorConstant)
		if _, overridden := overrides[environmentKey]; overridden {
			continue
		}
		merged = append(merged, assignment)
	}
	for _, environmentKey := range environmentKeys(overrides) {
		merged = append(merged, environmentKey+environmentAssignmentSeparatorConstant+overrides[environmentKey])
	}
	return merged
}
