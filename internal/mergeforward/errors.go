package mergeforward

import (
	"context"
	"errors"
	"fmt"
)

const (
	fetchFailedMessageConstant          = "fetch failed"
	mergeFailedMessageConstant          = "merge failed"
	fetchHeadMissingMessageConstant     = "FETCH_HEAD is missing; fetch master before running merge-forward on a release branch or enable fetch_release"
	branchNameRequiredMessageConstant   = "branch name must be provided"
	propertyRecordFailedMessageConstant = "recording lint revision failed"
	workflowAbortedMessageConstant      = "workflow aborted"
	emptyRevisionMessageConstant        = "revision lookup produced no output"
	emptyCommitDateMessageConstant      = "commit date lookup produced no output"
	abortedCauseTemplateConstant        = "%w: %w"
	workflowErrorTemplateConstant       = "%v (%s)"
	workflowErrorCauseTemplateConstant  = "%v (%s): %v"
)

// ErrFetchFailed indicates that fetching upstream master exited non-zero.
var ErrFetchFailed = errors.New(fetchFailedMessageConstant)

// ErrMergeFailed indicates that merge, rev-parse, merge-base or log exited non-zero.
var ErrMergeFailed = errors.New(mergeFailedMessageConstant)

// ErrFetchHeadMissing indicates a release branch build without a prior fetch.
var ErrFetchHeadMissing = errors.New(fetchHeadMissingMessageConstant)

// ErrBranchNameRequired indicates an empty branch name.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrPropertyRecordFailed indicates the property recorder rejected lint_revision.
var ErrPropertyRecordFailed = errors.New(propertyRecordFailedMessageConstant)

// ErrWorkflowAborted indicates the context was canceled before or during a step.
var ErrWorkflowAborted = errors.New(workflowAbortedMessageConstant)

var errEmptyRevision = errors.New(emptyRevisionMessageConstant)

var errEmptyCommitDate = errors.New(emptyCommitDateMessageConstant)

// WorkflowError reports which failure kind ended the workflow and in which state.
// errors.Is matches both Failure and Cause.
type WorkflowError struct {
	Failure error
	State   State
	Cause   error
}

// Error describes the failure.
func (workflowError WorkflowError) Error() string {
	if workflowError.Cause == nil {
		return fmt.Sprintf(workflowErrorTemplateConstant, workflowError.Failure, workflowError.State)
	}
	return fmt.Sprintf(workflowErrorCauseTemplateConstant, workflowError.Failure, workflowError.State, workflowError.Cause)
}

// stepError classifies a failed step, reporting ErrWorkflowAborted when the context ended during it.
func stepError(executionContext context.Context, failure error, state State, cause error) WorkflowError {
	contextError := executionContext.Err()
	if contextError == nil {
		return WorkflowError{Failure: failure, State: state, Cause: cause}
	}
	switch {
	case cause == nil:
		cause = contextError
	case !errors.Is(cause, contextError):
		cause = fmt.Errorf(abortedCauseTemplateConstant, contextError, cause)
	}
	return WorkflowError{Failure: ErrWorkflowAborted, State: state, Cause: cause}
}

// Unwrap exposes the failure kind and the underlying cause.
func (workflowError WorkflowError) Unwrap() []error {
	unwrapped := make([]error, 0, 2)
	if workflowError.Failure != nil {
		unwrapped = append(unwrapped, workflowError.Failure)
	}
	if workflowError.Cause != nil {
		unwrapped = append(unwrapped, workflowError.Cause)
	}
	return unwrapped
}
