package mergeforward

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/mergeforward/internal/gitrepo"
	"github.com/temirov/mergeforward/internal/properties"
)

const (
	// LintRevisionPropertyName is the build property carrying the computed revision.
	LintRevisionPropertyName = "lint_revision"
	// PropertySource identifies this workflow as the producer of recorded properties.
	PropertySource = "merge-forward"
	// DefaultRemote is fetched when Options.Remote is empty.
	DefaultRemote = "origin"

	upstreamBranchConstant                 = "master"
	repositoryMissingMessageConstant       = "repository operations not configured"
	propertyRecorderMissingMessageConstant = "property recorder not configured"
	unknownStateMessageConstant            = "unknown workflow state"
	logMessageTransitionConstant           = "merge-forward transition"
	logMessageFailedConstant               = "merge-forward failed"
	logMessageMergingConstant              = "merging fetched master"
	logMessageCompletedConstant            = "merge-forward completed"
	logMessageFetchHeadMissingConstant     = "FETCH_HEAD not found for release branch"
	logFieldBranchConstant                 = "branch"
	logFieldKindConstant                   = "kind"
	logFieldFromStateConstant              = "from"
	logFieldToStateConstant                = "to"
	logFieldLintRevisionConstant           = "lint_revision"
	logFieldMergeDateConstant              = "merge_date"
	logFieldRemoteConstant                 = "remote"
)

// ErrRepositoryNotConfigured indicates the repository dependency was missing.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrPropertyRecorderNotConfigured indicates the property recorder dependency was missing.
var ErrPropertyRecorderNotConfigured = errors.New(propertyRecorderMissingMessageConstant)

var errUnknownState = errors.New(unknownStateMessageConstant)

// Repository is the set of git operations the workflow needs.
type Repository interface {
	Fetch(executionContext context.Context, remote string, reference string) error
	Log(executionContext context.Context, reference string, format string) (string, error)
	Merge(executionContext context.Context, request gitrepo.MergeRequest) error
	RevParse(executionContext context.Context, reference string) (string, error)
	MergeBase(executionContext context.Context, first string, second string) (string, error)
	ReferenceExists(executionContext context.Context, reference string) (bool, error)
}

// Dependencies enumerates the workflow collaborators.
type Dependencies struct {
	Logger           *zap.Logger
	Repository       Repository
	PropertyRecorder properties.Recorder
}

// Options tune a workflow run.
type Options struct {
	// Remote is a remote name or URL to fetch master from.
	Remote string
	// Identity stamps the merge commit.
	Identity gitrepo.Identity
	// FetchRelease makes release branches fetch master instead of requiring an existing FETCH_HEAD.
	FetchRelease bool
}

// Result describes a completed or failed run.
type Result struct {
	BranchName   string
	Kind         BranchKind
	LintRevision string
	MergeDate    string
	Fetched      bool
	Merged       bool
	States       []State
}

// Workflow runs the merge-forward state machine against one repository.
// A Workflow is not safe for concurrent runs; each build owns its own.
type Workflow struct {
	logger           *zap.Logger
	repository       Repository
	propertyRecorder properties.Recorder
	options          Options
}

// NewWorkflow validates dependencies and applies option defaults.
func NewWorkflow(dependencies Dependencies, options Options) (*Workflow, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if dependencies.PropertyRecorder == nil {
		return nil, ErrPropertyRecorderNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	normalizedOptions := options
	normalizedOptions.Remote = strings.TrimSpace(options.Remote)
	if len(normalizedOptions.Remote) == 0 {
		normalizedOptions.Remote = DefaultRemote
	}

	return &Workflow{
		logger:           logger,
		repository:       dependencies.Repository,
		propertyRecorder: dependencies.PropertyRecorder,
		options:          normalizedOptions,
	}, nil
}

// Run classifies branchName, merges when needed and records lint_revision.
// Any failing step ends the run; nothing is rolled back.
func (workflow *Workflow) Run(executionContext context.Context, branchName string) (Result, error) {
	result := Result{BranchName: strings.TrimSpace(branchName)}

	state := StateStart
	for !state.Terminal() {
		result.States = append(result.States, state)

		nextState, transitionError := workflow.transition(executionContext, state, &result)
		if transitionError != nil {
			result.States = append(result.States, StateFailed)
			workflow.logger.Error(
				logMessageFailedConstant,
				zap.String(logFieldBranchConstant, result.BranchName),
				zap.String(logFieldKindConstant, string(result.Kind)),
				zap.String(logFieldFromStateConstant, string(state)),
				zap.Error(transitionError),
			)
			return result, transitionError
		}

		workflow.logger.Debug(
			logMessageTransitionConstant,
			zap.String(logFieldBranchConstant, result.BranchName),
			zap.String(logFieldFromStateConstant, string(state)),
			zap.String(logFieldToStateConstant, string(nextState)),
		)
		state = nextState
	}
	result.States = append(result.States, state)

	workflow.logger.Info(
		logMessageCompletedConstant,
		zap.String(logFieldBranchConstant, result.BranchName),
		zap.String(logFieldKindConstant, string(result.Kind)),
		zap.String(logFieldLintRevisionConstant, result.LintRevision),
	)
	return result, nil
}

func (workflow *Workflow) transition(executionContext context.Context, state State, result *Result) (State, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return StateFailed, WorkflowError{Failure: ErrWorkflowAborted, State: state, Cause: contextError}
	}

	switch state {
	case StateStart:
		return workflow.classify(result)
	case StateClassified:
		return workflow.afterClassification(executionContext, result)
	case StateFetched:
		if result.Kind == BranchKindFeature {
			return workflow.merge(executionContext, result)
		}
		return workflow.computeRevision(executionContext, StateFetched, result)
	case StateMerged:
		return workflow.computeRevision(executionContext, StateMerged, result)
	case StateRevisionComputed:
		return workflow.recordRevision(result)
	default:
		return StateFailed, WorkflowError{Failure: errUnknownState, State: state}
	}
}

func (workflow *Workflow) classify(result *Result) (State, error) {
	if len(result.BranchName) == 0 {
		return StateFailed, WorkflowError{Failure: ErrBranchNameRequired, State: StateStart}
	}
	result.Kind = ClassifyBranch(result.BranchName)
	return StateClassified, nil
}

func (workflow *Workflow) afterClassification(executionContext context.Context, result *Result) (State, error) {
	switch result.Kind {
	case BranchKindMaster:
		return workflow.computeRevision(executionContext, StateClassified, result)
	case BranchKindRelease:
		if workflow.options.FetchRelease {
			return workflow.fetch(executionContext, result)
		}
		return workflow.requireFetchHead(executionContext, result)
	default:
		return workflow.fetch(executionContext, result)
	}
}

func (workflow *Workflow) fetch(executionContext context.Context, result *Result) (State, error) {
	if fetchError := workflow.repository.Fetch(executionContext, workflow.options.Remote, upstreamBranchConstant); fetchError != nil {
		return StateFailed, stepError(executionContext, ErrFetchFailed, StateClassified, fetchError)
	}
	result.Fetched = true
	return StateFetched, nil
}

// requireFetchHead makes the release-branch dependency on an earlier fetch explicit.
func (workflow *Workflow) requireFetchHead(executionContext context.Context, result *Result) (State, error) {
	exists, probeError := workflow.repository.ReferenceExists(executionContext, gitrepo.FetchHeadReference)
	if probeError != nil {
		return StateFailed, stepError(executionContext, ErrMergeFailed, StateClassified, probeError)
	}
	if !exists {
		workflow.logger.Warn(logMessageFetchHeadMissingConstant, zap.String(logFieldBranchConstant, result.BranchName))
		return StateFailed, WorkflowError{Failure: ErrFetchHeadMissing, State: StateClassified}
	}
	return workflow.computeRevision(executionContext, StateClassified, result)
}

func (workflow *Workflow) merge(executionContext context.Context, result *Result) (State, error) {
	commitDate, logError := workflow.repository.Log(executionContext, gitrepo.FetchHeadReference, gitrepo.CommitDateFormat)
	if logError != nil {
		return StateFailed, stepError(executionContext, ErrMergeFailed, StateFetched, logError)
	}
	result.MergeDate = strings.TrimSpace(commitDate)
	if len(result.MergeDate) == 0 {
		return StateFailed, WorkflowError{Failure: ErrMergeFailed, State: StateFetched, Cause: errEmptyCommitDate}
	}

	workflow.logger.Info(
		logMessageMergingConstant,
		zap.String(logFieldBranchConstant, result.BranchName),
		zap.String(logFieldRemoteConstant, workflow.options.Remote),
		zap.String(logFieldMergeDateConstant, result.MergeDate),
	)

	mergeError := workflow.repository.Merge(executionContext, gitrepo.MergeRequest{
		Reference: gitrepo.FetchHeadReference,
		Identity:  workflow.options.Identity,
		Date:      result.MergeDate,
	})
	if mergeError != nil {
		return StateFailed, stepError(executionContext, ErrMergeFailed, StateFetched, mergeError)
	}
	result.Merged = true
	return StateMerged, nil
}

func (workflow *Workflow) computeRevision(executionContext context.Context, state State, result *Result) (State, error) {
	var revision string
	var lookupError error
	if result.Kind == BranchKindMaster {
		revision, lookupError = workflow.repository.RevParse(executionContext, gitrepo.PreviousHeadReference)
	} else {
		revision, lookupError = workflow.repository.MergeBase(executionContext, gitrepo.HeadReference, gitrepo.FetchHeadReference)
	}
	if lookupError != nil {
		return StateFailed, stepError(executionContext, ErrMergeFailed, state, lookupError)
	}

	trimmedRevision := strings.TrimSpace(revision)
	if len(trimmedRevision) == 0 {
		return StateFailed, WorkflowError{Failure: ErrMergeFailed, State: state, Cause: errEmptyRevision}
	}
	result.LintRevision = trimmedRevision
	return StateRevisionComputed, nil
}

func (workflow *Workflow) recordRevision(result *Result) (State, error) {
	if recordError := workflow.propertyRecorder.SetProperty(LintRevisionPropertyName, result.LintRevision, PropertySource); recordError != nil {
		return StateFailed, WorkflowError{Failure: ErrPropertyRecordFailed, State: StateRevisionComputed, Cause: recordError}
	}
	return StateDone, nil
}
