package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/mergeforward/internal/execshell"
)

const (
	gitFetchSubcommandConstant                  = "fetch"
	gitMergeSubcommandConstant                  = "merge"
	gitMergeNoFastForwardFlagConstant           = "--no-ff"
	gitMergeNoStatFlagConstant                  = "--no-stat"
	gitRevParseSubcommandConstant               = "rev-parse"
	gitVerifyFlagConstant                       = "--verify"
	gitQuietFlagConstant                        = "--quiet"
	gitAbbrevRefFlagConstant                    = "--abbrev-ref"
	gitCommitPeelSuffixConstant                 = "^{commit}"
	gitMergeBaseSubcommandConstant              = "merge-base"
	gitLogSubcommandConstant                    = "log"
	gitLogFormatFlagTemplateConstant            = "--format=%s"
	gitLogSingleCommitFlagConstant              = "-n1"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	gitAuthorNameEnvironmentNameConstant        = "GIT_AUTHOR_NAME"
	gitAuthorEmailEnvironmentNameConstant       = "GIT_AUTHOR_EMAIL"
	gitAuthorDateEnvironmentNameConstant        = "GIT_AUTHOR_DATE"
	gitCommitterNameEnvironmentNameConstant     = "GIT_COMMITTER_NAME"
	gitCommitterEmailEnvironmentNameConstant    = "GIT_COMMITTER_EMAIL"
	gitCommitterDateEnvironmentNameConstant     = "GIT_COMMITTER_DATE"
	referenceMissingExitCodeConstant            = 1
	detachedHeadBranchNameConstant              = "HEAD"
	executorMissingMessageConstant              = "git executor not configured"
	repositoryPathMissingMessageConstant        = "repository path must be provided"
	referenceRequiredMessageConstant            = "reference must be provided"
	remoteRequiredMessageConstant               = "remote must be provided"
	identityIncompleteMessageConstant           = "merge identity requires both name and email"
	detachedHeadMessageConstant                 = "repository is in a detached HEAD state"
	referenceProbeErrorTemplateConstant         = "unable to check reference %q: %w"
)

// HeadReference names the checked-out commit.
const HeadReference = "HEAD"

// FetchHeadReference names the transient reference written by the most recent fetch.
const FetchHeadReference = "FETCH_HEAD"

// PreviousHeadReference names the first parent of the checked-out commit.
const PreviousHeadReference = "HEAD~1"

// CommitDateFormat is the git log placeholder for an ISO-like committer date.
const CommitDateFormat = "%ci"

// ErrGitExecutorNotConfigured indicates the executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrRepositoryPathRequired indicates an empty repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathMissingMessageConstant)

// ErrReferenceRequired indicates an empty reference argument.
var ErrReferenceRequired = errors.New(referenceRequiredMessageConstant)

// ErrRemoteRequired indicates an empty remote argument.
var ErrRemoteRequired = errors.New(remoteRequiredMessageConstant)

// ErrIdentityIncomplete indicates a merge identity without a name or email.
var ErrIdentityIncomplete = errors.New(identityIncompleteMessageConstant)

// ErrDetachedHead indicates that no branch is checked out.
var ErrDetachedHead = errors.New(detachedHeadMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Identity stamps author and committer of commits created by the tool.
type Identity struct {
	Name  string
	Email string
}

// MergeRequest describes a no-fast-forward merge.
// Date, when set, pins both author and committer dates.
type MergeRequest struct {
	Reference string
	Identity  Identity
	Date      string
}

// RepositoryManager performs git operations in a single working directory.
type RepositoryManager struct {
	executor       GitExecutor
	repositoryPath string
}

// NewRepositoryManager binds executor to repositoryPath.
func NewRepositoryManager(executor GitExecutor, repositoryPath string) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return nil, ErrRepositoryPathRequired
	}
	return &RepositoryManager{executor: executor, repositoryPath: trimmedRepositoryPath}, nil
}

// RepositoryPath reports the working directory the manager operates in.
func (manager *RepositoryManager) RepositoryPath() string {
	return manager.repositoryPath
}

// Fetch runs `git fetch <remote> <reference>`.
func (manager *RepositoryManager) Fetch(executionContext context.Context, remote string, reference string) error {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return ErrRemoteRequired
	}
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return ErrReferenceRequired
	}
	_, fetchError := manager.executeGit(executionContext, nil, gitFetchSubcommandConstant, trimmedRemote, trimmedReference)
	return fetchError
}

// Merge runs `git merge --no-ff --no-stat <reference>` with the request identity and date.
func (manager *RepositoryManager) Merge(executionContext context.Context, request MergeRequest) error {
	trimmedReference := strings.TrimSpace(request.Reference)
	if len(trimmedReference) == 0 {
		return ErrReferenceRequired
	}
	identityName := strings.TrimSpace(request.Identity.Name)
	identityEmail := strings.TrimSpace(request.Identity.Email)
	if len(identityName) == 0 || len(identityEmail) == 0 {
		return ErrIdentityIncomplete
	}

	environmentVariables := map[string]string{
		gitAuthorNameEnvironmentNameConstant:     identityName,
		gitAuthorEmailEnvironmentNameConstant:    identityEmail,
		gitCommitterNameEnvironmentNameConstant:  identityName,
		gitCommitterEmailEnvironmentNameConstant: identityEmail,
	}
	if trimmedDate := strings.TrimSpace(request.Date); len(trimmedDate) > 0 {
		environmentVariables[gitAuthorDateEnvironmentNameConstant] = trimmedDate
		environmentVariables[gitCommitterDateEnvironmentNameConstant] = trimmedDate
	}

	_, mergeError := manager.executeGit(executionContext, environmentVariables, gitMergeSubcommandConstant, gitMergeNoFastForwardFlagConstant, gitMergeNoStatFlagConstant, trimmedReference)
	return mergeError
}

// RevParse returns the raw output of `git rev-parse <reference>`.
func (manager *RepositoryManager) RevParse(executionContext context.Context, reference string) (string, error) {
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return "", ErrReferenceRequired
	}
	executionResult, revParseError := manager.executeGit(executionContext, nil, gitRevParseSubcommandConstant, trimmedReference)
	if revParseError != nil {
		return "", revParseError
	}
	return executionResult.StandardOutput, nil
}

// MergeBase returns the raw output of `git merge-base <first> <second>`.
func (manager *RepositoryManager) MergeBase(executionContext context.Context, first string, second string) (string, error) {
	trimmedFirst := strings.TrimSpace(first)
	trimmedSecond := strings.TrimSpace(second)
	if len(trimmedFirst) == 0 || len(trimmedSecond) == 0 {
		return "", ErrReferenceRequired
	}
	executionResult, mergeBaseError := manager.executeGit(executionContext, nil, gitMergeBaseSubcommandConstant, trimmedFirst, trimmedSecond)
	if mergeBaseError != nil {
		return "", mergeBaseError
	}
	return executionResult.StandardOutput, nil
}

// Log returns the raw output of `git log --format=<format> -n1 <reference>`.
func (manager *RepositoryManager) Log(executionContext context.Context, reference string, format string) (string, error) {
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return "", ErrReferenceRequired
	}
	executionResult, logError := manager.executeGit(executionContext, nil, gitLogSubcommandConstant, fmt.Sprintf(gitLogFormatFlagTemplateConstant, format), gitLogSingleCommitFlagConstant, trimmedReference)
	if logError != nil {
		return "", logError
	}
	return executionResult.StandardOutput, nil
}

// ReferenceExists reports whether reference resolves to a commit.
func (manager *RepositoryManager) ReferenceExists(executionContext context.Context, reference string) (bool, error) {
	trimmedReference := strings.TrimSpace(reference)
	if len(trimmedReference) == 0 {
		return false, ErrReferenceRequired
	}

	_, probeError := manager.executeGit(executionContext, nil, gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, trimmedReference+gitCommitPeelSuffixConstant)
	if probeError == nil {
		return true, nil
	}

	var commandFailure execshell.CommandFailedError
	if errors.As(probeError, &commandFailure) && commandFailure.Result.ExitCode == referenceMissingExitCodeConstant {
		return false, nil
	}
	return false, fmt.Errorf(referenceProbeErrorTemplateConstant, trimmedReference, probeError)
}

// CurrentBranch returns the checked-out branch name, or ErrDetachedHead.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context) (string, error) {
	executionResult, branchError := manager.executeGit(executionContext, nil, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, HeadReference)
	if branchError != nil {
		return "", branchError
	}
	branchName := strings.TrimSpace(executionResult.StandardOutput)
	if len(branchName) == 0 || branchName == detachedHeadBranchNameConstant {
		return "", ErrDetachedHead
	}
	return branchName, nil
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, environmentVariables map[string]string, arguments ...string) (execshell.ExecutionResult, error) {
	mergedEnvironment := make(map[string]string, len(environmentVariables)+1)
	for environmentKey, environmentValue := range environmentVariables {
		mergedEnvironment[environmentKey] = environmentValue
	}
	mergedEnvironment[gitTerminalPromptEnvironmentNameConstant] = gitTerminalPromptEnvironmentDisableConstant

	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     manager.repositoryPath,
		EnvironmentVariables: mergedEnvironment,
	})
}
