package mergeforward

import (
	"regexp"
	"strings"
)

const (
	masterBranchNameConstant      = "master"
	releaseBranchPrefixConstant   = "release/"
	releaseVersionPatternConstant = `^[0-9]+\.[0-9]+\.[0-9]+(?:dev[0-9]+|pre[0-9]+)?$`
)

// BranchKind classifies a branch name.
type BranchKind string

// Supported branch kinds.
const (
	BranchKindMaster  BranchKind = BranchKind("master")
	BranchKindRelease BranchKind = BranchKind("release")
	BranchKindFeature BranchKind = BranchKind("feature")
)

var releaseVersionExpression = regexp.MustCompile(releaseVersionPatternConstant)

// ClassifyBranch maps every branch name to exactly one BranchKind.
func ClassifyBranch(branchName string) BranchKind {
	switch {
	case IsMasterBranch(branchName):
		return BranchKindMaster
	case IsReleaseBranch(branchName):
		return BranchKindRelease
	default:
		return BranchKindFeature
	}
}

// IsMasterBranch reports whether branchName is exactly "master".
func IsMasterBranch(branchName string) bool {
	return branchName == masterBranchNameConstant
}

// IsReleaseBranch reports whether branchName is under release/ or is a version such as 1.2.3 or 1.2.3pre4.
func IsReleaseBranch(branchName string) bool {
	return strings.HasPrefix(branchName, releaseBranchPrefixConstant) || releaseVersionExpression.MatchString(branchName)
}

func (kind BranchKind) String() string {
	return string(kind)
}
