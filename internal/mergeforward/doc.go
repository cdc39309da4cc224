// Package mergeforward merges upstream master into the branch under build and
// reports the revision that lint and diff checks should compare against.
//
// Branches are classified as master, release or feature. Feature branches
// fetch master and merge it with a commit dated after the fetched commit, so
// identical inputs always produce the same merge commit. Master reports its
// previous revision and release branches report their merge base with an
// existing FETCH_HEAD. The resulting lint_revision is written to a
// properties.Recorder.
package mergeforward
