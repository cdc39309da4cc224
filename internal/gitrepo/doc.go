// Package gitrepo contains the git operations performed inside a build workspace.
//
// RepositoryManager binds a working directory to a GitExecutor and exposes
// fetch, merge, revision lookup, merge-base and log queries with the exact
// command lines the merge-forward workflow relies on.
package gitrepo
