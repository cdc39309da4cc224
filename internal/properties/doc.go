// Package properties records build properties such as lint_revision.
//
// MemoryStore keeps properties for the lifetime of a process; FileStore
// persists them as YAML so later build steps can read them back.
package properties
