// Package execshell runs external tools on behalf of mergeforward.
//
// ShellExecutor wraps a CommandRunner with structured zap logging and turns
// non-zero exit codes into typed errors. OSCommandRunner is the os/exec backed
// runner used in production; tests substitute recording runners.
package execshell
