// Package cli constructs the mergeforward command-line interface, wiring the
// Cobra command hierarchy, the layered configuration loader and structured
// logging for the run and classify commands.
package cli
