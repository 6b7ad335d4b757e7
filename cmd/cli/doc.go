// Package cli constructs the argomigrate command-line interface, wiring the
// Cobra command hierarchy, the layered configuration loader and structured
// logging into the migrate and deploy subcommands.
package cli
