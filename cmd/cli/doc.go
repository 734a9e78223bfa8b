// Package cli assembles the flint command-line interface: the Cobra command
// hierarchy, the layered configuration (embedded defaults, optional file,
// FLINT_* environment) and the zap logger shared by the audit, lint, fix and
// format commands.
package cli
