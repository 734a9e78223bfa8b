// Package flags formats and validates enumerated command-line values.
package flags
