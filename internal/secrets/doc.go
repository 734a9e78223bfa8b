// Package secrets implements the rule set that looks for credentials committed to
// shared configuration documents.
//
// Rule plugs into walker.Walker. It skips mappings flagged "secure": true, labels
// paths with the referenceId of the enclosing mapping, and checks every string
// leaf against a password heuristic, an ordered table of value and key-name
// patterns, and any additional Detector such as the gitleaks rule pack.
package secrets
