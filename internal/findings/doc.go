// Package findings models audit results and renders them for people.
//
// Error findings are fatal: a run that collects one fails. Warning and
// ContextualWarning findings are advisory. Results groups findings by the file or
// directory they belong to, in the order the paths were first seen.
package findings
