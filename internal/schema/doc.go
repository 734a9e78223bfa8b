// Package schema resolves JSON Schema references against the working directory and
// configured schema directories, and keeps compiled schemas for the rest of a run.
//
// A Cache is owned by one run and handed to every lint node that validates
// documents. Concurrent callers are serialized on a single mutex, so each resolved
// path is compiled at most once.
package schema
