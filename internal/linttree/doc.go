// Package linttree declares the expected layout of a directory as a tree of nodes
// and lints a directory against it.
//
// Directory, File, Files and Directories select paths; JSONContent parses the
// selected file and hands the value to JSON rules such as FollowsSchema,
// CollectValues and AuditSecrets; Function and ShellCommand run arbitrary checks.
// A Linter runs the tree and, with strict directory contents, reports every
// top-level entry that no node selected. Recipe and FlowEntities are the built-in
// trees.
package linttree
