// Package audit scans git repositories for configuration files that carry
// unsecured credentials.
//
// Auditors decide which repositories and files they inspect. SharedConfigAuditor
// walks JSON configuration with the secrets rule, JavaScriptAuditor runs an
// external linter, and CompositeAuditor and RepositoryFilter combine them.
// Service drives discovery and reporting and CommandBuilder wires the audit
// Cobra command.
package audit
