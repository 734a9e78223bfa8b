// Package jsonrepair rewrites hand-authored, quasi-JSON text into text a strict
// JSON parser accepts.
//
// The Repairer is a single pass lexical state machine. It tracks container and
// string nesting on an explicit stack, escapes raw newlines and tabs found inside
// string bodies, and otherwise copies characters through unchanged. Quote
// characters are never rewritten, so single-quoted strings stay single-quoted,
// and closing brackets are not matched against the container kind that opened
// them.
package jsonrepair
