// Package document holds the parsed form of audited configuration files and the
// tolerant parser that produces it.
//
// Parsed values use a small set of dynamic types: *Mapping for objects (keys keep
// first-seen order), []any for arrays, string, json.Number, bool, and nil.
// Parse prefers a strict JSON grammar and, unless asked to be strict, falls back
// to YAML 1.2, a superset of JSON that accepts single-quoted strings and similar
// hand-authoring habits.
package document
