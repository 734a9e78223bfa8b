// Package walker traverses parsed documents depth first and hands every string
// leaf to a caller-supplied rule set.
//
// Rules decide which mappings to skip, which labels decorate the context path, and
// what findings a leaf produces. String leaves that look like serialized JSON are
// parsed and traversed in place under an "embedded_json" segment.
package walker
