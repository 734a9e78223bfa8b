// Package contextpath labels positions inside parsed documents.
package contextpath

import (
	"fmt"
	"strings"
)

const (
	// RootSegment starts every path.
	RootSegment       = "root"
	segmentSeparator  = "/"
	segmentFormatVerb = "%v"
)

// ContextPath is an immutable sequence of segments. Extending a path never changes
// the receiver, so sibling branches of a traversal never observe each other.
type ContextPath struct {
	segments []string
}

// Root returns a path holding only RootSegment.
func Root() ContextPath {
	return ContextPath{segments: []string{RootSegment}}
}

// New builds a path from explicit segments.
func New(segments ...string) ContextPath {
	duplicated := make([]string, len(segments))
	copy(duplicated, segments)
	return ContextPath{segments: duplicated}
}

// Append returns a new path with segments added at the end.
func (path ContextPath) Append(segments ...string) ContextPath {
	extended := make([]string, 0, len(path.segments)+len(segments))
	extended = append(extended, path.segments...)
	extended = append(extended, segments...)
	return ContextPath{segments: extended}
}

// AppendIndex returns a new path ending with the stringified index.
func (path ContextPath) AppendIndex(index int) ContextPath {
	return path.Append(fmt.Sprintf("%d", index))
}

// Segment stringifies an arbitrary label for use as a path segment.
func Segment(label any) string {
	if text, isString := label.(string); isString {
		return text
	}
	return fmt.Sprintf(segmentFormatVerb, label)
}

// IsEmpty reports whether the path has no segments.
func (path ContextPath) IsEmpty() bool {
	return len(path.segments) == 0
}

// Len returns the number of segments.
func (path ContextPath) Len() int {
	return len(path.segments)
}

// Last returns the final segment, or "" for an empty path.
func (path ContextPath) Last() string {
	if len(path.segments) == 0 {
		return ""
	}
	return path.segments[len(path.segments)-1]
}

// Segments returns a copy of the segments.
func (path ContextPath) Segments() []string {
	duplicated := make([]string, len(path.segments))
	copy(duplicated, path.segments)
	return duplicated
}

// String renders the path as /root/a/b.
func (path ContextPath) String() string {
	return segmentSeparator + strings.Join(path.segments, segmentSeparator)
}
