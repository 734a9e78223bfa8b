package pathutils

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

const windowsOperatingSystemConstant = "windows"

// RootSanitizerConfiguration controls how search roots are normalized.
type RootSanitizerConfiguration struct {
	// PruneNestedRoots drops roots that live inside another supplied root so no
	// repository is discovered twice.
	PruneNestedRoots bool
}

// RootSanitizer normalizes the directories a command searches.
type RootSanitizer struct {
	homeExpander  *HomeExpander
	configuration RootSanitizerConfiguration
}

// NewRootSanitizer constructs a RootSanitizer that prunes nested roots.
func NewRootSanitizer() *RootSanitizer {
	return NewRootSanitizerWithConfiguration(nil, RootSanitizerConfiguration{PruneNestedRoots: true})
}

// NewRootSanitizerWithConfiguration constructs a RootSanitizer using the provided expander and configuration.
func NewRootSanitizerWithConfiguration(homeExpander *HomeExpander, configuration RootSanitizerConfiguration) *RootSanitizer {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &RootSanitizer{homeExpander: homeExpander, configuration: configuration}
}

// Sanitize trims whitespace, expands the home directory shortcut, drops empty
// entries, and optionally prunes nested roots. Surviving roots keep their input
// order. The result is nil when nothing survives.
func (sanitizer *RootSanitizer) Sanitize(candidateRoots []string) []string {
	if sanitizer == nil {
		sanitizer = NewRootSanitizer()
	}

	sanitizedRoots := sanitizer.homeExpander.ExpandAll(candidateRoots)

	if len(sanitizedRoots) == 0 {
		return nil
	}
	if sanitizer.configuration.PruneNestedRoots {
		return pruneNestedRoots(sanitizedRoots)
	}
	return sanitizedRoots
}

type rootCandidate struct {
	originalIndex int
	value         string
	comparison    string
}

func pruneNestedRoots(roots []string) []string {
	candidates := make([]rootCandidate, 0, len(roots))
	for rootIndex, root := range roots {
		candidates = append(candidates, rootCandidate{
			originalIndex: rootIndex,
			value:         root,
			comparison:    comparisonPath(canonicalizePath(root)),
		})
	}

	// Shorter paths first so every parent is selected before its children.
	sort.SliceStable(candidates, func(first int, second int) bool {
		if len(candidates[first].comparison) == len(candidates[second].comparison) {
			return candidates[first].comparison < candidates[second].comparison
		}
		return len(candidates[first].comparison) < len(candidates[second].comparison)
	})

	selected := make([]rootCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		covered := false
		for _, existing := range selected {
			if isNestedPath(existing.comparison, candidate.comparison) {
				covered = true
				break
			}
		}
		if !covered {
			selected = append(selected, candidate)
		}
	}

	sort.SliceStable(selected, func(first int, second int) bool {
		return selected[first].originalIndex < selected[second].originalIndex
	})

	pruned := make([]string, 0, len(selected))
	for _, candidate := range selected {
		pruned = append(pruned, candidate.value)
	}
	return pruned
}

func canonicalizePath(path string) string {
	absolutePath, absoluteError := filepath.Abs(filepath.Clean(path))
	if absoluteError != nil {
		return filepath.Clean(path)
	}
	return absolutePath
}

func comparisonPath(path string) string {
	if runtime.GOOS == windowsOperatingSystemConstant {
		return strings.ToLower(path)
	}
	return path
}

// isNestedPath reports whether candidate equals parent or lies beneath it.
func isNestedPath(parent string, candidate string) bool {
	if candidate == parent {
		return true
	}
	if !strings.HasPrefix(candidate, parent) || len(candidate) <= len(parent) {
		return false
	}
	if parent[len(parent)-1] == os.PathSeparator {
		return true
	}
	return candidate[len(parent)] == os.PathSeparator
}
