package findings

import (
	"errors"
	"fmt"
	"io"
)

const (
	numberedFindingTemplateConstant = "%d: %s\n"
	findingLineTemplateConstant     = "%s\n"
	statisticsWarningsTemplate      = "Warnings:    %d\n"
	statisticsErrorsTemplate        = "Errors:      %d\n"
	statisticsDirectoriesTemplate   = "Directories: %d\n"
	statisticsFilesTemplate         = "Files:       %d\n"
	statisticsPassedTemplate        = "Passed:      %s\n"
	passedYesConstant               = "yes"
	passedNoConstant                = "no"
)

// ErrRunFailed is returned by commands whose results contain a fatal finding.
var ErrRunFailed = errors.New("fatal findings reported")

// PathKind classifies linted paths for statistics.
type PathKind int

// Path kinds.
const (
	PathKindUnknown PathKind = iota
	PathKindFile
	PathKindDirectory
)

// PathKindResolver classifies a path whose kind was not recorded.
type PathKindResolver func(path string) PathKind

type pathEntry struct {
	kind     PathKind
	findings []Finding
}

// Results collects findings per path in first-seen order.
type Results struct {
	order   []string
	entries map[string]*pathEntry
}

// NewResults constructs an empty collection.
func NewResults() *Results {
	return &Results{entries: make(map[string]*pathEntry)}
}

func (results *Results) entry(path string) *pathEntry {
	existing, found := results.entries[path]
	if found {
		return existing
	}
	created := &pathEntry{}
	results.entries[path] = created
	results.order = append(results.order, path)
	return created
}

// Add attaches finding to path.
func (results *Results) Add(path string, finding Finding) {
	pathResults := results.entry(path)
	pathResults.findings = append(pathResults.findings, finding)
}

// AddAll attaches every finding to path.
func (results *Results) AddAll(path string, pathFindings []Finding) {
	for _, finding := range pathFindings {
		results.Add(path, finding)
	}
}

// MarkLinted records that path was examined even if nothing was found.
func (results *Results) MarkLinted(path string, kind PathKind) {
	pathResults := results.entry(path)
	if kind != PathKindUnknown {
		pathResults.kind = kind
	}
}

// Paths returns the examined paths in first-seen order.
func (results *Results) Paths() []string {
	duplicated := make([]string, len(results.order))
	copy(duplicated, results.order)
	return duplicated
}

// Linted reports whether path was examined.
func (results *Results) Linted(path string) bool {
	_, found := results.entries[path]
	return found
}

// FindingsFor returns the findings attached to path.
func (results *Results) FindingsFor(path string) []Finding {
	pathResults, found := results.entries[path]
	if !found {
		return nil
	}
	duplicated := make([]Finding, len(pathResults.findings))
	copy(duplicated, pathResults.findings)
	return duplicated
}

// Findings returns every finding grouped by path.
func (results *Results) Findings() []Finding {
	var collected []Finding
	for _, path := range results.order {
		collected = append(collected, results.entries[path].findings...)
	}
	return collected
}

// Failed reports whether any fatal finding was collected.
func (results *Results) Failed() bool {
	return AnyFatal(results.Findings())
}

// AnyFatal reports whether any of the findings is fatal.
func AnyFatal(collected []Finding) bool {
	for _, finding := range collected {
		if finding.Fatal() {
			return true
		}
	}
	return false
}

// Summary aggregates counts for a results collection.
type Summary struct {
	Warnings    int
	Errors      int
	Directories int
	Files       int
	Passed      bool
}

// Summarize counts findings and paths. Paths without a recorded kind are
// classified by resolve, or counted as files when resolve is nil.
func (results *Results) Summarize(resolve PathKindResolver) Summary {
	summary := Summary{Passed: true}
	for _, path := range results.order {
		pathResults := results.entries[path]
		kind := pathResults.kind
		if kind == PathKindUnknown && resolve != nil {
			kind = resolve(path)
		}
		if kind == PathKindDirectory {
			summary.Directories++
		} else {
			summary.Files++
		}
		for _, finding := range pathResults.findings {
			if finding.Fatal() {
				summary.Errors++
				summary.Passed = false
			} else {
				summary.Warnings++
			}
		}
	}
	return summary
}

// WriteReport prints every finding followed, when requested, by statistics.
func WriteReport(writer io.Writer, results *Results, resolve PathKindResolver, printStatistics bool) error {
	collected := results.Findings()
	for _, finding := range collected {
		if _, writeError := fmt.Fprintf(writer, findingLineTemplateConstant, finding.String()); writeError != nil {
			return writeError
		}
	}
	if !printStatistics {
		return nil
	}
	if len(collected) > 0 {
		if _, writeError := fmt.Fprintln(writer); writeError != nil {
			return writeError
		}
	}
	return WriteSummary(writer, results.Summarize(resolve))
}

// WriteSummary prints the statistics block.
func WriteSummary(writer io.Writer, summary Summary) error {
	passedText := passedYesConstant
	if !summary.Passed {
		passedText = passedNoConstant
	}
	lines := []struct {
		template string
		value    any
	}{
		{template: statisticsWarningsTemplate, value: summary.Warnings},
		{template: statisticsErrorsTemplate, value: summary.Errors},
		{template: statisticsDirectoriesTemplate, value: summary.Directories},
		{template: statisticsFilesTemplate, value: summary.Files},
		{template: statisticsPassedTemplate, value: passedText},
	}
	for _, line := range lines {
		if _, writeError := fmt.Fprintf(writer, line.template, line.value); writeError != nil {
			return writeError
		}
	}
	return nil
}

// WriteNumbered prints findings numbered from one.
func WriteNumbered(writer io.Writer, collected []Finding) error {
	for findingIndex, finding := range collected {
		if _, writeError := fmt.Fprintf(writer, numberedFindingTemplateConstant, findingIndex+1, finding.String()); writeError != nil {
			return writeError
		}
	}
	return nil
}
