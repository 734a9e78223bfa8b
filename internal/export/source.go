package export

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/temirov/flint/internal/document"
	"github.com/temirov/flint/internal/filesystem"
	"github.com/temirov/flint/internal/jsonrepair"
)

const (
	excerptRadiusConstant  = 40
	readFailureTemplate    = "unable to read %s: %w"
	repairFailureTemplate  = "unable to repair %s: %w"
	parseFailureTemplate   = "unable to parse %s after repair: %w"
	excerptFailureTemplate = "unable to parse %s after repair near %q: %w"
)

// loadFlowDocument reads a flow file, repairs it and parses it as strict JSON.
// Parse failures quote the repaired text around the offending offset.
func loadFlowDocument(fileSystem filesystem.FileSystem, filePath string) (any, error) {
	content, readError := fileSystem.ReadFile(filePath)
	if readError != nil {
		return nil, fmt.Errorf(readFailureTemplate, filePath, readError)
	}

	repaired, repairError := jsonrepair.Repair(string(content))
	if repairError != nil {
		return nil, fmt.Errorf(repairFailureTemplate, filePath, repairError)
	}

	parsedValue, parseError := document.ParseStrict(repaired)
	if parseError != nil {
		var syntaxError *json.SyntaxError
		if errors.As(parseError, &syntaxError) {
			return nil, fmt.Errorf(excerptFailureTemplate, filePath, excerpt(repaired, syntaxError.Offset), parseError)
		}
		return nil, fmt.Errorf(parseFailureTemplate, filePath, parseError)
	}
	return parsedValue, nil
}

func excerpt(text string, offset int64) string {
	start := max(int(offset)-excerptRadiusConstant, 0)
	end := min(int(offset)+excerptRadiusConstant, len(text))
	if start >= end {
		return ""
	}
	return text[start:end]
}
