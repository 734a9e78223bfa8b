package schema

import (
	"errors"
	"fmt"
	"strings"
)

const (
	resolutionErrorTemplate    = "could not find schema '%s' in any of: %s"
	malformedErrorTemplate     = "schema '%s' is not valid JSON: %v"
	invalidSchemaErrorTemplate = "schema '%s' could not be compiled: %v"
	searchPathSeparator        = ", "
)

var (
	// ErrSchemaNotFound is wrapped by ResolutionError.
	ErrSchemaNotFound = errors.New("schema not found")
	// ErrSchemaMalformed is wrapped by MalformedError.
	ErrSchemaMalformed = errors.New("schema malformed")
	// ErrSchemaInvalid is wrapped by InvalidSchemaError.
	ErrSchemaInvalid = errors.New("schema invalid")
)

// ResolutionError names a schema reference that matched no file and every path that
// was tried.
type ResolutionError struct {
	Reference   string
	SearchPaths []string
}

func (resolutionError *ResolutionError) Error() string {
	return fmt.Sprintf(resolutionErrorTemplate, resolutionError.Reference, strings.Join(resolutionError.SearchPaths, searchPathSeparator))
}

func (resolutionError *ResolutionError) Unwrap() error {
	return ErrSchemaNotFound
}

// MalformedError reports a schema file that is not JSON.
type MalformedError struct {
	Path string
	Err  error
}

func (malformedError *MalformedError) Error() string {
	return fmt.Sprintf(malformedErrorTemplate, malformedError.Path, malformedError.Err)
}

func (malformedError *MalformedError) Unwrap() []error {
	return []error{ErrSchemaMalformed, malformedError.Err}
}

// InvalidSchemaError reports JSON that the schema compiler rejected.
type InvalidSchemaError struct {
	Path string
	Err  error
}

func (invalidSchemaError *InvalidSchemaError) Error() string {
	return fmt.Sprintf(invalidSchemaErrorTemplate, invalidSchemaError.Path, invalidSchemaError.Err)
}

func (invalidSchemaError *InvalidSchemaError) Unwrap() []error {
	return []error{ErrSchemaInvalid, invalidSchemaError.Err}
}
