package schema

import (
	"bytes"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"

	"github.com/temirov/flint/internal/document"
)

const (
	schemaCacheHitMessage      = "schema cache hit"
	schemaLoadedMessage        = "schema loaded"
	logFieldReferenceConstant  = "schema_reference"
	logFieldSchemaPathConstant = "schema_path"
)

// Cache compiles each resolved schema file once.
type Cache struct {
	resolver *Resolver
	logger   *zap.Logger

	mutex   sync.Mutex
	schemas map[string]*jsonschema.Schema
}

// NewCache constructs an empty Cache. A nil logger disables diagnostics.
func NewCache(resolver *Resolver, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		resolver: resolver,
		logger:   logger,
		schemas:  make(map[string]*jsonschema.Schema),
	}
}

// Load resolves reference and returns its compiled schema, reading the file only on
// the first request for the resolved path.
func (cache *Cache) Load(reference string) (*jsonschema.Schema, error) {
	schemaPath, resolveError := cache.resolver.Resolve(reference)
	if resolveError != nil {
		return nil, resolveError
	}

	cache.mutex.Lock()
	defer cache.mutex.Unlock()

	if compiled, found := cache.schemas[schemaPath]; found {
		cache.logger.Debug(schemaCacheHitMessage, zap.String(logFieldReferenceConstant, reference), zap.String(logFieldSchemaPathConstant, schemaPath))
		return compiled, nil
	}

	contents, readError := cache.resolver.fileSystem.ReadFile(schemaPath)
	if readError != nil {
		return nil, &ResolutionError{Reference: reference, SearchPaths: []string{schemaPath}}
	}
	schemaDocument, unmarshalError := jsonschema.UnmarshalJSON(bytes.NewReader(contents))
	if unmarshalError != nil {
		return nil, &MalformedError{Path: schemaPath, Err: unmarshalError}
	}

	compiler := jsonschema.NewCompiler()
	if addError := compiler.AddResource(schemaPath, schemaDocument); addError != nil {
		return nil, &InvalidSchemaError{Path: schemaPath, Err: addError}
	}
	compiled, compileError := compiler.Compile(schemaPath)
	if compileError != nil {
		return nil, &InvalidSchemaError{Path: schemaPath, Err: compileError}
	}

	cache.schemas[schemaPath] = compiled
	cache.logger.Debug(schemaLoadedMessage, zap.String(logFieldReferenceConstant, reference), zap.String(logFieldSchemaPathConstant, schemaPath))
	return compiled, nil
}

// Validate checks value, as produced by document.Parse, against the schema named by
// reference. Resolution and compilation failures are returned unchanged; a
// validation failure is a *jsonschema.ValidationError.
func (cache *Cache) Validate(reference string, value any) error {
	compiled, loadError := cache.Load(reference)
	if loadError != nil {
		return loadError
	}
	return compiled.Validate(document.Plain(value))
}

// Len reports how many schemas have been compiled.
func (cache *Cache) Len() int {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()
	return len(cache.schemas)
}
