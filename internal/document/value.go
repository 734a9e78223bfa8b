package document

import (
	"encoding/json"
)

// Mapping is an object whose keys iterate in first-seen order. Setting an existing
// key replaces its value but keeps its position.
type Mapping struct {
	keys   []string
	values map[string]any
}

// NewMapping constructs an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]any)}
}

// Set stores value under key.
func (mapping *Mapping) Set(key string, value any) {
	if _, exists := mapping.values[key]; !exists {
		mapping.keys = append(mapping.keys, key)
	}
	mapping.values[key] = value
}

// Get returns the value stored under key.
func (mapping *Mapping) Get(key string) (any, bool) {
	if mapping == nil {
		return nil, false
	}
	value, exists := mapping.values[key]
	return value, exists
}

// Keys returns the keys in iteration order.
func (mapping *Mapping) Keys() []string {
	if mapping == nil {
		return nil
	}
	duplicated := make([]string, len(mapping.keys))
	copy(duplicated, mapping.keys)
	return duplicated
}

// Len returns the number of entries.
func (mapping *Mapping) Len() int {
	if mapping == nil {
		return 0
	}
	return len(mapping.keys)
}

// Range calls visit for every entry in order until visit returns false.
func (mapping *Mapping) Range(visit func(key string, value any) bool) {
	if mapping == nil {
		return
	}
	for _, key := range mapping.keys {
		if !visit(key, mapping.values[key]) {
			return
		}
	}
}

// MarshalJSON encodes the mapping preserving key order.
func (mapping *Mapping) MarshalJSON() ([]byte, error) {
	buffer := []byte{'{'}
	for keyIndex, key := range mapping.keys {
		if keyIndex > 0 {
			buffer = append(buffer, ',')
		}
		encodedKey, keyError := json.Marshal(key)
		if keyError != nil {
			return nil, keyError
		}
		encodedValue, valueError := json.Marshal(mapping.values[key])
		if valueError != nil {
			return nil, valueError
		}
		buffer = append(buffer, encodedKey...)
		buffer = append(buffer, ':')
		buffer = append(buffer, encodedValue...)
	}
	return append(buffer, '}'), nil
}

// Plain converts a parsed value into map[string]any / []any form for consumers
// that do not care about key order, such as schema validators.
func Plain(value any) any {
	switch typed := value.(type) {
	case *Mapping:
		plainMapping := make(map[string]any, typed.Len())
		typed.Range(func(key string, entry any) bool {
			plainMapping[key] = Plain(entry)
			return true
		})
		return plainMapping
	case []any:
		plainSequence := make([]any, len(typed))
		for elementIndex, element := range typed {
			plainSequence[elementIndex] = Plain(element)
		}
		return plainSequence
	default:
		return typed
	}
}

// Truthy mirrors the loose truthiness used when deciding whether optional
// identifiers are present: empty strings, zero numbers, false, nil, and empty
// containers are false.
func Truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return len(typed) > 0
	case json.Number:
		floatValue, floatError := typed.Float64()
		return floatError != nil || floatValue != 0
	case *Mapping:
		return typed.Len() > 0
	case []any:
		return len(typed) > 0
	default:
		return true
	}
}
