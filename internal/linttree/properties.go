package linttree

import (
	"fmt"
	"io"
)

const (
	propertyGroupTemplate = "+- %s\n"
	propertyKeyTemplate   = "   +- %s\n"
	propertyItemTemplate  = "      |- %v\n"
	propertyValueTemplate = "    Value: %v\n"
)

type propertyGroup struct {
	keys   []string
	values map[string]any
}

// Properties holds values collected while linting, grouped and keyed, in
// insertion order.
type Properties struct {
	groupNames []string
	groups     map[string]*propertyGroup
}

// NewProperties constructs an empty collection.
func NewProperties() *Properties {
	return &Properties{groups: make(map[string]*propertyGroup)}
}

func (properties *Properties) group(name string) *propertyGroup {
	existing, found := properties.groups[name]
	if found {
		return existing
	}
	created := &propertyGroup{values: make(map[string]any)}
	properties.groups[name] = created
	properties.groupNames = append(properties.groupNames, name)
	return created
}

// Set replaces the value stored under group and key.
func (properties *Properties) Set(groupName string, key string, value any) {
	targetGroup := properties.group(groupName)
	if _, found := targetGroup.values[key]; !found {
		targetGroup.keys = append(targetGroup.keys, key)
	}
	targetGroup.values[key] = value
}

// Get returns the value stored under group and key.
func (properties *Properties) Get(groupName string, key string) (any, bool) {
	existingGroup, found := properties.groups[groupName]
	if !found {
		return nil, false
	}
	value, found := existingGroup.values[key]
	return value, found
}

// Values returns the list stored under group and key. A scalar is returned as a
// single-element list.
func (properties *Properties) Values(groupName string, key string) []any {
	value, found := properties.Get(groupName, key)
	if !found {
		return nil
	}
	if list, isList := value.([]any); isList {
		return append([]any(nil), list...)
	}
	return []any{value}
}

// Append adds value to the list stored under group and key.
func (properties *Properties) Append(groupName string, key string, value any) {
	properties.Set(groupName, key, append(properties.Values(groupName, key), value))
}

// Extend adds values to the list stored under group and key.
func (properties *Properties) Extend(groupName string, key string, values []any) {
	properties.Set(groupName, key, append(properties.Values(groupName, key), values...))
}

// Write prints the collected values as a tree.
func (properties *Properties) Write(writer io.Writer) error {
	for _, groupName := range properties.groupNames {
		if _, writeError := fmt.Fprintf(writer, propertyGroupTemplate, groupName); writeError != nil {
			return writeError
		}
		currentGroup := properties.groups[groupName]
		for _, key := range currentGroup.keys {
			if _, writeError := fmt.Fprintf(writer, propertyKeyTemplate, key); writeError != nil {
				return writeError
			}
			value := currentGroup.values[key]
			list, isList := value.([]any)
			if !isList {
				if _, writeError := fmt.Fprintf(writer, propertyValueTemplate, value); writeError != nil {
					return writeError
				}
				continue
			}
			for _, item := range list {
				if _, writeError := fmt.Fprintf(writer, propertyItemTemplate, item); writeError != nil {
					return writeError
				}
			}
		}
	}
	return nil
}
