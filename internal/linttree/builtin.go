package linttree

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// RecipeTreeName names the tree returned by Recipe.
	RecipeTreeName = "recipe"
	// FlowEntitiesTreeName names the tree returned by FlowEntities.
	FlowEntitiesTreeName = "flow-entities"

	// BindingGroup is the property group holding binding names.
	BindingGroup = "binding"
	// BindingReferencesKey lists the bindings used by triggerers and shared configuration.
	BindingReferencesKey = "references"
	// BindingDefinitionsKey lists the bindings declared by flows.
	BindingDefinitionsKey = "definitions"

	jsonFilesGlobConstant        = "*.json"
	nestedJSONFilesGlobConstant  = "**/*.json"
	bindingFieldConstant         = "binding"
	bindingsFieldConstant        = "bindings"
	checkBindingsNameConstant    = "check_bindings"
	undefinedBindingsTemplate    = "Undefined bindings: [%s]"
	quotedBindingTemplate        = "'%s'"
	bindingListSeparatorConstant = ", "
	unknownTreeTemplate          = "%w: %q (expected one of %s)"
	treeNameSeparatorConstant    = ", "
)

// ErrUnknownTree is returned by Builtin for names it does not know.
var ErrUnknownTree = errors.New("unknown lint tree")

// Recipe checks an exported recipe: metadata.json follows metadata.schema and the
// optional entity directories hold parseable JSON.
func Recipe() Linter {
	optionalJSONDirectory := func(name string) Node {
		return Directory{Path: name, Optional: true, Children: []Node{
			Files{Glob: jsonFilesGlobConstant, Children: []Node{JSONContent{}}},
		}}
	}
	return Linter{
		StrictDirectoryContents: true,
		Children: []Node{
			File{Path: "metadata.json", Children: []Node{
				JSONContent{Rules: []JSONRule{FollowsSchema{Reference: "metadata.schema"}}},
			}},
			optionalJSONDirectory("statefulBehaviours"),
			optionalJSONDirectory("flows"),
			optionalJSONDirectory("sharedConfigs"),
			optionalJSONDirectory("resourceCollections"),
		},
	}
}

// FlowEntities checks a flow entity export: triggerers and shared configuration
// follow their schemas, and every binding they reference is declared by a flow.
func FlowEntities() Linter {
	collectReferences := CollectValues{
		Name:     "..binding",
		Extract:  FieldValues(bindingFieldConstant),
		Group:    BindingGroup,
		Key:      BindingReferencesKey,
		Optional: true,
	}
	collectDefinitions := CollectValues{
		Name:     ".bindings keys",
		Extract:  MappingKeys(bindingsFieldConstant),
		Group:    BindingGroup,
		Key:      BindingDefinitionsKey,
		Optional: true,
	}
	schemaDirectory := func(name string, schemaReference string) Node {
		return Directory{Path: name, Optional: true, Children: []Node{
			Files{Glob: nestedJSONFilesGlobConstant, Children: []Node{
				JSONContent{Rules: []JSONRule{FollowsSchema{Reference: schemaReference}, collectReferences}},
			}},
		}}
	}
	return Linter{
		StrictDirectoryContents: true,
		Children: []Node{
			schemaDirectory("triggerers", "triggerers.schema"),
			schemaDirectory("sharedConfig", "shared-config.schema"),
			Directory{Path: "javascript", Optional: true},
			Directory{Path: "dnsOverrides", Optional: true},
			Directory{Path: "flowResources", Optional: true},
			Directory{Path: "flows", Optional: true, Children: []Node{
				Files{Glob: nestedJSONFilesGlobConstant, Children: []Node{
					JSONContent{Rules: []JSONRule{collectDefinitions}},
				}},
			}},
			Directory{Path: "resourceCollections", Optional: true},
			Function{Name: checkBindingsNameConstant, Check: CheckBindings},
		},
	}
}

// CheckBindings fails when a referenced binding has no definition. Unused
// definitions are allowed because bindings may be matched by pattern.
func CheckBindings(lintContext *Context) error {
	definitions := bindingNames(lintContext.Properties().Values(BindingGroup, BindingDefinitionsKey))
	references := bindingNames(lintContext.Properties().Values(BindingGroup, BindingReferencesKey))

	var undefined []string
	for reference := range references {
		if _, defined := definitions[reference]; !defined {
			undefined = append(undefined, fmt.Sprintf(quotedBindingTemplate, reference))
		}
	}
	if len(undefined) == 0 {
		return nil
	}
	sort.Strings(undefined)
	return fmt.Errorf(undefinedBindingsTemplate, strings.Join(undefined, bindingListSeparatorConstant))
}

func bindingNames(values []any) map[string]struct{} {
	names := make(map[string]struct{}, len(values))
	for _, value := range values {
		name, isString := value.(string)
		if !isString || len(name) == 0 {
			continue
		}
		names[name] = struct{}{}
	}
	return names
}

var builtinTrees = map[string]func() Linter{
	RecipeTreeName:       Recipe,
	FlowEntitiesTreeName: FlowEntities,
}

// BuiltinNames lists the names accepted by Builtin.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinTrees))
	for name := range builtinTrees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns the tree registered under name.
func Builtin(name string) (Linter, error) {
	constructor, found := builtinTrees[name]
	if !found {
		return Linter{}, fmt.Errorf(unknownTreeTemplate, ErrUnknownTree, name, strings.Join(BuiltinNames(), treeNameSeparatorConstant))
	}
	return constructor(), nil
}
