package store

import (
	"fmt"
	"sort"
	"strings"
)

// MemberKind labels a descriptor entry.
type MemberKind string

const (
	KindState    MemberKind = "state"
	KindGetter   MemberKind = "getter"
	KindAction   MemberKind = "action"
	KindMutation MemberKind = "mutation"
	KindModule   MemberKind = "module"
)

// Descriptor describes one member of an assembled configuration tree:
// a dotted path, the member kind, and (for state) the inferred value type.
type Descriptor struct {
	Path string     `json:"path"`
	Kind MemberKind `json:"kind"`
	Type string     `json:"type,omitempty"`
}

// Describe flattens a configuration tree into descriptors, suitable for
// devtools-style introspection or documentation. Entries are ordered by path
// within each kind, modules recursed depth-first.
func Describe(cfg *Config) []Descriptor {
	if cfg == nil {
		return []Descriptor{}
	}
	return describeConfig(cfg, "")
}

func describeConfig(cfg *Config, prefix string) []Descriptor {
	var out []Descriptor

	for _, key := range sortedKeys(cfg.State) {
		out = append(out, deriveStateDescriptors(cfg.State[key], joinPath(prefix, key))...)
	}
	for _, name := range sortedGetterNames(cfg.Getters) {
		out = append(out, Descriptor{Path: joinPath(prefix, name), Kind: KindGetter})
	}
	for _, name := range sortedActionNames(cfg.Actions) {
		out = append(out, Descriptor{Path: joinPath(prefix, name), Kind: KindAction})
	}
	for _, name := range sortedMutationNames(cfg.Mutations) {
		out = append(out, Descriptor{Path: joinPath(prefix, name), Kind: KindMutation})
	}

	moduleNames := make([]string, 0, len(cfg.Modules))
	for name := range cfg.Modules {
		moduleNames = append(moduleNames, name)
	}
	sort.Strings(moduleNames)
	for _, name := range moduleNames {
		childPath := joinPath(prefix, name)
		out = append(out, Descriptor{Path: childPath, Kind: KindModule})
		out = append(out, describeConfig(cfg.Modules[name], childPath)...)
	}

	if out == nil {
		out = []Descriptor{}
	}
	return out
}

func deriveStateDescriptors(value any, path string) []Descriptor {
	switch typed := value.(type) {
	case State:
		return deriveStateDescriptors(map[string]any(typed), path)
	case map[string]any:
		if len(typed) == 0 {
			return []Descriptor{{Path: path, Kind: KindState, Type: "map[string]any"}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []Descriptor
		for _, key := range keys {
			fields = append(fields, deriveStateDescriptors(typed[key], joinPath(path, key))...)
		}
		return fields
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = typeName(typed[0])
		}
		return []Descriptor{{Path: path, Kind: KindState, Type: "[]" + elementType}}
	default:
		return []Descriptor{{Path: path, Kind: KindState, Type: typeName(typed)}}
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}

func sortedKeys(state State) []string {
	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedGetterNames(m map[string]Getter) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedActionNames(m map[string]Action) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedMutationNames(m map[string]Mutation) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
