// Package fixtures loads tool descriptors used by UI tests from YAML files.
//
//	tools:
//	  - key: echo
//	    fields:
//	      name: Echo
//	      integrationType: REST
//	    kinds:
//	      visibility: select
//
// Field order in the file is the order the form is filled in.
package fixtures

import (
	"fmt"
	"os"

	"admin-e2e/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Tools []toolEntry `yaml:"tools"`
}

type toolEntry struct {
	Key    string            `yaml:"key"`
	Fields yaml.Node         `yaml:"fields"`
	Kinds  map[string]string `yaml:"kinds"`
}

type Set struct {
	keys  []string
	tools map[string]entity.ToolDescriptor
}

func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

func Parse(data []byte) (*Set, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	set := &Set{tools: make(map[string]entity.ToolDescriptor, len(f.Tools))}
	for i, entry := range f.Tools {
		tool, err := entry.descriptor()
		if err != nil {
			return nil, fmt.Errorf("tool %d: %w", i, err)
		}

		key := entry.Key
		if key == "" {
			key = tool.Name()
		}
		if key == "" {
			return nil, fmt.Errorf("tool %d: no key and no name field", i)
		}
		if _, dup := set.tools[key]; dup {
			return nil, fmt.Errorf("duplicate tool %q", key)
		}

		set.keys = append(set.keys, key)
		set.tools[key] = tool
	}
	return set, nil
}

func (e toolEntry) descriptor() (entity.ToolDescriptor, error) {
	var d entity.ToolDescriptor
	if e.Fields.Kind == 0 {
		return d, fmt.Errorf("missing fields")
	}
	if e.Fields.Kind != yaml.MappingNode {
		return d, fmt.Errorf("line %d: fields must be a mapping", e.Fields.Line)
	}

	for i := 0; i+1 < len(e.Fields.Content); i += 2 {
		name, value := e.Fields.Content[i], e.Fields.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return d, fmt.Errorf("line %d: field %s must be a scalar", value.Line, name.Value)
		}

		kind := entity.KindOf(name.Value)
		if override, ok := e.Kinds[name.Value]; ok {
			parsed, ok := entity.ParseFieldKind(override)
			if !ok {
				return d, fmt.Errorf("field %s: unknown kind %q", name.Value, override)
			}
			kind = parsed
		}
		d = d.WithKind(name.Value, value.Value, kind)
	}
	return d, nil
}

func (s *Set) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *Set) Get(key string) (entity.ToolDescriptor, bool) {
	t, ok := s.tools[key]
	return t, ok
}

// Renamed returns the tool with its name field replaced, for tests that need
// a unique row per run.
func (s *Set) Renamed(key, name string) (entity.ToolDescriptor, error) {
	t, ok := s.tools[key]
	if !ok {
		return entity.ToolDescriptor{}, fmt.Errorf("unknown tool %q", key)
	}

	out := entity.ToolDescriptor{}
	replaced := false
	for _, f := range t.Fields {
		if f.Name == "name" {
			f.Value = name
			replaced = true
		}
		out = out.WithKind(f.Name, f.Value, f.Kind)
	}
	if !replaced {
		out = out.With("name", name)
	}
	return out, nil
}
