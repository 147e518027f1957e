package runconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Ops       map[string]yaml.Node `yaml:"ops"`
	Graphs    map[string]yaml.Node `yaml:"graphs"`
	Resources map[string]yaml.Node `yaml:"resources"`
	Loggers   map[string]yaml.Node `yaml:"loggers"`
	Execution *yaml.Node           `yaml:"execution"`
}

// ParseYAML parses a YAML run configuration. Unknown top-level keys are
// rejected.
func ParseYAML(src []byte, filename string) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var doc yamlFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	cfg := New()
	conv := newYAMLConverter()
	sections := map[Section]map[string]yaml.Node{
		SectionOps:       doc.Ops,
		SectionGraphs:    doc.Graphs,
		SectionResources: doc.Resources,
		SectionLoggers:   doc.Loggers,
	}
	for _, s := range Sections {
		target := cfg.section(s)
		for name, node := range sections[s] {
			val, err := conv.toCty(&node)
			if err != nil {
				return nil, fmt.Errorf("%s: %s %q: %w", filename, s, name, err)
			}
			target[name] = val
		}
	}
	if doc.Execution != nil {
		val, err := conv.toCty(doc.Execution)
		if err != nil {
			return nil, fmt.Errorf("%s: execution: %w", filename, err)
		}
		cfg.Execution = val
	}
	return cfg, nil
}

// maxYAMLNodes bounds the nodes converted from one file, counting every
// alias expansion again.
const maxYAMLNodes = 100000

// yamlConverter converts YAML nodes to cty values, expanding aliases.
// Aliases that refer to an enclosing anchor are rejected.
type yamlConverter struct {
	expanding map[*yaml.Node]bool
	visited   int
}

func newYAMLConverter() *yamlConverter {
	return &yamlConverter{expanding: make(map[*yaml.Node]bool)}
}

// toCty converts a YAML node to a cty value, keeping YAML's own typing:
// ints and floats become numbers, and quoted scalars stay strings.
func (c *yamlConverter) toCty(n *yaml.Node) (cty.Value, error) {
	c.visited++
	if c.visited > maxYAMLNodes {
		return cty.NilVal, fmt.Errorf("line %d: document expands to more than %d nodes", n.Line, maxYAMLNodes)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		return c.toCty(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return cty.NilVal, fmt.Errorf("line %d: unknown anchor %q", n.Line, n.Value)
		}
		if c.expanding[n.Alias] {
			return cty.NilVal, fmt.Errorf("line %d: alias %q refers to its own anchor", n.Line, n.Value)
		}
		c.expanding[n.Alias] = true
		defer delete(c.expanding, n.Alias)
		return c.toCty(n.Alias)
	case yaml.ScalarNode:
		return scalarToCty(n)
	case yaml.SequenceNode:
		elems := make([]cty.Value, 0, len(n.Content))
		for i, child := range n.Content {
			val, err := c.toCty(child)
			if err != nil {
				return cty.NilVal, fmt.Errorf("[%d]: %w", i, err)
			}
			elems = append(elems, val)
		}
		return cty.TupleVal(elems), nil
	case yaml.MappingNode:
		attrs := make(map[string]cty.Value, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return cty.NilVal, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			if _, dup := attrs[key.Value]; dup {
				return cty.NilVal, fmt.Errorf("line %d: duplicate key %q", key.Line, key.Value)
			}
			val, err := c.toCty(value)
			if err != nil {
				return cty.NilVal, fmt.Errorf("%s: %w", key.Value, err)
			}
			attrs[key.Value] = val
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func scalarToCty(n *yaml.Node) (cty.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return cty.NullVal(cty.DynamicPseudoType), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return cty.NilVal, err
		}
		return cty.BoolVal(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return cty.NumberIntVal(i), nil
		}
		return cty.ParseNumberVal(n.Value)
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return cty.NilVal, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return cty.NilVal, fmt.Errorf("line %d: %s cannot be used as a configuration number", n.Line, n.Value)
		}
		return cty.NumberFloatVal(f), nil
	default:
		return cty.StringVal(n.Value), nil
	}
}
