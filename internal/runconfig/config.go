// Package runconfig loads the run configuration of a job: the raw outer
// configuration values supplied for its ops, graphs, resources, loggers and
// executor when the job is executed.
//
// Run configuration files are HCL (`.hcl`) or YAML (`.yaml`, `.yml`).
//
//	op "fetch" {
//	  config = { url = "https://example.com/data.csv" }
//	}
//
//	resource "s3" {
//	  config = { region = env.AWS_REGION }
//	}
//
//	execution {
//	  config = { max_concurrent = 8 }
//	}
//
// The YAML form uses top-level `ops`, `graphs`, `resources`, `loggers` and
// `execution` keys.
package runconfig

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Config holds raw configuration values keyed by node name.
type Config struct {
	Ops       map[string]cty.Value
	Graphs    map[string]cty.Value
	Resources map[string]cty.Value
	Loggers   map[string]cty.Value

	// Execution configures the executor; cty.NilVal when absent.
	Execution cty.Value
}

// New returns an empty Config.
func New() *Config {
	return &Config{
		Ops:       map[string]cty.Value{},
		Graphs:    map[string]cty.Value{},
		Resources: map[string]cty.Value{},
		Loggers:   map[string]cty.Value{},
	}
}

// Section names a group of entries.
type Section string

const (
	SectionOps       Section = "ops"
	SectionGraphs    Section = "graphs"
	SectionResources Section = "resources"
	SectionLoggers   Section = "loggers"
)

// Sections lists every named section in a stable order.
var Sections = []Section{SectionOps, SectionGraphs, SectionResources, SectionLoggers}

func (c *Config) section(s Section) map[string]cty.Value {
	switch s {
	case SectionOps:
		return c.Ops
	case SectionGraphs:
		return c.Graphs
	case SectionResources:
		return c.Resources
	case SectionLoggers:
		return c.Loggers
	default:
		return nil
	}
}

// Lookup returns the value configured for name in a section, or cty.NilVal.
// A nil Config has no entries.
func (c *Config) Lookup(s Section, name string) cty.Value {
	if c == nil {
		return cty.NilVal
	}
	if v, ok := c.section(s)[name]; ok {
		return v
	}
	return cty.NilVal
}

// Names returns the sorted entry names of a section.
func (c *Config) Names(s Section) []string {
	if c == nil {
		return nil
	}
	entries := c.section(s)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasExecution reports whether an execution entry was supplied.
func (c *Config) HasExecution() bool {
	return c != nil && c.Execution.Type() != cty.NilType
}

// Merge combines configs in order. Entries of later configs replace entries
// of the same name from earlier ones; values are not merged deeply.
func Merge(configs ...*Config) *Config {
	out := New()
	for _, c := range configs {
		if c == nil {
			continue
		}
		for _, s := range Sections {
			target := out.section(s)
			for name, v := range c.section(s) {
				target[name] = v
			}
		}
		if c.HasExecution() {
			out.Execution = c.Execution
		}
	}
	return out
}
