// Package merge builds the unified design catalog from the backbone design
// list and the secondary catalog sources, resolving each output field through
// a fixed priority chain.
package merge

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed chains.yaml
var defaultChainsYAML []byte

// Link is one (source, column) step in a field's priority chain.
type Link struct {
	Source string `yaml:"source"`
	Field  string `yaml:"field"`
}

// FieldSpec declares how one output column is resolved. Chains are evaluated
// first-non-empty-wins; links after a hit are never consulted.
type FieldSpec struct {
	Name    string `yaml:"name"`
	MaxLen  int    `yaml:"max_len"`
	Numeric bool   `yaml:"numeric"`
	Chain   []Link `yaml:"chain"`
}

// Chains is the full merge configuration: the backbone source, the fixed
// precedence order of secondary sources, and the per-field chains.
type Chains struct {
	Backbone   string      `yaml:"backbone"`
	Precedence []string    `yaml:"precedence"`
	Fields     []FieldSpec `yaml:"fields"`
}

// DefaultChains returns the built-in chain configuration.
func DefaultChains() *Chains {
	c, err := parseChains(defaultChainsYAML)
	if err != nil {
		// the embedded config is validated by tests
		panic(err)
	}
	return c
}

// LoadChains reads a chain configuration from a YAML file. An empty path
// returns the embedded default.
func LoadChains(path string) (*Chains, error) {
	if path == "" {
		return DefaultChains(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "merge: read chains %s", path)
	}
	return parseChains(data)
}

func parseChains(data []byte) (*Chains, error) {
	var wrapper struct {
		Chains Chains `yaml:"chains"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "merge: parse chains")
	}
	c := &wrapper.Chains
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Chains) validate() error {
	if c.Backbone == "" {
		return eris.New("merge: chains missing backbone source")
	}
	known := map[string]bool{c.Backbone: true}
	for _, s := range c.Precedence {
		if known[s] {
			return eris.Errorf("merge: duplicate source %q in precedence", s)
		}
		known[s] = true
	}
	if len(c.Fields) == 0 {
		return eris.New("merge: chains declare no fields")
	}
	sawCompany := false
	for _, f := range c.Fields {
		if f.Name == "" || len(f.Chain) == 0 {
			return eris.Errorf("merge: field %q has no chain", f.Name)
		}
		if f.Name == companyField {
			sawCompany = true
		}
		for _, l := range f.Chain {
			if !known[l.Source] {
				return eris.Errorf("merge: field %q references unknown source %q", f.Name, l.Source)
			}
		}
	}
	if !sawCompany {
		return eris.Errorf("merge: chains missing the %s field", companyField)
	}
	return nil
}

// companyField is resolved before every other field so identity lookup can
// run against the winning company name.
const companyField = "CompanyName"

// Company returns the company-name field spec.
func (c *Chains) Company() FieldSpec {
	for _, f := range c.Fields {
		if f.Name == companyField {
			return f
		}
	}
	return FieldSpec{}
}

// sourceIndex returns the precedence position of a source. The backbone is
// position 0; unknown sources sort last.
func (c *Chains) sourceIndex(source string) int {
	if source == c.Backbone {
		return 0
	}
	for i, s := range c.Precedence {
		if s == source {
			return i + 1
		}
	}
	return len(c.Precedence) + 1
}
