// Package classify implements the classification table resolved by the
// classtype rule option. Classifications carry a short name, descriptive
// text, and a default priority that a rule inherits unless it sets its own.
package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Type is one classification entry.
type Type struct {
	ID       int    // assigned in definition order, starting at 1
	Name     string // e.g., "attempted-admin"
	Text     string // e.g., "Attempted Administrator Privilege Gain"
	Priority uint32
}

// Table maps classification names to their entries.
type Table struct {
	byName map[string]*Type
	order  []*Type
}

// NewTable returns an empty classification table.
func NewTable() *Table {
	return &Table{byName: make(map[string]*Type)}
}

// Add installs a classification. Redefining a name is an error.
func (t *Table) Add(name, text string, priority uint32) error {
	if _, ok := t.byName[name]; ok {
		return fmt.Errorf("classification %s already defined", name)
	}
	ct := &Type{ID: len(t.order) + 1, Name: name, Text: text, Priority: priority}
	t.byName[name] = ct
	t.order = append(t.order, ct)
	return nil
}

// Find returns the classification bound to name, or nil.
func (t *Table) Find(name string) *Type {
	return t.byName[name]
}

// Types returns the entries in definition order.
func (t *Table) Types() []*Type {
	out := make([]*Type, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.order) }

// yamlClassification mirrors one entry of the YAML config file.
type yamlClassification struct {
	Name     string `yaml:"name"`
	Text     string `yaml:"text"`
	Priority uint32 `yaml:"priority"`
}

// yamlClassificationsFile mirrors the file structure.
type yamlClassificationsFile struct {
	Classifications []yamlClassification `yaml:"classifications"`
}

// Load parses a YAML classification config from bytes.
func Load(data []byte) (*Table, error) {
	var file yamlClassificationsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(file.Classifications) == 0 {
		return nil, fmt.Errorf("no classifications found in YAML")
	}

	table := NewTable()
	for _, yc := range file.Classifications {
		if yc.Name == "" {
			return nil, fmt.Errorf("classification missing name")
		}
		if err := table.Add(yc.Name, yc.Text, yc.Priority); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// LoadFile loads a YAML classification config from a file path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Load(data)
}

// Default returns the classification set shipped with the engine. It
// covers the classtypes the builtin rules reference.
func Default() *Table {
	table := NewTable()
	defaults := []struct {
		name     string
		text     string
		priority uint32
	}{
		{"not-suspicious", "Not Suspicious Traffic", 3},
		{"unknown", "Unknown Traffic", 3},
		{"bad-unknown", "Potentially Bad Traffic", 2},
		{"attempted-recon", "Attempted Information Leak", 2},
		{"successful-recon-limited", "Information Leak", 2},
		{"attempted-dos", "Attempted Denial of Service", 2},
		{"attempted-user", "Attempted User Privilege Gain", 1},
		{"attempted-admin", "Attempted Administrator Privilege Gain", 1},
		{"successful-admin", "Successful Administrator Privilege Gain", 1},
		{"trojan-activity", "A Network Trojan was detected", 1},
		{"web-application-attack", "Web Application Attack", 1},
		{"misc-activity", "Misc activity", 3},
		{"misc-attack", "Misc Attack", 2},
		{"policy-violation", "Potential Corporate Privacy Violation", 1},
		{"protocol-command-decode", "Generic Protocol Command Decode", 3},
	}
	for _, d := range defaults {
		// names are unique above; Add cannot fail
		_ = table.Add(d.name, d.text, d.priority)
	}
	return table
}
