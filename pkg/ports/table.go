package ports

import "fmt"

// Table holds port objects keyed by their port set. It backs both the
// anonymous table that deduplicates inline port lists and the per-protocol
// group tables built by the indexer.
type Table struct {
	byKey map[string]*Object
	order []*Object
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{byKey: make(map[string]*Object)}
}

// FindByPorts returns the resident object with the same port set as o, or
// nil.
func (t *Table) FindByPorts(o *Object) *Object {
	return t.byKey[o.PortKey()]
}

// Add installs an object. Adding a second object with an equal port set is
// an error; callers look up first and adopt the resident object.
func (t *Table) Add(o *Object) error {
	key := o.PortKey()
	if _, ok := t.byKey[key]; ok {
		return fmt.Errorf("port object %s already present", key)
	}
	t.byKey[key] = o
	t.order = append(t.order, o)
	return nil
}

// Objects returns the resident objects in insertion order.
func (t *Table) Objects() []*Object {
	out := make([]*Object, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of resident objects.
func (t *Table) Len() int { return len(t.order) }

// VarTable maps port variable names to their objects. It is created with
// the distinguished "any" object; rule parsing treats its absence as
// fatal.
type VarTable struct {
	vars  map[string]*Object
	order []string
}

// NewVarTable returns a table seeded with the "any" object.
func NewVarTable() *VarTable {
	t := &VarTable{vars: make(map[string]*Object)}
	t.vars["any"] = &Object{Name: "any", Items: []Item{{Any: true}}}
	t.order = append(t.order, "any")
	return t
}

// Find returns the object bound to name, or nil.
func (t *VarTable) Find(name string) *Object {
	return t.vars[name]
}

// Define parses spec as a port list and binds it to name.
func (t *VarTable) Define(name, spec string) error {
	if _, ok := t.vars[name]; ok {
		return fmt.Errorf("port variable %s already defined", name)
	}
	obj, err := ParseString(spec)
	if err != nil {
		return fmt.Errorf("port variable %s: %w", name, err)
	}
	obj.Name = name
	t.vars[name] = obj
	t.order = append(t.order, name)
	return nil
}

// Names returns the defined variable names in definition order.
func (t *VarTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
