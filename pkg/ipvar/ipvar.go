// Package ipvar implements rule-header address sets and the IP variable
// table. A set holds a positive and a negated list of CIDR ranges; named
// sets live in the table and are shared by every header that references
// them, so a header's address fields are non-owning views.
package ipvar

import (
	"net/netip"
	"sort"
	"strings"
)

// Status is the outcome of resolving an address token into a set.
type Status int

const (
	Success Status = iota
	Failure
	LookupFailure
	Conflict
	NotAny
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case LookupFailure:
		return "lookup failure"
	case Conflict:
		return "conflict"
	case NotAny:
		return "not any"
	}
	return "Status(?)"
}

// Node is one entry in an address list: a CIDR range or the universal set.
type Node struct {
	Prefix netip.Prefix
	Any    bool
}

// Set is an address set with positive and negated lists. Name is set for
// sets owned by the variable table and empty for anonymous sets built from
// inline rule tokens.
type Set struct {
	Name string
	Head []Node
	Neg  []Node
}

// Empty reports whether both lists are empty.
func (s *Set) Empty() bool {
	return s == nil || (len(s.Head) == 0 && len(s.Neg) == 0)
}

// HasAny reports whether the positive list is the universal set.
func (s *Set) HasAny() bool {
	if s == nil {
		return false
	}
	for _, n := range s.Head {
		if n.Any {
			return true
		}
	}
	return false
}

func nodeKey(n Node) string {
	if n.Any {
		return "any"
	}
	return n.Prefix.Masked().String()
}

func sortNodes(nodes []Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodeKey(nodes[i]) < nodeKey(nodes[j])
	})
}

func (s *Set) normalize() {
	sortNodes(s.Head)
	sortNodes(s.Neg)
}

func nodesEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if nodeKey(a[i]) != nodeKey(b[i]) {
			return false
		}
	}
	return true
}

// Equal reports structural equality of two sets: same positive and negated
// address lists, ignoring names.
func Equal(a, b *Set) bool {
	if a == nil || b == nil {
		return a == b
	}
	return nodesEqual(a.Head, b.Head) && nodesEqual(a.Neg, b.Neg)
}

// Table maps variable names to their sets.
type Table struct {
	vars  map[string]*Set
	order []string
}

// NewTable returns an empty variable table.
func NewTable() *Table {
	return &Table{vars: make(map[string]*Set)}
}

// Lookup resolves a variable reference. A leading '$' is stripped; nil is
// returned when the name is not defined.
func (t *Table) Lookup(name string) *Set {
	return t.vars[strings.TrimPrefix(name, "$")]
}

// Define parses token into a new named set and installs it.
func (t *Table) Define(name, token string) Status {
	set := &Set{Name: name}
	if st := t.AddToVar(set, token); st != Success {
		return st
	}
	if _, ok := t.vars[name]; !ok {
		t.order = append(t.order, name)
	}
	t.vars[name] = set
	return Success
}

// Names returns the defined variable names in definition order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// AddToVar parses token and merges the result into set. Variable
// references inside the token resolve against the table. The returned
// status distinguishes undefined variables, !any, and negation conflicts
// from generic parse failures.
func (t *Table) AddToVar(set *Set, token string) Status {
	if st := t.parseInto(set, token, false); st != Success {
		return st
	}
	set.normalize()
	return checkConflicts(set)
}

// checkConflicts rejects negated ranges that are more general than a
// positive range: the negation would hollow out everything the positive
// range admits.
func checkConflicts(set *Set) Status {
	for _, neg := range set.Neg {
		for _, pos := range set.Head {
			if pos.Any || neg.Any {
				continue
			}
			if neg.Prefix.Bits() <= pos.Prefix.Bits() &&
				neg.Prefix.Contains(pos.Prefix.Addr()) {
				return Conflict
			}
		}
	}
	return Success
}

func (t *Table) parseInto(set *Set, token string, negated bool) Status {
	token = strings.TrimSpace(token)
	if token == "" {
		return Failure
	}

	switch {
	case strings.HasPrefix(token, "!"):
		return t.parseInto(set, token[1:], !negated)

	case strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]"):
		parts, ok := splitList(token[1 : len(token)-1])
		if !ok {
			return Failure
		}
		for _, part := range parts {
			if st := t.parseInto(set, part, negated); st != Success {
				return st
			}
		}
		return Success

	case strings.EqualFold(token, "any"):
		if negated {
			return NotAny
		}
		set.Head = append(set.Head, Node{Any: true})
		return Success

	case strings.HasPrefix(token, "$"):
		v := t.Lookup(token)
		if v == nil {
			return LookupFailure
		}
		if negated && v.HasAny() {
			return NotAny
		}
		if negated {
			set.Neg = append(set.Neg, v.Head...)
			set.Head = append(set.Head, v.Neg...)
		} else {
			set.Head = append(set.Head, v.Head...)
			set.Neg = append(set.Neg, v.Neg...)
		}
		return Success
	}

	node, ok := parseCIDR(token)
	if !ok {
		return Failure
	}
	if negated {
		set.Neg = append(set.Neg, node)
	} else {
		set.Head = append(set.Head, node)
	}
	return Success
}

func parseCIDR(token string) (Node, bool) {
	if strings.Contains(token, "/") {
		p, err := netip.ParsePrefix(token)
		if err != nil {
			return Node{}, false
		}
		return Node{Prefix: p.Masked()}, true
	}
	addr, err := netip.ParseAddr(token)
	if err != nil {
		return Node{}, false
	}
	return Node{Prefix: netip.PrefixFrom(addr, addr.BitLen())}, true
}

// splitList breaks a bracketed list body on top-level commas. Nested
// brackets stay intact for recursive parsing.
func splitList(body string) ([]string, bool) {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, false
			}
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, false
	}
	parts = append(parts, body[start:])
	return parts, true
}
