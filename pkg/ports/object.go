// Package ports implements port objects and the tables that own them. A
// port object is a set of port ranges with an attached rule-index set.
// Inline port lists are routed through an anonymous table that
// deduplicates by port set, so pointer equality of port objects implies
// set equality within a table. Header canonicalisation relies on that.
package ports

import (
	"fmt"
	"sort"
	"strings"
)

// MaxPort is the highest valid port number.
const MaxPort = 65535

// Item is one element of a port object: a range [Lo,Hi], possibly negated,
// or the distinguished any entry.
type Item struct {
	Lo  uint16
	Hi  uint16
	Any bool
	Not bool
}

func (it Item) key() string {
	if it.Any {
		return "any"
	}
	neg := ""
	if it.Not {
		neg = "!"
	}
	if it.Lo == it.Hi {
		return fmt.Sprintf("%s%d", neg, it.Lo)
	}
	return fmt.Sprintf("%s%d:%d", neg, it.Lo, it.Hi)
}

// Object is a set of port ranges plus the dense indices of the signatures
// attached to it.
type Object struct {
	Name  string
	Items []Item

	rules   []int
	ruleSet map[int]struct{}
}

// HasAny reports whether the object covers all ports.
func (o *Object) HasAny() bool {
	for _, it := range o.Items {
		if it.Any {
			return true
		}
	}
	return false
}

// IsPureNot reports whether the object consists only of negated entries.
func (o *Object) IsPureNot() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, it := range o.Items {
		if !it.Not {
			return false
		}
	}
	return true
}

// Count returns the summed width of the object's positive ranges. The any
// object counts the full port space; a pure-negation object counts the
// complement of its entries. Overlapping ranges are not merged, and
// negated entries in a list that also has positive entries are not
// subtracted, so such lists count more ports than Contains admits.
func (o *Object) Count() int {
	if o.HasAny() {
		return MaxPort + 1
	}
	pos, neg := 0, 0
	for _, it := range o.Items {
		n := int(it.Hi) - int(it.Lo) + 1
		if it.Not {
			neg += n
		} else {
			pos += n
		}
	}
	if pos == 0 && neg > 0 {
		return MaxPort + 1 - neg
	}
	return pos
}

// Contains reports whether the object admits the given port.
func (o *Object) Contains(port uint16) bool {
	if o.HasAny() {
		return true
	}
	hit := false
	pureNot := o.IsPureNot()
	for _, it := range o.Items {
		in := port >= it.Lo && port <= it.Hi
		if it.Not {
			if in {
				return false
			}
		} else if in {
			hit = true
		}
	}
	return hit || pureNot
}

// PortKey returns a canonical string for the object's port set, used by
// tables to deduplicate. Rule attachments and names do not participate.
func (o *Object) PortKey() string {
	keys := make([]string, len(o.Items))
	for i, it := range o.Items {
		keys[i] = it.key()
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// EqualPorts reports whether two objects cover the same port set.
func (o *Object) EqualPorts(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.PortKey() == other.PortKey()
}

// Dup returns a copy of the object's port set with no rule attachments.
func (o *Object) Dup() *Object {
	dup := &Object{Name: o.Name, Items: make([]Item, len(o.Items))}
	copy(dup.Items, o.Items)
	return dup
}

// AddRule attaches a dense rule index. The set is append-only; re-adding
// an index is a no-op.
func (o *Object) AddRule(index int) {
	if o.ruleSet == nil {
		o.ruleSet = make(map[int]struct{})
	}
	if _, ok := o.ruleSet[index]; ok {
		return
	}
	o.ruleSet[index] = struct{}{}
	o.rules = append(o.rules, index)
}

// Rules returns the attached rule indices in attachment order.
func (o *Object) Rules() []int {
	out := make([]int, len(o.rules))
	copy(out, o.rules)
	return out
}

// RuleCount returns the number of attached rule indices.
func (o *Object) RuleCount() int { return len(o.rules) }

// PortsString renders the object's raw port set for diagnostics.
func (o *Object) PortsString() string {
	keys := make([]string, len(o.Items))
	for i, it := range o.Items {
		keys[i] = it.key()
	}
	return "[" + strings.Join(keys, ",") + "]"
}
