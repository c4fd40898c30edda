package rules

import (
	"github.com/snortt1/snort3/pkg/ipvar"
	"github.com/snortt1/snort3/pkg/ports"
)

// HeaderCheck names one entry in a header's detection-function chain.
// The chain is assembled once when a header is canonicalised; the packet
// engine walks it in order.
type HeaderCheck int

const (
	CheckBidirectional HeaderCheck = iota
	CheckSrcIP
	CheckDstIP
	CheckSrcPortEqual
	CheckSrcPortNotEq
	CheckDstPortEqual
	CheckDstPortNotEq
	RuleListEnd
)

func (c HeaderCheck) String() string {
	switch c {
	case CheckBidirectional:
		return "CheckBidirectional"
	case CheckSrcIP:
		return "CheckSrcIP"
	case CheckDstIP:
		return "CheckDstIP"
	case CheckSrcPortEqual:
		return "CheckSrcPortEqual"
	case CheckSrcPortNotEq:
		return "CheckSrcPortNotEq"
	case CheckDstPortEqual:
		return "CheckDstPortEqual"
	case CheckDstPortNotEq:
		return "CheckDstPortNotEq"
	case RuleListEnd:
		return "RuleListEnd"
	}
	return "HeaderCheck(?)"
}

// RuleTreeNode is a canonical rule header. At most one instance exists per
// (policy, tuple); every signature with an equal header shares it. The
// reference count tracks how many signatures are bound to it in its policy.
type RuleTreeNode struct {
	Type  RuleType
	Proto Protocol
	Flags HeaderFlag

	SIP *ipvar.Set
	DIP *ipvar.Set

	SrcPortObject *ports.Object
	DstPortObject *ports.Object

	ListHead *ListHead

	// HeadNodeNumber is assigned when the header is installed as canonical.
	HeadNodeNumber int

	// Checks is the header detection-function chain, terminated by
	// RuleListEnd.
	Checks []HeaderCheck

	refCount int
}

// AddRef records another signature bound to this header.
func (r *RuleTreeNode) AddRef() { r.refCount++ }

// DecRef releases one signature binding and reports whether the header is
// now unreferenced.
func (r *RuleTreeNode) DecRef() bool {
	if r.refCount > 0 {
		r.refCount--
	}
	return r.refCount == 0
}

// RefCount returns the number of signatures bound to this header.
func (r *RuleTreeNode) RefCount() int { return r.refCount }

// Transfer copies the canonicalisation tuple from a draft header into r.
// Port objects and address sets are shared, not copied; the draft's fields
// are table-owned views.
func (r *RuleTreeNode) Transfer(draft *RuleTreeNode) {
	r.Flags = draft.Flags
	r.Type = draft.Type
	r.SIP = draft.SIP
	r.DIP = draft.DIP
	r.Proto = draft.Proto
	r.SrcPortObject = draft.SrcPortObject
	r.DstPortObject = draft.DstPortObject
}

// AddCheck appends a detection function to the header's chain.
func (r *RuleTreeNode) AddCheck(c HeaderCheck) {
	r.Checks = append(r.Checks, c)
}
