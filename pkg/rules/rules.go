// Package rules defines the in-memory model produced by rule ingestion:
// rule-tree nodes (shared headers), option-tree nodes (signatures), the
// signature map, and the dense rule index map consumed by the detection
// engine's group builder.
package rules

import "fmt"

// Protocol identifies the transport a rule applies to.
type Protocol int

const (
	ProtoTCP Protocol = iota
	ProtoUDP
	ProtoICMP
	ProtoIP // matches any IP traffic, constrained only by ip_proto options
)

// IANA protocol numbers used for ip_proto constraints and the
// protocol registration table.
const (
	IPProtoICMP   = 1
	IPProtoTCP    = 6
	IPProtoUDP    = 17
	IPProtoICMPv6 = 58
)

// String returns the rule-file spelling of the protocol.
func (p Protocol) String() string {
	switch p {
	case ProtoTCP:
		return "tcp"
	case ProtoUDP:
		return "udp"
	case ProtoICMP:
		return "icmp"
	case ProtoIP:
		return "ip"
	}
	return fmt.Sprintf("Protocol(%d)", int(p))
}

// ParseProtocol resolves a header protocol token.
func ParseProtocol(s string) (Protocol, bool) {
	switch s {
	case "tcp":
		return ProtoTCP, true
	case "udp":
		return ProtoUDP, true
	case "icmp":
		return ProtoICMP, true
	case "ip":
		return ProtoIP, true
	}
	return 0, false
}

// RuleType is the action a rule takes when it matches.
type RuleType int

const (
	Alert RuleType = iota
	Log
	Pass
	Drop
	SDrop
	Reject
)

var ruleTypeNames = map[string]RuleType{
	"alert":  Alert,
	"log":    Log,
	"pass":   Pass,
	"drop":   Drop,
	"sdrop":  SDrop,
	"reject": Reject,
}

// ParseRuleType resolves an action token against the builtin action list.
func ParseRuleType(s string) (RuleType, bool) {
	t, ok := ruleTypeNames[s]
	return t, ok
}

func (t RuleType) String() string {
	for name, v := range ruleTypeNames {
		if v == t {
			return name
		}
	}
	return fmt.Sprintf("RuleType(%d)", int(t))
}

// ListHead anchors the output list a rule action feeds. Headers keep a
// back-reference to their list so custom rule type declarations with
// identical tuples still produce distinct headers.
type ListHead struct {
	Name string
	Type RuleType
}

// HeaderFlag bits are packed into a rule header and participate in
// header equality.
type HeaderFlag uint32

const (
	AnySrcIP HeaderFlag = 1 << iota
	AnyDstIP
	AnySrcPort
	AnyDstPort
	ExceptSrcPort // retained for header equality; never set during ingestion
	ExceptDstPort // retained for header equality; never set during ingestion
	Bidirectional
)

// PolicyID names a configuration scope. The same signature body may bind
// to different headers under different policies.
type PolicyID int

// GeneratorSnortEngine is the default gid for text rules.
const GeneratorSnortEngine = 1
