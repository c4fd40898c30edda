// Package parser implements the rule-ingestion core: header parsing,
// header canonicalisation, option parsing, signature deduplication, and
// port-group indexing. One Conf holds the state of one ingestion session;
// the original engine kept this in file-level globals.
package parser

import (
	"fmt"
	"io"

	"github.com/snortt1/snort3/pkg/classify"
	"github.com/snortt1/snort3/pkg/options"
	"github.com/snortt1/snort3/pkg/ports"
	"github.com/snortt1/snort3/pkg/rules"
)

// FastPatternConfig exposes the thresholds the port-group indexer reads.
type FastPatternConfig struct {
	// SingleRuleGroup forces every rule into its protocol's any-any group.
	SingleRuleGroup bool

	// BleedoverPortLimit is the largest specific port set a rule may carry
	// before it is promoted to the any-any group.
	BleedoverPortLimit int

	// BleedoverWarnings logs each promoted rule with its port ranges.
	BleedoverWarnings bool
}

// DefaultBleedoverPortLimit matches the engine default.
const DefaultBleedoverPortLimit = 1024

// RuleCount aggregates per-protocol placement counters.
type RuleCount struct {
	Src int // specific source port
	Dst int // specific destination port
	AA  int // any-any
	SD  int // both src and dst specific
	NC  int // no content and no uricontent
}

// PortTables holds the port-keyed rule groups the indexer fills: per
// protocol a src table, a dst table, and an any-any aggregate object.
type PortTables struct {
	TCPSrc    *ports.Table
	TCPDst    *ports.Table
	TCPAnyAny *ports.Object

	UDPSrc    *ports.Table
	UDPDst    *ports.Table
	UDPAnyAny *ports.Object

	ICMPSrc    *ports.Table
	ICMPDst    *ports.Table
	ICMPAnyAny *ports.Object

	IPSrc    *ports.Table
	IPDst    *ports.Table
	IPAnyAny *ports.Object
}

// NewPortTables returns empty group tables.
func NewPortTables() *PortTables {
	anyany := func(name string) *ports.Object {
		return &ports.Object{Name: name, Items: []ports.Item{{Any: true}}}
	}
	return &PortTables{
		TCPSrc: ports.NewTable(), TCPDst: ports.NewTable(), TCPAnyAny: anyany("tcp_anyany"),
		UDPSrc: ports.NewTable(), UDPDst: ports.NewTable(), UDPAnyAny: anyany("udp_anyany"),
		ICMPSrc: ports.NewTable(), ICMPDst: ports.NewTable(), ICMPAnyAny: anyany("icmp_anyany"),
		IPSrc: ports.NewTable(), IPDst: ports.NewTable(), IPAnyAny: anyany("ip_anyany"),
	}
}

// Config seeds a new ingestion session.
type Config struct {
	// Classifications resolves classtype options; nil uses the builtin set.
	Classifications *classify.Table

	// FastPattern thresholds; a zero BleedoverPortLimit takes the default.
	FastPattern FastPatternConfig

	// ConfErrorOut promotes duplicate-rule warnings to fatal errors.
	ConfErrorOut bool

	// InstanceMax sizes each signature's per-instance state array.
	InstanceMax int

	// SOResolver supplies shared-object rule option bodies.
	SOResolver options.SOResolver

	// WarnWriter receives parse warnings as they are recorded; nil keeps
	// them only on the session.
	WarnWriter io.Writer
}

// Conf is the state of one ingestion session.
type Conf struct {
	OtnMap       *rules.OtnMap
	RuleIndexMap *rules.RuleIndexMap
	PortTables   *PortTables

	FastPattern     FastPatternConfig
	Classifications *classify.Table
	Registry        *options.Registry
	Meta            *options.MetaParser

	ConfErrorOut bool
	InstanceMax  int

	// IPProtoUsed records which IP protocols loaded rules touch, indexed
	// by IANA protocol number.
	IPProtoUsed [256]bool

	policies []*rules.IpsPolicy
	current  rules.PolicyID

	ruleCount        int
	detectRuleCount  int
	builtinRuleCount int
	headCount        int
	otnCount         int

	TCPCnt  RuleCount
	UDPCnt  RuleCount
	ICMPCnt RuleCount
	IPCnt   RuleCount

	portList []PortEntry

	warnings   []string
	warnWriter io.Writer
}

// NewConf creates an ingestion session with one default policy.
func NewConf(cfg Config) *Conf {
	if cfg.Classifications == nil {
		cfg.Classifications = classify.Default()
	}
	if cfg.FastPattern.BleedoverPortLimit == 0 {
		cfg.FastPattern.BleedoverPortLimit = DefaultBleedoverPortLimit
	}
	if cfg.InstanceMax < 1 {
		cfg.InstanceMax = 1
	}

	meta := options.NewMetaParser(cfg.Classifications)
	meta.Resolver = cfg.SOResolver

	c := &Conf{
		OtnMap:          rules.NewOtnMap(),
		RuleIndexMap:    rules.NewRuleIndexMap(),
		PortTables:      NewPortTables(),
		FastPattern:     cfg.FastPattern,
		Classifications: cfg.Classifications,
		Registry:        options.NewRegistry(),
		Meta:            meta,
		ConfErrorOut:    cfg.ConfErrorOut,
		InstanceMax:     cfg.InstanceMax,
		warnWriter:      cfg.WarnWriter,
	}
	c.policies = append(c.policies, rules.NewIpsPolicy(0))
	return c
}

// Policy returns the active policy.
func (c *Conf) Policy() *rules.IpsPolicy {
	return c.policies[c.current]
}

// PolicyID returns the active policy id.
func (c *Conf) PolicyID() rules.PolicyID { return c.current }

// AddPolicy appends a new policy scope and returns it.
func (c *Conf) AddPolicy() *rules.IpsPolicy {
	p := rules.NewIpsPolicy(rules.PolicyID(len(c.policies)))
	c.policies = append(c.policies, p)
	return p
}

// SetPolicy switches the active policy.
func (c *Conf) SetPolicy(id rules.PolicyID) error {
	if int(id) < 0 || int(id) >= len(c.policies) {
		return fmt.Errorf("no such policy: %d", id)
	}
	c.current = id
	return nil
}

// ParseError is a fatal rule-parse failure. Ingestion stops at the first
// one.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func errorf(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

func (c *Conf) parseWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.warnings = append(c.warnings, msg)
	if c.warnWriter != nil {
		fmt.Fprintf(c.warnWriter, "WARNING: %s\n", msg)
	}
}

// Warnings returns the parse warnings recorded this session.
func (c *Conf) Warnings() []string {
	out := make([]string, len(c.warnings))
	copy(out, c.warnings)
	return out
}
