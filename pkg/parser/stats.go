package parser

import (
	"fmt"
	"io"

	"github.com/snortt1/snort3/pkg/rules"
)

// MaxRuleCount bounds the per-rule debug record vector.
const MaxRuleCount = 65536 * 2

// PortEntry is the per-rule debug record captured as each rule finishes.
type PortEntry struct {
	RuleType rules.RuleType
	Proto    rules.Protocol
	IPProto  int

	Protocol string
	SrcPort  string
	DstPort  string

	Gid uint32
	Sid uint32

	Dir        int
	Content    bool
	URIContent bool
}

func (c *Conf) addPortEntry(pe PortEntry) {
	if len(c.portList) >= MaxRuleCount {
		return
	}
	c.portList = append(c.portList, pe)
}

// PortList returns the per-rule debug records in ingestion order.
func (c *Conf) PortList() []PortEntry {
	out := make([]PortEntry, len(c.portList))
	copy(out, c.portList)
	return out
}

// RuleCnt returns the total number of accepted rules.
func (c *Conf) RuleCnt() int { return c.ruleCount }

// DetectRuleCount returns the number of accepted text rules.
func (c *Conf) DetectRuleCount() int { return c.detectRuleCount }

// BuiltinRuleCount returns the number of accepted builtin rules.
func (c *Conf) BuiltinRuleCount() int { return c.builtinRuleCount }

// OtnCount returns the number of distinct signatures.
func (c *Conf) OtnCount() int { return c.otnCount }

// HeadCount returns the number of canonical headers built.
func (c *Conf) HeadCount() int { return c.headCount }

const logDiv = "--------------------------------------------------"

// PrintStats writes the ingestion summary: totals followed by the
// per-protocol placement matrix, omitting all-zero rows.
func (c *Conf) PrintStats(w io.Writer) {
	fmt.Fprintf(w, "%s\n", logDiv)
	fmt.Fprintf(w, "rule counts\n")

	fmt.Fprintf(w, "%25.25s: %-12d\n", "total rules loaded", c.ruleCount)

	if c.ruleCount == 0 {
		return
	}

	fmt.Fprintf(w, "%25.25s: %-12d\n", "text rules", c.detectRuleCount)
	fmt.Fprintf(w, "%25.25s: %-12d\n", "builtin rules", c.builtinRuleCount)
	fmt.Fprintf(w, "%25.25s: %-12d\n", "option chains", c.otnCount)
	fmt.Fprintf(w, "%25.25s: %-12d\n", "chain headers", c.headCount)

	fmt.Fprintf(w, "%s\n", logDiv)
	fmt.Fprintf(w, "rule port counts\n")
	fmt.Fprintf(w, "%8s%8s%8s%8s%8s\n", " ", "tcp", "udp", "icmp", "ip")

	rows := []struct {
		name string
		get  func(*RuleCount) int
	}{
		{"src", func(rc *RuleCount) int { return rc.Src }},
		{"dst", func(rc *RuleCount) int { return rc.Dst }},
		{"any", func(rc *RuleCount) int { return rc.AA }},
		{"nc", func(rc *RuleCount) int { return rc.NC }},
		{"s+d", func(rc *RuleCount) int { return rc.SD }},
	}

	for _, row := range rows {
		tcp, udp, icmp, ip := row.get(&c.TCPCnt), row.get(&c.UDPCnt), row.get(&c.ICMPCnt), row.get(&c.IPCnt)
		if tcp != 0 || udp != 0 || icmp != 0 || ip != 0 {
			fmt.Fprintf(w, "%8s%8d%8d%8d%8d\n", row.name, tcp, udp, icmp, ip)
		}
	}
}
