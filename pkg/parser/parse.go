package parser

import (
	"strings"

	"github.com/snortt1/snort3/pkg/options"
	"github.com/snortt1/snort3/pkg/rules"
)

const (
	dirDirectional   = "->"
	dirBidirectional = "<>"
)

// ParseRule processes one rule and adds it to the session. args is the
// rule text after the action token; a string beginning with '(' is a
// builtin rule and gets the assumed header 'tcp any any <> any any'.
func (c *Conf) ParseRule(args string, ruleType rules.RuleType, list *rules.ListHead) error {
	test := &rules.RuleTreeNode{}
	var pe PortEntry
	var toks []string
	var roptions string
	var protocol rules.Protocol
	var text bool

	if strings.HasPrefix(args, "(") {
		text = false

		test.Flags |= rules.AnyDstPort
		test.Flags |= rules.AnySrcPort
		test.Flags |= rules.AnyDstIP
		test.Flags |= rules.AnySrcIP
		test.Flags |= rules.Bidirectional
		test.Type = ruleType
		protocol = rules.ProtoTCP
		test.Proto = protocol

		roptions = args
	} else {
		text = true

		// proto ip port dir ip port options
		toks = splitFields(args, 7)

		// a rule might not have rule options
		if len(toks) < 6 {
			return errorf("Bad rule in rules file: %s", args)
		}
		if len(toks) == 7 {
			roptions = toks[6]
		}

		test.Type = ruleType

		proto, ok := rules.ParseProtocol(toks[0])
		if !ok {
			return errorf("Bad protocol: %s", toks[0])
		}
		protocol = proto
		test.Proto = protocol

		switch protocol {
		case rules.ProtoTCP:
			c.IPProtoUsed[rules.IPProtoTCP] = true
		case rules.ProtoUDP:
			c.IPProtoUsed[rules.IPProtoUDP] = true
		case rules.ProtoICMP:
			c.IPProtoUsed[rules.IPProtoICMP] = true
			c.IPProtoUsed[rules.IPProtoICMPv6] = true
		case rules.ProtoIP:
			c.IPProtoUsed[rules.IPProtoTCP] = true
			c.IPProtoUsed[rules.IPProtoUDP] = true
			c.IPProtoUsed[rules.IPProtoICMP] = true
			c.IPProtoUsed[rules.IPProtoICMPv6] = true
		}

		if err := c.processIP(toks[1], test, modeSrc); err != nil {
			return err
		}

		// catch rules that skip straight from the source address to the
		// direction operator; icmp rules need port tokens too
		if strings.EqualFold(toks[2], dirDirectional) || strings.EqualFold(toks[2], dirBidirectional) {
			return errorf("Port value missing in rule!")
		}

		if err := c.parsePortList(test, toks[2], protocol, false); err != nil {
			return err
		}

		if toks[3] != dirDirectional && toks[3] != dirBidirectional {
			return errorf("Illegal direction specifier: %s", toks[3])
		}

		if toks[3] == dirBidirectional {
			test.Flags |= rules.Bidirectional
		}

		if err := c.processIP(toks[4], test, modeDst); err != nil {
			return err
		}

		if err := c.parsePortList(test, toks[5], protocol, true); err != nil {
			return err
		}
	}

	test.ListHead = list

	rtn := c.processHeadNode(test)

	otn, err := c.parseRuleOptions(rtn, roptions, protocol, text)
	if err != nil {
		return err
	}
	if otn == nil {
		// duplicate resolved in favor of the stored signature
		return nil
	}

	c.ruleCount++

	pe.Gid = otn.SigInfo.Generator
	pe.Sid = otn.SigInfo.ID

	if len(toks) != 0 {
		pe.Protocol = toks[0]
		pe.SrcPort = toks[2]
		pe.DstPort = toks[5]
	}

	// record which kind of content would feed the fast pattern matcher;
	// http cookie content does not, so scan the whole list
	if otn.HasOpt(rules.OptContentURI) {
		for fpl := otn.OptList(); fpl != nil; fpl = fpl.Next {
			if fpl.Kind != rules.OptContentURI {
				continue
			}
			if cd, ok := fpl.Params.(*options.ContentData); ok && cd.HTTPBuffer.FastPatternEligible() {
				pe.URIContent = true
				break
			}
		}
	}
	if !pe.URIContent && otn.HasOpt(rules.OptContent) {
		pe.Content = true
	}

	if rtn.Flags&rules.Bidirectional != 0 {
		pe.Dir = 1
	}

	pe.Proto = protocol
	pe.RuleType = ruleType
	pe.IPProto = options.GetOtnIpProto(otn)

	c.addPortEntry(pe)

	// port parsing ran before head node processing so canonicalisation
	// could compare port objects; group placement needs the final otn
	if err := c.finishPortListRule(rtn, otn, protocol, &pe); err != nil {
		return err
	}

	return nil
}

// splitFields breaks the rule header on whitespace into at most max
// tokens; the final token is the untouched remainder so the option body
// keeps its internal spacing.
func splitFields(s string, max int) []string {
	var toks []string
	i := 0
	for i < len(s) && len(toks) < max-1 {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		for i < len(s) && s[i] != ' ' && s[i] != '\t' {
			i++
		}
		toks = append(toks, s[start:i])
	}
	rest := strings.TrimSpace(s[i:])
	if rest != "" {
		toks = append(toks, rest)
	}
	return toks
}
