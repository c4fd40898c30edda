package parser

import (
	"github.com/snortt1/snort3/pkg/options"
	"github.com/snortt1/snort3/pkg/ports"
	"github.com/snortt1/snort3/pkg/rules"
)

// finishPortListRule places the signature's dense rule index into the
// port-keyed groups for its protocol:
//
//  1. select the src/dst/any-any triple by protocol
//  2. all-port rules, bleedover promotions, and single-rule-group mode go
//     to the any-any object; ip rules additionally propagate to the
//     tcp/udp/icmp any-any groups per their ip_proto constraint
//  3. otherwise find or create the group entry with the header's port set
//     and attach the rule; bidirectional rules attach on both sides
func (c *Conf) finishPortListRule(rtn *rules.RuleTreeNode, otn *rules.OptTreeNode, proto rules.Protocol, pe *PortEntry) error {
	var srcTable, dstTable *ports.Table
	var aaObject *ports.Object
	var prc *RuleCount

	switch proto {
	case rules.ProtoTCP:
		srcTable, dstTable, aaObject, prc = c.PortTables.TCPSrc, c.PortTables.TCPDst, c.PortTables.TCPAnyAny, &c.TCPCnt
	case rules.ProtoUDP:
		srcTable, dstTable, aaObject, prc = c.PortTables.UDPSrc, c.PortTables.UDPDst, c.PortTables.UDPAnyAny, &c.UDPCnt
	case rules.ProtoICMP:
		srcTable, dstTable, aaObject, prc = c.PortTables.ICMPSrc, c.PortTables.ICMPDst, c.PortTables.ICMPAnyAny, &c.ICMPCnt
	case rules.ProtoIP:
		srcTable, dstTable, aaObject, prc = c.PortTables.IPSrc, c.PortTables.IPDst, c.PortTables.IPAnyAny, &c.IPCnt
	default:
		return errorf("Bad protocol in port group selection: %d", proto)
	}

	anyBoth := rules.AnySrcPort | rules.AnyDstPort

	if rtn.Flags&anyBoth == 0 {
		prc.SD++
	}

	rimIndex := otn.RuleIndex

	if !pe.Content && !pe.URIContent {
		prc.NC++
	}

	// bleedover: a rule with a very large specific port set is promoted to
	// the any-any group to bound per-port group sizes
	largePortGroup := false
	srcCnt, dstCnt := 0, 0

	if !c.FastPattern.SingleRuleGroup && rtn.Flags&anyBoth != anyBoth {
		if rtn.Flags&rules.AnySrcPort == 0 {
			srcCnt = rtn.SrcPortObject.Count()
			if srcCnt > c.FastPattern.BleedoverPortLimit {
				largePortGroup = true
			}
		}

		if rtn.Flags&rules.AnyDstPort == 0 {
			dstCnt = rtn.DstPortObject.Count()
			if dstCnt > c.FastPattern.BleedoverPortLimit {
				largePortGroup = true
			}
		}

		if largePortGroup && c.FastPattern.BleedoverWarnings {
			cnt := srcCnt
			if dstCnt > cnt {
				cnt = dstCnt
			}
			c.parseWarning("Bleedover Port Limit(%d) Exceeded for rule %d:%d (%d)ports: %s -> %s adding to any-any group",
				c.FastPattern.BleedoverPortLimit,
				otn.SigInfo.Generator, otn.SigInfo.ID, cnt,
				rtn.SrcPortObject.PortsString(), rtn.DstPortObject.PortsString())
		}
	}

	if rtn.Flags&anyBoth == anyBoth || largePortGroup || c.FastPattern.SingleRuleGroup {
		if proto == rules.ProtoIP {
			// ip rules also land in the app protocol any-any groups they
			// can apply to; rules constrained to other protocols go only
			// into the ip table
			switch options.GetOtnIpProto(otn) {
			case rules.IPProtoTCP:
				c.PortTables.TCPAnyAny.AddRule(rimIndex)
				c.TCPCnt.AA++

			case rules.IPProtoUDP:
				c.PortTables.UDPAnyAny.AddRule(rimIndex)
				c.UDPCnt.AA++

			case rules.IPProtoICMP:
				c.PortTables.ICMPAnyAny.AddRule(rimIndex)
				c.ICMPCnt.AA++

			case options.IPProtoUnconstrained:
				c.PortTables.TCPAnyAny.AddRule(rimIndex)
				c.TCPCnt.AA++

				c.PortTables.UDPAnyAny.AddRule(rimIndex)
				c.UDPCnt.AA++

				c.PortTables.ICMPAnyAny.AddRule(rimIndex)
				c.ICMPCnt.AA++
			}
		}

		aaObject.AddRule(rimIndex)
		prc.AA++

		return nil
	}

	if rtn.Flags&rules.AnyDstPort == 0 {
		prc.Dst++

		if err := addToGroup(dstTable, rtn.DstPortObject, rimIndex); err != nil {
			return err
		}

		if rtn.Flags&rules.Bidirectional != 0 {
			if err := addToGroup(srcTable, rtn.DstPortObject, rimIndex); err != nil {
				return err
			}
		}
	}

	if rtn.Flags&rules.AnySrcPort == 0 {
		prc.Src++

		if err := addToGroup(srcTable, rtn.SrcPortObject, rimIndex); err != nil {
			return err
		}

		if rtn.Flags&rules.Bidirectional != 0 {
			if err := addToGroup(dstTable, rtn.SrcPortObject, rimIndex); err != nil {
				return err
			}
		}
	}

	return nil
}

// addToGroup attaches the rule index to the table entry with this port
// set, duplicating the header's port object into the table on first use.
func addToGroup(table *ports.Table, po *ports.Object, rimIndex int) error {
	pox := table.FindByPorts(po)
	if pox == nil {
		pox = po.Dup()
		if err := table.Add(pox); err != nil {
			return errorf("Could not add a port object to a group table: %s", err)
		}
	}
	pox.AddRule(rimIndex)
	return nil
}
