package parser

import (
	"github.com/snortt1/snort3/pkg/ipvar"
	"github.com/snortt1/snort3/pkg/rules"
)

// testHeader reports whether two header blocks are identical. Address sets
// compare structurally; port objects compare by pointer, which the
// anonymous table's deduplication makes equivalent to set equality.
func testHeader(rule, rtn *rules.RuleTreeNode) bool {
	if rule == nil || rtn == nil {
		return false
	}
	if rule.Type != rtn.Type {
		return false
	}
	if rule.Proto != rtn.Proto {
		return false
	}
	// distinct custom rule type declarations keep distinct headers
	if rule.ListHead != rtn.ListHead {
		return false
	}
	if rule.Flags != rtn.Flags {
		return false
	}
	if rule.SIP != nil && rtn.SIP != nil && !ipvar.Equal(rule.SIP, rtn.SIP) {
		return false
	}
	if rule.DIP != nil && rtn.DIP != nil && !ipvar.Equal(rule.DIP, rtn.DIP) {
		return false
	}
	if rule.SrcPortObject != rtn.SrcPortObject || rule.DstPortObject != rtn.DstPortObject {
		return false
	}
	return true
}

// findHeadNode searches every signature's header for the given policy for
// one equal to the draft.
func (c *Conf) findHeadNode(test *rules.RuleTreeNode, policyID rules.PolicyID) *rules.RuleTreeNode {
	var found *rules.RuleTreeNode
	c.OtnMap.Each(func(otn *rules.OptTreeNode) bool {
		rtn := otn.RTN(policyID)
		if testHeader(rtn, test) {
			found = rtn
			return false
		}
		return true
	})
	return found
}

// processHeadNode returns the canonical header for the draft, installing
// the draft as canonical when no existing header matches.
func (c *Conf) processHeadNode(test *rules.RuleTreeNode) *rules.RuleTreeNode {
	rtn := c.findHeadNode(test, c.current)

	if rtn == nil {
		rtn = &rules.RuleTreeNode{}
		rtn.AddRef()
		rtn.Transfer(test)

		c.headCount++
		rtn.HeadNodeNumber = c.headCount

		setupRTNChecks(rtn)
		rtn.ListHead = test.ListHead
	} else {
		// draft dropped; its port objects and address sets are table-owned
		rtn.AddRef()
	}

	return rtn
}

// setupRTNChecks builds the header's detection-function chain. A
// bidirectional header gets the combined check in place of the four
// directional ones; any-flags omit their check entirely.
func setupRTNChecks(rtn *rules.RuleTreeNode) {
	if rtn.Flags&rules.Bidirectional != 0 {
		rtn.AddCheck(rules.CheckBidirectional)
	} else {
		if rtn.Flags&rules.AnyDstPort == 0 {
			if rtn.Flags&rules.ExceptDstPort != 0 {
				rtn.AddCheck(rules.CheckDstPortNotEq)
			} else {
				rtn.AddCheck(rules.CheckDstPortEqual)
			}
		}
		if rtn.Flags&rules.AnySrcPort == 0 {
			if rtn.Flags&rules.ExceptSrcPort != 0 {
				rtn.AddCheck(rules.CheckSrcPortNotEq)
			} else {
				rtn.AddCheck(rules.CheckSrcPortEqual)
			}
		}
		if rtn.Flags&rules.AnySrcIP == 0 {
			rtn.AddCheck(rules.CheckSrcIP)
		}
		if rtn.Flags&rules.AnyDstIP == 0 {
			rtn.AddCheck(rules.CheckDstIP)
		}
	}

	rtn.AddCheck(rules.RuleListEnd)
}
