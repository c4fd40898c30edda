package parser

import (
	"github.com/snortt1/snort3/pkg/ipvar"
	"github.com/snortt1/snort3/pkg/rules"
)

const (
	modeSrc = iota
	modeDst
)

// processIP resolves one address token into the draft header. A token
// naming a variable makes the header share the table's set; anything else
// parses into a fresh set owned by the header. The matching any-IP flag is
// set when the positive list is universal.
func (c *Conf) processIP(addr string, rtn *rules.RuleTreeNode, mode int) error {
	table := c.Policy().IPVarTable

	target := &rtn.SIP
	anyFlag := rules.AnySrcIP
	if mode == modeDst {
		target = &rtn.DIP
		anyFlag = rules.AnyDstIP
	}

	var status ipvar.Status
	if *target == nil {
		if v := table.Lookup(addr); v != nil {
			// alias: the header shares the variable's storage and name
			*target = v
			status = ipvar.Success
		} else {
			*target = &ipvar.Set{}
			status = table.AddToVar(*target, addr)
		}
	} else {
		status = table.AddToVar(*target, addr)
	}

	switch status {
	case ipvar.Success:
	case ipvar.LookupFailure:
		return errorf("Undefined variable in the string: %s.", addr)
	case ipvar.Conflict:
		return errorf("Negated IP ranges that are more general than "+
			"non-negated ranges are not allowed. Consider "+
			"inverting the logic: %s.", addr)
	case ipvar.NotAny:
		return errorf("!any is not allowed: %s.", addr)
	default:
		return errorf("Unable to process the IP address: %s.", addr)
	}

	if (*target).HasAny() {
		rtn.Flags |= anyFlag
	}

	return validateIPList(*target, addr)
}

// validateIPList rejects a set with neither positive nor negated entries.
func validateIPList(set *ipvar.Set, token string) error {
	if set.Empty() {
		return errorf("Empty IP used either as source IP or as "+
			"destination IP in a rule. IP list: %s.", token)
	}
	return nil
}
