package parser

import (
	"errors"
	"strings"

	"github.com/snortt1/snort3/pkg/ports"
	"github.com/snortt1/snort3/pkg/rules"
)

// parsePortObject resolves a tcp/udp port token into a table-owned port
// object: the any object, a named port variable, or a literal port list
// routed through the anonymous table so equal port sets share one object.
func parsePortObject(pvt *ports.VarTable, noname *ports.Table, portStr string) (*ports.Object, error) {
	if strings.EqualFold(portStr, "any") {
		obj := pvt.Find("any")
		if obj == nil {
			return nil, errorf("PortVarTable missing an 'any' variable.")
		}
		return obj, nil
	}

	if strings.HasPrefix(portStr, "$") {
		obj := pvt.Find(portStr[1:])
		if obj == nil {
			return nil, errorf("PortVar Lookup failed on '%s'.", portStr)
		}
		return obj, nil
	}

	obj, err := ports.ParseString(portStr)
	if err != nil {
		var perr *ports.ParseError
		if errors.As(err, &perr) {
			return nil, errorf("Rule--PortVar Parse error: (pos=%d,error=%s)\n>>%s\n>>%*s",
				perr.Pos, perr.Msg, portStr, perr.Pos+1, "^")
		}
		return nil, errorf("Rule--PortVar Parse error: %s", portStr)
	}

	// adopt the resident object when the set already exists; pointer
	// identity of port objects is what header equality compares
	if pox := noname.FindByPorts(obj); pox != nil {
		return pox, nil
	}
	if err := noname.Add(obj); err != nil {
		return nil, errorf("Unable to add raw port object to unnamed port var table.")
	}
	return obj, nil
}

// parsePortList resolves one port token into the draft header. Protocols
// without ports always resolve to the any object; the type or protocol
// dimension is matched elsewhere.
func (c *Conf) parsePortList(rtn *rules.RuleTreeNode, portStr string, proto rules.Protocol, dstFlag bool) error {
	policy := c.Policy()

	var portobject *ports.Object
	var err error

	if proto == rules.ProtoTCP || proto == rules.ProtoUDP {
		portobject, err = parsePortObject(policy.PortVarTable, policy.NonamePortVarTable, portStr)
		if err != nil {
			return err
		}
	} else {
		portobject = policy.PortVarTable.Find("any")
		if portobject == nil {
			return errorf("PortVarTable missing an 'any' variable.")
		}
	}

	if portobject.HasAny() {
		if dstFlag {
			rtn.Flags |= rules.AnyDstPort
		} else {
			rtn.Flags |= rules.AnySrcPort
		}
	}

	// port lists mix negation per entry, so pure negation of the whole
	// set is the only form left with no positive port to match
	if portobject.IsPureNot() {
		return errorf("Pure NOT ports are not allowed.")
	}

	if dstFlag {
		rtn.DstPortObject = portobject
	} else {
		rtn.SrcPortObject = portobject
	}

	return nil
}
