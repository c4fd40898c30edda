package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/snortt1/snort3/pkg/rules"
)

// Results of GetOtnIpProto when no plain equality constraint exists.
const (
	IPProtoUnconstrained = -1
	IPProtoOther         = -2
)

// IPProtoData holds an ip_proto operator: a relational constraint on the
// IP protocol number.
type IPProtoData struct {
	Op    byte // '=', '!', '>', '<'
	Proto int
}

var ipProtoNames = map[string]int{
	"icmp": rules.IPProtoICMP,
	"igmp": 2,
	"tcp":  rules.IPProtoTCP,
	"udp":  rules.IPProtoUDP,
}

func parseIPProto(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	args = strings.TrimSpace(args)
	if args == "" {
		return fmt.Errorf("requires a protocol")
	}

	op := byte('=')
	switch args[0] {
	case '!', '>', '<':
		op = args[0]
		args = strings.TrimSpace(args[1:])
	}

	proto, ok := ipProtoNames[args]
	if !ok {
		n, err := strconv.Atoi(args)
		if err != nil || n < 0 || n > 255 {
			return fmt.Errorf("bad protocol %q", args)
		}
		proto = n
	}

	fpl := otn.AddOptFunc(rules.OptIPProto)
	fpl.Params = &IPProtoData{Op: op, Proto: proto}
	return nil
}

// GetOtnIpProto returns the signature's effective IP-proto constraint: the
// protocol number for a plain equality constraint, IPProtoUnconstrained
// when no ip_proto operator is present, and IPProtoOther for negated or
// relational constraints.
func GetOtnIpProto(otn *rules.OptTreeNode) int {
	for fpl := otn.OptList(); fpl != nil; fpl = fpl.Next {
		if fpl.Kind != rules.OptIPProto {
			continue
		}
		ipd := fpl.Params.(*IPProtoData)
		if ipd.Op == '=' {
			return ipd.Proto
		}
		return IPProtoOther
	}
	return IPProtoUnconstrained
}

// FlowData holds a flow operator's keywords.
type FlowData struct {
	Keywords []string
}

var flowKeywords = map[string]bool{
	"to_server": true, "to_client": true,
	"from_server": true, "from_client": true,
	"established": true, "not_established": true,
	"stateless":   true,
	"no_stream":   true, "only_stream": true,
	"no_frag": true, "only_frag": true,
}

func parseFlow(otn *rules.OptTreeNode, proto rules.Protocol, args string) error {
	if proto == rules.ProtoICMP {
		return fmt.Errorf("cannot be used with icmp rules")
	}
	parts := splitArgs(args)
	fd := &FlowData{}
	for _, kw := range parts {
		if !flowKeywords[kw] {
			return fmt.Errorf("bad keyword %q", kw)
		}
		fd.Keywords = append(fd.Keywords, kw)
	}
	if len(fd.Keywords) == 0 {
		return fmt.Errorf("requires at least one keyword")
	}

	fpl := otn.AddOptFunc(rules.OptFlow)
	fpl.Params = fd
	return nil
}

// DSizeData holds a dsize operator: a payload size test.
type DSizeData struct {
	Op string // "=", "<", ">", "<>"
	Lo int
	Hi int
}

func parseDSize(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	args = strings.TrimSpace(args)
	dd := &DSizeData{Op: "="}

	if lo, hi, ok := strings.Cut(args, "<>"); ok {
		var err error
		dd.Op = "<>"
		if dd.Lo, err = parseInt(lo); err != nil {
			return err
		}
		if dd.Hi, err = parseInt(hi); err != nil {
			return err
		}
		if dd.Lo > dd.Hi {
			return fmt.Errorf("range %d<>%d inverted", dd.Lo, dd.Hi)
		}
	} else {
		if strings.HasPrefix(args, "<") || strings.HasPrefix(args, ">") {
			dd.Op = args[:1]
			args = strings.TrimSpace(args[1:])
		}
		n, err := parseInt(args)
		if err != nil {
			return err
		}
		dd.Lo = n
	}

	fpl := otn.AddOptFunc(rules.OptDSize)
	fpl.Params = dd
	return nil
}

// IsDataAtData holds an isdataat operator.
type IsDataAtData struct {
	Offset   int
	Negated  bool
	Relative bool
	RawBytes bool
}

func parseIsDataAt(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	parts := splitArgs(args)
	if len(parts) == 0 || parts[0] == "" {
		return fmt.Errorf("requires an offset")
	}

	id := &IsDataAtData{}
	off := parts[0]
	if strings.HasPrefix(off, "!") {
		id.Negated = true
		off = strings.TrimSpace(off[1:])
	}
	n, err := parseInt(off)
	if err != nil {
		return err
	}
	id.Offset = n

	for _, opt := range parts[1:] {
		switch opt {
		case "relative":
			id.Relative = true
		case "rawbytes":
			id.RawBytes = true
		default:
			return fmt.Errorf("bad modifier %q", opt)
		}
	}

	fpl := otn.AddOptFunc(rules.OptIsDataAt)
	fpl.Params = id
	fpl.IsRelative = id.Relative
	return nil
}

// The cursor options move subsequent relative matches into another data
// buffer and take no arguments.

func parseFileData(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	return addCursor(otn, rules.OptFileData, args)
}

func parsePktData(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	return addCursor(otn, rules.OptPktData, args)
}

func parseBase64Data(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	return addCursor(otn, rules.OptBase64Data, args)
}

func addCursor(otn *rules.OptTreeNode, kind rules.OptionKind, args string) error {
	if args != "" {
		return fmt.Errorf("takes no argument")
	}
	otn.AddOptFunc(kind)
	return nil
}
