package options

import (
	"fmt"
	"strings"

	"github.com/snortt1/snort3/pkg/rules"
)

// ByteTestData holds a byte_test operator.
type ByteTestData struct {
	Bytes    int
	Operator string
	Negated  bool
	Value    uint64
	Offset   int
	Relative bool
	Endian   string // "big" or "little"
	String   bool
	Base     string // "hex", "dec", or "oct" when String is set
}

// ByteJumpData holds a byte_jump operator.
type ByteJumpData struct {
	Bytes         int
	Offset        int
	Relative      bool
	Multiplier    int
	Endian        string
	String        bool
	Base          string
	Align         bool
	FromBeginning bool
	PostOffset    int
}

// ByteExtractData holds a byte_extract operator.
type ByteExtractData struct {
	Bytes      int
	Offset     int
	Name       string
	Relative   bool
	Multiplier int
	Endian     string
	String     bool
	Base       string
	Align      int
}

var byteTestOps = map[string]bool{
	"<": true, ">": true, "=": true, "<=": true, ">=": true, "&": true, "^": true,
}

func parseByteTest(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	parts := splitArgs(args)
	if len(parts) < 4 {
		return fmt.Errorf("requires bytes, operator, value, offset")
	}

	bt := &ByteTestData{Endian: "big"}
	var err error
	if bt.Bytes, err = parseInt(parts[0]); err != nil {
		return err
	}
	op := parts[1]
	if strings.HasPrefix(op, "!") {
		bt.Negated = true
		op = strings.TrimSpace(op[1:])
		if op == "" {
			op = "="
		}
	}
	if !byteTestOps[op] {
		return fmt.Errorf("bad operator %q", parts[1])
	}
	bt.Operator = op
	if _, err := fmt.Sscanf(parts[2], "%d", &bt.Value); err != nil {
		return fmt.Errorf("bad value %q", parts[2])
	}
	if bt.Offset, err = parseInt(parts[3]); err != nil {
		return err
	}

	for _, opt := range parts[4:] {
		switch opt {
		case "relative":
			bt.Relative = true
		case "big", "little":
			bt.Endian = opt
		case "string":
			bt.String = true
		case "hex", "dec", "oct":
			bt.Base = opt
		case "dce":
			// endianness resolved by the dcerpc preprocessor at match time
		default:
			return fmt.Errorf("bad modifier %q", opt)
		}
	}
	if bt.Base != "" && !bt.String {
		return fmt.Errorf("number base requires the string modifier")
	}

	fpl := otn.AddOptFunc(rules.OptByteTest)
	fpl.Params = bt
	fpl.IsRelative = bt.Relative
	return nil
}

func parseByteJump(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	parts := splitArgs(args)
	if len(parts) < 2 {
		return fmt.Errorf("requires bytes and offset")
	}

	bj := &ByteJumpData{Endian: "big", Multiplier: 1}
	var err error
	if bj.Bytes, err = parseInt(parts[0]); err != nil {
		return err
	}
	if bj.Offset, err = parseInt(parts[1]); err != nil {
		return err
	}

	for i := 2; i < len(parts); i++ {
		opt := parts[i]
		switch {
		case opt == "relative":
			bj.Relative = true
		case opt == "big" || opt == "little":
			bj.Endian = opt
		case opt == "string":
			bj.String = true
		case opt == "hex" || opt == "dec" || opt == "oct":
			bj.Base = opt
		case opt == "align":
			bj.Align = true
		case opt == "from_beginning":
			bj.FromBeginning = true
		case strings.HasPrefix(opt, "multiplier "):
			if bj.Multiplier, err = parseInt(strings.TrimPrefix(opt, "multiplier ")); err != nil {
				return err
			}
		case strings.HasPrefix(opt, "post_offset "):
			if bj.PostOffset, err = parseInt(strings.TrimPrefix(opt, "post_offset ")); err != nil {
				return err
			}
		default:
			return fmt.Errorf("bad modifier %q", opt)
		}
	}

	fpl := otn.AddOptFunc(rules.OptByteJump)
	fpl.Params = bj
	fpl.IsRelative = bj.Relative
	return nil
}

func parseByteExtract(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	parts := splitArgs(args)
	if len(parts) < 3 {
		return fmt.Errorf("requires bytes, offset, and name")
	}

	be := &ByteExtractData{Endian: "big", Multiplier: 1}
	var err error
	if be.Bytes, err = parseInt(parts[0]); err != nil {
		return err
	}
	if be.Offset, err = parseInt(parts[1]); err != nil {
		return err
	}
	be.Name = parts[2]
	if be.Name == "" {
		return fmt.Errorf("variable name required")
	}

	for i := 3; i < len(parts); i++ {
		opt := parts[i]
		switch {
		case opt == "relative":
			be.Relative = true
		case opt == "big" || opt == "little":
			be.Endian = opt
		case opt == "string":
			be.String = true
		case opt == "hex" || opt == "dec" || opt == "oct":
			be.Base = opt
		case strings.HasPrefix(opt, "multiplier "):
			if be.Multiplier, err = parseInt(strings.TrimPrefix(opt, "multiplier ")); err != nil {
				return err
			}
		case strings.HasPrefix(opt, "align "):
			if be.Align, err = parseInt(strings.TrimPrefix(opt, "align ")); err != nil {
				return err
			}
		default:
			return fmt.Errorf("bad modifier %q", opt)
		}
	}

	fpl := otn.AddOptFunc(rules.OptByteExtract)
	fpl.Params = be
	fpl.IsRelative = be.Relative
	return nil
}

// splitArgs breaks a comma-separated argument list, trimming surrounding
// whitespace and collapsing internal runs so "multiplier  2" parses.
func splitArgs(args string) []string {
	raw := strings.Split(args, ",")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		out = append(out, strings.Join(strings.Fields(s), " "))
	}
	return out
}
