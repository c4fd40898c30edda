package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/snortt1/snort3/pkg/rules"
)

// HTTPBuffer selects the HTTP buffer a content operator inspects.
type HTTPBuffer int

const (
	BufNone HTTPBuffer = iota
	BufURI
	BufRawURI
	BufHeader
	BufClientBody
	BufCookie
	BufMethod
)

// FastPatternEligible reports whether content bound to this buffer may
// feed the multi-pattern prefilter.
func (b HTTPBuffer) FastPatternEligible() bool {
	switch b {
	case BufNone, BufURI, BufHeader, BufClientBody:
		return true
	}
	return false
}

// ContentData holds the parameters of a content or uricontent operator.
type ContentData struct {
	Pattern []byte
	Negated bool
	Nocase  bool

	Offset int
	Depth  int

	Distance    int
	HasDistance bool
	Within      int
	HasWithin   bool

	FastPattern     bool
	FastPatternOnly bool

	HTTPBuffer HTTPBuffer
}

func parseContent(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	return addContent(otn, rules.OptContent, BufNone, args)
}

// uricontent is the legacy spelling of content bound to the URI buffer.
func parseURIContent(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	return addContent(otn, rules.OptContentURI, BufURI, args)
}

func addContent(otn *rules.OptTreeNode, kind rules.OptionKind, buf HTTPBuffer, args string) error {
	args = strings.TrimSpace(args)
	negated := false
	if strings.HasPrefix(args, "!") {
		negated = true
		args = strings.TrimSpace(args[1:])
	}

	pattern, err := parsePattern(args)
	if err != nil {
		return err
	}

	cd := &ContentData{Pattern: pattern, Negated: negated, HTTPBuffer: buf}
	fpl := otn.AddOptFunc(kind)
	fpl.Params = cd
	return nil
}

// parsePattern decodes a quoted content pattern. Sections between '|'
// characters are hex byte sequences; the escapes \" \\ \| \; \: stand for
// the literal character.
func parsePattern(s string) ([]byte, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return nil, fmt.Errorf("pattern must be quoted: %s", s)
	}
	s = s[1 : len(s)-1]

	var out []byte
	hexMode := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '|':
			if hexMode {
				hexMode = false
			} else {
				hexMode = true
			}
		case hexMode:
			if c == ' ' {
				continue
			}
			if i+1 >= len(s) {
				return nil, fmt.Errorf("truncated hex escape")
			}
			b, err := strconv.ParseUint(s[i:i+2], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("bad hex byte %q", s[i:i+2])
			}
			out = append(out, byte(b))
			i++
		case c == '\\':
			if i+1 >= len(s) {
				return nil, fmt.Errorf("trailing escape")
			}
			i++
			switch s[i] {
			case '"', '\\', '|', ';', ':':
				out = append(out, s[i])
			default:
				return nil, fmt.Errorf("bad escape \\%c", s[i])
			}
		default:
			out = append(out, c)
		}
	}
	if hexMode {
		return nil, fmt.Errorf("unterminated hex section")
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}
	return out, nil
}

func modNocase(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	if args != "" {
		return fmt.Errorf("takes no argument")
	}
	_, cd, err := lastContent(otn)
	if err != nil {
		return err
	}
	cd.Nocase = true
	return nil
}

func modOffset(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	_, cd, err := lastContent(otn)
	if err != nil {
		return err
	}
	n, err := parseInt(args)
	if err != nil {
		return err
	}
	cd.Offset = n
	return nil
}

func modDepth(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	_, cd, err := lastContent(otn)
	if err != nil {
		return err
	}
	n, err := parseInt(args)
	if err != nil {
		return err
	}
	if n < len(cd.Pattern) {
		return fmt.Errorf("depth %d less than pattern length %d", n, len(cd.Pattern))
	}
	cd.Depth = n
	return nil
}

// distance makes the content relative to the previous match.
func modDistance(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	fpl, cd, err := lastContent(otn)
	if err != nil {
		return err
	}
	n, err := parseInt(args)
	if err != nil {
		return err
	}
	cd.Distance = n
	cd.HasDistance = true
	fpl.IsRelative = true
	return nil
}

// within makes the content relative to the previous match.
func modWithin(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	fpl, cd, err := lastContent(otn)
	if err != nil {
		return err
	}
	n, err := parseInt(args)
	if err != nil {
		return err
	}
	if n < len(cd.Pattern) {
		return fmt.Errorf("within %d less than pattern length %d", n, len(cd.Pattern))
	}
	cd.Within = n
	cd.HasWithin = true
	fpl.IsRelative = true
	return nil
}

func modFastPattern(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	_, cd, err := lastContent(otn)
	if err != nil {
		return err
	}
	if cd.Negated {
		return fmt.Errorf("fast_pattern cannot be used with negated content")
	}
	cd.FastPattern = true
	switch {
	case args == "":
	case args == "only":
		cd.FastPatternOnly = true
	default:
		// fast_pattern:<offset>,<length> truncation form
		parts := strings.Split(args, ",")
		if len(parts) != 2 {
			return fmt.Errorf("bad argument %q", args)
		}
		if _, err := parseInt(parts[0]); err != nil {
			return err
		}
		if _, err := parseInt(parts[1]); err != nil {
			return err
		}
	}
	return nil
}

func modHTTPBuffer(buf HTTPBuffer) ParseFunc {
	return func(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
		if args != "" {
			return fmt.Errorf("takes no argument")
		}
		_, cd, err := lastContent(otn)
		if err != nil {
			return err
		}
		cd.HTTPBuffer = buf
		return nil
	}
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return n, nil
}
