package options

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/snortt1/snort3/pkg/rules"
)

// PCREData holds a pcre operator: the expression, its trailing flags, and
// whether the match is negated.
type PCREData struct {
	Expr    string
	Flags   string
	Negated bool
}

// parsePCRE validates pcre:"/expr/flags". The expression is compiled with
// regexp2 so PCRE constructs stdlib regexp rejects (lookaround, possessive
// quantifiers) are accepted at ingestion time. The R flag anchors the
// match relative to the previous content match.
func parsePCRE(otn *rules.OptTreeNode, _ rules.Protocol, args string) error {
	args = strings.TrimSpace(args)
	negated := false
	if strings.HasPrefix(args, "!") {
		negated = true
		args = strings.TrimSpace(args[1:])
	}

	if len(args) < 2 || args[0] != '"' || args[len(args)-1] != '"' {
		return fmt.Errorf("expression must be quoted: %s", args)
	}
	args = args[1 : len(args)-1]

	if len(args) < 2 || args[0] != '/' {
		return fmt.Errorf("expression must be delimited by '/': %s", args)
	}
	end := strings.LastIndexByte(args, '/')
	if end == 0 {
		return fmt.Errorf("missing closing '/': %s", args)
	}
	expr := args[1:end]
	flags := args[end+1:]

	opts := regexp2.None
	relative := false
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 's':
			opts |= regexp2.Singleline
		case 'm':
			opts |= regexp2.Multiline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		case 'R':
			relative = true
		case 'A', 'E', 'G', 'B', 'U', 'P', 'H', 'M', 'C', 'O', 'I', 'D', 'K', 'Y', 'S':
			// buffer and anchor selectors; no compile-time effect
		default:
			return fmt.Errorf("unknown flag %q", f)
		}
	}

	if _, err := regexp2.Compile(expr, opts); err != nil {
		return fmt.Errorf("bad expression: %w", err)
	}

	fpl := otn.AddOptFunc(rules.OptPCRE)
	fpl.Params = &PCREData{Expr: expr, Flags: flags, Negated: negated}
	fpl.IsRelative = relative
	return nil
}
