package ports

import (
	"fmt"
	"strconv"
)

// ParseError reports a port-list syntax error with the offset of the
// offending byte.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("port list parse error at %d: %s", e.Pos, e.Msg)
}

// ParseString parses a literal port list into a fresh object. The grammar
// accepts a single port, a range (p:q, p:, :q), negation, and arbitrarily
// nested bracketed lists. Embedded whitespace is a syntax error; the rule
// tokeniser never produces it.
func ParseString(s string) (*Object, error) {
	p := &portParser{src: s}
	obj := &Object{}
	if err := p.parseList(obj, false, false); err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing input")
	}
	if len(obj.Items) == 0 {
		return nil, p.errorf("empty port list")
	}
	return obj, nil
}

type portParser struct {
	src string
	pos int
}

func (p *portParser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *portParser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

// parseList consumes item (',' item)* and stops at an unmatched ']' when
// bracketed is set.
func (p *portParser) parseList(obj *Object, negated, bracketed bool) error {
	for {
		if err := p.parseItem(obj, negated); err != nil {
			return err
		}
		c, ok := p.peek()
		if !ok {
			return nil
		}
		switch c {
		case ',':
			p.pos++
		case ']':
			if !bracketed {
				return p.errorf("unexpected ']'")
			}
			return nil
		default:
			return p.errorf("unexpected character %q", c)
		}
	}
}

func (p *portParser) parseItem(obj *Object, negated bool) error {
	c, ok := p.peek()
	if !ok {
		return p.errorf("expected port")
	}

	if c == '!' {
		p.pos++
		negated = !negated
		c, ok = p.peek()
		if !ok {
			return p.errorf("expected port after '!'")
		}
	}

	if c == '[' {
		p.pos++
		if err := p.parseList(obj, negated, true); err != nil {
			return err
		}
		c, ok = p.peek()
		if !ok || c != ']' {
			return p.errorf("expected ']'")
		}
		p.pos++
		return nil
	}

	return p.parseRange(obj, negated)
}

func (p *portParser) parseRange(obj *Object, negated bool) error {
	var lo, hi uint16
	var haveLo bool

	if c, ok := p.peek(); ok && c != ':' {
		v, err := p.parseNumber()
		if err != nil {
			return err
		}
		lo = v
		haveLo = true
	}

	if c, ok := p.peek(); ok && c == ':' {
		p.pos++
		if c, ok := p.peek(); ok && c >= '0' && c <= '9' {
			v, err := p.parseNumber()
			if err != nil {
				return err
			}
			hi = v
		} else {
			hi = MaxPort
		}
		if !haveLo {
			lo = 0
		}
	} else {
		if !haveLo {
			return p.errorf("expected port")
		}
		hi = lo
	}

	if lo > hi {
		return p.errorf("range start %d exceeds end %d", lo, hi)
	}
	obj.Items = append(obj.Items, Item{Lo: lo, Hi: hi, Not: negated})
	return nil
}

func (p *portParser) parseNumber() (uint16, error) {
	start := p.pos
	for {
		c, ok := p.peek()
		if !ok || c < '0' || c > '9' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf("expected number")
	}
	text := p.src[start:p.pos]
	n, err := strconv.Atoi(text)
	if err != nil || n > MaxPort {
		p.pos = start
		return 0, p.errorf("port %s out of range", text)
	}
	return uint16(n), nil
}
