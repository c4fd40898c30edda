package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/snortt1/snort3/pkg/classify"
	"github.com/snortt1/snort3/pkg/rules"
)

// SOResolver maps a soid token to the option body of a shared-object
// rule. The returned string is processed as a continuation after the stub
// options; absent entries leave the stub as-is.
type SOResolver func(soid string) (string, bool)

// MetaParser consumes the fixed set of meta options that describe a
// signature rather than match packet data. Reset clears per-rule state
// before each signature.
type MetaParser struct {
	Classifications *classify.Table
	Resolver        SOResolver

	prioritySet bool
}

// NewMetaParser returns a meta parser resolving classtype against table.
func NewMetaParser(table *classify.Table) *MetaParser {
	return &MetaParser{Classifications: table}
}

// Reset clears per-rule parse state.
func (m *MetaParser) Reset() {
	m.prioritySet = false
}

// Parse dispatches one name/args pair. The bool result reports whether
// the option is a meta option; soOpts carries the shared-object
// continuation when the soid option resolves one.
func (m *MetaParser) Parse(otn *rules.OptTreeNode, name, args string) (consumed bool, soOpts string, err error) {
	switch name {
	case "msg":
		otn.SigInfo.Message = stripQuotes(args)
		return true, "", nil

	case "gid":
		n, err := parseUint32(args)
		if err != nil {
			return true, "", fmt.Errorf("gid: %w", err)
		}
		otn.SigInfo.Generator = n
		return true, "", nil

	case "sid":
		n, err := parseUint32(args)
		if err != nil {
			return true, "", fmt.Errorf("sid: %w", err)
		}
		if n == 0 {
			return true, "", fmt.Errorf("sid must be non-zero")
		}
		otn.SigInfo.ID = n
		return true, "", nil

	case "rev":
		n, err := parseUint32(args)
		if err != nil {
			return true, "", fmt.Errorf("rev: %w", err)
		}
		otn.SigInfo.Rev = n
		return true, "", nil

	case "classtype":
		name := strings.TrimSpace(args)
		ct := m.Classifications.Find(name)
		if ct == nil {
			return true, "", fmt.Errorf("unknown classification type: %s", name)
		}
		otn.SigInfo.Classification = ct
		if !m.prioritySet {
			otn.SigInfo.Priority = ct.Priority
		}
		return true, "", nil

	case "priority":
		n, err := parseUint32(args)
		if err != nil {
			return true, "", fmt.Errorf("priority: %w", err)
		}
		otn.SigInfo.Priority = n
		m.prioritySet = true
		return true, "", nil

	case "metadata":
		for _, entry := range strings.Split(args, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				otn.SigInfo.Metadata = append(otn.SigInfo.Metadata, entry)
			}
		}
		return true, "", nil

	case "reference":
		system, id, ok := strings.Cut(args, ",")
		if !ok {
			return true, "", fmt.Errorf("reference requires system,id: %s", args)
		}
		otn.SigInfo.References = append(otn.SigInfo.References, rules.Reference{
			System: strings.TrimSpace(system),
			ID:     strings.TrimSpace(id),
		})
		return true, "", nil

	case "soid":
		soid := strings.TrimSpace(args)
		if soid == "" {
			return true, "", fmt.Errorf("soid requires an argument")
		}
		if m.Resolver != nil {
			if body, ok := m.Resolver(soid); ok {
				return true, body, nil
			}
		}
		return true, "", nil
	}

	return false, "", nil
}

func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return uint32(n), nil
}
