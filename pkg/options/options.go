// Package options implements the rule-option registry: given an option
// name it knows how to parse the argument and append a detection operator
// to a signature's operator list. Meta options (sid, rev, classtype, ...)
// are handled by the separate meta pass in this package.
package options

import (
	"fmt"

	"github.com/snortt1/snort3/pkg/rules"
)

// ParseFunc parses one option's argument and attaches its operator to the
// signature.
type ParseFunc func(otn *rules.OptTreeNode, proto rules.Protocol, args string) error

// Registry maps option names to their parsers. A fresh registry carries
// the builtin detection options; callers may register more.
type Registry struct {
	handlers map[string]ParseFunc
}

// NewRegistry returns a registry with the builtin detection options
// installed.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]ParseFunc)}

	r.Register("content", parseContent)
	r.Register("uricontent", parseURIContent)
	r.Register("pcre", parsePCRE)
	r.Register("byte_test", parseByteTest)
	r.Register("byte_jump", parseByteJump)
	r.Register("byte_extract", parseByteExtract)
	r.Register("file_data", parseFileData)
	r.Register("pkt_data", parsePktData)
	r.Register("base64_data", parseBase64Data)
	r.Register("ip_proto", parseIPProto)
	r.Register("flow", parseFlow)
	r.Register("dsize", parseDSize)
	r.Register("isdataat", parseIsDataAt)

	// content modifiers operate on the most recent content operator
	r.Register("nocase", modNocase)
	r.Register("offset", modOffset)
	r.Register("depth", modDepth)
	r.Register("distance", modDistance)
	r.Register("within", modWithin)
	r.Register("fast_pattern", modFastPattern)
	r.Register("http_uri", modHTTPBuffer(BufURI))
	r.Register("http_raw_uri", modHTTPBuffer(BufRawURI))
	r.Register("http_header", modHTTPBuffer(BufHeader))
	r.Register("http_client_body", modHTTPBuffer(BufClientBody))
	r.Register("http_cookie", modHTTPBuffer(BufCookie))
	r.Register("http_method", modHTTPBuffer(BufMethod))

	return r
}

// Register binds a parser to an option name.
func (r *Registry) Register(name string, fn ParseFunc) {
	r.handlers[name] = fn
}

// Get dispatches one name/args pair. The bool result reports whether the
// name is a known detection option; a known option with bad arguments
// returns true and an error.
func (r *Registry) Get(otn *rules.OptTreeNode, proto rules.Protocol, name, args string) (bool, error) {
	fn, ok := r.handlers[name]
	if !ok {
		return false, nil
	}
	if err := fn(otn, proto, args); err != nil {
		return true, fmt.Errorf("%s: %w", name, err)
	}
	return true, nil
}

// lastContent finds the most recently appended content or uricontent
// operator; modifiers attach to it.
func lastContent(otn *rules.OptTreeNode) (*rules.OptFpList, *ContentData, error) {
	var found *rules.OptFpList
	for fpl := otn.OptList(); fpl != nil; fpl = fpl.Next {
		if fpl.Kind == rules.OptContent || fpl.Kind == rules.OptContentURI {
			found = fpl
		}
	}
	if found == nil {
		return nil, nil, fmt.Errorf("no content option to modify")
	}
	return found, found.Params.(*ContentData), nil
}

// IsFastPatternOnly reports whether the operator is a content designated
// fast_pattern:only.
func IsFastPatternOnly(fpl *rules.OptFpList) bool {
	if fpl.Kind != rules.OptContent && fpl.Kind != rules.OptContentURI {
		return false
	}
	cd, ok := fpl.Params.(*ContentData)
	return ok && cd.FastPatternOnly
}
