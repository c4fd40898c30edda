package parser

import (
	"strings"

	"github.com/snortt1/snort3/pkg/options"
	"github.com/snortt1/snort3/pkg/rules"
)

// parseRuleOptions parses the parenthesised option body into a signature
// and resolves (gid, sid) duplicates. A nil signature with a nil error
// means an existing signature was kept instead.
func (c *Conf) parseRuleOptions(rtn *rules.RuleTreeNode, ruleOpts string, protocol rules.Protocol, text bool) (*rules.OptTreeNode, error) {
	otn := rules.NewOptTreeNode(c.InstanceMax)
	otn.ChainNodeNumber = c.otnCount
	otn.Proto = protocol
	otn.SigInfo.Generator = rules.GeneratorSnortEngine
	otn.SigInfo.TextRule = text
	otn.Enabled = c.Policy().DefaultRuleState

	if ruleOpts == "" {
		return nil, errorf("Each rule must contain a sid.")
	}

	if !strings.HasPrefix(ruleOpts, "(") || !strings.HasSuffix(ruleOpts, ")") {
		return nil, errorf("Rule options must be enclosed in '(' and ')'.")
	}

	c.Meta.Reset()

	body := ruleOpts[1 : len(ruleOpts)-1]
	toks := splitOptions(body)

	numDetectionOpts := 0
	var soOpts string

	dispatch := func(tok string) error {
		name, args := splitNameArgs(tok)

		consumed, so, err := c.Meta.Parse(otn, name, args)
		if err != nil {
			return errorf("%s", err.Error())
		}
		if consumed {
			if so != "" {
				soOpts = so
			}
			return nil
		}

		known, err := c.Registry.Get(otn, protocol, name, args)
		if err != nil {
			return errorf("%s", err.Error())
		}
		if !known {
			return errorf("Unknown rule option: %s.", name)
		}
		numDetectionOpts++
		return nil
	}

	for _, tok := range toks {
		if err := dispatch(tok); err != nil {
			return nil, err
		}
	}

	if soOpts != "" {
		// shared-object continuation: the final token is not processed,
		// matching the engine's historical worklist bound
		toks = splitOptions(soOpts)
		for i := 0; i < len(toks)-1; i++ {
			if err := dispatch(toks[i]); err != nil {
				return nil, err
			}
		}
	}

	if numDetectionOpts > 0 && !otn.SigInfo.TextRule {
		return nil, errorf("Builtin rules do not support detection options.")
	}

	if otn.SigInfo.ID == 0 {
		return nil, errorf("Each rule must contain a rule sid.")
	}

	otn.SetRTN(c.current, rtn)

	if dup := c.OtnMap.Lookup(otn.SigInfo.Generator, otn.SigInfo.ID); dup != nil {
		otn.RuleIndex = dup.RuleIndex

		keepNew, err := c.mergeDuplicateOtn(dup, otn, rtn)
		if err != nil {
			return nil, err
		}
		if !keepNew {
			return nil, nil
		}
	} else {
		otn.RuleIndex = c.RuleIndexMap.Add(otn.SigInfo.Generator, otn.SigInfo.ID)
	}

	otn.NumDetectionOpts += numDetectionOpts
	c.otnCount++

	if otn.SigInfo.TextRule {
		c.detectRuleCount++
	} else {
		c.builtinRuleCount++
	}

	otn.AddOptFunc(rules.OptLeaf)

	c.validateFastPattern(otn)

	c.OtnMap.Add(otn)

	return otn, nil
}

// mergeDuplicateOtn resolves a (gid, sid) collision. The signature with
// the higher revision wins; equal revisions keep the newer rule. The
// losing signature's per-policy header bindings migrate to the winner,
// except the active policy's which is replaced.
func (c *Conf) mergeDuplicateOtn(otnCur, otnNew *rules.OptTreeNode, rtnNew *rules.RuleTreeNode) (keepNew bool, err error) {
	if otnCur.Proto != otnNew.Proto {
		return false, errorf("GID %d SID %d in rule duplicates previous rule, with different protocol.",
			otnNew.SigInfo.Generator, otnNew.SigInfo.ID)
	}

	rtnCur := otnCur.RTN(c.current)

	if rtnCur != nil && rtnCur.Type != rtnNew.Type {
		return false, errorf("GID %d SID %d in rule duplicates previous rule, with different type.",
			otnNew.SigInfo.Generator, otnNew.SigInfo.ID)
	}

	if otnNew.SigInfo.Rev < otnCur.SigInfo.Rev {
		// stored signature is the newer revision; discard the new one
		otnNew.DeleteRTN(c.current)

		c.parseWarning("%d:%d duplicates previous rule. Using revision %d.",
			otnCur.SigInfo.Generator, otnCur.SigInfo.ID, otnCur.SigInfo.Rev)

		// first instance of the rule in this policy salvages the header
		if rtnCur == nil {
			otnCur.SetRTN(c.current, rtnNew)
		} else {
			rtnNew.DecRef()
		}

		return false, nil
	}

	// keep the new signature; migrate bindings from every other policy
	for i := 0; i < otnCur.ProtoNodeNum(); i++ {
		id := rules.PolicyID(i)
		rtnTmp := otnCur.DeleteRTN(id)
		if rtnTmp != nil && id != c.current {
			otnNew.SetRTN(id, rtnTmp)
		}
	}

	if rtnCur != nil {
		if c.ConfErrorOut {
			return false, errorf("%d:%d:%d duplicates previous rule.",
				otnNew.SigInfo.Generator, otnNew.SigInfo.ID, otnNew.SigInfo.Rev)
		}
		c.parseWarning("%d:%d duplicates previous rule. Using revision %d.",
			otnNew.SigInfo.Generator, otnNew.SigInfo.ID, otnNew.SigInfo.Rev)

		if otnNew.SigInfo.TextRule {
			c.detectRuleCount--
		} else {
			c.builtinRuleCount--
		}
		// the replaced rule was counted when it was accepted; the caller
		// counts the replacement, so back out the stale total
		c.ruleCount--
	}

	c.otnCount--

	c.OtnMap.Remove(otnCur)
	if rtnCur != nil {
		rtnCur.DecRef()
	}

	return true, nil
}

// validateFastPattern warns when a relative option follows a
// fast_pattern:only content with no buffer reset in between.
func (c *Conf) validateFastPattern(otn *rules.OptTreeNode) {
	fpOnly := false

	for fpl := otn.OptList(); fpl != nil; fpl = fpl.Next {
		if fpOnly && fpl.IsRelative {
			c.parseWarning("relative rule option used after fast_pattern:only")
		}

		switch fpl.Kind {
		case rules.OptFileData, rules.OptPktData, rules.OptBase64Data,
			rules.OptPCRE, rules.OptByteJump, rules.OptByteExtract:
			fpOnly = false

		case rules.OptContent, rules.OptContentURI:
			fpOnly = options.IsFastPatternOnly(fpl)
		}
	}
}

// splitOptions breaks an option body on ';', honoring '\' escapes and
// skipping empty tokens, the way the engine's string splitter does.
func splitOptions(body string) []string {
	var toks []string
	var cur strings.Builder

	flush := func() {
		tok := strings.TrimSpace(cur.String())
		if tok != "" {
			toks = append(toks, tok)
		}
		cur.Reset()
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			cur.WriteByte(c)
			i++
			cur.WriteByte(body[i])
		case c == ';':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()

	return toks
}

// splitNameArgs breaks one option token on its first unescaped ':'.
func splitNameArgs(tok string) (name, args string) {
	for i := 0; i < len(tok); i++ {
		switch tok[i] {
		case '\\':
			i++
		case ':':
			return strings.TrimSpace(tok[:i]), strings.TrimSpace(tok[i+1:])
		}
	}
	return strings.TrimSpace(tok), ""
}
