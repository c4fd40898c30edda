package rules

import "github.com/snortt1/snort3/pkg/classify"

// OptionKind tags an operator-list entry. The set mirrors the detection
// options the registry can instantiate plus the terminal leaf sentinel.
type OptionKind int

const (
	OptContent OptionKind = iota
	OptContentURI
	OptPCRE
	OptByteTest
	OptByteJump
	OptByteExtract
	OptFileData
	OptPktData
	OptBase64Data
	OptIPProto
	OptFlow
	OptDSize
	OptIsDataAt
	OptLeaf
)

func (k OptionKind) String() string {
	switch k {
	case OptContent:
		return "content"
	case OptContentURI:
		return "uricontent"
	case OptPCRE:
		return "pcre"
	case OptByteTest:
		return "byte_test"
	case OptByteJump:
		return "byte_jump"
	case OptByteExtract:
		return "byte_extract"
	case OptFileData:
		return "file_data"
	case OptPktData:
		return "pkt_data"
	case OptBase64Data:
		return "base64_data"
	case OptIPProto:
		return "ip_proto"
	case OptFlow:
		return "flow"
	case OptDSize:
		return "dsize"
	case OptIsDataAt:
		return "isdataat"
	case OptLeaf:
		return "leaf"
	}
	return "OptionKind(?)"
}

// OptFpList is one entry in a signature's operator list. Params holds the
// operator's parsed parameters; its concrete type depends on Kind.
type OptFpList struct {
	Kind       OptionKind
	IsRelative bool
	Params     any
	Next       *OptFpList
}

// Reference is an external documentation pointer attached via the
// reference option.
type Reference struct {
	System string
	ID     string
}

// SigInfo carries the signature metadata set by the meta-option pass.
type SigInfo struct {
	Generator uint32
	ID        uint32
	Rev       uint32
	Message   string

	Classification *classify.Type
	Priority       uint32

	References []Reference
	Metadata   []string

	// TextRule is true for rules read from rule text, false for builtin
	// (decoder/preprocessor) rules.
	TextRule bool
}

// OtnState is per-instance runtime state. One slot is allocated per packet
// thread; ingestion only sizes the array.
type OtnState struct {
	Matches uint64
	Alerts  uint64
}

// OptTreeNode is a signature: the parsed option body of one rule, bound to
// a canonical header per policy.
type OptTreeNode struct {
	SigInfo SigInfo

	Proto   Protocol
	Enabled bool

	// RuleIndex is the dense index assigned by the RuleIndexMap on first
	// sight of (gid, sid); duplicates reuse it.
	RuleIndex int

	ChainNodeNumber  int
	NumDetectionOpts int

	State []OtnState

	optHead *OptFpList
	optTail *OptFpList

	// protoNodes maps policy id -> bound header.
	protoNodes []*RuleTreeNode
}

// NewOptTreeNode allocates a signature with instanceMax per-instance state
// slots.
func NewOptTreeNode(instanceMax int) *OptTreeNode {
	if instanceMax < 1 {
		instanceMax = 1
	}
	return &OptTreeNode{State: make([]OtnState, instanceMax)}
}

// AddOptFunc appends an operator entry and returns it for the caller to
// fill in.
func (o *OptTreeNode) AddOptFunc(kind OptionKind) *OptFpList {
	fpl := &OptFpList{Kind: kind}
	if o.optHead == nil {
		o.optHead = fpl
	} else {
		o.optTail.Next = fpl
	}
	o.optTail = fpl
	return fpl
}

// OptList returns the head of the operator list.
func (o *OptTreeNode) OptList() *OptFpList { return o.optHead }

// LastOpt returns the most recently appended operator, or nil.
func (o *OptTreeNode) LastOpt() *OptFpList { return o.optTail }

// HasOpt reports whether any operator of the given kind is present.
func (o *OptTreeNode) HasOpt(kind OptionKind) bool {
	for fpl := o.optHead; fpl != nil; fpl = fpl.Next {
		if fpl.Kind == kind {
			return true
		}
	}
	return false
}

// RTN returns the header bound for the given policy, or nil.
func (o *OptTreeNode) RTN(policy PolicyID) *RuleTreeNode {
	if int(policy) >= len(o.protoNodes) {
		return nil
	}
	return o.protoNodes[policy]
}

// SetRTN binds a header for the given policy, growing the table as needed.
func (o *OptTreeNode) SetRTN(policy PolicyID, rtn *RuleTreeNode) {
	for int(policy) >= len(o.protoNodes) {
		o.protoNodes = append(o.protoNodes, nil)
	}
	o.protoNodes[policy] = rtn
}

// DeleteRTN unbinds and returns the header for the given policy.
func (o *OptTreeNode) DeleteRTN(policy PolicyID) *RuleTreeNode {
	if int(policy) >= len(o.protoNodes) {
		return nil
	}
	rtn := o.protoNodes[policy]
	o.protoNodes[policy] = nil
	return rtn
}

// ProtoNodeNum returns the size of the per-policy binding table.
func (o *OptTreeNode) ProtoNodeNum() int { return len(o.protoNodes) }
