package options

import (
	"testing"

	"github.com/snortt1/snort3/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCRE(t *testing.T) {
	reg := NewRegistry()
	otn := newOtn()

	dispatch(t, reg, otn, "pcre", `"/User-Agent\x3a[^\r\n]+evil/i"`)

	fpl := otn.OptList()
	require.Equal(t, rules.OptPCRE, fpl.Kind)
	assert.False(t, fpl.IsRelative)

	pd := fpl.Params.(*PCREData)
	assert.Equal(t, "i", pd.Flags)
	assert.False(t, pd.Negated)
}

func TestPCRERelativeFlag(t *testing.T) {
	reg := NewRegistry()
	otn := newOtn()

	dispatch(t, reg, otn, "pcre", `"/foo/R"`)
	assert.True(t, otn.OptList().IsRelative)
}

func TestPCRELookbehind(t *testing.T) {
	// stdlib regexp rejects lookbehind; the pcre option must accept it
	reg := NewRegistry()
	otn := newOtn()

	dispatch(t, reg, otn, "pcre", `"/(?<=GET )\/admin/"`)
}

func TestPCRENegated(t *testing.T) {
	reg := NewRegistry()
	otn := newOtn()

	dispatch(t, reg, otn, "pcre", `!"/benign/"`)
	assert.True(t, otn.OptList().Params.(*PCREData).Negated)
}

func TestPCREErrors(t *testing.T) {
	reg := NewRegistry()

	for _, args := range []string{``, `"foo"`, `"/foo"`, `"/foo/Z"`, `"/[unclosed/"`} {
		otn := newOtn()
		known, err := reg.Get(otn, rules.ProtoTCP, "pcre", args)
		require.True(t, known)
		assert.Error(t, err, args)
	}
}

func TestByteTest(t *testing.T) {
	reg := NewRegistry()
	otn := newOtn()

	dispatch(t, reg, otn, "byte_test", "4,>,1000,0,relative,big")

	fpl := otn.OptList()
	require.Equal(t, rules.OptByteTest, fpl.Kind)
	assert.True(t, fpl.IsRelative)

	bt := fpl.Params.(*ByteTestData)
	assert.Equal(t, 4, bt.Bytes)
	assert.Equal(t, ">", bt.Operator)
	assert.Equal(t, uint64(1000), bt.Value)
	assert.Equal(t, "big", bt.Endian)
}

func TestByteTestNegatedOperator(t *testing.T) {
	reg := NewRegistry()
	otn := newOtn()

	dispatch(t, reg, otn, "byte_test", "2,!=,0,4")
	bt := otn.OptList().Params.(*ByteTestData)
	assert.True(t, bt.Negated)
	assert.Equal(t, "=", bt.Operator)
}

func TestByteTestErrors(t *testing.T) {
	reg := NewRegistry()

	for _, args := range []string{"", "4,>,1000", "4,?,1,0", "4,>,1,0,sideways", "4,>,1,0,hex"} {
		otn := newOtn()
		known, err := reg.Get(otn, rules.ProtoTCP, "byte_test", args)
		require.True(t, known)
		assert.Error(t, err, args)
	}
}

func TestByteJump(t *testing.T) {
	reg := NewRegistry()
	otn := newOtn()

	dispatch(t, reg, otn, "byte_jump", "4,12,relative,multiplier 2,align")

	fpl := otn.OptList()
	require.Equal(t, rules.OptByteJump, fpl.Kind)
	assert.True(t, fpl.IsRelative)

	bj := fpl.Params.(*ByteJumpData)
	assert.Equal(t, 2, bj.Multiplier)
	assert.True(t, bj.Align)
}

func TestByteExtract(t *testing.T) {
	reg := NewRegistry()
	otn := newOtn()

	dispatch(t, reg, otn, "byte_extract", "2,0,len,relative")

	be := otn.OptList().Params.(*ByteExtractData)
	assert.Equal(t, "len", be.Name)
	assert.True(t, be.Relative)
	assert.True(t, otn.OptList().IsRelative)
}

func TestCursorOptions(t *testing.T) {
	reg := NewRegistry()
	otn := newOtn()

	dispatch(t, reg, otn, "file_data", "")
	dispatch(t, reg, otn, "pkt_data", "")
	dispatch(t, reg, otn, "base64_data", "")

	var kinds []rules.OptionKind
	for fpl := otn.OptList(); fpl != nil; fpl = fpl.Next {
		kinds = append(kinds, fpl.Kind)
	}
	assert.Equal(t, []rules.OptionKind{rules.OptFileData, rules.OptPktData, rules.OptBase64Data}, kinds)

	known, err := reg.Get(otn, rules.ProtoTCP, "file_data", "x")
	require.True(t, known)
	assert.Error(t, err)
}

func TestIPProto(t *testing.T) {
	reg := NewRegistry()

	otn := newOtn()
	dispatch(t, reg, otn, "ip_proto", "6")
	assert.Equal(t, rules.IPProtoTCP, GetOtnIpProto(otn))

	otn = newOtn()
	dispatch(t, reg, otn, "ip_proto", "udp")
	assert.Equal(t, rules.IPProtoUDP, GetOtnIpProto(otn))

	otn = newOtn()
	dispatch(t, reg, otn, "ip_proto", "!6")
	assert.Equal(t, IPProtoOther, GetOtnIpProto(otn))

	otn = newOtn()
	dispatch(t, reg, otn, "ip_proto", ">100")
	assert.Equal(t, IPProtoOther, GetOtnIpProto(otn))

	otn = newOtn()
	assert.Equal(t, IPProtoUnconstrained, GetOtnIpProto(otn))

	otn = newOtn()
	known, err := reg.Get(otn, rules.ProtoIP, "ip_proto", "frob")
	require.True(t, known)
	assert.Error(t, err)
}

func TestFlow(t *testing.T) {
	reg := NewRegistry()
	otn := newOtn()

	dispatch(t, reg, otn, "flow", "to_server,established")

	fd := otn.OptList().Params.(*FlowData)
	assert.Equal(t, []string{"to_server", "established"}, fd.Keywords)
}

func TestFlowICMPRejected(t *testing.T) {
	reg := NewRegistry()
	otn := newOtn()

	known, err := reg.Get(otn, rules.ProtoICMP, "flow", "to_server")
	require.True(t, known)
	assert.Error(t, err)
}

func TestFlowBadKeyword(t *testing.T) {
	reg := NewRegistry()
	otn := newOtn()

	known, err := reg.Get(otn, rules.ProtoTCP, "flow", "sideways")
	require.True(t, known)
	assert.Error(t, err)
}

func TestDSize(t *testing.T) {
	reg := NewRegistry()

	otn := newOtn()
	dispatch(t, reg, otn, "dsize", ">128")
	dd := otn.OptList().Params.(*DSizeData)
	assert.Equal(t, ">", dd.Op)
	assert.Equal(t, 128, dd.Lo)

	otn = newOtn()
	dispatch(t, reg, otn, "dsize", "100<>200")
	dd = otn.OptList().Params.(*DSizeData)
	assert.Equal(t, "<>", dd.Op)
	assert.Equal(t, 100, dd.Lo)
	assert.Equal(t, 200, dd.Hi)

	otn = newOtn()
	known, err := reg.Get(otn, rules.ProtoTCP, "dsize", "200<>100")
	require.True(t, known)
	assert.Error(t, err)
}

func TestIsDataAt(t *testing.T) {
	reg := NewRegistry()
	otn := newOtn()

	dispatch(t, reg, otn, "isdataat", "!10,relative")

	fpl := otn.OptList()
	assert.True(t, fpl.IsRelative)

	id := fpl.Params.(*IsDataAtData)
	assert.True(t, id.Negated)
	assert.Equal(t, 10, id.Offset)
}
