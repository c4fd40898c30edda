package snort3

import (
	"bytes"
	"strings"
	"testing"

	"github.com/snortt1/snort3/pkg/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIngestor(t *testing.T) {
	ing, err := NewIngestor()
	require.NoError(t, err)

	require.NoError(t, ing.IngestRule(`alert tcp any any -> any 80 (sid:1; content:"GET";)`))
	assert.Equal(t, 1, ing.RuleCount())
}

func TestIngestorOptions(t *testing.T) {
	table := classify.NewTable()
	require.NoError(t, table.Add("custom-class", "Custom", 2))

	ing, err := NewIngestor(
		WithClassifications(table),
		WithFastPattern(FastPatternConfig{BleedoverPortLimit: 10}),
		WithIPVar("HOME_NET", "[10.0.0.0/8]"),
		WithPortVar("HTTP_PORTS", "[80,8080]"),
	)
	require.NoError(t, err)

	err = ing.IngestRule(`alert tcp $HOME_NET any -> any $HTTP_PORTS (sid:1; classtype:custom-class;)`)
	require.NoError(t, err)

	otn := ing.Conf().OtnMap.Lookup(1, 1)
	require.NotNil(t, otn)
	assert.Equal(t, uint32(2), otn.SigInfo.Priority)
}

func TestIngestorBadVariables(t *testing.T) {
	_, err := NewIngestor(WithIPVar("BAD", "not-an-address"))
	assert.Error(t, err)

	_, err = NewIngestor(WithPortVar("BAD", "99999"))
	assert.Error(t, err)
}

func TestIngestRuleActions(t *testing.T) {
	ing, err := NewIngestor()
	require.NoError(t, err)

	require.NoError(t, ing.IngestRule(`drop tcp any any -> any 22 (sid:1;)`))
	require.NoError(t, ing.IngestRule(`alert udp any any -> any 53 (sid:2;)`))

	err = ing.IngestRule(`alarm tcp any any -> any 80 (sid:3;)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown rule action")
}

func TestIngestBuiltinRule(t *testing.T) {
	ing, err := NewIngestor()
	require.NoError(t, err)

	require.NoError(t, ing.IngestRule(`(sid:4; msg:"decoder event";)`))
	assert.Equal(t, 1, ing.Conf().BuiltinRuleCount())
}

func TestIngestRulesStopsAtFirstError(t *testing.T) {
	ing, err := NewIngestor()
	require.NoError(t, err)

	err = ing.IngestRules([]string{
		`alert tcp any any -> any 80 (sid:1;)`,
		`alert tcp any any -> any ![80] (sid:2;)`,
		`alert tcp any any -> any 443 (sid:3;)`,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Pure NOT ports")
	assert.Equal(t, 1, ing.RuleCount())
}

func TestIngestSkipsBlankLines(t *testing.T) {
	ing, err := NewIngestor()
	require.NoError(t, err)

	require.NoError(t, ing.IngestRule(""))
	require.NoError(t, ing.IngestRule("   "))
	assert.Equal(t, 0, ing.RuleCount())
}

func TestWarningsSurface(t *testing.T) {
	var buf bytes.Buffer
	ing, err := NewIngestor(WithWarningWriter(&buf))
	require.NoError(t, err)

	require.NoError(t, ing.IngestRule(`alert tcp any any -> any 80 (sid:1; rev:2;)`))
	require.NoError(t, ing.IngestRule(`alert tcp any any -> any 80 (sid:1; rev:1;)`))

	require.Len(t, ing.Warnings(), 1)
	assert.Contains(t, buf.String(), "duplicates previous rule")
}

func TestStrictDuplicates(t *testing.T) {
	ing, err := NewIngestor(WithStrictDuplicates())
	require.NoError(t, err)

	require.NoError(t, ing.IngestRule(`alert tcp any any -> any 80 (sid:1; rev:1;)`))
	err = ing.IngestRule(`alert tcp any any -> any 80 (sid:1; rev:2;)`)
	assert.Error(t, err)
}

func TestPrintStats(t *testing.T) {
	ing, err := NewIngestor()
	require.NoError(t, err)
	require.NoError(t, ing.IngestRule(`alert tcp any any -> any 80 (sid:1;)`))

	var buf bytes.Buffer
	ing.PrintStats(&buf)
	out := buf.String()
	assert.True(t, strings.Contains(out, "total rules loaded"))
	assert.True(t, strings.Contains(out, "rule port counts"))
}

func TestSharedObjectResolver(t *testing.T) {
	ing, err := NewIngestor(WithSOResolver(func(soid string) (string, bool) {
		return `rev:7; metadata:shared engine; sid:ignored;`, true
	}))
	require.NoError(t, err)

	require.NoError(t, ing.IngestRule(`alert tcp any any -> any any (sid:5; soid:3|5;)`))

	otn := ing.Conf().OtnMap.Lookup(1, 5)
	require.NotNil(t, otn)
	assert.Equal(t, uint32(7), otn.SigInfo.Rev)
}
