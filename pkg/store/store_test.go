package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, st Store) {
	t.Helper()

	require.NoError(t, st.AddSignature(&SignatureRecord{
		Gid: 1, Sid: 2001, Rev: 3,
		Proto: "tcp", Action: "alert",
		Message: "SERVER-WEBAPP test", Classification: "attempted-admin",
		Priority: 1, RuleIndex: 0,
	}))
	require.NoError(t, st.AddSignature(&SignatureRecord{
		Gid: 1, Sid: 1001, Rev: 1,
		Proto: "udp", Action: "alert",
		RuleIndex: 1,
	}))

	// replacing a signature keeps one row per (gid, sid)
	require.NoError(t, st.AddSignature(&SignatureRecord{
		Gid: 1, Sid: 2001, Rev: 4,
		Proto: "tcp", Action: "alert",
		RuleIndex: 0,
	}))

	sigs, err := st.Signatures()
	require.NoError(t, err)
	require.Len(t, sigs, 2)

	// ordered by (gid, sid)
	assert.Equal(t, uint32(1001), sigs[0].Sid)
	assert.Equal(t, uint32(2001), sigs[1].Sid)
	assert.Equal(t, uint32(4), sigs[1].Rev)

	require.NoError(t, st.SetSummary(Summary{
		RuleCount: 2, DetectRuleCount: 2, OtnCount: 2, HeadCount: 2,
	}))
	sum, err := st.GetSummary()
	require.NoError(t, err)
	assert.Equal(t, 2, sum.RuleCount)
	assert.Equal(t, 2, sum.DetectRuleCount)
}

func TestMemoryStore(t *testing.T) {
	st := NewMemory()
	defer st.Close()
	testStore(t, st)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snort3.db")

	st, err := NewSQLite(path)
	require.NoError(t, err)
	defer st.Close()

	testStore(t, st)
}

func TestSQLiteEmptySummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snort3.db")

	st, err := NewSQLite(path)
	require.NoError(t, err)
	defer st.Close()

	sum, err := st.GetSummary()
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}

func TestNewSelectsBackend(t *testing.T) {
	st, err := New(Config{Path: ":memory:"})
	require.NoError(t, err)
	defer st.Close()
	_, ok := st.(*MemoryStore)
	assert.True(t, ok)

	_, err = New(Config{})
	assert.Error(t, err)
}
