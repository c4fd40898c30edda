package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func resetIngestFlags() {
	ingestClassifications = ""
	ingestVarsPath = ""
	ingestStorePath = ""
	ingestBleedoverLimit = 1024
	ingestBleedoverWarnings = false
	ingestSingleRuleGroup = false
	ingestConfErrorOut = false
	quiet = false
}

func TestRunIngest(t *testing.T) {
	resetIngestFlags()
	dir := t.TempDir()

	rulesPath := writeFile(t, dir, "local.rules", `# local rules
alert tcp any any -> any 80 (msg:"http get"; sid:1; content:"GET";)
alert udp any any -> any 53 (msg:"dns"; sid:2;)

alert tcp any any -> \
  any 443 (sid:3;)
`)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := runIngest(cmd, []string{rulesPath})
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "total rules loaded")
	assert.Contains(t, output, "3")
}

func TestRunIngestWithVarsAndStore(t *testing.T) {
	resetIngestFlags()
	dir := t.TempDir()

	varsPath := writeFile(t, dir, "vars.yml", `ip_vars:
  HOME_NET: "[10.0.0.0/8]"
port_vars:
  HTTP_PORTS: "[80,8080]"
`)
	rulesPath := writeFile(t, dir, "local.rules",
		`alert tcp $HOME_NET any -> any $HTTP_PORTS (msg:"vars"; sid:10;)`+"\n")

	ingestVarsPath = varsPath
	ingestStorePath = filepath.Join(dir, "out.db")

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, runIngest(cmd, []string{rulesPath}))
	assert.Contains(t, buf.String(), "results written to")

	// read back through the rules list command
	resetIngestFlags()
	rulesStorePath = filepath.Join(dir, "out.db")
	rulesListFormat = "table"

	buf.Reset()
	listCmd := &cobra.Command{}
	listCmd.SetOut(&buf)

	require.NoError(t, runRulesList(listCmd, nil))
	out := buf.String()
	assert.Contains(t, out, "1:10")
	assert.Contains(t, out, "vars")
	assert.Contains(t, out, "1 signatures")
}

func TestRunIngestParseErrorNamesLine(t *testing.T) {
	resetIngestFlags()
	dir := t.TempDir()

	rulesPath := writeFile(t, dir, "bad.rules", `alert tcp any any -> any 80 (sid:1;)
alert tcp any any -> any ![80] (sid:2;)
`)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := runIngest(cmd, []string{rulesPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.rules:2")
	assert.Contains(t, err.Error(), "Pure NOT ports")
}

func TestRunIngestMissingFile(t *testing.T) {
	resetIngestFlags()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := runIngest(cmd, []string{"/no/such/file.rules"})
	assert.Error(t, err)
}

func TestRulesListUnknownFormat(t *testing.T) {
	resetIngestFlags()
	rulesStorePath = ":memory:"
	rulesListFormat = "xml"

	cmd := &cobra.Command{}
	err := runRulesList(cmd, nil)
	assert.Error(t, err)
}
