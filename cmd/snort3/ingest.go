package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/snortt1/snort3/pkg/classify"
	"github.com/snortt1/snort3/pkg/rules"
	"github.com/snortt1/snort3/pkg/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/snortt1/snort3"
)

var (
	ingestClassifications   string
	ingestVarsPath          string
	ingestStorePath         string
	ingestBleedoverLimit    int
	ingestBleedoverWarnings bool
	ingestSingleRuleGroup   bool
	ingestConfErrorOut      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <rules-file>...",
	Short: "Ingest rule files",
	Long:  "Parse rule files into headers, signatures, and port groups, then print the ingestion summary",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestClassifications, "classifications", "", "Path to YAML classification config")
	ingestCmd.Flags().StringVar(&ingestVarsPath, "vars", "", "Path to YAML address/port variable definitions")
	ingestCmd.Flags().StringVar(&ingestStorePath, "store", "", "Persist accepted signatures to this database (\":memory:\" allowed)")
	ingestCmd.Flags().IntVar(&ingestBleedoverLimit, "bleedover-limit", 1024, "Largest specific port set before any-any promotion")
	ingestCmd.Flags().BoolVar(&ingestBleedoverWarnings, "bleedover-warnings", false, "Log rules promoted by bleedover")
	ingestCmd.Flags().BoolVar(&ingestSingleRuleGroup, "single-rule-group", false, "Place every rule in its protocol's any-any group")
	ingestCmd.Flags().BoolVar(&ingestConfErrorOut, "conf-error-out", false, "Treat duplicate rules as fatal errors")
}

// varsFile mirrors the YAML variable definitions file.
type varsFile struct {
	IPVars   map[string]string `yaml:"ip_vars"`
	PortVars map[string]string `yaml:"port_vars"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	opts := []snort3.Option{
		snort3.WithFastPattern(snort3.FastPatternConfig{
			SingleRuleGroup:    ingestSingleRuleGroup,
			BleedoverPortLimit: ingestBleedoverLimit,
			BleedoverWarnings:  ingestBleedoverWarnings,
		}),
	}

	if ingestConfErrorOut {
		opts = append(opts, snort3.WithStrictDuplicates())
	}

	if ingestClassifications != "" {
		table, err := classify.LoadFile(ingestClassifications)
		if err != nil {
			return fmt.Errorf("loading classifications: %w", err)
		}
		opts = append(opts, snort3.WithClassifications(table))
	}

	if ingestVarsPath != "" {
		data, err := os.ReadFile(ingestVarsPath)
		if err != nil {
			return fmt.Errorf("reading vars file: %w", err)
		}
		var vars varsFile
		if err := yaml.Unmarshal(data, &vars); err != nil {
			return fmt.Errorf("parsing vars file: %w", err)
		}
		for name, spec := range vars.IPVars {
			opts = append(opts, snort3.WithIPVar(name, spec))
		}
		for name, spec := range vars.PortVars {
			opts = append(opts, snort3.WithPortVar(name, spec))
		}
	}

	if !quiet {
		opts = append(opts, snort3.WithWarningWriter(warnWriter()))
	}

	ing, err := snort3.NewIngestor(opts...)
	if err != nil {
		return err
	}

	for _, path := range args {
		if err := ingestFile(ing, path); err != nil {
			return err
		}
	}

	if !quiet {
		ing.PrintStats(cmd.OutOrStdout())
	}

	if ingestStorePath != "" {
		if err := persist(ing); err != nil {
			return fmt.Errorf("persisting results: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "results written to %s\n", ingestStorePath)
		}
	}

	return nil
}

// ingestFile reads one rule per line, joining trailing-backslash
// continuations and skipping comments, and feeds each rule to the
// ingestor.
func ingestFile(ing *snort3.Ingestor, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pending strings.Builder
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if pending.Len() == 0 && (line == "" || strings.HasPrefix(line, "#")) {
			continue
		}

		if strings.HasSuffix(line, "\\") {
			pending.WriteString(strings.TrimSuffix(line, "\\"))
			pending.WriteString(" ")
			continue
		}

		pending.WriteString(line)
		rule := pending.String()
		pending.Reset()

		if err := ing.IngestRule(rule); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if pending.Len() > 0 {
		return fmt.Errorf("%s: unterminated rule continuation", path)
	}
	return nil
}

func persist(ing *snort3.Ingestor) error {
	st, err := store.New(store.Config{Path: ingestStorePath})
	if err != nil {
		return err
	}
	defer st.Close()

	conf := ing.Conf()

	var insertErr error
	conf.OtnMap.Each(func(otn *rules.OptTreeNode) bool {
		rec := &store.SignatureRecord{
			Gid:       otn.SigInfo.Generator,
			Sid:       otn.SigInfo.ID,
			Rev:       otn.SigInfo.Rev,
			Proto:     otn.Proto.String(),
			Message:   otn.SigInfo.Message,
			Priority:  otn.SigInfo.Priority,
			RuleIndex: otn.RuleIndex,
		}
		if otn.SigInfo.Classification != nil {
			rec.Classification = otn.SigInfo.Classification.Name
		}
		if rtn := otn.RTN(conf.PolicyID()); rtn != nil {
			rec.Action = rtn.Type.String()
		}
		if err := st.AddSignature(rec); err != nil {
			insertErr = err
			return false
		}
		return true
	})
	if insertErr != nil {
		return insertErr
	}

	return st.SetSummary(store.Summary{
		RuleCount:        conf.RuleCnt(),
		DetectRuleCount:  conf.DetectRuleCount(),
		BuiltinRuleCount: conf.BuiltinRuleCount(),
		OtnCount:         conf.OtnCount(),
		HeadCount:        conf.HeadCount(),
	})
}

// warnWriter renders parse warnings on stderr in yellow; color handles
// NO_COLOR and non-terminal output itself.
func warnWriter() io.Writer {
	return warningWriter{c: color.New(color.FgYellow)}
}

type warningWriter struct {
	c *color.Color
}

func (w warningWriter) Write(p []byte) (int, error) {
	w.c.Fprint(os.Stderr, string(p))
	return len(p), nil
}
