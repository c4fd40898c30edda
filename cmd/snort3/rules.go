package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/snortt1/snort3/pkg/store"
	"github.com/spf13/cobra"
)

var (
	rulesStorePath  string
	rulesListFormat string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect ingested rules",
	Long:  "Commands for listing signatures from a persisted ingestion database",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested signatures",
	Long:  "Display the signatures stored by a previous ingest run",
	RunE:  runRulesList,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesListCmd.Flags().StringVar(&rulesStorePath, "store", "snort3.db", "Path to the ingestion database")
	rulesListCmd.Flags().StringVar(&rulesListFormat, "format", "table", "Output format: table, json")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	st, err := store.New(store.Config{Path: rulesStorePath})
	if err != nil {
		return fmt.Errorf("opening store %s: %w", rulesStorePath, err)
	}
	defer st.Close()

	sigs, err := st.Signatures()
	if err != nil {
		return fmt.Errorf("loading signatures: %w", err)
	}

	switch rulesListFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(sigs)
	case "table":
		return outputSignatureTable(cmd, sigs)
	default:
		return fmt.Errorf("unknown output format: %s", rulesListFormat)
	}
}

func outputSignatureTable(cmd *cobra.Command, sigs []*store.SignatureRecord) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GID:SID\tREV\tPROTO\tACTION\tCLASS\tPRI\tMESSAGE")

	for _, s := range sigs {
		fmt.Fprintf(w, "%d:%d\t%d\t%s\t%s\t%s\t%d\t%s\n",
			s.Gid, s.Sid, s.Rev, s.Proto, s.Action, s.Classification, s.Priority, s.Message)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d signatures\n", len(sigs))
	return nil
}
