package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// render writes v as JSON when --json is set and the table otherwise.
func render(ctx *commandContext, cmd *cobra.Command, v any, headers []string, rows [][]string, aligns []columnAlignment) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, v)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
	return nil
}
