package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"tldrscope/internal/infra/store"
)

func writeJSON(out io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func printHistory(out io.Writer, entries []store.Entry, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(out, entries)
	}
	fmt.Fprintf(out, "reports=%d\n", len(entries))
	for _, entry := range entries {
		status := "pass"
		if !entry.Success {
			status = "fail"
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\tcommands=%d\tbytes=%d\n",
			entry.GeneratedAt.Format(time.RFC3339), entry.RunID, entry.Version, status, entry.Commands, entry.Size)
	}
	return nil
}

func printTools(out io.Writer, tools []string, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(out, map[string]any{"tools": tools})
	}
	fmt.Fprintf(out, "tools=%d\n", len(tools))
	for _, tool := range tools {
		fmt.Fprintln(out, tool)
	}
	return nil
}
