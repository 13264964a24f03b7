package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tldrscope/internal/domain"
)

// Markdown renders the human-readable report.
func Markdown(report domain.AnalyticsReport) string {
	var b strings.Builder
	meta := report.Metadata
	an := report.Analytics

	fmt.Fprintf(&b, "# %s TLDR report\n\n", orDash(meta.Name))
	fmt.Fprintf(&b, "- Version: %s\n", orDash(meta.Version))
	fmt.Fprintf(&b, "- Dialect: %s (%s)\n", orDash(string(meta.Dialect)), orDash(meta.ProtocolVersion))
	if meta.Summary != "" {
		fmt.Fprintf(&b, "- Summary: %s\n", meta.Summary)
	}
	fmt.Fprintf(&b, "- Generated: %s by %s\n", report.GeneratedAt.UTC().Format(time.RFC3339), report.GeneratedBy)
	if report.RunID != "" {
		fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	}
	if report.Fingerprint != "" {
		fmt.Fprintf(&b, "- Fingerprint: `%s`\n", report.Fingerprint)
	}
	b.WriteString("\n")

	writeValidation(&b, report.Validation)

	b.WriteString("## Coverage\n\n")
	b.WriteString("| Field | Commands | Percent |\n|---|---:|---:|\n")
	for _, row := range coverageRows(an.Coverage) {
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", row.label, row.metric.Count, row.metric.Percent)
	}
	b.WriteString("\n")

	b.WriteString("## Command hierarchy\n\n")
	for _, ns := range sortedKeys(an.CommandHierarchy) {
		fmt.Fprintf(&b, "- **%s** (%d)", ns, len(an.CommandHierarchy[ns]))
		if names := an.CommandHierarchy[ns]; len(names) > 0 {
			fmt.Fprintf(&b, ": %s", strings.Join(names, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	flags := an.FlagTypeDistribution
	b.WriteString("## Flag types\n\n")
	fmt.Fprintf(&b, "%d flags, %.2f per command", flags.Total, flags.AveragePerCommand)
	if flags.MostCommonType != "" {
		fmt.Fprintf(&b, ", most common `%s`", flags.MostCommonType)
	}
	b.WriteString(".\n\n")
	writeCounts(&b, "Type", flags.Distribution)
	if len(an.InputTypeDistribution) > 0 {
		b.WriteString("## Input types\n\n")
		writeCounts(&b, "Type", an.InputTypeDistribution)
	}
	if len(an.OutputTypeDistribution) > 0 {
		b.WriteString("## Output types\n\n")
		writeCounts(&b, "Type", an.OutputTypeDistribution)
	}
	if len(an.SideEffectDistribution) > 0 {
		b.WriteString("## Side effects\n\n")
		writeCounts(&b, "Effect", an.SideEffectDistribution)
	}

	b.WriteString("## Most connected commands\n\n")
	if len(an.DependencyGraph.MostConnected) == 0 {
		b.WriteString("No command references another.\n\n")
	} else {
		b.WriteString("| Command | Centrality | Outgoing | Incoming |\n|---|---:|---:|---:|\n")
		for _, node := range an.DependencyGraph.MostConnected {
			fmt.Fprintf(&b, "| `%s` | %d | %d | %d |\n", node.Command, node.Centrality, node.Outgoing, node.Incoming)
		}
		b.WriteString("\n")
	}

	if len(report.Commands) > 0 {
		b.WriteString("## Commands\n\n")
		for _, cmd := range report.Commands {
			writeCommand(&b, cmd)
		}
	}
	if len(report.Inaccessible) > 0 {
		b.WriteString("## Inaccessible commands\n\n")
		for _, name := range report.Inaccessible {
			fmt.Fprintf(&b, "- `%s`\n", name)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeValidation(b *strings.Builder, v domain.ValidationReport) {
	status := "PASS"
	if !v.Success {
		status = "FAIL"
	}
	b.WriteString("## Validation\n\n")
	fmt.Fprintf(b, "**%s**: %d commands, %d accessible, %d failed, %d errors, %d warnings.\n\n",
		status, v.TotalCommands, v.AccessibleCommands, v.FailedCommands, v.TotalErrors, v.TotalWarnings)
	writeFindings(b, "Header", v.Header)
	for _, result := range v.CommandResults {
		writeFindings(b, "`"+result.Command+"`", result.ValidationResult)
	}
}

func writeFindings(b *strings.Builder, label string, result domain.ValidationResult) {
	if len(result.Errors) == 0 && len(result.Warnings) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", label)
	for _, msg := range result.Errors {
		fmt.Fprintf(b, "- error: %s\n", msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintf(b, "- warning: %s\n", msg)
	}
	b.WriteString("\n")
}

func writeCommand(b *strings.Builder, cmd domain.CommandRecord) {
	fmt.Fprintf(b, "### %s\n\n", orDash(cmd.Identity()))
	if cmd.Purpose != "" {
		fmt.Fprintf(b, "%s\n\n", cmd.Purpose)
	}
	if len(cmd.Inputs) > 0 {
		fmt.Fprintf(b, "- Inputs: %s\n", descriptors(cmd.Inputs))
	}
	if len(cmd.Outputs) > 0 {
		fmt.Fprintf(b, "- Outputs: %s\n", descriptors(cmd.Outputs))
	}
	for _, flag := range cmd.Flags {
		fmt.Fprintf(b, "- Flag `%s` %s", flag.Name, flag.Type)
		if flag.Default != nil {
			fmt.Fprintf(b, " (default `%s`)", *flag.Default)
		}
		if flag.Description != "" {
			fmt.Fprintf(b, ": %s", flag.Description)
		}
		b.WriteString("\n")
	}
	if len(cmd.SideEffects) > 0 {
		fmt.Fprintf(b, "- Side effects: %s\n", strings.Join(cmd.SideEffects, ", "))
	}
	if len(cmd.Related) > 0 {
		fmt.Fprintf(b, "- Related: %s\n", strings.Join(cmd.Related, ", "))
	}
	for _, example := range cmd.Examples {
		fmt.Fprintf(b, "- Example: `%s`\n", example)
	}
	b.WriteString("\n")
}

func descriptors(items []domain.Descriptor) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Name != "" {
			parts = append(parts, item.Name+":"+item.Type)
			continue
		}
		parts = append(parts, item.Type)
	}
	return strings.Join(parts, ", ")
}

func writeCounts(b *strings.Builder, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(b, "| %s | Count |\n|---|---:|\n", label)
	for _, key := range sortedByCount(counts) {
		fmt.Fprintf(b, "| %s | %d |\n", key, counts[key])
	}
	b.WriteString("\n")
}

type coverageRow struct {
	label  string
	metric domain.CoverageMetric
}

func coverageRows(c domain.Coverage) []coverageRow {
	return []coverageRow{
		{"purpose", c.Purpose},
		{"examples", c.Examples},
		{"inputs", c.Inputs},
		{"outputs", c.Outputs},
		{"flags", c.Flags},
		{"sideEffects", c.SideEffects},
		{"related", c.Related},
		{"schema", c.Schema},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// sortedByCount orders keys by descending count, then by name.
func sortedByCount(counts map[string]int) []string {
	keys := sortedKeys(counts)
	sort.SliceStable(keys, func(i, j int) bool {
		return counts[keys[i]] > counts[keys[j]]
	})
	return keys
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
