package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"tldrscope/internal/domain"
)

const consoleTopConnected = 5

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	passStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// PrintValidation writes a validation summary followed by every finding.
func PrintValidation(w io.Writer, v domain.ValidationReport) {
	status := passStyle.Render("PASS")
	if !v.Success {
		status = failStyle.Render("FAIL")
	}
	fmt.Fprintf(w, "%s %s %s (%s)\n", status, titleStyle.Render(orDash(v.Tool)), orDash(v.Version), v.Dialect)
	fmt.Fprintf(w, "  commands %d, accessible %d, failed %d, errors %d, warnings %d\n",
		v.TotalCommands, v.AccessibleCommands, v.FailedCommands, v.TotalErrors, v.TotalWarnings)
	printFindings(w, "header", v.Header)
	for _, result := range v.CommandResults {
		printFindings(w, result.Command, result.ValidationResult)
	}
}

func printFindings(w io.Writer, label string, result domain.ValidationResult) {
	if len(result.Errors) == 0 && len(result.Warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s\n", commandStyle.Render(label))
	for _, msg := range result.Errors {
		fmt.Fprintf(w, "    %s %s\n", errorStyle.Render("error"), msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintf(w, "    %s %s\n", warnStyle.Render("warn"), msg)
	}
}

// PrintStatistics writes the headline analytics of a report.
func PrintStatistics(w io.Writer, report domain.AnalyticsReport) {
	an := report.Analytics
	fmt.Fprintln(w, titleStyle.Render("Statistics"))
	fmt.Fprintf(w, "  commands %d, namespaces %d, flags %d (%.2f per command)\n",
		an.TotalCommands, len(an.CommandHierarchy), an.FlagTypeDistribution.Total, an.FlagTypeDistribution.AveragePerCommand)
	if an.FlagTypeDistribution.MostCommonType != "" {
		fmt.Fprintf(w, "  most common flag type %s\n", an.FlagTypeDistribution.MostCommonType)
	}
	fmt.Fprintf(w, "  coverage purpose %.1f%%, examples %.1f%%, related %.1f%%\n",
		an.Coverage.Purpose.Percent, an.Coverage.Examples.Percent, an.Coverage.Related.Percent)
	if len(report.Inaccessible) > 0 {
		fmt.Fprintf(w, "  %s %d inaccessible\n", warnStyle.Render("warn"), len(report.Inaccessible))
	}

	connected := an.DependencyGraph.MostConnected
	if len(connected) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  no cross references"))
		return
	}
	if len(connected) > consoleTopConnected {
		connected = connected[:consoleTopConnected]
	}
	fmt.Fprintln(w, titleStyle.Render("Most connected"))
	for i, node := range connected {
		fmt.Fprintf(w, "  %d. %s %s\n", i+1, commandStyle.Render(node.Command),
			dimStyle.Render(fmt.Sprintf("centrality %d (out %d, in %d)", node.Centrality, node.Outgoing, node.Incoming)))
	}
}

// PrintWritten lists the files a run produced.
func PrintWritten(w io.Writer, paths []string) {
	for _, path := range paths {
		fmt.Fprintf(w, "%s %s\n", dimStyle.Render("wrote"), path)
	}
}
