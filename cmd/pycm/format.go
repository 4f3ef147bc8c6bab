package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
	FormatCSV   OutputFormat = "csv"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	case FormatCSV:
		return formatCSV(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *AnalyzeResponseCLI:
		return formatAnalyzeHuman(v)
	case *GraphResponseCLI:
		return formatGraphHuman(v)
	case *RunsResponseCLI:
		return formatRunsHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// formatCSV renders the module table as CSV; only analyze output has a
// tabular shape.
func formatCSV(resp interface{}) (string, error) {
	v, ok := resp.(*AnalyzeResponseCLI)
	if !ok {
		return "", fmt.Errorf("csv format is only supported for analyze output")
	}

	var b strings.Builder
	b.WriteString(strings.Join(v.Columns, ","))
	b.WriteString("\n")
	for _, m := range v.Modules {
		cells := make([]string, 0, len(v.Columns))
		for _, col := range v.Columns {
			cells = append(cells, columnValue(m, col))
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// formatAnalyzeHuman formats an AnalyzeResponseCLI in human-readable format
func formatAnalyzeHuman(resp *AnalyzeResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Coupling Analysis: %s\n", resp.ProjectPath))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if resp.ModuleCount == 0 {
		b.WriteString("No Python modules found\n")
		return b.String(), nil
	}

	b.WriteString(fmt.Sprintf("Modules analyzed: %d", resp.ModuleCount))
	if len(resp.Modules) != resp.ModuleCount {
		b.WriteString(fmt.Sprintf(" (showing %d)", len(resp.Modules)))
	}
	b.WriteString("\n\n")

	b.WriteString(renderTable(resp.Columns, resp.Modules))

	if resp.Summary != nil {
		b.WriteString("\nSummary:\n")
		b.WriteString(fmt.Sprintf("  Overall Health: %s\n", resp.Summary.OverallHealth))
		b.WriteString(fmt.Sprintf("  Problematic: %d (%.1f%%)\n",
			resp.Summary.ProblematicModules, resp.Summary.ProblematicRatio*100))
		b.WriteString(fmt.Sprintf("  Stable: %d (%.1f%%)\n",
			resp.Summary.StableModules, resp.Summary.StableRatio*100))
		b.WriteString(fmt.Sprintf("  Average Instability: %.3f\n", resp.Summary.AverageInstability))
		b.WriteString(fmt.Sprintf("  Dependency Density: %.3f\n", resp.Summary.DependencyDensity))
		b.WriteString(fmt.Sprintf("  Max Ca/Ce: %d/%d\n",
			resp.Summary.MaxAfferentCoupling, resp.Summary.MaxEfferentCoupling))

		if len(resp.Insights) > 0 {
			b.WriteString("\nInsights:\n")
			for _, insight := range resp.Insights {
				b.WriteString(fmt.Sprintf("  - %s\n", insight))
			}
		}
	}

	if len(resp.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range resp.Recommendations {
			b.WriteString(fmt.Sprintf("  [%s] %s (%s)\n", rec.Priority, rec.ModulePath, rec.Category))
			b.WriteString(fmt.Sprintf("      %s\n", rec.Rationale))
			for _, r := range rec.Recommendations {
				b.WriteString(fmt.Sprintf("      - %s\n", r))
			}
		}
	}

	return b.String(), nil
}

// renderTable renders a fixed-width text table for the selected columns.
func renderTable(columns []string, modules []moduleRow) string {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	rows := make([][]string, 0, len(modules))
	for _, m := range modules {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = columnValue(m, col)
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(fmt.Sprintf("%-*s", widths[i], cell))
		}
		b.WriteString("\n")
	}

	writeRow(columns)
	separators := make([]string, len(columns))
	for i := range columns {
		separators[i] = strings.Repeat("-", widths[i])
	}
	writeRow(separators)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

// formatGraphHuman formats a GraphResponseCLI in human-readable format
func formatGraphHuman(resp *GraphResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Internal Dependency Graph: %s\n", resp.ProjectPath))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(resp.Nodes) == 0 {
		b.WriteString("No Python modules found\n")
		return b.String(), nil
	}

	for _, node := range resp.Nodes {
		edges := resp.Graph[node]
		if len(edges) == 0 {
			b.WriteString(fmt.Sprintf("%s (no internal imports)\n", node))
			continue
		}
		b.WriteString(fmt.Sprintf("%s\n", node))
		for _, edge := range edges {
			b.WriteString(fmt.Sprintf("  -> %s\n", edge))
		}
	}
	return b.String(), nil
}

// formatRunsHuman formats a RunsResponseCLI in human-readable format
func formatRunsHuman(resp *RunsResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Saved Analysis Runs\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(resp.Runs) == 0 {
		b.WriteString("No saved runs\n")
		return b.String(), nil
	}

	for i, run := range resp.Runs {
		b.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, run.ID, run.CreatedAt))
		b.WriteString(fmt.Sprintf("   Project: %s\n", run.ProjectPath))
		b.WriteString(fmt.Sprintf("   Modules: %d, Health: %s, Avg Instability: %.3f\n",
			run.ModuleCount, run.OverallHealth, run.AverageInstability))
	}
	return b.String(), nil
}

// moduleRow is the per-module display projection used by tables.
type moduleRow struct {
	ModulePath               string  `json:"modulePath"`
	AfferentCoupling         int     `json:"afferentCoupling"`
	EfferentCoupling         int     `json:"efferentCoupling"`
	Instability              float64 `json:"instability"`
	LinesOfCode              int     `json:"linesOfCode"`
	Category                 string  `json:"category"`
	DistanceFromMainSequence float64 `json:"distanceFromMainSequence"`
}

// columnValue renders one cell; the column name must already be validated.
func columnValue(m moduleRow, col string) string {
	switch col {
	case "module_path":
		return m.ModulePath
	case "afferent_coupling":
		return fmt.Sprintf("%d", m.AfferentCoupling)
	case "efferent_coupling":
		return fmt.Sprintf("%d", m.EfferentCoupling)
	case "instability":
		return fmt.Sprintf("%.3f", m.Instability)
	case "lines_of_code":
		return fmt.Sprintf("%d", m.LinesOfCode)
	case "category":
		return m.Category
	case "distance_from_main_sequence":
		return fmt.Sprintf("%.3f", m.DistanceFromMainSequence)
	default:
		return ""
	}
}
