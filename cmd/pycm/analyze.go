package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pycm/internal/advisor"
	"pycm/internal/config"
	"pycm/internal/coupling"
	pycmerrors "pycm/internal/errors"
	"pycm/internal/export"
	"pycm/internal/storage"
)

var (
	analyzeFormat               string
	analyzeColumns              string
	analyzeLimit                int
	analyzeSort                 string
	analyzeSortDesc             bool
	analyzeFilter               string
	analyzeInstabilityThreshold float64
	analyzeCouplingThreshold    int
	analyzeExclude              []string
	analyzeSummary              bool
	analyzeRecommendations      bool
	analyzeExport               string
	analyzeExportOverwrite      bool
	analyzeSave                 bool
	analyzeWorkers              int
)

// canonicalColumns is the valid column set for --columns and --sort.
var canonicalColumns = []string{
	"module_path",
	"afferent_coupling",
	"efferent_coupling",
	"instability",
	"lines_of_code",
	"category",
	"distance_from_main_sequence",
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze the structural coupling of a Python project",
	Long: `Analyze the import coupling of every Python module under a project root.

For each module the analysis reports afferent/efferent coupling,
instability, distance from the main sequence and a category on the
stable/unstable/painful/useless grid.

Examples:
  pycm analyze
  pycm analyze ./src --format=json
  pycm analyze --filter=unstable --sort=efferent_coupling
  pycm analyze --summary --recommendations
  pycm analyze --export=coupling.csv.gz --save`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "human", "Output format (json, human, csv)")
	analyzeCmd.Flags().StringVar(&analyzeColumns, "columns", "", "Comma-separated columns to display (default: all)")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 0, "Maximum modules to display (0 = all)")
	analyzeCmd.Flags().StringVar(&analyzeSort, "sort", "instability", "Column to sort by")
	analyzeCmd.Flags().BoolVar(&analyzeSortDesc, "sort-desc", true, "Sort in descending order")
	analyzeCmd.Flags().StringVar(&analyzeFilter, "filter", "all", "Module filter (all, stable, unstable, high-coupling)")
	analyzeCmd.Flags().Float64Var(&analyzeInstabilityThreshold, "instability-threshold", 0.8, "Instability threshold for filtering and classification")
	analyzeCmd.Flags().IntVar(&analyzeCouplingThreshold, "coupling-threshold", 5, "Coupling threshold for filtering and classification")
	analyzeCmd.Flags().StringArrayVar(&analyzeExclude, "exclude", nil, "Additional path patterns to exclude (repeatable)")
	analyzeCmd.Flags().BoolVar(&analyzeSummary, "summary", false, "Include the project summary and insights")
	analyzeCmd.Flags().BoolVar(&analyzeRecommendations, "recommendations", false, "Include per-module recommendations")
	analyzeCmd.Flags().StringVar(&analyzeExport, "export", "", "Export the full result to a file (.json, .yaml, .csv, optional .gz)")
	analyzeCmd.Flags().BoolVar(&analyzeExportOverwrite, "export-overwrite", false, "Overwrite the export file if it exists")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Save the run to the .pycm history database")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Extraction worker count (0 = number of CPUs)")
	rootCmd.AddCommand(analyzeCmd)
}

// AnalyzeResponseCLI contains the analysis output for CLI rendering.
type AnalyzeResponseCLI struct {
	ProjectPath     string                   `json:"projectPath"`
	ModuleCount     int                      `json:"moduleCount"`
	Columns         []string                 `json:"columns"`
	Modules         []moduleRow              `json:"modules"`
	Summary         *advisor.Summary         `json:"summary,omitempty"`
	Insights        []string                 `json:"insights,omitempty"`
	Recommendations []advisor.Recommendation `json:"recommendations,omitempty"`
	RunID           string                   `json:"runId,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) {
	start := time.Now()

	root, err := resolveProjectRoot(args)
	if err != nil {
		fail(err)
	}

	settings, err := config.Load(root)
	if err != nil {
		fail(err)
	}
	applyAnalyzeFlags(cmd, settings)
	if err := settings.Validate(); err != nil {
		fail(err)
	}

	columns, err := resolveColumns(analyzeColumns)
	if err != nil {
		fail(err)
	}
	if err := validateSort(analyzeSort); err != nil {
		fail(err)
	}
	if err := validateFilter(analyzeFilter); err != nil {
		fail(err)
	}

	logger := newLogger(settings)
	analyzer := coupling.NewAnalyzer(root, logger)
	project, err := analyzer.Analyze(context.Background(), coupling.Options{
		ExcludePatterns:  settings.ExcludePatterns,
		MaxFileSizeBytes: settings.MaxFileSizeBytes,
		Workers:          settings.Workers,
	})
	if err != nil {
		fail(err)
	}

	result := advisor.Analyze(project, advisor.Settings{
		InstabilityThresholdHigh: settings.InstabilityThresholdHigh,
		InstabilityThresholdLow:  settings.InstabilityThresholdLow,
		CouplingThresholdHigh:    settings.CouplingThresholdHigh,
		LinesThresholdLarge:      settings.LinesThresholdLarge,
	})

	resp := &AnalyzeResponseCLI{
		ProjectPath: project.ProjectPath,
		ModuleCount: project.ModuleCount,
		Columns:     columns,
		Modules: projectRows(project.ModuleMetrics,
			analyzeFilter, settings.InstabilityThresholdHigh, settings.CouplingThresholdHigh,
			analyzeSort, analyzeSortDesc, analyzeLimit),
	}
	if analyzeSummary {
		summary := result.Summary
		resp.Summary = &summary
		resp.Insights = advisor.Insights(result)
	}
	if analyzeRecommendations {
		resp.Recommendations = result.Recommendations
	}

	if analyzeExport != "" {
		exporter := export.NewExporter(logger)
		if err := exporter.Export(analyzeExport, analyzeExportOverwrite, result); err != nil {
			fail(err)
		}
	}

	if analyzeSave {
		db, err := storage.Open(root, logger)
		if err != nil {
			fail(err)
		}
		defer db.Close()
		runID, err := db.SaveRun(result)
		if err != nil {
			fail(err)
		}
		resp.RunID = runID
	}

	output, err := FormatResponse(resp, OutputFormat(analyzeFormat))
	if err != nil {
		fail(err)
	}
	fmt.Println(output)

	logger.Debug("analyze command completed", map[string]interface{}{
		"modules":  project.ModuleCount,
		"duration": time.Since(start).Milliseconds(),
	})
}

// applyAnalyzeFlags overrides configured settings with explicitly set
// flags. Flag defaults never shadow the config file.
func applyAnalyzeFlags(cmd *cobra.Command, settings *config.Settings) {
	if cmd.Flags().Changed("instability-threshold") {
		settings.InstabilityThresholdHigh = analyzeInstabilityThreshold
	}
	if cmd.Flags().Changed("coupling-threshold") {
		settings.CouplingThresholdHigh = analyzeCouplingThreshold
	}
	if cmd.Flags().Changed("workers") {
		settings.Workers = analyzeWorkers
	}
	settings.ExcludePatterns = append(settings.ExcludePatterns, analyzeExclude...)
}

// resolveColumns parses and validates the --columns flag; an empty flag
// selects every canonical column.
func resolveColumns(spec string) ([]string, error) {
	if spec == "" {
		return canonicalColumns, nil
	}
	columns := []string{}
	for _, col := range strings.Split(spec, ",") {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		if !isCanonicalColumn(col) {
			return nil, pycmerrors.New(pycmerrors.InvalidInput,
				fmt.Sprintf("unknown column %q (valid: %s)", col, strings.Join(canonicalColumns, ", ")))
		}
		columns = append(columns, col)
	}
	if len(columns) == 0 {
		return nil, pycmerrors.New(pycmerrors.InvalidInput, "no columns selected")
	}
	return columns, nil
}

func validateSort(col string) error {
	if !isCanonicalColumn(col) {
		return pycmerrors.New(pycmerrors.InvalidInput,
			fmt.Sprintf("unknown sort column %q (valid: %s)", col, strings.Join(canonicalColumns, ", ")))
	}
	return nil
}

func validateFilter(filter string) error {
	switch filter {
	case "all", "stable", "unstable", "high-coupling":
		return nil
	}
	return pycmerrors.New(pycmerrors.InvalidInput,
		fmt.Sprintf("unknown filter %q (valid: all, stable, unstable, high-coupling)", filter))
}

func isCanonicalColumn(col string) bool {
	for _, c := range canonicalColumns {
		if c == col {
			return true
		}
	}
	return false
}

// projectRows applies the display projection: filter, then sort, then
// limit. The underlying metrics are never modified.
func projectRows(metrics []coupling.CouplingMetric, filter string,
	instabilityThreshold float64, couplingThreshold int,
	sortColumn string, desc bool, limit int) []moduleRow {

	rows := make([]moduleRow, 0, len(metrics))
	for _, m := range metrics {
		if !matchesFilter(m, filter, instabilityThreshold, couplingThreshold) {
			continue
		}
		rows = append(rows, moduleRow{
			ModulePath:               m.ModulePath,
			AfferentCoupling:         m.AfferentCoupling,
			EfferentCoupling:         m.EfferentCoupling,
			Instability:              m.Instability,
			LinesOfCode:              m.LinesOfCode,
			Category:                 string(m.Category),
			DistanceFromMainSequence: m.DistanceFromMainSequence,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return rowLess(rows[j], rows[i], sortColumn)
		}
		return rowLess(rows[i], rows[j], sortColumn)
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// matchesFilter implements the display filters: stable means firmly below
// the instability threshold's complement, unstable means above the
// threshold, high-coupling means either coupling count exceeds the limit.
func matchesFilter(m coupling.CouplingMetric, filter string,
	instabilityThreshold float64, couplingThreshold int) bool {
	switch filter {
	case "stable":
		return m.Instability < 1-instabilityThreshold
	case "unstable":
		return m.Instability > instabilityThreshold
	case "high-coupling":
		return m.AfferentCoupling > couplingThreshold || m.EfferentCoupling > couplingThreshold
	default:
		return true
	}
}

func rowLess(a, b moduleRow, column string) bool {
	switch column {
	case "module_path":
		return a.ModulePath < b.ModulePath
	case "afferent_coupling":
		return a.AfferentCoupling < b.AfferentCoupling
	case "efferent_coupling":
		return a.EfferentCoupling < b.EfferentCoupling
	case "lines_of_code":
		return a.LinesOfCode < b.LinesOfCode
	case "category":
		return a.Category < b.Category
	case "distance_from_main_sequence":
		return a.DistanceFromMainSequence < b.DistanceFromMainSequence
	default: // instability
		return a.Instability < b.Instability
	}
}
