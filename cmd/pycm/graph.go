package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"pycm/internal/config"
	"pycm/internal/coupling"
	pycmerrors "pycm/internal/errors"
)

var graphFormat string

var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Print the internal dependency graph of a Python project",
	Long: `Print the module-to-module internal import graph.

Examples:
  pycm graph
  pycm graph ./src --format=dot | dot -Tsvg > deps.svg`,
	Args: cobra.MaximumNArgs(1),
	Run:  runGraph,
}

func init() {
	graphCmd.Flags().StringVar(&graphFormat, "format", "json", "Output format (json, human, dot)")
	rootCmd.AddCommand(graphCmd)
}

// GraphResponseCLI contains the dependency graph for CLI output.
type GraphResponseCLI struct {
	ProjectPath string              `json:"projectPath"`
	Nodes       []string            `json:"nodes"`
	Graph       map[string][]string `json:"graph"`
}

func runGraph(cmd *cobra.Command, args []string) {
	root, err := resolveProjectRoot(args)
	if err != nil {
		fail(err)
	}

	settings, err := config.Load(root)
	if err != nil {
		fail(err)
	}

	logger := newLogger(settings)
	analyzer := coupling.NewAnalyzer(root, logger)
	if _, err := analyzer.Analyze(context.Background(), coupling.Options{
		ExcludePatterns:  settings.ExcludePatterns,
		MaxFileSizeBytes: settings.MaxFileSizeBytes,
		Workers:          settings.Workers,
	}); err != nil {
		fail(err)
	}

	graph := analyzer.DependencyGraph()
	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	resp := &GraphResponseCLI{
		ProjectPath: root,
		Nodes:       nodes,
		Graph:       graph,
	}

	if graphFormat == "dot" {
		fmt.Println(renderDot(resp))
		return
	}

	output, err := FormatResponse(resp, OutputFormat(graphFormat))
	if err != nil {
		fail(pycmerrors.Wrap(pycmerrors.InvalidInput, "cannot format graph", err))
	}
	fmt.Println(output)
}

// renderDot renders the graph in Graphviz dot syntax with stable ordering.
func renderDot(resp *GraphResponseCLI) string {
	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, node := range resp.Nodes {
		b.WriteString(fmt.Sprintf("  %q;\n", node))
	}
	for _, node := range resp.Nodes {
		for _, edge := range resp.Graph[node] {
			b.WriteString(fmt.Sprintf("  %q -> %q;\n", node, edge))
		}
	}
	b.WriteString("}")
	return b.String()
}
