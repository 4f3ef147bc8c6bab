package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pycm/internal/config"
	"pycm/internal/storage"
)

var (
	runsFormat string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs [path]",
	Short: "List analysis runs saved with analyze --save",
	Args:  cobra.MaximumNArgs(1),
	Run:   runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsFormat, "format", "human", "Output format (json, human)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}

// RunsResponseCLI contains the saved run history for CLI output.
type RunsResponseCLI struct {
	Runs []storage.Run `json:"runs"`
}

func runRuns(cmd *cobra.Command, args []string) {
	root, err := resolveProjectRoot(args)
	if err != nil {
		fail(err)
	}

	settings, err := config.Load(root)
	if err != nil {
		fail(err)
	}
	logger := newLogger(settings)

	db, err := storage.Open(root, logger)
	if err != nil {
		fail(err)
	}
	defer db.Close()

	runs, err := db.ListRuns(runsLimit)
	if err != nil {
		fail(err)
	}

	output, err := FormatResponse(&RunsResponseCLI{Runs: runs}, OutputFormat(runsFormat))
	if err != nil {
		fail(err)
	}
	fmt.Println(output)
}
