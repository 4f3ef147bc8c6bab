package main

import (
	"github.com/spf13/cobra"

	"pycm/internal/version"
)

var (
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "pycm",
	Short: "pycm - Python coupling metrics",
	Long: `pycm analyzes the structural coupling of a Python project: it extracts
import relationships, computes afferent/efferent coupling, instability and
distance from the main sequence per module, and reports which modules are
problematic and which are stable building blocks.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("pycm version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default: from config)")
}
