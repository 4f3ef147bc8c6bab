package main

import (
	"fmt"
	"os"
	"path/filepath"

	"pycm/internal/config"
	pycmerrors "pycm/internal/errors"
	"pycm/internal/logging"
)

// newLogger builds the command logger from the loaded settings, letting
// the --log-level flag override the configured level.
func newLogger(settings *config.Settings) *logging.Logger {
	level := settings.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(settings.Logging.Format),
		Level:  logging.ParseLevel(level),
	})
}

// resolveProjectRoot turns the optional positional argument into an
// absolute project root, defaulting to the current directory.
func resolveProjectRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", pycmerrors.Wrap(pycmerrors.InvalidInput, "cannot resolve project path", err)
	}
	return abs, nil
}

// fail prints the error (plus a suggested fix when one is known) to
// stderr and exits with status 1.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if code := pycmerrors.CodeOf(err); code != "" {
		if fix, ok := pycmerrors.FixFor(code); ok {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", fix)
		}
	}
	os.Exit(1)
}
