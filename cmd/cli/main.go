package main

import (
	"os"

	"github.com/limaJavier/fdsat/internal/logger"
	"github.com/spf13/cobra"
)

// Exit codes follow the SAT competition convention
const (
	exitSatisfiable   = 10
	exitUnsatisfiable = 20
	exitUnverified    = 15
)

var exitCode int

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func newRootCmd() *cobra.Command {
	var (
		debug   bool
		logFile string
		cleanup func() error
	)

	cmd := &cobra.Command{
		Use:          "fdsat",
		Short:        "Translate finite-domain constraint models into SAT instances",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cleanup, err = logger.Setup(logger.Config{File: logFile, Debug: debug})
			return err
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if cleanup != nil {
				return cleanup()
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log every variable and constraint as it is encoded")
	cmd.PersistentFlags().StringVar(&logFile, "log", "", "Path to a JSON log file; if empty, logs are written to the Standard Error")
	cmd.AddCommand(encodeCmd(), solveCmd())
	return cmd
}
