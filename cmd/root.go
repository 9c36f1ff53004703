package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/taskflow/internal/config"
	"github.com/maxkimambo/taskflow/internal/errors"
	"github.com/maxkimambo/taskflow/internal/logger"
)

var (
	configPath string
	debug      bool
	verbose    bool
	jsonLogs   bool
	quiet      bool
	version    = "v0.1.0"

	cfg = config.Default()

	rootCmd = &cobra.Command{
		Use:   "taskflow",
		Short: "Run task workflows with short-circuit evaluation",
		Long: `taskflow runs workflows composed of registered tasks.

Tasks run natively or in containers. A workflow combines task calls with
AND, OR and NOT; calls whose result cannot change the outcome are skipped,
and independent calls run in parallel batches.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded

			switch cfg.Log.Mode {
			case "quiet":
				quiet = quiet || !cmd.Flags().Changed("verbose")
			case "verbose", "debug":
				verbose = verbose || !cmd.Flags().Changed("quiet")
			}
			if cfg.Log.Format == "json" {
				jsonLogs = true
			}

			logger.Setup(verbose || debug, jsonLogs, quiet)
			logger.Op.WithFields(map[string]interface{}{
				"config": configPath,
			}).Debug("Configuration loaded")
			return nil
		},
	}
)

// Execute runs the root command and prints failures for the terminal.
// SIGINT and SIGTERM cancel a running workflow.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprint(os.Stderr, errors.FormatForCLI(err))
	}
	return err
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	rootCmd.AddCommand(runCmd, planCmd, tasksCmd, workflowsCmd)
}
