package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/hbtools/deckybuild/internal/config"
	"github.com/hbtools/deckybuild/internal/log"
	"github.com/hbtools/deckybuild/internal/pipeline"
	"github.com/hbtools/deckybuild/internal/workspace"
)

var rootCmd = &cobra.Command{
	Use:   "deckybuild [release]",
	Short: "Build and install Decky Loader",
	Long: `deckybuild provisions the Decky Loader plugin framework onto this machine.
It fetches the requested release, builds the web frontend, stages the backend
runtime, packages it into standalone executables, and wires Steam debug mode
and autostart.

The single optional argument is a release tag or branch; "main" (the default)
is resolved to the most recent release tag when possible.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		release := "main"
		if len(args) == 1 {
			release = args[0]
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		configPath, _ := cmd.Flags().GetString("config")

		logger := log.Default()
		if verbose {
			logger = log.Development()
		}
		log.SetDefaultLogger(logger)

		cfg := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		root, err := os.Getwd()
		if err != nil {
			return err
		}
		layout, err := workspace.NewLayout(root)
		if err != nil {
			return err
		}

		orchestrator := pipeline.New(cfg, layout, logger)
		return orchestrator.Run(pipeline.Request{ReleaseRef: release})
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.Flags().Bool("verbose", false, "Enable debug logging")
	rootCmd.Flags().String("config", "", "Build configuration file (YAML)")
	rootCmd.SilenceUsage = true
}
