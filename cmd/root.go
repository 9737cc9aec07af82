package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/specforge-dev/specforge/pkg/config"
)

// version is overridable at build time with -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "specforge",
	Short: "Turn PRD documents into structured specs and runnable scaffolds",
	Long: `specforge extracts a structured specification from a PRD document
and generates a runnable project scaffold from it.

Examples:

  specforge pipeline --prd docs/prd.md
  specforge spec --prd docs/prd.md
  specforge coverage --project ./generated/my-app
`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(specCmd)
	rootCmd.AddCommand(coverageCmd)
}

// loadConfig loads settings and builds the logger for one command run.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(version)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := buildLogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return zapCfg.Build()
}
