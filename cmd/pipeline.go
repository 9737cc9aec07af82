package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/specforge-dev/specforge/pkg/pipeline"
)

var (
	pipelinePRD string
	pipelineOut string
)

func init() {
	pipelineCmd.Flags().StringVarP(&pipelinePRD, "prd", "p", "", "PRD file to process")
	pipelineCmd.Flags().StringVarP(&pipelineOut, "out", "o", "./generated", "Output directory root")
	_ = pipelineCmd.MarkFlagRequired("prd")
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "End-to-end: PRD -> spec -> plan -> generated project",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig()
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}
		defer logger.Sync() //nolint:errcheck

		p, err := pipeline.New(cfg, logger)
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}

		res, err := p.Run(cmd.Context(), pipelinePRD, pipelineOut)
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}

		if res.FromCache {
			color.Yellow("Spec loaded from cache")
		}
		color.Green("✅ Pipeline complete. Project at %s", res.ProjectDir)
		fmt.Printf("   %d files, requirement coverage %.1f%% (%d/%d)\n",
			len(res.Files),
			res.Coverage.Summary.CoveragePct,
			res.Coverage.Summary.Covered,
			res.Coverage.Summary.Total)
	},
}
