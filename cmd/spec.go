package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/specforge-dev/specforge/pkg/pipeline"
)

var specPRD string

func init() {
	specCmd.Flags().StringVarP(&specPRD, "prd", "p", "", "PRD file to process")
	_ = specCmd.MarkFlagRequired("prd")
}

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Print the enriched spec for a PRD without generating files",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig()
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}
		defer logger.Sync() //nolint:errcheck

		prdText, err := os.ReadFile(specPRD)
		if err != nil {
			fmt.Println("❌ Reading PRD:", err)
			os.Exit(1)
		}

		p, err := pipeline.New(cfg, logger)
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}
		s, err := p.BuildSpec(cmd.Context(), string(prdText))
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}

		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			fmt.Println("❌ Serializing spec:", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	},
}
