package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/specforge-dev/specforge/pkg/trace"
)

var (
	coverageProject string
	coverageJSON    bool
)

func init() {
	coverageCmd.Flags().StringVarP(&coverageProject, "project", "P", "./generated/my-app", "Generated project directory")
	coverageCmd.Flags().BoolVar(&coverageJSON, "json", false, "Print the full report as JSON")
}

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Compute requirement coverage for a generated project",
	Run: func(cmd *cobra.Command, args []string) {
		report, err := trace.Coverage(coverageProject)
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}

		if coverageJSON {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				fmt.Println("❌ Serializing report:", err)
				os.Exit(1)
			}
			fmt.Println(string(out))
			return
		}

		fmt.Printf("Requirement coverage: %.1f%% (%d/%d)\n",
			report.Summary.CoveragePct, report.Summary.Covered, report.Summary.Total)
		for _, r := range report.Requirements {
			if r.Covered {
				color.Green("  ✓ %s %s", r.ID, r.Text)
			} else {
				color.Red("  ✗ %s %s", r.ID, r.Text)
			}
		}
	},
}
