package main

import (
	"github.com/spf13/cobra"

	"corporate_reports/pkg/core/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build report pages",
}

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Render dir/report.md (+ chart_config.json) to dir/report.html",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noCharts, _ := cmd.Flags().GetBool("no-charts")
		css, _ := cmd.Flags().GetString("css")

		opts := cfg.Report.Options(noCharts)
		if css != "" {
			opts.CSSPath = css
		}

		out, err := report.BuildReport(args[0], opts)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]string{"status": "success", "file": out})
	},
}

func init() {
	reportCmd.AddCommand(buildCmd)
	buildCmd.Flags().Bool("no-charts", false, "ignore chart_config.json")
	buildCmd.Flags().String("css", "", "stylesheet href (default from config)")
}
