package report

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"corporate_reports/pkg/core/utils"
)

// File names inside a report directory.
const (
	ReportFile      = "report.md"
	ChartConfigFile = "chart_config.json"
	OutputFile      = "report.html"
)

// Options control BuildReport.
type Options struct {
	NoCharts   bool   // ignore chart_config.json
	CSSPath    string // defaults to DefaultCSSPath
	EChartsCDN string // defaults to DefaultEChartsCDN
}

// BuildReport renders dir/report.md (plus dir/chart_config.json when present)
// to dir/report.html and returns the output path. A missing report.md yields
// an error wrapping fs.ErrNotExist.
func BuildReport(dir string, opts Options) (string, error) {
	mdPath := filepath.Join(dir, ReportFile)
	data, err := os.ReadFile(mdPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("report.md not found: %s: %w", mdPath, fs.ErrNotExist)
		}
		return "", err
	}

	md := utils.CleanMarkdown(string(data))
	name, code := ExtractMeta(md)

	body, err := RenderMarkdown(md)
	if err != nil {
		return "", err
	}

	var charts []Chart
	configPath := filepath.Join(dir, ChartConfigFile)
	if !opts.NoCharts {
		if _, statErr := os.Stat(configPath); statErr == nil {
			cfg, err := LoadChartConfig(configPath)
			if err != nil {
				return "", err
			}
			charts = cfg.Charts
			if cfg.CompanyName != "" {
				name = cfg.CompanyName
			}
			if cfg.CompanyCode != "" {
				code = cfg.CompanyCode
			}
		}
	}

	if len(charts) > 0 {
		if body, err = InjectCharts(body, charts); err != nil {
			return "", err
		}
	}

	cdn := opts.EChartsCDN
	if cdn == "" {
		cdn = DefaultEChartsCDN
	}
	script := buildEChartsScript(charts, cdn)

	toc, err := CollectTOC(body)
	if err != nil {
		return "", err
	}

	page, err := RenderFullHTML(Page{
		CompanyName: name,
		CompanyCode: code,
		CSSPath:     opts.CSSPath,
		Body:        template.HTML(body),
		ChartScript: template.HTML(script),
		TOC:         toc,
	})
	if err != nil {
		return "", err
	}

	outPath := filepath.Join(dir, OutputFile)
	if err := os.WriteFile(outPath, []byte(page), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	log.Printf("[Report] %s（%s）: %d charts -> %s", name, code, len(charts), outPath)
	return outPath, nil
}
