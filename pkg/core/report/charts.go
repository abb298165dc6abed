package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"os"
	"strings"

	"corporate_reports/pkg/core/utils"

	"github.com/PuerkitoBio/goquery"
)

// Chart placement relative to the section heading.
const (
	PositionAfterTable    = "after_table"
	PositionBeforeSection = "before_section"
	PositionAfterSection  = "after_section"
)

const (
	DefaultChartID     = "chart"
	DefaultChartHeight = 400
	DefaultEChartsCDN  = "https://cdn.jsdelivr.net/npm/echarts@5/dist/echarts.min.js"
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

// Chart is one entry of chart_config.json.
type Chart struct {
	ID             string `json:"id"`
	SectionHeading string `json:"section_heading"`
	Position       string `json:"position"`
	Title          string `json:"title"`
	Note           string `json:"note"`
	Height         int    `json:"height"`

	// Passed to echarts.setOption verbatim, so key order is preserved.
	EChartsOption json.RawMessage `json:"echarts_option,omitempty"`
}

func (c Chart) withDefaults() Chart {
	if c.ID == "" {
		c.ID = DefaultChartID
	}
	if c.Position == "" {
		c.Position = PositionAfterTable
	}
	if c.Height <= 0 {
		c.Height = DefaultChartHeight
	}
	return c
}

// hasOption reports whether the chart carries a non-empty ECharts option.
func (c Chart) hasOption() bool {
	var compact bytes.Buffer
	if err := json.Compact(&compact, c.EChartsOption); err != nil {
		return false
	}
	switch compact.String() {
	case "", "null", "{}":
		return false
	}
	return true
}

// ChartConfig is the content of chart_config.json.
type ChartConfig struct {
	Version     string  `json:"version"`
	CompanyName string  `json:"company_name"`
	CompanyCode string  `json:"company_code"`
	Charts      []Chart `json:"charts"`
}

// LoadChartConfig reads a chart config. Hand-edited files with comments,
// trailing commas or Hjson syntax are accepted.
func LoadChartConfig(path string) (*ChartConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg ChartConfig
	if _, err := utils.SmartParse(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("invalid chart config %s: %w", path, err)
	}
	return &cfg, nil
}

var chartDivTmpl = template.Must(template.New("chart").Parse(`<div class="chart-container">
{{- if .Title}}
  <div class="chart-title">{{.Title}}</div>
{{- end}}
{{- if .Note}}
  <div class="chart-note">{{.Note}}</div>
{{- end}}
  <div id="{{.ID}}" class="chart-box" style="height:{{.Height}}px;"></div>
</div>`))

func buildChartDiv(c Chart) (string, error) {
	var buf bytes.Buffer
	if err := chartDivTmpl.Execute(&buf, c); err != nil {
		return "", fmt.Errorf("failed to render chart %s: %w", c.ID, err)
	}
	return buf.String(), nil
}

// InjectCharts inserts a chart container for every chart whose
// section_heading can be found in htmlBody. Headings are matched on their
// exact text first, then on substring. Charts without a matching heading are
// skipped with a warning.
func InjectCharts(htmlBody string, charts []Chart) (string, error) {
	if len(charts) == 0 {
		return htmlBody, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return "", fmt.Errorf("failed to parse report html: %w", err)
	}
	body := doc.Find("body")
	headings := body.Find(headingSelector)

	for _, chart := range charts {
		chart = chart.withDefaults()

		target := findHeading(headings, chart.SectionHeading)
		if target == nil {
			log.Printf("[WARNING] section_heading %q not found, skipping chart %q", chart.SectionHeading, chart.ID)
			continue
		}

		div, err := buildChartDiv(chart)
		if err != nil {
			return "", err
		}

		switch chart.Position {
		case PositionBeforeSection:
			target.BeforeHtml(div)
		case PositionAfterSection:
			if next := nextSibling(target, headingSelector, ""); next != nil {
				next.BeforeHtml(div)
			} else {
				body.AppendHtml(div)
			}
		default:
			if table := nextSibling(target, "table", headingSelector); table != nil {
				table.AfterHtml(div)
			} else {
				target.AfterHtml(div)
			}
		}
	}

	return body.Html()
}

func findHeading(headings *goquery.Selection, text string) *goquery.Selection {
	var found *goquery.Selection
	headings.EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.TrimSpace(h.Text()) == text {
			found = h
			return false
		}
		return true
	})
	if found != nil {
		return found
	}

	headings.EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.Contains(strings.TrimSpace(h.Text()), text) {
			found = h
			return false
		}
		return true
	})
	return found
}

// nextSibling returns the first following sibling of s matching want, or nil
// if a sibling matching stop (when set) comes first.
func nextSibling(s *goquery.Selection, want, stop string) *goquery.Selection {
	var found *goquery.Selection
	s.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
		if stop != "" && sib.Is(stop) {
			return false
		}
		if sib.Is(want) {
			found = sib
			return false
		}
		return true
	})
	return found
}

// BuildEChartsScript returns the ECharts loader and one initialiser per chart
// with a non-empty echarts_option, or "" when there is nothing to render.
func BuildEChartsScript(charts []Chart) string {
	return buildEChartsScript(charts, DefaultEChartsCDN)
}

func buildEChartsScript(charts []Chart, cdn string) string {
	var inits []string
	for _, chart := range charts {
		if !chart.hasOption() {
			continue
		}
		chart = chart.withDefaults()

		var option bytes.Buffer
		if err := json.Indent(&option, chart.EChartsOption, "    ", "  "); err != nil {
			continue
		}
		id, _ := json.Marshal(chart.ID)

		inits = append(inits, fmt.Sprintf(`  (function() {
    var el = document.getElementById(%s);
    if (!el) return;
    var chart = echarts.init(el);
    var option = %s;
    chart.setOption(option);
    window.addEventListener('resize', function() { chart.resize(); });
  })();`, id, option.String()))
	}

	if len(inits) == 0 {
		return ""
	}

	return fmt.Sprintf(`<script src="%s"></script>
<script>
document.addEventListener('DOMContentLoaded', function() {
%s
});
</script>`, template.HTMLEscapeString(cdn), strings.Join(inits, "\n"))
}
