package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const DefaultCSSPath = "../../assets/report.css"

// TOCEntry is one h2/h3 link in the sidebar.
type TOCEntry struct {
	Level int
	ID    string
	Text  string
}

// Page holds everything the HTML shell needs.
type Page struct {
	CompanyName   string
	CompanyCode   string
	CSSPath       string
	TOCScriptPath string
	Body          template.HTML
	ChartScript   template.HTML
	TOC           []TOCEntry
}

// tocHref builds the anchor attribute by hand: html/template would
// percent-encode Japanese ids, which the scroll-spy script compares against
// element ids verbatim.
func tocHref(id string) template.HTMLAttr {
	return template.HTMLAttr(`href="#` + template.HTMLEscapeString(id) + `"`)
}

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"tocHref": tocHref,
}).Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.CompanyName}}（{{.CompanyCode}}）企業分析レポート</title>
<link rel="stylesheet" href="{{.CSSPath}}">
</head>
<body>
{{- if .TOC}}
<button class="toc-toggle" type="button" aria-label="目次">&#9776;</button>
<div class="toc-overlay"></div>
<nav class="toc-sidebar">
<ul>
{{- range .TOC}}
<li class="toc-h{{.Level}}"><a {{tocHref .ID}}>{{.Text}}</a></li>
{{- end}}
</ul>
</nav>
{{- end}}
<main class="report-content">
{{.Body}}
</main>
{{.ChartScript}}
{{- if .TOC}}
<script src="{{.TOCScriptPath}}"></script>
{{- end}}
</body>
</html>
`))

// RenderFullHTML assembles the final document.
func RenderFullHTML(page Page) (string, error) {
	if page.CSSPath == "" {
		page.CSSPath = DefaultCSSPath
	}
	if page.TOCScriptPath == "" {
		page.TOCScriptPath = siblingAsset(page.CSSPath, "toc.js")
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("failed to render report page: %w", err)
	}
	return buf.String(), nil
}

// siblingAsset returns name in the same directory as ref.
func siblingAsset(ref, name string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[:i+1] + name
	}
	return name
}

// CollectTOC lists the h2 and h3 headings of a rendered body that carry an id.
func CollectTOC(htmlBody string) ([]TOCEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, fmt.Errorf("failed to parse report html: %w", err)
	}

	var entries []TOCEntry
	doc.Find("h2[id], h3[id]").Each(func(_ int, h *goquery.Selection) {
		id, _ := h.Attr("id")
		level := 2
		if goquery.NodeName(h) == "h3" {
			level = 3
		}
		entries = append(entries, TOCEntry{Level: level, ID: id, Text: strings.TrimSpace(h.Text())})
	})
	return entries, nil
}
