// Package report turns an analyst-written report.md and an optional
// chart_config.json into a self-contained report.html. The conversion is
// deterministic: Markdown is rendered with goldmark, chart placeholders are
// inserted into the DOM with goquery and the page is assembled from an
// html/template shell.
package report

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"corporate_reports/pkg/core/utils"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	slugDropRe  = regexp.MustCompile(`[^\p{L}\p{N}_\s\x{3000}-\x{9fff}\x{ff00}-\x{ffef}]`)
	slugSpaceRe = regexp.MustCompile(`[\s\x{3000}]+`)
)

// Slugify turns a (usually Japanese) heading into an anchor id. Letters,
// digits, CJK and fullwidth characters are kept, other symbols are dropped
// and whitespace runs become a single "-".
func Slugify(value string) string {
	value = slugDropRe.ReplaceAllString(value, "")
	value = strings.ToLower(strings.TrimSpace(value))
	return slugSpaceRe.ReplaceAllString(value, "-")
}

// slugIDs implements parser.IDs so that goldmark's auto heading ids use
// Slugify. Ids stay unique the way Python-Markdown's toc extension keeps
// them: "x" becomes "x_1", "x_1" becomes "x_2" and an empty slug is "_1".
type slugIDs struct {
	used map[string]bool
}

func newSlugIDs() *slugIDs {
	return &slugIDs{used: map[string]bool{}}
}

var idCountRe = regexp.MustCompile(`^(.*)_([0-9]+)$`)

func (s *slugIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	id := Slugify(string(value))
	for id == "" || s.used[id] {
		if m := idCountRe.FindStringSubmatch(id); m != nil {
			if n, err := strconv.Atoi(m[2]); err == nil {
				id = fmt.Sprintf("%s_%d", m[1], n+1)
				continue
			}
		}
		id += "_1"
	}
	s.used[id] = true
	return []byte(id)
}

func (s *slugIDs) Put(value []byte) {
	s.used[string(value)] = true
}

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// RenderMarkdown converts report Markdown to an HTML fragment. A leading
// navigation line is dropped first.
func RenderMarkdown(md string) (string, error) {
	md = utils.StripNavLine(md)

	ctx := parser.NewContext(parser.WithIDs(newSlugIDs()))
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(md), &buf, parser.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

var metaRe = regexp.MustCompile(`(?m)^#\s+(.+?)（(\d{4})）`)

// Fallbacks used when report.md has no "# 企業名（1234）" heading.
const (
	DefaultCompanyName = "企業"
	DefaultCompanyCode = "0000"
)

// ExtractMeta reads the company name and 4-digit securities code from the
// first h1 of the form "# 企業名（1234）...".
func ExtractMeta(md string) (name, code string) {
	m := metaRe.FindStringSubmatch(md)
	if m == nil {
		return DefaultCompanyName, DefaultCompanyCode
	}
	return m[1], m[2]
}
