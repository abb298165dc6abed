package utils

import (
	"strings"
)

// StripNavLine drops a leading navigation line such as
// "[← トップ](./) ｜ [一覧](../../)" that report.md files carry for the
// static site but that should not appear in a rendered page.
func StripNavLine(md string) string {
	if !strings.HasPrefix(md, "[") {
		return md
	}
	if i := strings.IndexByte(md, '\n'); i >= 0 {
		return md[i+1:]
	}
	return ""
}

// CleanMarkdown strips an outer code fence (```markdown ... ```) that editors
// sometimes leave around a whole document.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") || strings.Count(cleaned, "```") != 2 {
		return input
	}

	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimPrefix(cleaned, "```markdown")
	cleaned = strings.TrimPrefix(cleaned, "```md")
	cleaned = strings.TrimPrefix(cleaned, "```")
	return strings.TrimSpace(cleaned) + "\n"
}
