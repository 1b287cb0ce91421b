package email

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/FlakM/czujka-librus/internal/domain"
)

var (
	boldExpr = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	tagExpr  = regexp.MustCompile(`<[^>]*>`)
	wsExpr   = regexp.MustCompile(`\s+`)
)

const pageStyle = `
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
    h1 { color: #2c3e50; border-bottom: 3px solid #3498db; padding-bottom: 10px; }
    h2 { color: #34495e; margin-top: 30px; }
    .summary { background-color: #f8f9fa; padding: 15px; border-left: 4px solid #3498db; margin: 20px 0; }
    .key-points { background-color: #fff; padding: 15px; border: 1px solid #dee2e6; border-radius: 5px; }
    .item { margin: 15px 0; padding: 15px; background: #f8f9fa; border-radius: 5px; border-left: 3px solid #6c757d; }
    .item-header { font-weight: bold; color: #2c3e50; margin-bottom: 5px; }
    .item-meta { font-size: 13px; color: #6c757d; margin-bottom: 10px; }
    .item-content { margin-top: 10px; padding: 10px; background: white; border-radius: 3px; white-space: pre-wrap; }
    .degraded { color: #856404; background-color: #fff3cd; padding: 8px; border-radius: 4px; font-size: 13px; }
    .footer { margin-top: 40px; padding-top: 20px; border-top: 1px solid #dee2e6; color: #6c757d; font-size: 12px; }
`

func subjectFor(u domain.Urgency) string {
	return fmt.Sprintf("[%s] New Librus notifications", u.String())
}

func urgencyBadge(u domain.Urgency) string {
	color := "#ffc107"
	switch u {
	case domain.Urgent:
		color = "#dc3545"
	case domain.NotUrgent:
		color = "#28a745"
	}
	return fmt.Sprintf(`<span style="background-color: %s; color: white; padding: 4px 8px; border-radius: 4px; font-size: 12px; font-weight: bold;">%s</span>`,
		color, u.String())
}

// formatMarkdown escapes user-controlled text and then renders the
// classifier's **bold** marks.
func formatMarkdown(text string) string {
	return boldExpr.ReplaceAllString(html.EscapeString(text), "<strong>$1</strong>")
}

func renderHTML(n domain.Notification) string {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>")
	sb.WriteString(pageStyle)
	sb.WriteString("</style>\n</head>\n<body>\n")
	sb.WriteString("<h1>\U0001F4DA New Librus notifications</h1>\n")

	for _, section := range n.Sections {
		if !section.Result.Present() {
			continue
		}
		renderSection(&sb, section)
	}

	sb.WriteString(`<div class="footer">`)
	sb.WriteString("<p>This notification was generated automatically by the Librus monitoring service.</p>")
	sb.WriteString(fmt.Sprintf("<p>Generated at: %s</p>", n.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString("</div>\n</body>\n</html>\n")

	return sb.String()
}

func renderSection(sb *strings.Builder, section domain.Section) {
	sb.WriteString(`<div class="section">`)
	sb.WriteString(fmt.Sprintf("<h2>%s %s</h2>\n",
		html.EscapeString(section.Stream.Label()), urgencyBadge(section.Result.Urgency)))

	if section.Degraded {
		sb.WriteString(`<div class="degraded">Summary generation failed; listing raw items below.</div>`)
	}

	sb.WriteString(`<div class="summary"><strong>Summary:</strong><br>`)
	sb.WriteString(formatMarkdown(section.Result.Summary))
	sb.WriteString("</div>\n")

	sb.WriteString(`<div class="key-points"><strong>Key points:</strong><ul>`)
	for _, point := range section.Result.KeyPoints {
		sb.WriteString("<li>")
		sb.WriteString(formatMarkdown(point))
		sb.WriteString("</li>")
	}
	sb.WriteString("</ul></div>\n")

	sb.WriteString("<h3>Details:</h3>\n")
	for i, rec := range section.Records {
		d := rec.Display()
		sb.WriteString(`<div class="item">`)
		sb.WriteString(fmt.Sprintf(`<div class="item-header">%d. %s`, i+1, html.EscapeString(d.Title)))
		if d.Link != "" {
			sb.WriteString(fmt.Sprintf(` <a href="%s" style="color: #3498db; font-size: 13px;">[Open in Librus]</a>`,
				html.EscapeString(d.Link)))
		}
		sb.WriteString("</div>")
		sb.WriteString(fmt.Sprintf(`<div class="item-meta">%s</div>`, html.EscapeString(d.Meta)))
		if d.Body != "" {
			sb.WriteString("<details><summary>Show content</summary>")
			sb.WriteString(fmt.Sprintf(`<div class="item-content">%s</div>`, html.EscapeString(d.Body)))
			sb.WriteString("</details>")
		}
		sb.WriteString("</div>\n")
	}

	sb.WriteString("</div>\n")
}

// preview strips tags for the dry-run log line.
func preview(rendered string, limit int) string {
	text := tagExpr.ReplaceAllString(rendered, " ")
	text = strings.TrimSpace(wsExpr.ReplaceAllString(text, " "))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
