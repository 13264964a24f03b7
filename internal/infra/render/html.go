package render

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"tldrscope/internal/domain"
)

var markdownEngine = goldmark.New(goldmark.WithExtensions(extension.GFM))

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
table { border-collapse: collapse; margin-bottom: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.6rem; }
code { background: #f4f4f4; padding: 0 0.2rem; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders the Markdown report into a standalone page.
func HTML(report domain.AnalyticsReport) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownEngine.Convert([]byte(Markdown(report)), &body); err != nil {
		return nil, err
	}
	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: orDash(report.Metadata.Name) + " TLDR report",
		// goldmark drops raw HTML unless html.WithUnsafe is set.
		Body: template.HTML(body.String()),
	})
	if err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}
