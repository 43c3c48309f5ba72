package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
)

var summaryEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

var summaryPage = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; color: #222; }
h1 { font-size: 1.6rem; border-bottom: 1px solid #ddd; padding-bottom: .4rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{.Body}}
</body>
</html>
`))

// WriteSummaryHTML renders the markdown summary as a standalone HTML page.
func WriteSummaryHTML(w io.Writer, documentName string, summary domain.Summary) error {
	var body bytes.Buffer
	if err := summaryEngine.Convert([]byte(strings.TrimSpace(string(summary))), &body); err != nil {
		return fmt.Errorf("render summary markdown: %w", err)
	}

	title := "Summary"
	if name := strings.TrimSpace(documentName); name != "" {
		title = "Summary of " + name
	}
	// goldmark escapes raw HTML unless WithUnsafe is set.
	return summaryPage.Execute(w, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(body.String()),
	})
}
