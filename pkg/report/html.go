package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const htmlPage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>ASF Weekly Highlights</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; }
        h1, h2, h3 { color: #333; }
        pre { background: #f5f5f5; padding: 10px; border-radius: 5px; }
        table { border-collapse: collapse; width: 100%%; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
    </style>
</head>
<body>
%s
</body>
</html>
`

// ConvertToHTML converts a rendered markdown report into a standalone HTML
// page next to it, returning the HTML file's path.
func ConvertToHTML(mdPath string) (string, error) {
	source, err := os.ReadFile(mdPath)
	if err != nil {
		return "", fmt.Errorf("could not read markdown report: %s", err.Error())
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert(source, &body); err != nil {
		return "", fmt.Errorf("could not convert markdown to html: %s", err.Error())
	}

	htmlPath := strings.TrimSuffix(mdPath, ".md") + ".html"
	page := fmt.Sprintf(htmlPage, body.String())
	if err := os.WriteFile(htmlPath, []byte(page), 0o644); err != nil {
		return "", fmt.Errorf("could not write html report: %s", err.Error())
	}

	return htmlPath, nil
}
