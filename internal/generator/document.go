package generator

import (
	"html"
	"strings"
)

const documentBodyCSS = "body { margin: 0; min-height: 100vh; display: flex; align-items: center; justify-content: center; background: #111; }\n"

// Document wraps rendered output in a standalone HTML page. The comment is
// placed verbatim at the top of the stylesheet and must already be safe for
// a <style> element.
func Document(title, comment string, r *Rendered) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n<style>\n")
	if comment != "" {
		b.WriteString(comment)
		b.WriteString("\n")
	}
	b.WriteString(documentBodyCSS)
	b.WriteString(r.CSS)
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(r.HTML)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
