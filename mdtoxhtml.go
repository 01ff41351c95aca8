package epub

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/russross/blackfriday/v2"
)

const xhtmlDocTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <meta charset="UTF-8"/>
  <title>%s</title>
  %s
</head>
<body>
%s</body>
</html>
`

// markdownToXHTML converts md to an EPUB 3.3 XHTML chapter document, with
// title in the <title> element and an optional stylesheet link.
func markdownToXHTML(md, title, stylesheet string) string {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.UseXHTML,
	})
	bodyHTML := blackfriday.Run([]byte(md),
		blackfriday.WithRenderer(renderer),
		blackfriday.WithExtensions(blackfriday.Tables|blackfriday.Strikethrough|blackfriday.Footnotes|blackfriday.AutoHeadingIDs),
	)

	cssLink := ""
	if stylesheet != "" {
		cssLink = fmt.Sprintf(`<link rel="stylesheet" type="text/css" href="%s"/>`, xmlEscape(stylesheet))
	}

	return fmt.Sprintf(xhtmlDocTemplate, xmlEscape(title), cssLink, normalizeVoidElements(string(bodyHTML)))
}

// normalizeVoidElements runs the blackfriday-rendered fragment through
// goquery so that void elements it does not self-close (e.g. <hr>) come out
// well-formed for XHTML.
func normalizeVoidElements(bodyHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + bodyHTML + "</body>"))
	if err != nil {
		return bodyHTML
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return bodyHTML
	}
	out, err := body.Html()
	if err != nil {
		return bodyHTML
	}
	return out
}
