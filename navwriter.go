package epub

import (
	"strconv"
	"strings"
)

// generateNavXHTML renders the ePub 3 navigation document for the given toc,
// landmarks, and page-list trees.
func generateNavXHTML(toc, landmarks, pageList []NavPoint, titles []string) string {
	title := "Table of Contents"
	if len(titles) > 0 {
		title = titles[0]
	}

	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html xmlns=\"http://www.w3.org/1999/xhtml\" xmlns:epub=\"http://www.idpf.org/2007/ops\">\n")
	sb.WriteString("<head><title>")
	sb.WriteString(xmlEscape(title))
	sb.WriteString("</title></head>\n<body>\n")

	sb.WriteString("<nav epub:type=\"toc\">\n<h1>Table of Contents</h1>\n")
	writeNavOL(&sb, toc)
	sb.WriteString("</nav>\n")

	if len(landmarks) > 0 {
		sb.WriteString("<nav epub:type=\"landmarks\" hidden=\"\">\n<h1>Landmarks</h1>\n")
		writeNavOL(&sb, landmarks)
		sb.WriteString("</nav>\n")
	}

	if len(pageList) > 0 {
		sb.WriteString("<nav epub:type=\"page-list\" hidden=\"\">\n<h1>Page List</h1>\n")
		writeNavOL(&sb, pageList)
		sb.WriteString("</nav>\n")
	}

	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

func writeNavOL(sb *strings.Builder, points []NavPoint) {
	if len(points) == 0 {
		return
	}
	sb.WriteString("<ol>\n")
	for _, point := range points {
		sb.WriteString("<li><a href=\"")
		sb.WriteString(xmlEscape(point.Target))
		sb.WriteString("\">")
		sb.WriteString(xmlEscape(point.Label))
		sb.WriteString("</a>")
		if len(point.Children) > 0 {
			sb.WriteString("\n")
			writeNavOL(sb, point.Children)
		}
		sb.WriteString("</li>\n")
	}
	sb.WriteString("</ol>\n")
}

// generateNCX renders the ePub 2 NCX document for the given toc tree.
func generateNCX(toc []NavPoint, titles []string, identifiers []Identifier) string {
	title := ""
	if len(titles) > 0 {
		title = titles[0]
	}
	uid := ""
	if len(identifiers) > 0 {
		uid = identifiers[0].Value
	}

	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString("<ncx xmlns=\"http://www.daisy.org/z3986/2005/ncx/\" version=\"2005-1\">\n")
	sb.WriteString("<head>\n  <meta name=\"dtb:uid\" content=\"")
	sb.WriteString(xmlEscape(uid))
	sb.WriteString("\"/>\n</head>\n")
	sb.WriteString("<docTitle><text>")
	sb.WriteString(xmlEscape(title))
	sb.WriteString("</text></docTitle>\n")
	sb.WriteString("<navMap>\n")
	counter := 1
	writeNCXPoints(&sb, toc, &counter)
	sb.WriteString("</navMap>\n")
	sb.WriteString("</ncx>\n")
	return sb.String()
}

func writeNCXPoints(sb *strings.Builder, points []NavPoint, counter *int) {
	for _, point := range points {
		id := *counter
		*counter++
		sb.WriteString("<navPoint id=\"navpoint-")
		sb.WriteString(strconv.Itoa(id))
		sb.WriteString("\" playOrder=\"")
		sb.WriteString(strconv.Itoa(id))
		sb.WriteString("\">\n  <navLabel><text>")
		sb.WriteString(xmlEscape(point.Label))
		sb.WriteString("</text></navLabel>\n  <content src=\"")
		sb.WriteString(xmlEscape(point.Target))
		sb.WriteString("\"/>\n")
		writeNCXPoints(sb, point.Children, counter)
		sb.WriteString("</navPoint>\n")
	}
}
