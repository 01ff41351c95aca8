package epub

import (
	"strings"
	"testing"
)

func TestPreprocessHTMLEntities(t *testing.T) {
	in := []byte("<p>caf&eacute; &mdash; tea &amp; biscuits &nbsp;</p>")
	out := preprocessHTMLEntities(in)
	s := string(out)
	if strings.Contains(s, "&eacute;") || strings.Contains(s, "&mdash;") || strings.Contains(s, "&nbsp;") {
		t.Errorf("named entities not converted: %s", s)
	}
	if !strings.Contains(s, "&#233;") || !strings.Contains(s, "&#8212;") || !strings.Contains(s, "&#160;") {
		t.Errorf("expected numeric references in output: %s", s)
	}
	// &amp; is a standard XML entity and must be left alone.
	if !strings.Contains(s, "&amp;") {
		t.Errorf("expected &amp; to survive untouched: %s", s)
	}
}

func TestPreprocessHTMLEntities_CaseInsensitive(t *testing.T) {
	out := preprocessHTMLEntities([]byte("&NBSP;&MDash;"))
	s := string(out)
	if !strings.Contains(s, "&#160;") || !strings.Contains(s, "&#8212;") {
		t.Errorf("expected case-insensitive entity matching, got %s", s)
	}
}

func TestExtractText_StripsMarkupKeepsBlockBreaks(t *testing.T) {
	html := []byte(`<html><body><h1>Title</h1><p>First <b>paragraph</b>.</p><p>Second.</p></body></html>`)
	text, err := extractText(html)
	if err != nil {
		t.Fatalf("extractText: %v", err)
	}
	if !strings.Contains(text, "Title") || !strings.Contains(text, "First paragraph.") || !strings.Contains(text, "Second.") {
		t.Errorf("text missing expected content: %q", text)
	}
	if strings.Contains(text, "<") {
		t.Errorf("text still contains markup: %q", text)
	}
}

func TestExtractText_SkipsScriptAndStyle(t *testing.T) {
	html := []byte(`<html><body><style>.x{color:red}</style><script>alert(1)</script><p>Visible</p></body></html>`)
	text, err := extractText(html)
	if err != nil {
		t.Fatalf("extractText: %v", err)
	}
	if strings.Contains(text, "color:red") || strings.Contains(text, "alert") {
		t.Errorf("script/style content leaked into text: %q", text)
	}
	if !strings.Contains(text, "Visible") {
		t.Errorf("expected visible text to survive: %q", text)
	}
}

func TestExtractBodyHTML_StripsScriptsAndEventHandlers(t *testing.T) {
	html := []byte(`<html><body><script>evil()</script><p onclick="evil()">Hello</p></body></html>`)
	body, err := extractBodyHTML(html)
	if err != nil {
		t.Fatalf("extractBodyHTML: %v", err)
	}
	if strings.Contains(body, "<script") || strings.Contains(body, "onclick") {
		t.Errorf("expected script/event handler removed: %q", body)
	}
	if !strings.Contains(body, "Hello") {
		t.Errorf("expected visible text to survive: %q", body)
	}
}

func TestExtractBodyHTML_SanitizesUnsafeHref(t *testing.T) {
	html := []byte(`<html><body><a href="javascript:evil()">click</a></body></html>`)
	body, err := extractBodyHTML(html)
	if err != nil {
		t.Fatalf("extractBodyHTML: %v", err)
	}
	if strings.Contains(body, "javascript:") {
		t.Errorf("expected unsafe href stripped: %q", body)
	}
}

func TestRewriteImagePaths_ResolvesRelativeToContainerPath(t *testing.T) {
	html := []byte(`<html><body><img src="images/fig1.png"/></body></html>`)
	out := string(rewriteImagePaths(html, "OEBPS/chapter1.xhtml"))
	if !strings.Contains(out, "OEBPS/images/fig1.png") {
		t.Errorf("expected rewritten absolute path, got %q", out)
	}
}

func TestRewriteImagePaths_LeavesAbsoluteURLsAlone(t *testing.T) {
	html := []byte(`<html><body><img src="https://example.com/fig1.png"/></body></html>`)
	out := string(rewriteImagePaths(html, "OEBPS/chapter1.xhtml"))
	if !strings.Contains(out, "https://example.com/fig1.png") {
		t.Errorf("expected absolute URL preserved, got %q", out)
	}
}

func TestRewriteImagePaths_SVGImageXlinkHref(t *testing.T) {
	html := []byte(`<html><body><svg><image xlink:href="images/fig1.png"/></svg></body></html>`)
	out := string(rewriteImagePaths(html, "OEBPS/chapter1.xhtml"))
	if !strings.Contains(out, "OEBPS/images/fig1.png") {
		t.Errorf("expected SVG image href rewritten, got %q", out)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	cases := map[string]string{
		"a    b":       "a b",
		"a\n\n\tb":     "a b",
		"  leading":    " leading",
		"trailing   ":  "trailing ",
		"no-change":    "no-change",
	}
	for in, want := range cases {
		if got := collapseWhitespace(in); got != want {
			t.Errorf("collapseWhitespace(%q) = %q, want %q", in, got, want)
		}
	}
}
