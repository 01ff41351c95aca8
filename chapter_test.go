package epub

import (
	"strings"
	"testing"
)

func TestChapters_SpineOrderAndTitles(t *testing.T) {
	book := sampleBook(t)

	chapters := book.Chapters()
	if len(chapters) != 2 {
		t.Fatalf("Chapters = %d, want 2", len(chapters))
	}
	if chapters[0].Title != "Chapter One" || !strings.HasSuffix(chapters[0].Href, "chapter1.xhtml") {
		t.Errorf("chapters[0] = %+v", chapters[0])
	}
	if chapters[1].Title != "Chapter Two" || !strings.HasSuffix(chapters[1].Href, "chapter2.xhtml") {
		t.Errorf("chapters[1] = %+v", chapters[1])
	}
	if !chapters[0].Linear || !chapters[1].Linear {
		t.Errorf("expected both chapters linear, got %+v %+v", chapters[0], chapters[1])
	}
}

func TestChapters_DefensiveCopy(t *testing.T) {
	book := sampleBook(t)

	first := book.Chapters()
	first[0].Title = "Mutated"

	second := book.Chapters()
	if second[0].Title == "Mutated" {
		t.Error("Chapters() should return a defensive copy, mutation leaked into cache")
	}
}

func TestChapter_RawContentAndTextContent(t *testing.T) {
	book := sampleBook(t)
	chapters := book.Chapters()

	raw, err := chapters[0].RawContent()
	if err != nil {
		t.Fatalf("RawContent: %v", err)
	}
	if !strings.Contains(string(raw), "<h1>Chapter One</h1>") {
		t.Errorf("raw content missing expected markup: %s", raw)
	}

	text, err := chapters[0].TextContent()
	if err != nil {
		t.Fatalf("TextContent: %v", err)
	}
	if !strings.Contains(text, "It was a dark and stormy night.") {
		t.Errorf("text content = %q", text)
	}
	if strings.Contains(text, "<") {
		t.Errorf("text content still contains markup: %q", text)
	}
}

func TestChapter_BodyHTML_RewritesImagePaths(t *testing.T) {
	book := sampleBook(t)
	chapters := book.Chapters()

	body, err := chapters[1].BodyHTML()
	if err != nil {
		t.Fatalf("BodyHTML: %v", err)
	}
	if !strings.Contains(body, "OEBPS/images/cover.jpg") {
		t.Errorf("expected rewritten absolute image path, got %q", body)
	}
}

func TestChapter_RawContent_DetachedFromBook(t *testing.T) {
	var ch Chapter
	if _, err := ch.RawContent(); err != ErrInvalidChapter {
		t.Errorf("err = %v, want ErrInvalidChapter", err)
	}
}

func TestIsGutenbergLicense(t *testing.T) {
	cases := []struct {
		name string
		html string
		want bool
	}{
		{
			name: "explicit license marker",
			html: "<html><body><p>START OF THE PROJECT GUTENBERG LICENSE</p></body></html>",
			want: true,
		},
		{
			name: "combo marker",
			html: "<html><body><p>This is the full license for Project Gutenberg works.</p></body></html>",
			want: true,
		},
		{
			name: "ordinary chapter text",
			html: "<html><body><h1>Chapter One</h1><p>It was a dark and stormy night.</p></body></html>",
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isGutenbergLicense([]byte(tc.html)); got != tc.want {
				t.Errorf("isGutenbergLicense(%s) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestContentChapters_ExcludesGutenbergLicense(t *testing.T) {
	files := sampleEPubFiles()
	files["OEBPS/chapter2.xhtml"] = `<html><body><p>START OF THE PROJECT GUTENBERG LICENSE</p></body></html>`
	book, err := readBook(newZipReader(t, files))
	if err != nil {
		t.Fatalf("readBook: %v", err)
	}

	all := book.Chapters()
	if len(all) != 2 {
		t.Fatalf("Chapters = %d, want 2", len(all))
	}

	content := book.ContentChapters()
	if len(content) != 1 {
		t.Fatalf("ContentChapters = %d, want 1 after excluding license page", len(content))
	}
	if content[0].Title != "Chapter One" {
		t.Errorf("ContentChapters[0] = %+v", content[0])
	}
}

func TestContentChapters_NoLicensePages(t *testing.T) {
	book := sampleBook(t)
	content := book.ContentChapters()
	if len(content) != 2 {
		t.Fatalf("ContentChapters = %d, want 2 when no license pages present", len(content))
	}
}
