package epub

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadBook_BasicFields(t *testing.T) {
	book := sampleBook(t)

	if book.Version != "3" {
		t.Errorf("Version = %q, want 3", book.Version)
	}
	if len(book.Metadata.Titles) != 1 || book.Metadata.Titles[0] != "The Sample Book" {
		t.Errorf("Titles = %v", book.Metadata.Titles)
	}
	if len(book.Spine) != 2 {
		t.Fatalf("Spine = %d, want 2", len(book.Spine))
	}
	if len(book.Manifest) != 5 {
		t.Fatalf("Manifest = %d, want 5", len(book.Manifest))
	}
	if !book.HasTOC() {
		t.Error("expected HasTOC true")
	}
}

func TestReadBook_ExcludesDerivedEntriesFromResources(t *testing.T) {
	book := sampleBook(t)

	for _, excluded := range []string{"OEBPS/content.opf", "mimetype", "META-INF/container.xml", "OEBPS/nav.xhtml"} {
		if _, ok := book.Resources[excluded]; ok {
			t.Errorf("Resources should not retain derived entry %q", excluded)
		}
	}
	if _, ok := book.Resources["OEBPS/chapter1.xhtml"]; !ok {
		t.Error("expected chapter1.xhtml preserved as a resource")
	}
	if _, ok := book.Resources["OEBPS/images/cover.jpg"]; !ok {
		t.Error("expected cover image preserved as a resource")
	}
}

func TestReadBook_MissingOPFFails(t *testing.T) {
	zr := newZipReader(t, map[string]string{
		"mimetype": expectedMimetype,
	})
	_, err := readBook(zr)
	if err == nil {
		t.Fatal("expected error when no OPF can be located")
	}
}

func TestReadBook_EmptySpineFails(t *testing.T) {
	files := sampleEPubFiles()
	files["OEBPS/content.opf"] = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="uid">urn:uuid:sample</dc:identifier>
    <dc:title>Empty Spine Book</dc:title>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
  </manifest>
  <spine></spine>
</package>`
	_, err := readBook(newZipReader(t, files))
	if !errors.Is(err, ErrInvalidEPub) {
		t.Fatalf("err = %v, want ErrInvalidEPub", err)
	}
}

func TestReadBook_SpineReferencesUnknownManifestItemFails(t *testing.T) {
	files := sampleEPubFiles()
	files["OEBPS/content.opf"] = strings.Replace(sampleOPF, `<itemref idref="c1"/>`, `<itemref idref="ghost"/>`, 1)
	_, err := readBook(newZipReader(t, files))
	if !errors.Is(err, ErrInvalidEPub) {
		t.Fatalf("err = %v, want ErrInvalidEPub", err)
	}
}

func TestValidateMimetype_Warnings(t *testing.T) {
	files := sampleEPubFiles()
	delete(files, "mimetype")
	book, err := readBook(newZipReader(t, files))
	if err != nil {
		t.Fatalf("readBook: %v", err)
	}
	found := false
	for _, w := range book.Warnings {
		if strings.Contains(w, "mimetype") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a mimetype warning, got %v", book.Warnings)
	}
}

func TestReadBook_FromFile(t *testing.T) {
	path := writeEPubFile(t, sampleEPubFiles())
	book, err := ReadBook(path)
	if err != nil {
		t.Fatalf("ReadBook: %v", err)
	}
	if len(book.Metadata.Titles) != 1 || book.Metadata.Titles[0] != "The Sample Book" {
		t.Errorf("Titles = %v", book.Metadata.Titles)
	}
}

func TestReadBook_NonexistentFile(t *testing.T) {
	_, err := ReadBook(filepath.Join(t.TempDir(), "missing.epub"))
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestReadBookFrom_ReaderAt(t *testing.T) {
	path := writeEPubFile(t, sampleEPubFiles())
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	book, err := ReadBookFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ReadBookFrom: %v", err)
	}
	if len(book.Spine) != 2 {
		t.Errorf("Spine = %d, want 2", len(book.Spine))
	}
}

func TestValidate_ValidBookHasNoErrors(t *testing.T) {
	book := sampleBook(t)
	if errs := book.Validate(); len(errs) != 0 {
		t.Errorf("Validate = %v, want none", errs)
	}
}

func TestValidate_ReportsMissingMetadataAndSpine(t *testing.T) {
	book := &Book{}
	errs := book.Validate()
	want := map[string]bool{
		"metadata has no title":      false,
		"metadata has no language":   false,
		"metadata has no identifier": false,
		"spine is empty":             false,
	}
	for _, e := range errs {
		if _, ok := want[e]; ok {
			want[e] = true
		}
	}
	for msg, seen := range want {
		if !seen {
			t.Errorf("expected Validate to report %q, got %v", msg, errs)
		}
	}
}

func TestValidate_DetectsDuplicateNavItems(t *testing.T) {
	book := sampleBook(t)
	book.Manifest = append(book.Manifest, ManifestItem{ID: "toc2", Href: "toc2.xhtml", MediaType: "application/xhtml+xml", Properties: "nav"})
	errs := book.Validate()
	found := false
	for _, e := range errs {
		if strings.Contains(e, "nav property") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate nav property error, got %v", errs)
	}
}

func TestWriteBook_RejectsInvalidBook(t *testing.T) {
	err := WriteBook(&Book{}, filepath.Join(t.TempDir(), "out.epub"))
	if err == nil {
		t.Fatal("expected WriteBook to reject an invalid book")
	}
}

func TestWriteBook_RoundTrip(t *testing.T) {
	book := sampleBook(t)
	outPath := filepath.Join(t.TempDir(), "out.epub")

	if err := WriteBook(book, outPath); err != nil {
		t.Fatalf("WriteBook: %v", err)
	}

	roundTripped, err := ReadBook(outPath)
	if err != nil {
		t.Fatalf("ReadBook(written): %v", err)
	}
	if len(roundTripped.Metadata.Titles) != 1 || roundTripped.Metadata.Titles[0] != "The Sample Book" {
		t.Errorf("round-tripped Titles = %v", roundTripped.Metadata.Titles)
	}
	if len(roundTripped.Spine) != 2 {
		t.Errorf("round-tripped Spine = %d, want 2", len(roundTripped.Spine))
	}
	if !roundTripped.HasTOC() || len(roundTripped.Navigation.TOC) != 2 {
		t.Errorf("round-tripped Navigation.TOC = %+v", roundTripped.Navigation.TOC)
	}
	chapters := roundTripped.Chapters()
	if len(chapters) != 2 {
		t.Fatalf("round-tripped Chapters = %d, want 2", len(chapters))
	}
	text, err := chapters[0].TextContent()
	if err != nil {
		t.Fatalf("TextContent: %v", err)
	}
	if !strings.Contains(text, "stormy night") {
		t.Errorf("round-tripped chapter text = %q", text)
	}
}

func TestWriteBook_IsAtomic(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.epub")
	if err := os.WriteFile(outPath, []byte("preexisting"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	err := WriteBook(&Book{}, outPath)
	if err == nil {
		t.Fatal("expected error for invalid book")
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read outPath: %v", err)
	}
	if string(data) != "preexisting" {
		t.Errorf("existing file was clobbered despite a failed write: %q", data)
	}
	if _, err := os.Stat(outPath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected temp file cleaned up, stat err = %v", err)
	}
}
