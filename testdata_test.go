package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// newZipReader builds an in-memory ZIP archive from files (path -> content)
// and returns a *zip.Reader over it. t.Fatal on any error.
func newZipReader(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range files {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("newZipReader: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("newZipReader: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("newZipReader: close writer: %v", err)
	}
	data := buf.Bytes()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("newZipReader: open reader: %v", err)
	}
	return r
}

// writeEPubFile writes files as a ZIP archive to a temp file and returns its
// path, with "mimetype" forced first and stored uncompressed as a real EPUB
// requires.
func writeEPubFile(t *testing.T, files map[string]string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	if mt, ok := files["mimetype"]; ok {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
		if err != nil {
			t.Fatalf("writeEPubFile: create mimetype: %v", err)
		}
		if _, err := io.WriteString(fw, mt); err != nil {
			t.Fatalf("writeEPubFile: write mimetype: %v", err)
		}
	}
	for name, content := range files {
		if name == "mimetype" {
			continue
		}
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("writeEPubFile: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("writeEPubFile: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("writeEPubFile: close writer: %v", err)
	}

	dir := t.TempDir()
	fp := filepath.Join(dir, "book.epub")
	if err := os.WriteFile(fp, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writeEPubFile: write file: %v", err)
	}
	return fp
}

// sampleContainerXML is a standard single-rootfile container.xml pointing at
// OEBPS/content.opf.
const sampleContainerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// sampleOPF is a minimal but complete EPUB 3 package document: two
// contributors, one identifier, a nav document, two XHTML chapters, and an
// embedded cover image.
const sampleOPF = `<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:title>The Sample Book</dc:title>
    <dc:creator id="cre1" opf:file-as="Doe, Jane" opf:role="aut">Jane Doe</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier id="bookid">urn:uuid:11111111-1111-1111-1111-111111111111</dc:identifier>
    <dc:publisher>Sample Press</dc:publisher>
    <meta property="dcterms:modified">2024-01-01T00:00:00Z</meta>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="c1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="chapter2.xhtml" media-type="application/xhtml+xml"/>
    <item id="cover-img" href="images/cover.jpg" media-type="image/jpeg" properties="cover-image"/>
    <item id="css" href="styles/main.css" media-type="text/css"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
    <itemref idref="c2"/>
  </spine>
</package>`

const sampleNavXHTML = `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<body>
  <nav epub:type="toc" id="toc">
    <ol>
      <li><a href="chapter1.xhtml">Chapter One</a></li>
      <li><a href="chapter2.xhtml">Chapter Two</a></li>
    </ol>
  </nav>
</body>
</html>`

const sampleChapter1 = `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body>
<h1>Chapter One</h1>
<p>It was a dark and <em>stormy</em> night.</p>
</body></html>`

const sampleChapter2 = `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body>
<h1>Chapter Two</h1>
<p>The rain continued, unabated.</p>
<img src="images/cover.jpg" alt="cover"/>
</body></html>`

// sampleEPubFiles returns the file map for a complete, readable minimal
// EPUB 3 fixture, reused across the package's tests.
func sampleEPubFiles() map[string]string {
	return map[string]string{
		"mimetype":                  expectedMimetype,
		"META-INF/container.xml":    sampleContainerXML,
		"OEBPS/content.opf":         sampleOPF,
		"OEBPS/nav.xhtml":           sampleNavXHTML,
		"OEBPS/chapter1.xhtml":      sampleChapter1,
		"OEBPS/chapter2.xhtml":      sampleChapter2,
		"OEBPS/styles/main.css":     "body { font-family: serif; }",
		"OEBPS/images/cover.jpg":    "\xff\xd8\xff\xe0fakejpegdata",
	}
}

// sampleBook reads the sampleEPubFiles fixture into a *Book.
func sampleBook(t *testing.T) *Book {
	t.Helper()
	zr := newZipReader(t, sampleEPubFiles())
	b, err := readBook(zr)
	if err != nil {
		t.Fatalf("sampleBook: readBook: %v", err)
	}
	return b
}
