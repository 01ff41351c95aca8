package epub

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func TestFindFileInsensitive(t *testing.T) {
	zr := newZipReader(t, map[string]string{
		"OEBPS/Chapter1.xhtml": "hi",
	})

	if f := findFileInsensitive(zr, "OEBPS/Chapter1.xhtml"); f == nil {
		t.Error("exact match not found")
	}
	if f := findFileInsensitive(zr, "oebps/chapter1.xhtml"); f == nil {
		t.Error("case-insensitive match not found")
	}
	if f := findFileInsensitive(zr, "does/not/exist"); f != nil {
		t.Error("expected nil for missing entry")
	}
}

func TestResolveRelativePath(t *testing.T) {
	cases := []struct {
		base, href, want string
	}{
		{"OEBPS/chapter1.xhtml", "images/fig1.png", "OEBPS/images/fig1.png"},
		{"OEBPS/sub/chapter1.xhtml", "../images/fig1.png", "OEBPS/images/fig1.png"},
		{"OEBPS/chapter1.xhtml", "/etc/passwd", ""},
		{"OEBPS/chapter1.xhtml", "../../../etc/passwd", ""},
		{"OEBPS/chapter1.xhtml", "fig%201.png", "OEBPS/fig 1.png"},
	}
	for _, c := range cases {
		got := resolveRelativePath(c.base, c.href)
		if got != c.want {
			t.Errorf("resolveRelativePath(%q, %q) = %q, want %q", c.base, c.href, got, c.want)
		}
	}
}

func TestIsSafePath(t *testing.T) {
	if !isSafePath("OEBPS/chapter1.xhtml") {
		t.Error("expected normal path to be safe")
	}
	if isSafePath("/etc/passwd") {
		t.Error("expected absolute path to be unsafe")
	}
	if isSafePath("../escape") {
		t.Error("expected parent-escaping path to be unsafe")
	}
	if isSafePath("..") {
		t.Error("expected bare .. to be unsafe")
	}
}

func TestStripBOM(t *testing.T) {
	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<xml/>")...)
	if got := string(stripBOM(withBOM)); got != "<xml/>" {
		t.Errorf("stripBOM = %q, want <xml/>", got)
	}
	noBOM := []byte("<xml/>")
	if got := stripBOM(noBOM); string(got) != "<xml/>" {
		t.Errorf("stripBOM without BOM mutated input: %q", got)
	}
}

func TestReadZipFileWithLimit_RejectsOversizedEntry(t *testing.T) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	fw, err := zw.Create("big.txt")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fw.Write([]byte(strings.Repeat("a", 1000))); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data := buf.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = readZipFileWithLimit(zr.File[0], 100)
	if err == nil {
		t.Fatal("expected error for entry exceeding limit")
	}
}

func TestReadZipFileWithLimit_UnsafePathRejected(t *testing.T) {
	f := &zip.File{FileHeader: zip.FileHeader{Name: "../escape.txt"}}
	_, err := readZipFileWithLimit(f, maxDecompressSize)
	if err == nil {
		t.Fatal("expected error for unsafe entry path")
	}
}

func TestReadZipFile_RoundTrip(t *testing.T) {
	zr := newZipReader(t, map[string]string{"a.txt": "hello world"})
	data, err := readZipFile(zr.File[0])
	if err != nil {
		t.Fatalf("readZipFile: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("data = %q, want %q", data, "hello world")
	}
}
