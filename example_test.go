package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// newZipReaderForExample builds the sample fixture archive without a
// *testing.T, since Example functions can't take one.
func newZipReaderForExample() *zip.Reader {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range sampleEPubFiles() {
		fw, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	data := buf.Bytes()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		panic(err)
	}
	return r
}

func ExampleReadBookFrom() {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range sampleEPubFiles() {
		fw, _ := zw.Create(name)
		io.WriteString(fw, content)
	}
	zw.Close()

	book, err := ReadBookFrom(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(book.Metadata.Titles[0])
	// Output: The Sample Book
}

func ExampleBook_Chapters() {
	book, err := readBook(newZipReaderForExample())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, ch := range book.Chapters() {
		fmt.Println(ch.Title, "->", ch.Href)
	}
	// Output:
	// Chapter One -> OEBPS/chapter1.xhtml
	// Chapter Two -> OEBPS/chapter2.xhtml
}

func ExampleBook_Cover() {
	book, err := readBook(newZipReaderForExample())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	cover, err := book.Cover()
	if err != nil {
		fmt.Println("no cover found")
		return
	}
	fmt.Printf("%s (%s, %d bytes)\n", cover.Path, cover.MediaType, len(cover.Data))
	// Output: OEBPS/images/cover.jpg (image/jpeg, 16 bytes)
}

func ExampleBook_Validate() {
	book, err := readBook(newZipReaderForExample())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if errs := book.Validate(); len(errs) == 0 {
		fmt.Println("valid")
	}
	// Output: valid
}
