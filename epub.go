package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// expectedMimetype is the required content of the "mimetype" file in a valid ePub.
const expectedMimetype = "application/epub+zip"

// ReadBook opens an ePub file at the given path and parses it into a Book
// (C1+C2+C3+C4). The returned Book owns no open file handle; all resource
// bytes are read into memory up front (I6).
func ReadBook(filePath string) (*Book, error) {
	zrc, err := zip.OpenReader(filePath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: open %s: %v", ErrZipFormat, filePath, err)
		}
		return nil, errors.Wrapf(err, "epub: open %s", filePath)
	}
	defer zrc.Close()

	b, err := readBook(&zrc.Reader)
	if err != nil {
		return nil, errors.Wrapf(err, "epub: read %s", filePath)
	}
	return b, nil
}

// ReadBookFrom parses a Book from an io.ReaderAt with the given size.
func ReadBookFrom(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: open zip: %v", ErrZipFormat, err)
		}
		return nil, errors.Wrap(err, "epub: open zip")
	}
	return readBook(zr)
}

// readBook performs the full C1→C2→C3→C4 pipeline.
func readBook(zr *zip.Reader) (*Book, error) {
	b := &Book{Resources: make(map[string][]byte)}

	zipExact, zipLower := buildZipIndex(zr)
	findFile := func(name string) *zip.File {
		if f, ok := zipExact[name]; ok {
			return f
		}
		if f, ok := zipLower[strings.ToLower(name)]; ok {
			return f
		}
		return nil
	}

	validateMimetype(zr, &b.Warnings)

	opfPath, err := locateOPF(zr)
	if err != nil {
		return nil, err
	}
	opfDir := path.Dir(opfPath)
	if opfDir == "." {
		opfDir = ""
	}
	b.OPFDir = opfDir

	fontObfuscation, err := checkDRM(zr)
	if err != nil {
		return nil, err
	}
	if fontObfuscation {
		b.Warnings = append(b.Warnings, "font obfuscation detected; obfuscated fonts may not render correctly")
	}

	opfFile := findFile(opfPath)
	if opfFile == nil {
		return nil, fmt.Errorf("%w: OPF file not found in archive: %s", ErrInvalidEPub, opfPath)
	}
	opfData, err := readZipFile(opfFile)
	if err != nil {
		return nil, errors.Wrap(err, "epub: read OPF file")
	}

	pkg, err := parseOPF(opfData)
	if err != nil {
		return nil, err
	}

	b.Version = normalizeVersion(pkg.Version)
	b.Manifest = buildManifest(pkg.Manifest)
	b.Spine = buildSpine(pkg.Spine)
	b.Guide = buildGuide(pkg.Guide)
	b.Metadata = extractMetadata(pkg)
	b.ncxID = pkg.Spine.Toc

	if len(b.Spine) == 0 {
		return nil, fmt.Errorf("%w: spine is empty", ErrInvalidEPub)
	}
	for _, si := range b.Spine {
		if b.manifestByID(si.IDRef) == nil {
			return nil, fmt.Errorf("%w: spine idref %q does not resolve to a manifest item", ErrInvalidEPub, si.IDRef)
		}
	}

	// Identify the OPF, nav, and NCX entries so they're excluded from
	// Resources (I6): they are derived, not stored, on write. The nav and
	// NCX bytes are placed in Resources only while parseNavigation reads
	// them, and removed again afterwards.
	excluded := map[string]bool{
		opfPath:             true,
		"mimetype":          true,
		"META-INF/container.xml": true,
	}
	var navSources []string
	if nav := b.navItem(); nav != nil {
		excluded[b.resolveOPFPath(nav.Href)] = true
		navSources = append(navSources, b.resolveOPFPath(nav.Href))
	}
	if ncxItem := b.manifestByID(b.ncxID); ncxItem != nil {
		excluded[b.resolveOPFPath(ncxItem.Href)] = true
		navSources = append(navSources, b.resolveOPFPath(ncxItem.Href))
	}

	for _, f := range zr.File {
		if excluded[f.Name] {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, errors.Wrapf(err, "epub: read resource %s", f.Name)
		}
		b.Resources[f.Name] = data
	}

	for _, p := range navSources {
		if f := findFile(p); f != nil {
			if data, err := readZipFile(f); err == nil {
				b.Resources[p] = data
			}
		}
	}
	b.parseNavigation()
	for _, p := range navSources {
		delete(b.Resources, p)
	}

	return b, nil
}

// normalizeVersion maps an OPF version attribute ("2.0", "3.0", "3.1" ...)
// to the coarse "2"/"3" the Book model tracks (§3).
func normalizeVersion(v string) string {
	if strings.HasPrefix(v, "3") {
		return "3"
	}
	return "2"
}

func buildZipIndex(zr *zip.Reader) (exact, lower map[string]*zip.File) {
	exact = make(map[string]*zip.File, len(zr.File))
	lower = make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if _, exists := exact[f.Name]; !exists {
			exact[f.Name] = f
		}
		lf := strings.ToLower(f.Name)
		if _, exists := lower[lf]; !exists {
			lower[lf] = f
		}
	}
	return exact, lower
}

func validateMimetype(zr *zip.Reader, warnings *[]string) {
	if len(zr.File) == 0 {
		*warnings = append(*warnings, "empty ZIP archive; mimetype entry missing")
		return
	}

	first := zr.File[0]
	if first.Name != "mimetype" {
		*warnings = append(*warnings, "first ZIP entry is not \"mimetype\"")
		return
	}
	if first.Method != zip.Store {
		*warnings = append(*warnings, "mimetype entry is not stored uncompressed")
	}

	data, err := readZipFile(first)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("cannot read mimetype entry: %v", err))
		return
	}
	if string(data) != expectedMimetype {
		*warnings = append(*warnings, fmt.Sprintf("unexpected mimetype: %q", string(data)))
	}
}

// HasTOC reports whether the book has a non-empty table of contents.
func (b *Book) HasTOC() bool {
	return len(b.Navigation.TOC) > 0
}

// Chapters returns the chapters in spine order. Each Chapter is a lightweight
// handle; content is loaded lazily via RawContent/TextContent/BodyHTML.
// Title is derived from the TOC by matching Href (ignoring fragment). The
// result is cached after the first call.
func (b *Book) Chapters() []Chapter {
	if b.chapters != nil {
		return append([]Chapter(nil), b.chapters...)
	}

	tocTitleMap := buildTOCTitleMap(b.Navigation.TOC)

	chapters := make([]Chapter, 0, len(b.Spine))
	for _, si := range b.Spine {
		mi := b.manifestByID(si.IDRef)
		if mi == nil {
			continue
		}
		href := b.resolveOPFPath(mi.Href)
		chapters = append(chapters, Chapter{
			ID:     mi.ID,
			Href:   href,
			Title:  tocTitleMap[href],
			Linear: si.Linear,
			book:   b,
		})
	}

	b.chapters = chapters
	return append([]Chapter(nil), chapters...)
}

// ContentChapters returns the chapters in spine order, excluding any
// detected Project Gutenberg license pages.
func (b *Book) ContentChapters() []Chapter {
	b.detectLicenses()
	out := make([]Chapter, 0, len(b.chapters))
	for _, ch := range b.chapters {
		if !ch.IsLicense {
			out = append(out, ch)
		}
	}
	return out
}

func (b *Book) detectLicenses() {
	if b.licenseDetected {
		return
	}
	_ = b.Chapters()
	for i := range b.chapters {
		if raw, err := b.readFile(b.chapters[i].Href); err == nil {
			b.chapters[i].IsLicense = isGutenbergLicense(raw)
		}
	}
	b.licenseDetected = true
}

func buildTOCTitleMap(items []NavPoint) map[string]string {
	m := make(map[string]string)
	var flat []*NavPoint
	flattenNavPoints(&flat, items)
	for _, item := range flat {
		if item.Target == "" {
			continue
		}
		filePath := hrefWithoutFragment(item.Target)
		if _, exists := m[filePath]; !exists {
			m[filePath] = item.Label
		}
	}
	return m
}
