package epub

import (
	"archive/zip"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// defaultOPFDir is the manifest directory used for books assembled from
// scratch or whose OPFDir was never set.
const defaultOPFDir = "OEBPS"

// WriteBook serializes b to filePath as a well-formed ePub 3 container. The
// OPF, navigation document, and NCX are regenerated from b.Metadata,
// b.Manifest, b.Spine, and b.Navigation; every other entry in b.Resources is
// copied verbatim. The write is atomic: content is staged in a temporary
// sibling file and renamed into place only once it has been fully written,
// so a crash or error midway never leaves filePath truncated.
func WriteBook(b *Book, filePath string, opts ...Option) error {
	o := resolveOptions(opts...)

	if errs := b.Validate(); len(errs) > 0 {
		return errors.Errorf("epub: cannot write invalid book: %v", errs)
	}

	opfDir := b.OPFDir
	if opfDir == "" {
		opfDir = defaultOPFDir
	}

	tmpPath := filePath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "epub: create temp file %s", tmpPath)
	}

	if err := writeZip(f, b, opfDir, o.log); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "epub: close temp file")
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "epub: rename %s to %s", tmpPath, filePath)
	}

	o.log.Debug("wrote epub", zap.String("path", filePath), zap.Int("resources", len(b.Resources)))
	return nil
}

func writeZip(f *os.File, b *Book, opfDir string, log *zap.Logger) error {
	zw := zip.NewWriter(f)

	stored := &zip.FileHeader{Name: "mimetype", Method: zip.Store}
	w, err := zw.CreateHeader(stored)
	if err != nil {
		return errors.Wrap(err, "epub: create mimetype entry")
	}
	if _, err := w.Write([]byte(expectedMimetype)); err != nil {
		return errors.Wrap(err, "epub: write mimetype entry")
	}

	if err := writeDeflated(zw, "META-INF/container.xml", []byte(containerXMLDoc(opfDir))); err != nil {
		return err
	}

	opf := generateOPF(b)
	if err := writeDeflated(zw, opfDir+"/content.opf", []byte(opf)); err != nil {
		return err
	}

	navXHTML := generateNavXHTML(b.Navigation.TOC, b.Navigation.Landmarks, b.Navigation.PageList, b.Metadata.Titles)
	if err := writeDeflated(zw, opfDir+"/toc.xhtml", []byte(navXHTML)); err != nil {
		return err
	}

	ncx := generateNCX(b.Navigation.TOC, b.Metadata.Titles, b.Metadata.Identifiers)
	if err := writeDeflated(zw, opfDir+"/toc.ncx", []byte(ncx)); err != nil {
		return err
	}

	written := 0
	for resourcePath, data := range b.Resources {
		zipPath := rebaseResourcePath(resourcePath, opfDir)
		if err := writeDeflated(zw, zipPath, data); err != nil {
			return err
		}
		written++
	}
	log.Debug("wrote resources", zap.Int("count", written))

	return errors.Wrap(zw.Close(), "epub: finalize zip")
}

func writeDeflated(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return errors.Wrapf(err, "epub: create entry %s", name)
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrapf(err, "epub: write entry %s", name)
	}
	return nil
}

// rebaseResourcePath ensures resourcePath lands under opfDir (or META-INF/)
// in the written archive, leaving already-rooted paths untouched.
func rebaseResourcePath(resourcePath, opfDir string) string {
	if strings.HasPrefix(resourcePath, opfDir+"/") || strings.HasPrefix(resourcePath, "META-INF/") {
		return resourcePath
	}
	return path.Join(opfDir, resourcePath)
}

func containerXMLDoc(opfDir string) string {
	return fmt.Sprintf(containerXMLTemplate, opfDir)
}
