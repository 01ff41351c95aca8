package epub

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// assetKind classifies a manifest item's media type into the broad buckets
// the extractor and asset manipulator both use.
type assetKind int

const (
	assetOther assetKind = iota
	assetImage
	assetCSS
	assetFont
	assetAudio
)

func classifyAsset(mediaType string) assetKind {
	mt := strings.ToLower(mediaType)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return assetImage
	case mt == "text/css":
		return assetCSS
	case strings.Contains(mt, "font") || mt == "application/vnd.ms-opentype":
		return assetFont
	case strings.HasPrefix(mt, "audio/"):
		return assetAudio
	default:
		return assetOther
	}
}

// buildPathMap maps container-relative (and OPF-relative) resource paths to
// the path they will occupy in the extracted directory tree, for image,
// CSS, and font manifest items and for chapter files. Both the OPF-relative href and
// the full container path are registered so the Markdown conversion step can
// match either form found in source XHTML.
func buildPathMap(b *Book, chapterFiles map[string]string) map[string]string {
	m := make(map[string]string, len(b.Manifest)+len(chapterFiles))

	for _, item := range b.Manifest {
		full := b.resolveOPFPath(item.Href)
		filename := path.Base(item.Href)

		switch classifyAsset(item.MediaType) {
		case assetImage:
			dest := "./assets/images/" + filename
			m[item.Href] = dest
			m[full] = dest
		case assetCSS:
			dest := "./styles/" + filename
			m[item.Href] = dest
			m[full] = dest
		case assetFont:
			dest := "./assets/fonts/" + filename
			m[item.Href] = dest
			m[full] = dest
		}
	}

	for href, mdFile := range chapterFiles {
		dest := "./" + mdFile
		m[href] = dest
		m[b.resolveOPFPath(href)] = dest
	}

	return m
}

// extractAssets writes every image, CSS, and font manifest item to its
// extracted-tree location under outputDir (assets/images, styles,
// assets/fonts).
func extractAssets(b *Book, outputDir string) error {
	imagesDir := filepath.Join(outputDir, "assets", "images")
	stylesDir := filepath.Join(outputDir, "styles")
	fontsDir := filepath.Join(outputDir, "assets", "fonts")

	for _, item := range b.Manifest {
		kind := classifyAsset(item.MediaType)
		if kind == assetOther || kind == assetAudio {
			continue
		}

		data, ok := b.Resources[b.resolveOPFPath(item.Href)]
		if !ok {
			continue
		}
		filename := path.Base(item.Href)

		var dir string
		switch kind {
		case assetImage:
			dir = imagesDir
		case assetCSS:
			dir = stylesDir
		case assetFont:
			dir = fontsDir
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
			return err
		}
	}

	return nil
}
