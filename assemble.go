package epub

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// AssembleBook reads the opinionated Markdown directory layout produced by
// ExtractBook (metadata.yml, SUMMARY.md, chapters/, styles/, assets/) and
// builds an in-memory Book from it (§4.4, inverse direction). The result
// can be passed directly to WriteBook.
func AssembleBook(dir string, opts ...Option) (*Book, error) {
	o := resolveOptions(opts...)

	metaPath := filepath.Join(dir, "metadata.yml")
	metaBytes, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", metaPath)
	}
	var metaYAML bookMetadataYAML
	if err := yaml.Unmarshal(metaBytes, &metaYAML); err != nil {
		return nil, errors.Wrapf(ErrXMLParse, "parsing metadata.yml: %v", err)
	}
	metadata := yamlToMetadata(metaYAML)

	summaryPath := filepath.Join(dir, "SUMMARY.md")
	summaryBytes, err := os.ReadFile(summaryPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", summaryPath)
	}
	chapterOrder, toc := parseSummary(string(summaryBytes))

	book := &Book{
		Metadata:  metadata,
		Resources: make(map[string][]byte),
		OPFDir:    defaultOPFDir,
		Version:   "3",
	}

	stylesheetHref, err := assembleStyles(dir, book)
	if err != nil {
		return nil, err
	}

	chaptersDir := filepath.Join(dir, "chapters")
	for index, chapterFile := range chapterOrder {
		chapterPath := filepath.Join(chaptersDir, chapterFile)
		data, err := os.ReadFile(chapterPath)
		if err != nil {
			return nil, errors.Wrapf(err, "reading chapter %s", chapterPath)
		}

		body := stripFrontmatter(string(data))
		title := extractMarkdownTitle(body, chapterFile)
		xhtml := markdownToXHTML(body, title, stylesheetHref)

		xhtmlName := strings.TrimSuffix(chapterFile, ".md") + ".xhtml"
		itemID := fmt.Sprintf("chapter-%02d", index)

		book.Resources[book.resolveOPFPath(xhtmlName)] = []byte(xhtml)
		book.Manifest = append(book.Manifest, ManifestItem{
			ID:        itemID,
			Href:      xhtmlName,
			MediaType: "application/xhtml+xml",
		})
		book.Spine = append(book.Spine, SpineItem{IDRef: itemID, Linear: true})
	}

	book.Navigation.TOC = rebaseNavTargets(toc, chapterOrder)

	assetsDir := filepath.Join(dir, "assets")
	if info, err := os.Stat(assetsDir); err == nil && info.IsDir() {
		if err := assembleAssetsRecursive(assetsDir, "assets", book); err != nil {
			return nil, err
		}
	}

	if len(book.Metadata.Identifiers) == 0 {
		book.Metadata.Identifiers = []Identifier{{Value: "urn:uuid:" + uuid.NewString(), ID: "bookid"}}
	}
	if len(book.Metadata.Languages) == 0 {
		book.Metadata.Languages = []string{"en"}
	}
	book.Metadata.Modified = formatISO8601()

	o.log.Debug("assembled book", zap.Int("chapters", len(book.Spine)))

	return book, nil
}

// assembleStyles registers every .css file under dir/styles as a manifest
// item and returns the href of the first one found, for use as the shared
// stylesheet link in converted chapters.
func assembleStyles(dir string, book *Book) (string, error) {
	stylesDir := filepath.Join(dir, "styles")
	info, err := os.Stat(stylesDir)
	if err != nil || !info.IsDir() {
		return "", nil
	}

	entries, err := os.ReadDir(stylesDir)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", stylesDir)
	}

	stylesheetHref := ""
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".css") {
			continue
		}
		href := "styles/" + entry.Name()
		data, err := os.ReadFile(filepath.Join(stylesDir, entry.Name()))
		if err != nil {
			return "", errors.Wrapf(err, "reading %s", entry.Name())
		}
		book.Resources[book.resolveOPFPath(href)] = data
		book.Manifest = append(book.Manifest, ManifestItem{
			ID:        "style-" + slug.Make(entry.Name()),
			Href:      href,
			MediaType: "text/css",
		})
		if stylesheetHref == "" {
			stylesheetHref = href
		}
	}

	return stylesheetHref, nil
}

// assembleAssetsRecursive walks dir (assets/images, assets/fonts, or any
// other subtree under assets/) registering every file as a manifest item
// with a container path of "<prefix>/<relative path>".
func assembleAssetsRecursive(dir, prefix string, book *Book) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "reading %s", dir)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := assembleAssetsRecursive(path, prefix+"/"+entry.Name(), book); err != nil {
				return err
			}
			continue
		}

		href := prefix + "/" + entry.Name()
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}

		book.Resources[book.resolveOPFPath(href)] = data
		book.Manifest = append(book.Manifest, ManifestItem{
			ID:        "asset-" + slug.Make(href),
			Href:      href,
			MediaType: inferMediaType(entry.Name(), data),
		})
	}

	return nil
}

// inferMediaType guesses a manifest item's media type from its file
// extension, falling back to content sniffing via h2non/filetype when the
// extension is unrecognized.
func inferMediaType(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".ttf":
		return "font/ttf"
	case ".otf":
		return "font/otf"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".mp3":
		return "audio/mpeg"
	case ".mp4":
		return "video/mp4"
	case ".xhtml", ".html":
		return "application/xhtml+xml"
	}

	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return "application/octet-stream"
}

func extractMarkdownTitle(md, filename string) string {
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if heading, ok := strings.CutPrefix(trimmed, "# "); ok {
			return strings.TrimSpace(heading)
		}
	}
	stem := strings.TrimSuffix(filename, ".md")
	return strings.TrimSpace(strings.ReplaceAll(stem, "-", " "))
}

// rebaseNavTargets rewrites toc link targets (originally "chapters/file.md")
// to the corresponding in-container XHTML href, so the assembled book's
// navigation document points at real manifest items.
func rebaseNavTargets(toc []NavPoint, chapterOrder []string) []NavPoint {
	xhtmlByMD := make(map[string]string, len(chapterOrder))
	for _, mdFile := range chapterOrder {
		xhtmlByMD[mdFile] = strings.TrimSuffix(mdFile, ".md") + ".xhtml"
	}

	out := make([]NavPoint, len(toc))
	for i, point := range toc {
		out[i] = point
		target := strings.TrimPrefix(point.Target, "chapters/")
		frag := ""
		if idx := strings.Index(target, "#"); idx >= 0 {
			frag = target[idx:]
			target = target[:idx]
		}
		if xhtml, ok := xhtmlByMD[target]; ok {
			out[i].Target = xhtml + frag
		}
		out[i].Children = rebaseNavTargets(point.Children, chapterOrder)
	}
	return out
}
