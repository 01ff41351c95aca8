package epub

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const chaptersDirName = "chapters"

// ExtractBook writes book's content to outputDir in the opinionated
// directory layout of §4.4: chapters/ holding one Markdown file per spine
// document, assets/images, assets/fonts, styles/ holding extracted
// resources, metadata.yml, and SUMMARY.md describing the navigation tree.
//
// Chapter filenames are assigned in a first pass so that the path map used
// to rewrite inter-chapter anchors and asset references is complete before
// any chapter is converted. Collisions are disambiguated with a "-2", "-3",
// ... suffix.
func ExtractBook(book *Book, outputDir string, opts ...Option) error {
	o := resolveOptions(opts...)

	chaptersDir := filepath.Join(outputDir, chaptersDirName)
	if err := os.MkdirAll(chaptersDir, 0o755); err != nil {
		return errors.Wrap(err, "creating chapters directory")
	}

	type spineDoc struct {
		index int
		item  *ManifestItem
	}
	var docs []spineDoc
	for i, si := range book.Spine {
		mi := book.manifestByID(si.IDRef)
		if mi == nil || !isHTMLLike(mi.MediaType) {
			continue
		}
		docs = append(docs, spineDoc{index: i, item: mi})
	}

	used := make(map[string]bool, len(docs))
	chapterHrefs := make([]string, len(docs))
	chapterFiles := make([]string, len(docs))
	for i, d := range docs {
		name := chapterFilename(d.index, book.Navigation.TOC, d.item.Href)
		chapterHrefs[i] = d.item.Href
		chapterFiles[i] = disambiguateFilename(name, used)
	}

	chapterFileByHref := make(map[string]string, len(docs))
	for i, href := range chapterHrefs {
		chapterFileByHref[href] = chapterFiles[i]
	}

	referencedIDs := collectReferencedIDs(book)
	pathMap := buildPathMap(book, chapterFileByHref)

	chapterContents := make(map[string]string, len(docs))
	for i, d := range docs {
		data, ok := book.Resources[book.resolveOPFPath(d.item.Href)]
		if !ok {
			o.log.Warn("chapter content missing", zap.String("href", d.item.Href))
			continue
		}

		md := xhtmlToMarkdown(string(data), pathMap, referencedIDs)

		fm := chapterFrontmatter{
			OriginalFile: d.item.Href,
			OriginalID:   d.item.ID,
			SpineIndex:   d.index,
		}
		header, err := fm.toYAMLHeader()
		if err != nil {
			return errors.Wrapf(err, "building frontmatter for %s", d.item.Href)
		}

		content := header + md
		chapterContents[chapterFiles[i]] = content

		path := filepath.Join(chaptersDir, chapterFiles[i])
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}

	profile := AnalyzeBook(book)
	meta := metadataToYAML(book.Metadata, book.Version)
	meta.Custom = mergeProfileIntoCustom(meta.Custom, profile)
	yamlBytes, err := yaml.Marshal(meta)
	if err != nil {
		return errors.Wrap(err, "marshaling metadata.yml")
	}
	if err := os.WriteFile(filepath.Join(outputDir, "metadata.yml"), yamlBytes, 0o644); err != nil {
		return errors.Wrap(err, "writing metadata.yml")
	}

	summaryContent := generateSummary(book.Navigation.TOC, chapterFiles, chapterHrefs)
	if err := os.WriteFile(filepath.Join(outputDir, "SUMMARY.md"), []byte(summaryContent), 0o644); err != nil {
		return errors.Wrap(err, "writing SUMMARY.md")
	}

	if err := extractAssets(book, outputDir); err != nil {
		return errors.Wrap(err, "extracting assets")
	}

	report := validateExtractionLinks(outputDir, chapterContents, func(relPath string) bool {
		_, err := os.Stat(filepath.Join(chaptersDir, relPath))
		return err == nil
	})
	for _, w := range report.BrokenLinks {
		o.log.Warn("extraction link warning", zap.String("link", w))
	}

	return nil
}

// ExtractChapter converts a single spine document (looked up by its
// manifest id, or by spine index when idOrIndex parses as an integer) to
// Markdown and returns it, without writing to disk.
func ExtractChapter(book *Book, idOrIndex string) (string, error) {
	item, _, err := findChapter(book, idOrIndex)
	if err != nil {
		return "", err
	}

	data, ok := book.Resources[book.resolveOPFPath(item.Href)]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "chapter content not found: %s", item.Href)
	}

	pathMap := buildPathMap(book, nil)
	return xhtmlToMarkdown(string(data), pathMap, nil), nil
}

func findChapter(book *Book, idOrIndex string) (*ManifestItem, int, error) {
	if n, err := strconv.Atoi(idOrIndex); err == nil {
		if n >= 0 && n < len(book.Spine) {
			if item := book.manifestByID(book.Spine[n].IDRef); item != nil {
				return item, n, nil
			}
		}
	}

	for i, si := range book.Spine {
		if si.IDRef == idOrIndex {
			if item := book.manifestByID(si.IDRef); item != nil {
				return item, i, nil
			}
		}
	}

	return nil, 0, errors.Wrapf(ErrNotFound, "chapter not found: %s", idOrIndex)
}

func isHTMLLike(mediaType string) bool {
	return containsFold(mediaType, "html") || containsFold(mediaType, "xml")
}

func mergeProfileIntoCustom(custom map[string]string, p Profile) map[string]string {
	if custom == nil {
		custom = make(map[string]string)
	}
	custom["profile_genre"] = p.Genre.String()
	custom["profile_spine_count"] = fmt.Sprintf("%d", p.SpineCount)
	custom["profile_image_count"] = fmt.Sprintf("%d", p.ImageCount)
	return custom
}
