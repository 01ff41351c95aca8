package epub

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
)

// BookGenre is a coarse heuristic classification of a book's structure,
// surfaced via the metadata.yml epx block. It does not change how a book is
// extracted, and no goepub subcommand prints it.
type BookGenre int

const (
	GenreFiction BookGenre = iota
	GenreTechnical
	GenreReference
	GenreIllustrated
	GenreMinimal
)

func (g BookGenre) String() string {
	switch g {
	case GenreTechnical:
		return "Technical"
	case GenreReference:
		return "Reference"
	case GenreIllustrated:
		return "Illustrated"
	case GenreMinimal:
		return "Minimal"
	default:
		return "Fiction"
	}
}

// Profile is a structural summary of a Book's content, computed by
// scanning spine XHTML for images, cross-references, and SVG covers.
type Profile struct {
	Genre               BookGenre
	SpineCount          int
	ImageCount          int
	CrossReferenceCount int
	HasImageGallery     bool
	HasSVGCover         bool
	EmptyAltCount       int
	CoverWidth          int
	CoverHeight         int
}

var (
	profileHrefFragRe = regexp.MustCompile(`href="[^"]*#[^"]+"`)
	profileImgRe      = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	profileSVGImageRe = regexp.MustCompile(`(?is)<svg\b[^>]*>.*?<image\b[^>]*>.*?</svg>`)
	profileEmptyAltRe = regexp.MustCompile(`(?i)<img\b[^>]*\balt\s*=\s*""[^>]*>`)
	profileHasAltRe   = regexp.MustCompile(`(?i)\balt\s*=`)
)

// AnalyzeBook scans book's spine documents and produces a structural
// Profile. If the book's cover image can be decoded, CoverWidth/CoverHeight
// are populated from its pixel dimensions; decoding failures are silent
// since the probe is informational only.
func AnalyzeBook(book *Book) Profile {
	var (
		imageCount      int
		crossRefs       int
		hasSVGCover     bool
		emptyAltCount   int
		galleryChapters int
	)

	for _, si := range book.Spine {
		mi := book.manifestByID(si.IDRef)
		if mi == nil {
			continue
		}
		if !strings.Contains(mi.MediaType, "html") && !strings.Contains(mi.MediaType, "xml") {
			continue
		}

		data, ok := book.Resources[book.resolveOPFPath(mi.Href)]
		if !ok {
			continue
		}
		xhtml := string(data)

		imgMatches := profileImgRe.FindAllString(xhtml, -1)
		chapterImages := len(imgMatches)
		imageCount += chapterImages
		crossRefs += len(profileHrefFragRe.FindAllString(xhtml, -1))
		emptyAltCount += len(profileEmptyAltRe.FindAllString(xhtml, -1))
		for _, m := range imgMatches {
			if !profileHasAltRe.MatchString(m) {
				emptyAltCount++
			}
		}

		if profileSVGImageRe.MatchString(xhtml) {
			hasSVGCover = true
		}

		textLen := len(xhtml) - chapterImages*200
		if textLen < 0 {
			textLen = 0
		}
		if chapterImages > 5 && chapterImages*100 > textLen {
			galleryChapters++
		}
	}

	p := Profile{
		SpineCount:          len(book.Spine),
		ImageCount:          imageCount,
		CrossReferenceCount: crossRefs,
		HasImageGallery:     galleryChapters > 0,
		HasSVGCover:         hasSVGCover,
		EmptyAltCount:       emptyAltCount,
	}
	p.Genre = classifyGenre(p.SpineCount, p.ImageCount, p.CrossReferenceCount)

	if cover, err := book.Cover(); err == nil {
		if img, decodeErr := imaging.Decode(bytes.NewReader(cover.Data)); decodeErr == nil {
			bounds := img.Bounds()
			p.CoverWidth = bounds.Dx()
			p.CoverHeight = bounds.Dy()
		}
	}

	return p
}

func classifyGenre(spineCount, imageCount, crossRefs int) BookGenre {
	switch {
	case imageCount > 100 && crossRefs > 500:
		return GenreTechnical
	case spineCount > 100:
		return GenreReference
	case imageCount > 10 && crossRefs < 10:
		return GenreIllustrated
	case spineCount < 15 && imageCount < 5:
		return GenreMinimal
	default:
		return GenreFiction
	}
}

// Summary renders a short human-readable description of the profile. No
// goepub subcommand prints it.
func (p Profile) Summary() string {
	return fmt.Sprintf("%s: %d chapters, %d images, %d cross-references", p.Genre, p.SpineCount, p.ImageCount, p.CrossReferenceCount)
}
