// Package epub provides a pure-Go library for reading, validating, editing,
// and writing ePub 2 and ePub 3 publications, plus extracting a book into a
// Markdown-based working tree and reassembling it back into an ePub.
//
// It parses metadata (Dublin Core), the manifest and spine, navigation (ePub 3
// nav document and/or ePub 2 NCX), and resource bytes into an in-memory [Book]
// that can be freely mutated and written back out. DRM-protected files are
// detected and rejected with [ErrDRMProtected].
//
// # Reading a Book
//
// Use [ReadBook] to read a file by path, or [ReadBookFrom] to read from an
// [io.ReaderAt]:
//
//	book, err := epub.ReadBook("book.epub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Metadata
//
// [Book.Metadata] holds titles, creators, contributors, language, identifiers
// (ISBN/UUID), publisher, date, description, subjects, and any unrecognized
// meta properties in Custom:
//
//	fmt.Println(book.Metadata.Titles[0])
//
// # Navigation
//
// [Book.Navigation] groups three trees of [NavPoint]: TOC, Landmarks, and
// PageList. Each entry carries a spine index range indicating which spine
// items it covers:
//
//	for _, item := range book.Navigation.TOC {
//	    fmt.Println(item.Label, item.Target)
//	}
//
// # Chapters
//
// Chapters are returned in spine order via [Book.Chapters]. Content is loaded
// lazily; call [Chapter.RawContent] for raw XHTML, [Chapter.TextContent] for
// plain text, or [Chapter.BodyHTML] for sanitised inner HTML with rewritten
// image paths:
//
//	for _, ch := range book.Chapters() {
//	    text, _ := ch.TextContent()
//	    fmt.Println(ch.Title, len(text))
//	}
//
// Use [Book.ContentChapters] to exclude detected Project Gutenberg license
// pages.
//
// # Cover Image
//
// [Book.Cover] tries several strategies in turn (ePub 3 cover-image property,
// ePub 2 meta name="cover", guide reference, manifest heuristic, first spine
// item) to locate the cover:
//
//	cover, err := book.Cover()
//	if err == nil {
//	    os.WriteFile("cover.jpg", cover.Data, 0644)
//	}
//
// # Validation and Writing
//
// [Book.Validate] checks the structural invariants a Book must satisfy before
// it can be written (non-empty spine, resolvable idrefs, at least one title/
// language/identifier). [WriteBook] serializes a Book back into a well-formed
// ePub 3 container, regenerating the OPF, nav document, and NCX from the
// current Metadata/Manifest/Spine/Navigation.
//
// # Extract and Assemble
//
// [ExtractBook] unpacks a Book into a directory of Markdown chapters, a
// metadata.yml front matter file, and a SUMMARY.md table of contents, suitable
// for editing with ordinary text tools. [AssembleBook] performs the inverse,
// reading such a directory back into a new in-memory Book, which [WriteBook]
// then writes out as an ePub file.
//
// # Manipulation
//
// The manipulation functions ([AddChapter], [ReorderSpine], [GenerateTOC],
// [Replace], [AddAsset], [SetMetadataField], and the rest) edit an in-memory
// Book; pair them with [ReadBook] and [WriteBook]. [ModifyMetadataField] is
// the one path-based entry point: it opens an ePub, sets or removes a single
// metadata field, and atomically rewrites the file in place through
// [WriteBook], which validates the Book first.
//
// # Error Handling
//
// The package defines sentinel errors for structural failures detected while
// reading (Tier 1):
//   - [ErrDRMProtected] – the file is DRM encrypted
//   - [ErrInvalidEPub] – structural validation failed
//   - [ErrInvalidChapter] – a Chapter handle is invalid
//   - [ErrFileNotFound] – a requested file is not in the archive
//   - [ErrNoCover] – no cover image could be detected
//   - [ErrXMLParse] – malformed XML in the OPF, NCX, or nav document
//   - [ErrZipFormat] – the archive is not a valid ZIP
//   - [ErrInvalidArgument] – a caller-supplied argument was invalid
//   - [ErrNotFound] – a requested entity does not exist in the Book
//
// Caller-facing operations in the extract/assemble/manipulate layers (Tier 2)
// wrap these sentinels with [github.com/pkg/errors] for context; callers
// should use errors.Is against the sentinels above rather than string
// matching.
//
// If no table of contents is present, [Book.Navigation].TOC is an empty
// slice and [Book.HasTOC] returns false.
package epub
