package epub

import "errors"

// Sentinel errors returned by the epub package's structural layers
// (container, OPF, navigation). Callers should match these with errors.Is;
// higher layers wrap them with github.com/pkg/errors to attach context
// without losing the underlying sentinel.
var (
	// ErrDRMProtected indicates the ePub file is protected by DRM
	// (e.g., Adobe ADEPT, Apple FairPlay, Readium LCP) and cannot be read.
	ErrDRMProtected = errors.New("epub: file is DRM protected")

	// ErrInvalidEPub indicates the file is not a valid ePub container: a
	// container.xml with no usable rootfile, no OPF found in the archive,
	// an empty spine, or a spine idref with no manifest item. A wrong,
	// misplaced, or compressed mimetype entry is recorded in Book.Warnings
	// and is not an error; an unparsable package document is ErrXMLParse.
	ErrInvalidEPub = errors.New("epub: invalid ePub file")

	// ErrInvalidChapter indicates a Chapter handle is invalid
	// (for example, a zero-value Chapter without an associated Book).
	ErrInvalidChapter = errors.New("epub: invalid chapter handle")

	// ErrFileNotFound indicates the requested file does not exist
	// in the ePub archive.
	ErrFileNotFound = errors.New("epub: file not found in archive")

	// ErrNoCover indicates no cover image could be detected
	// using any of the supported strategies.
	ErrNoCover = errors.New("epub: no cover image found")

	// ErrXMLParse indicates a structural XML document (OPF, NCX, nav)
	// could not be parsed. AssembleBook and ImportMetadata also return it
	// when metadata.yml is not valid YAML; there is no separate YAML error.
	ErrXMLParse = errors.New("epub: xml parse error")

	// ErrZipFormat indicates the archive itself is not a well-formed ZIP.
	ErrZipFormat = errors.New("epub: zip format error")

	// ErrInvalidArgument indicates a caller-supplied argument (index,
	// field name, chapter id, heading mapping) was out of range or
	// unrecognized.
	ErrInvalidArgument = errors.New("epub: invalid argument")

	// ErrNotFound indicates a chapter, asset, or resource lookup failed.
	ErrNotFound = errors.New("epub: not found")
)
