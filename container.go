package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

// containerXML models the META-INF/container.xml file used to locate the OPF.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

// rootFile represents a single <rootfile> element inside container.xml.
type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// containerPath is the well-known location of container.xml in an EPUB archive.
const containerPath = "META-INF/container.xml"

// locateOPF resolves the root package document's path from the container.
//
// It tries META-INF/container.xml first (case-insensitive lookup), and falls
// back to scanning every ZIP entry for a ".opf" suffix when that file is
// missing — some malformed archives omit it entirely. A container.xml that
// is present but unreadable or unparsable is an error, not a fallback.
func locateOPF(zr *zip.Reader) (string, error) {
	if f := findFileInsensitive(zr, containerPath); f != nil {
		return opfPathFromContainer(f)
	}
	return scanForOPF(zr)
}

// opfPathFromContainer decodes a container.xml entry and returns the
// full-path of its preferred rootfile: the first one whose media-type is
// application/oebps-package+xml, or the first non-empty entry otherwise.
func opfPathFromContainer(f *zip.File) (string, error) {
	raw, err := readZipFile(f)
	if err != nil {
		return "", fmt.Errorf("epub: read container.xml: %w", err)
	}
	raw = stripBOM(raw)

	var c containerXML
	if err := xml.Unmarshal(raw, &c); err != nil {
		return "", fmt.Errorf("epub: parse container.xml: %w", err)
	}
	if len(c.RootFiles) == 0 {
		return "", fmt.Errorf("epub: container.xml has no rootfile entries: %w", ErrInvalidEPub)
	}

	var anyPath string
	for _, rf := range c.RootFiles {
		fullPath := strings.TrimSpace(rf.FullPath)
		if fullPath == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), "application/oebps-package+xml") {
			return fullPath, nil
		}
		if anyPath == "" {
			anyPath = fullPath
		}
	}
	if anyPath == "" {
		return "", fmt.Errorf("epub: container.xml rootfile has empty full-path: %w", ErrInvalidEPub)
	}
	return anyPath, nil
}

// scanForOPF looks for the first ".opf"-suffixed entry anywhere in the
// archive, case-insensitively.
func scanForOPF(zr *zip.Reader) (string, error) {
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("epub: no OPF file found in archive: %w", ErrInvalidEPub)
}
