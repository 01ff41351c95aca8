package epub

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// generateOPF renders the OPF package document for b as a string, in the
// exact field order the reader expects to round-trip: identifiers, titles,
// languages, creators, contributors, publisher, description, subjects,
// rights, source, date, dcterms:modified, the name="cover" meta, then sorted
// custom meta; manifest with
// toc.xhtml/toc.ncx hardcoded first; spine with toc="ncx" and per-item
// linear="no" where applicable.
func generateOPF(b *Book) string {
	var sb strings.Builder

	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString("<package xmlns=\"http://www.idpf.org/2007/opf\" version=\"3.0\" unique-identifier=\"uid\">\n")
	sb.WriteString("  <metadata xmlns:dc=\"http://purl.org/dc/elements/1.1/\" xmlns:opf=\"http://www.idpf.org/2007/opf\">\n")

	writeIdentifiers(&sb, b.Metadata.Identifiers)
	for _, title := range b.Metadata.Titles {
		sb.WriteString("    <dc:title>")
		sb.WriteString(xmlEscape(title))
		sb.WriteString("</dc:title>\n")
	}

	langs := b.Metadata.Languages
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	for _, lang := range langs {
		sb.WriteString("    <dc:language>")
		sb.WriteString(xmlEscape(lang))
		sb.WriteString("</dc:language>\n")
	}

	writeContributorList(&sb, "dc:creator", b.Metadata.Creators)
	writeContributorList(&sb, "dc:contributor", b.Metadata.Contributors)

	if b.Metadata.Publisher != "" {
		sb.WriteString("    <dc:publisher>")
		sb.WriteString(xmlEscape(b.Metadata.Publisher))
		sb.WriteString("</dc:publisher>\n")
	}
	if b.Metadata.Description != "" {
		sb.WriteString("    <dc:description>")
		sb.WriteString(xmlEscape(b.Metadata.Description))
		sb.WriteString("</dc:description>\n")
	}
	for _, subject := range b.Metadata.Subjects {
		sb.WriteString("    <dc:subject>")
		sb.WriteString(xmlEscape(subject))
		sb.WriteString("</dc:subject>\n")
	}
	if b.Metadata.Rights != "" {
		sb.WriteString("    <dc:rights>")
		sb.WriteString(xmlEscape(b.Metadata.Rights))
		sb.WriteString("</dc:rights>\n")
	}
	if b.Metadata.Source != "" {
		sb.WriteString("    <dc:source>")
		sb.WriteString(xmlEscape(b.Metadata.Source))
		sb.WriteString("</dc:source>\n")
	}
	if b.Metadata.Date != "" {
		sb.WriteString("    <dc:date>")
		sb.WriteString(xmlEscape(b.Metadata.Date))
		sb.WriteString("</dc:date>\n")
	}

	modified := b.Metadata.Modified
	if modified == "" {
		modified = formatISO8601()
	}
	sb.WriteString("    <meta property=\"dcterms:modified\">")
	sb.WriteString(xmlEscape(modified))
	sb.WriteString("</meta>\n")

	if b.Metadata.CoverID != "" {
		sb.WriteString("    <meta name=\"cover\" content=\"")
		sb.WriteString(xmlEscape(b.Metadata.CoverID))
		sb.WriteString("\"/>\n")
	}

	customKeys := make([]string, 0, len(b.Metadata.Custom))
	for k := range b.Metadata.Custom {
		customKeys = append(customKeys, k)
	}
	sort.Strings(customKeys)
	for _, key := range customKeys {
		sb.WriteString("    <meta property=\"")
		sb.WriteString(xmlEscape(key))
		sb.WriteString("\">")
		sb.WriteString(xmlEscape(b.Metadata.Custom[key]))
		sb.WriteString("</meta>\n")
	}

	sb.WriteString("  </metadata>\n")

	sb.WriteString("  <manifest>\n")
	sb.WriteString("    <item id=\"toc\" href=\"toc.xhtml\" media-type=\"application/xhtml+xml\" properties=\"nav\"/>\n")
	sb.WriteString("    <item id=\"ncx\" href=\"toc.ncx\" media-type=\"application/x-dtbncx+xml\"/>\n")
	for _, item := range b.Manifest {
		sb.WriteString("    <item id=\"")
		sb.WriteString(xmlEscape(item.ID))
		sb.WriteString("\" href=\"")
		sb.WriteString(xmlEscape(item.Href))
		sb.WriteString("\" media-type=\"")
		sb.WriteString(xmlEscape(item.MediaType))
		sb.WriteString("\"")
		if item.Properties != "" {
			sb.WriteString(" properties=\"")
			sb.WriteString(xmlEscape(item.Properties))
			sb.WriteString("\"")
		}
		sb.WriteString("/>\n")
	}
	sb.WriteString("  </manifest>\n")

	sb.WriteString("  <spine toc=\"ncx\">\n")
	for _, si := range b.Spine {
		sb.WriteString("    <itemref idref=\"")
		sb.WriteString(xmlEscape(si.IDRef))
		sb.WriteString("\"")
		if !si.Linear {
			sb.WriteString(" linear=\"no\"")
		}
		sb.WriteString("/>\n")
	}
	sb.WriteString("  </spine>\n")

	if len(b.Guide) > 0 {
		sb.WriteString("  <guide>\n")
		for _, ref := range b.Guide {
			sb.WriteString("    <reference type=\"")
			sb.WriteString(xmlEscape(ref.Type))
			sb.WriteString("\" title=\"")
			sb.WriteString(xmlEscape(ref.Title))
			sb.WriteString("\" href=\"")
			sb.WriteString(xmlEscape(ref.Href))
			sb.WriteString("\"/>\n")
		}
		sb.WriteString("  </guide>\n")
	}

	sb.WriteString("</package>\n")
	return sb.String()
}

func writeIdentifiers(sb *strings.Builder, ids []Identifier) {
	if len(ids) == 0 {
		sb.WriteString("    <dc:identifier id=\"uid\">urn:uuid:")
		sb.WriteString(uuid.NewString())
		sb.WriteString("</dc:identifier>\n")
		return
	}
	for i, id := range ids {
		attr := ""
		if i == 0 {
			attr = " id=\"uid\""
		} else if id.ID != "" {
			attr = " id=\"" + xmlEscape(id.ID) + "\""
		}
		if id.Scheme != "" {
			attr += " opf:scheme=\"" + xmlEscape(id.Scheme) + "\""
		}
		sb.WriteString("    <dc:identifier")
		sb.WriteString(attr)
		sb.WriteString(">")
		sb.WriteString(xmlEscape(id.Value))
		sb.WriteString("</dc:identifier>\n")
	}
}

func writeContributorList(sb *strings.Builder, tag string, people []Contributor) {
	for _, c := range people {
		sb.WriteString("    <")
		sb.WriteString(tag)
		if c.FileAs != "" {
			sb.WriteString(" opf:file-as=\"")
			sb.WriteString(xmlEscape(c.FileAs))
			sb.WriteString("\"")
		}
		if c.Role != "" {
			sb.WriteString(" opf:role=\"")
			sb.WriteString(xmlEscape(c.Role))
			sb.WriteString("\"")
		}
		sb.WriteString(">")
		sb.WriteString(xmlEscape(c.Name))
		sb.WriteString("</")
		sb.WriteString(tag)
		sb.WriteString(">\n")
	}
}

func xmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

const containerXMLTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="%s/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`
