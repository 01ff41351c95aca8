package epub

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// bookMetadataYAML is the on-disk shape of metadata.yml (§6): the well-known
// Dublin Core fields plus a custom map and an epx provenance block.
type bookMetadataYAML struct {
	Title       string            `yaml:"title,omitempty"`
	Authors     []authorYAML      `yaml:"authors,omitempty"`
	Publisher   string            `yaml:"publisher,omitempty"`
	Identifier  string            `yaml:"identifier,omitempty"`
	Language    string            `yaml:"language,omitempty"`
	Date        string            `yaml:"date,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Subjects    []string          `yaml:"subjects,omitempty"`
	Rights      string            `yaml:"rights,omitempty"`
	Custom      map[string]string `yaml:"custom,omitempty"`
	EPX         epxBlock          `yaml:"epx"`
}

type authorYAML struct {
	Name string `yaml:"name"`
	Role string `yaml:"role,omitempty"`
}

type epxBlock struct {
	SourceFormat  string `yaml:"source_format"`
	EPubVersion   string `yaml:"epub_version"`
	ExtractedDate string `yaml:"extracted_date"`
}

// chapterFrontmatter is the YAML header written at the top of each extracted
// chapter Markdown file.
type chapterFrontmatter struct {
	Title        string `yaml:"title,omitempty"`
	OriginalFile string `yaml:"original_file"`
	OriginalID   string `yaml:"original_id,omitempty"`
	SpineIndex   int    `yaml:"spine_index"`
}

func (fm chapterFrontmatter) toYAMLHeader() (string, error) {
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(data)
	sb.WriteString("---\n\n")
	return sb.String(), nil
}

// stripFrontmatter removes a leading "---\n...\n---\n" YAML block from
// content, returning the remainder unchanged if none is present.
func stripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}
	rest := content[3:]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return content
	}
	after := idx + len("\n---")
	body := rest[after:]
	return strings.TrimLeft(body, "\n")
}

func metadataToYAML(md Metadata, epubVersion string) bookMetadataYAML {
	title := ""
	if len(md.Titles) > 0 {
		title = md.Titles[0]
	}
	authors := make([]authorYAML, 0, len(md.Creators))
	for _, c := range md.Creators {
		authors = append(authors, authorYAML{Name: c.Name, Role: c.Role})
	}
	identifier := ""
	if len(md.Identifiers) > 0 {
		identifier = md.Identifiers[0].Value
	}
	language := ""
	if len(md.Languages) > 0 {
		language = md.Languages[0]
	}

	return bookMetadataYAML{
		Title:       title,
		Authors:     authors,
		Publisher:   md.Publisher,
		Identifier:  identifier,
		Language:    language,
		Date:        md.Date,
		Description: md.Description,
		Subjects:    md.Subjects,
		Rights:      md.Rights,
		Custom:      md.Custom,
		EPX: epxBlock{
			SourceFormat:  "epub",
			EPubVersion:   epubVersion,
			ExtractedDate: formatISO8601Date(),
		},
	}
}

func yamlToMetadata(y bookMetadataYAML) Metadata {
	md := Metadata{Custom: y.Custom}
	if y.Title != "" {
		md.Titles = []string{y.Title}
	}
	for _, a := range y.Authors {
		md.Creators = append(md.Creators, Contributor{Name: a.Name, Role: a.Role})
	}
	if y.Identifier != "" {
		md.Identifiers = []Identifier{{Value: y.Identifier}}
	}
	if y.Language != "" {
		md.Languages = []string{y.Language}
	}
	md.Publisher = y.Publisher
	md.Date = y.Date
	md.Description = y.Description
	md.Subjects = y.Subjects
	md.Rights = y.Rights
	if md.Custom == nil {
		md.Custom = make(map[string]string)
	}
	return md
}
