package epub

import (
	"strings"
	"testing"
)

func TestParseOPF_BasicFields(t *testing.T) {
	pkg, err := parseOPF([]byte(sampleOPF))
	if err != nil {
		t.Fatalf("parseOPF: %v", err)
	}
	if pkg.Version != "3.0" {
		t.Errorf("Version = %q, want 3.0", pkg.Version)
	}
	if len(pkg.Metadata.Titles) != 1 || pkg.Metadata.Titles[0].Value != "The Sample Book" {
		t.Errorf("Titles = %v", pkg.Metadata.Titles)
	}
	if len(pkg.Manifest.Items) != 5 {
		t.Fatalf("manifest items = %d, want 5", len(pkg.Manifest.Items))
	}
	if len(pkg.Spine.ItemRefs) != 2 {
		t.Fatalf("spine itemrefs = %d, want 2", len(pkg.Spine.ItemRefs))
	}
}

func TestParseOPF_DefaultsVersionWhenMissing(t *testing.T) {
	data := `<package xmlns="http://www.idpf.org/2007/opf"><metadata></metadata><manifest></manifest><spine></spine></package>`
	pkg, err := parseOPF([]byte(data))
	if err != nil {
		t.Fatalf("parseOPF: %v", err)
	}
	if pkg.Version != "2.0" {
		t.Errorf("Version = %q, want default 2.0", pkg.Version)
	}
}

func TestParseOPF_DecodesNamedEntities(t *testing.T) {
	data := `<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
<metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Caf&eacute; Stories</dc:title></metadata>
<manifest></manifest><spine></spine></package>`
	pkg, err := parseOPF([]byte(data))
	if err != nil {
		t.Fatalf("parseOPF: %v", err)
	}
	if len(pkg.Metadata.Titles) != 1 || pkg.Metadata.Titles[0].Value != "Café Stories" {
		t.Errorf("Titles = %v, want decoded entity", pkg.Metadata.Titles)
	}
}

func TestParseOPF_InvalidXML(t *testing.T) {
	_, err := parseOPF([]byte("<package><not closed"))
	if err == nil {
		t.Fatal("expected error for malformed XML")
	}
}

func TestBuildManifestSpineGuide(t *testing.T) {
	pkg, err := parseOPF([]byte(sampleOPF))
	if err != nil {
		t.Fatalf("parseOPF: %v", err)
	}
	manifest := buildManifest(pkg.Manifest)
	if len(manifest) != 5 {
		t.Fatalf("manifest = %d items, want 5", len(manifest))
	}
	var cover *ManifestItem
	for i := range manifest {
		if manifest[i].ID == "cover-img" {
			cover = &manifest[i]
		}
	}
	if cover == nil || !cover.HasProperty("cover-image") {
		t.Errorf("expected cover-img manifest item with cover-image property")
	}

	spine := buildSpine(pkg.Spine)
	if len(spine) != 2 || spine[0].IDRef != "c1" || !spine[0].Linear {
		t.Errorf("spine = %+v", spine)
	}
}

func TestBuildSpine_NonLinearAttribute(t *testing.T) {
	data := `<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
<metadata></metadata><manifest></manifest>
<spine><itemref idref="c1"/><itemref idref="c2" linear="no"/></spine></package>`
	pkg, err := parseOPF([]byte(data))
	if err != nil {
		t.Fatalf("parseOPF: %v", err)
	}
	spine := buildSpine(pkg.Spine)
	if !spine[0].Linear {
		t.Errorf("expected c1 linear by default")
	}
	if spine[1].Linear {
		t.Errorf("expected c2 non-linear")
	}
}

func TestExtractMetadata_EPub3RefinesContributor(t *testing.T) {
	pkg, err := parseOPF([]byte(sampleOPF))
	if err != nil {
		t.Fatalf("parseOPF: %v", err)
	}
	md := extractMetadata(pkg)
	if len(md.Creators) != 1 {
		t.Fatalf("creators = %v", md.Creators)
	}
	c := md.Creators[0]
	if c.Name != "Jane Doe" || c.FileAs != "Doe, Jane" || c.Role != "aut" {
		t.Errorf("creator = %+v, want Jane Doe/Doe, Jane/aut", c)
	}
	if md.Publisher != "Sample Press" {
		t.Errorf("Publisher = %q", md.Publisher)
	}
	if md.Modified != "2024-01-01T00:00:00Z" {
		t.Errorf("Modified = %q", md.Modified)
	}
}

func TestExtractMetadata_TitleOrderingByDisplaySeq(t *testing.T) {
	data := `<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
<metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title id="t1">Subtitle</dc:title>
<dc:title id="t2">Main Title</dc:title>
<meta refines="#t1" property="display-seq">2</meta>
<meta refines="#t2" property="display-seq">1</meta>
</metadata><manifest></manifest><spine></spine></package>`
	pkg, err := parseOPF([]byte(data))
	if err != nil {
		t.Fatalf("parseOPF: %v", err)
	}
	md := extractMetadata(pkg)
	if len(md.Titles) != 2 || md.Titles[0] != "Main Title" || md.Titles[1] != "Subtitle" {
		t.Errorf("Titles = %v, want [Main Title, Subtitle]", md.Titles)
	}
}

func TestExtractMetadata_CustomPropertyPreserved(t *testing.T) {
	data := `<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
<metadata><meta property="custom:rating">5</meta></metadata>
<manifest></manifest><spine></spine></package>`
	pkg, err := parseOPF([]byte(data))
	if err != nil {
		t.Fatalf("parseOPF: %v", err)
	}
	md := extractMetadata(pkg)
	if md.Custom["custom:rating"] != "5" {
		t.Errorf("Custom = %v", md.Custom)
	}
}

func TestGenerateOPF_RoundTripsThroughParseOPF(t *testing.T) {
	book := sampleBook(t)
	opfXML := generateOPF(book)
	if !strings.Contains(opfXML, "The Sample Book") {
		t.Fatalf("generated OPF missing title: %s", opfXML)
	}

	pkg, err := parseOPF([]byte(opfXML))
	if err != nil {
		t.Fatalf("re-parsing generated OPF: %v", err)
	}
	md := extractMetadata(pkg)
	if len(md.Titles) != 1 || md.Titles[0] != "The Sample Book" {
		t.Errorf("round-tripped title = %v", md.Titles)
	}
	if len(md.Creators) != 1 || md.Creators[0].Name != "Jane Doe" {
		t.Errorf("round-tripped creators = %v", md.Creators)
	}
}
