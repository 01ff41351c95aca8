package epub

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// parseNavigation determines the TOC source (ePub 3 nav document or ePub 2
// NCX), parses it, assigns spine indices, and populates b.Navigation.
// Errors are non-fatal: an unreadable or unparsable TOC results in an empty
// tree plus a recorded warning, and a book with no TOC source gets an empty
// tree without a warning (§4.3).
func (b *Book) parseNavigation() {
	spineMap := make(map[string]int, len(b.Spine))
	for i, si := range b.Spine {
		if mi := b.manifestByID(si.IDRef); mi != nil {
			spineMap[b.resolveOPFPath(mi.Href)] = i
		}
	}

	isEPub3 := strings.HasPrefix(b.Version, "3")
	spineLen := len(b.Spine)

	if isEPub3 {
		if toc, landmarks, pageList, ok := b.parseNavTOC(spineMap); ok {
			b.Navigation.TOC = toc
			b.Navigation.Landmarks = landmarks
			b.Navigation.PageList = pageList
			computeSpineRanges(b.Navigation.TOC, spineLen)
			return
		}
	}

	if toc, ok := b.parseNCXTOC(spineMap); ok {
		b.Navigation.TOC = toc
		computeSpineRanges(b.Navigation.TOC, spineLen)
		return
	}

	b.Navigation.TOC = []NavPoint{}
}

// navItem returns the manifest item carrying properties="nav", or nil.
func (b *Book) navItem() *ManifestItem {
	for i := range b.Manifest {
		if b.Manifest[i].HasProperty("nav") {
			return &b.Manifest[i]
		}
	}
	return nil
}

func (b *Book) parseNavTOC(spineMap map[string]int) (toc, landmarks, pageList []NavPoint, ok bool) {
	item := b.navItem()
	if item == nil {
		return nil, nil, nil, false
	}

	navPath := b.resolveOPFPath(item.Href)
	data, err := b.readFile(navPath)
	if err != nil {
		b.Warnings = append(b.Warnings, fmt.Sprintf("failed to read nav document: %v", err))
		return nil, nil, nil, false
	}

	toc, landmarks, pageList, err = parseNavDocument(data, navPath)
	if err != nil {
		b.Warnings = append(b.Warnings, fmt.Sprintf("failed to parse nav document: %v", err))
		return nil, nil, nil, false
	}

	assignSpineIndices(toc, spineMap)
	assignSpineIndices(landmarks, spineMap)
	assignSpineIndices(pageList, spineMap)

	return toc, landmarks, pageList, true
}

func (b *Book) parseNCXTOC(spineMap map[string]int) ([]NavPoint, bool) {
	tocID := b.ncxManifestID()
	if tocID == "" {
		return nil, false
	}
	ncxItem := b.manifestByID(tocID)
	if ncxItem == nil {
		return nil, false
	}

	ncxPath := b.resolveOPFPath(ncxItem.Href)
	data, err := b.readFile(ncxPath)
	if err != nil {
		b.Warnings = append(b.Warnings, fmt.Sprintf("failed to read NCX file: %v", err))
		return nil, false
	}

	toc, err := parseNCX(data, ncxPath)
	if err != nil {
		b.Warnings = append(b.Warnings, fmt.Sprintf("failed to parse NCX file: %v", err))
		return nil, false
	}

	assignSpineIndices(toc, spineMap)
	return toc, true
}

// ncxManifestID returns the manifest id named by the OPF spine's toc="..."
// attribute, which readBook stores in b.ncxID.
func (b *Book) ncxManifestID() string {
	return b.ncxID
}

// assignSpineIndices recursively sets SpineIndex on each NavPoint by
// matching its Target (without fragment) against the spine map.
func assignSpineIndices(items []NavPoint, spineMap map[string]int) {
	for i := range items {
		items[i].SpineIndex = -1
		if items[i].Target != "" {
			filePath := hrefWithoutFragment(items[i].Target)
			if idx, ok := spineMap[filePath]; ok {
				items[i].SpineIndex = idx
			}
		}
		if len(items[i].Children) > 0 {
			assignSpineIndices(items[i].Children, spineMap)
		}
	}
}

// computeSpineRanges sets SpineEndIndex on each NavPoint so the entry
// covers spine[SpineIndex:SpineEndIndex].
func computeSpineRanges(items []NavPoint, spineLen int) {
	if len(items) == 0 {
		return
	}

	var flat []*NavPoint
	flattenNavPoints(&flat, items)

	seen := make(map[int]bool, len(flat))
	var indices []int
	for _, item := range flat {
		if item.SpineIndex >= 0 && !seen[item.SpineIndex] {
			seen[item.SpineIndex] = true
			indices = append(indices, item.SpineIndex)
		}
	}
	if len(indices) == 0 {
		return
	}
	sort.Ints(indices)

	endMap := make(map[int]int, len(indices))
	for i, idx := range indices {
		if i+1 < len(indices) {
			endMap[idx] = indices[i+1]
		} else {
			endMap[idx] = spineLen
		}
	}

	for _, item := range flat {
		if item.SpineIndex >= 0 {
			item.SpineEndIndex = endMap[item.SpineIndex]
		} else {
			item.SpineEndIndex = -1
		}
	}
}

// --- NCX XML decoding structs (ePub 2) ---

type ncxDocument struct {
	XMLName xml.Name  `xml:"ncx"`
	NavMap  ncxNavMap `xml:"navMap"`
}

type ncxNavMap struct {
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

type ncxNavPoint struct {
	ID        string        `xml:"id,attr"`
	PlayOrder string        `xml:"playOrder,attr"`
	Label     ncxNavLabel   `xml:"navLabel"`
	Content   ncxContent    `xml:"content"`
	Children  []ncxNavPoint `xml:"navPoint"`
}

type ncxNavLabel struct {
	Text string `xml:"text"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// parseNCX parses NCX (ePub 2) data and returns a tree of NavPoint. ncxPath
// is the container-relative path of the NCX file, used to resolve relative
// hrefs.
func parseNCX(data []byte, ncxPath string) ([]NavPoint, error) {
	data = preprocessHTMLEntities(data)
	data = stripBOM(data)

	var doc ncxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse NCX: %v", ErrXMLParse, err)
	}

	return convertNavPoints(doc.NavMap.NavPoints, ncxPath), nil
}

func convertNavPoints(points []ncxNavPoint, ncxPath string) []NavPoint {
	if len(points) == 0 {
		return nil
	}

	items := make([]NavPoint, 0, len(points))
	for _, np := range points {
		item := NavPoint{
			Label:         strings.TrimSpace(np.Label.Text),
			SpineIndex:    -1,
			SpineEndIndex: -1,
		}

		src := strings.TrimSpace(np.Content.Src)
		if src != "" {
			if resolved := resolveRelativePath(ncxPath, src); resolved != "" {
				item.Target = resolved
			}
		}

		item.Children = convertNavPoints(np.Children, ncxPath)
		items = append(items, item)
	}

	return items
}

// --- Nav Document parsing (ePub 3) ---

// parseNavDocument parses an ePub 3 XHTML nav document and returns toc,
// landmarks, and page-list trees. basePath is the container-relative path
// of the nav document.
func parseNavDocument(data []byte, basePath string) (toc, landmarks, pageList []NavPoint, err error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: parse nav document: %v", ErrXMLParse, err)
	}

	var navNodes []*html.Node
	var findNavs func(*html.Node)
	findNavs = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "nav" {
			navNodes = append(navNodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findNavs(c)
		}
	}
	findNavs(doc)

	for _, nav := range navNodes {
		switch {
		case hasEpubType(nav, "toc"):
			if ol := findFirstChildElement(nav, "ol"); ol != nil {
				toc = parseNavOL(ol, basePath)
			}
		case hasEpubType(nav, "landmarks"):
			if ol := findFirstChildElement(nav, "ol"); ol != nil {
				landmarks = parseNavOL(ol, basePath)
			}
		case hasEpubType(nav, "page-list"):
			if ol := findFirstChildElement(nav, "ol"); ol != nil {
				pageList = parseNavOL(ol, basePath)
			}
		}
	}

	return toc, landmarks, pageList, nil
}

func parseNavOL(ol *html.Node, basePath string) []NavPoint {
	var items []NavPoint
	for c := ol.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			items = append(items, parseNavLI(c, basePath))
		}
	}
	return items
}

func parseNavLI(li *html.Node, basePath string) NavPoint {
	item := NavPoint{SpineIndex: -1, SpineEndIndex: -1}

	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "a":
			if item.Target == "" {
				href := navGetAttr(c, "href")
				if href != "" {
					if resolved := resolveRelativePath(basePath, href); resolved != "" {
						item.Target = resolved
					}
				}
				item.Label = strings.TrimSpace(nodeTextContent(c))
			}
		case "span":
			if item.Label == "" {
				item.Label = strings.TrimSpace(nodeTextContent(c))
			}
		case "ol":
			item.Children = parseNavOL(c, basePath)
		}
	}

	return item
}

func hasEpubType(n *html.Node, typeName string) bool {
	val := navGetAttr(n, "epub:type")
	for _, t := range strings.Fields(val) {
		if t == typeName {
			return true
		}
	}
	return false
}

func navGetAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findFirstChildElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findFirstChildElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func nodeTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeTextContent(c))
	}
	return sb.String()
}
