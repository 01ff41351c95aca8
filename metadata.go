package epub

import (
	"sort"
	"strconv"
	"strings"
)

// extractMetadata converts the raw OPF metadata into the public Metadata struct.
func extractMetadata(opf *opfPackage) Metadata {
	md := Metadata{Custom: make(map[string]string)}
	om := &opf.Metadata

	refinesMap := buildRefinesMap(om.Metas)

	md.Titles = extractTitles(om.Titles, refinesMap)
	md.Creators = extractContributors(om.Creators, refinesMap)
	md.Contributors = extractContributors(om.Contributors, refinesMap)

	for _, l := range om.Languages {
		if v := strings.TrimSpace(l.Value); v != "" {
			md.Languages = append(md.Languages, v)
		}
	}

	for _, id := range om.Identifiers {
		v := strings.TrimSpace(id.Value)
		if v == "" {
			continue
		}
		ident := Identifier{Value: v, Scheme: id.Scheme, ID: id.ID}
		if ident.Scheme == "" && id.ID != "" {
			if s, ok := findRefine(refinesMap, id.ID, "identifier-type"); ok {
				ident.Scheme = s
			}
		}
		md.Identifiers = append(md.Identifiers, ident)
	}

	for _, p := range om.Publishers {
		if v := strings.TrimSpace(p.Value); v != "" {
			md.Publisher = v
			break
		}
	}
	for _, d := range om.Dates {
		if v := strings.TrimSpace(d.Value); v != "" {
			md.Date = v
			break
		}
	}
	for _, d := range om.Descriptions {
		if v := strings.TrimSpace(d.Value); v != "" {
			md.Description = v
			break
		}
	}
	for _, s := range om.Subjects {
		if v := strings.TrimSpace(s.Value); v != "" {
			md.Subjects = append(md.Subjects, v)
		}
	}
	for _, r := range om.Rights {
		if v := strings.TrimSpace(r.Value); v != "" {
			md.Rights = v
			break
		}
	}
	for _, s := range om.Sources {
		if v := strings.TrimSpace(s.Value); v != "" {
			md.Source = v
			break
		}
	}

	// meta name="cover" (ePub 2 cover marker, re-expressed as CoverID).
	for _, m := range om.Metas {
		if strings.EqualFold(m.Name, "cover") && m.Content != "" {
			md.CoverID = m.Content
		}
		if m.Property == "dcterms:modified" {
			if v := strings.TrimSpace(m.Value); v != "" {
				md.Modified = v
			}
		}
	}

	// Unknown property= metas (not refines, not already consumed above)
	// become Custom entries, per §4.2.
	for _, m := range om.Metas {
		if m.Property == "" || m.Refines != "" || m.Property == "dcterms:modified" {
			continue
		}
		if v := strings.TrimSpace(m.Value); v != "" {
			md.Custom[m.Property] = v
		}
	}

	return md
}

// buildRefinesMap builds a map from element ID (without "#") to the list of
// <meta refines="#id" ...> elements that refine it.
func buildRefinesMap(metas []opfMeta) map[string][]opfMeta {
	m := make(map[string][]opfMeta)
	for _, meta := range metas {
		ref := meta.Refines
		if ref == "" || !strings.HasPrefix(ref, "#") {
			continue
		}
		id := ref[1:]
		m[id] = append(m[id], meta)
	}
	return m
}

// findRefine looks up a single refining property value for the given element ID.
func findRefine(refinesMap map[string][]opfMeta, id, property string) (string, bool) {
	for _, m := range refinesMap[id] {
		if m.Property == property {
			v := strings.TrimSpace(m.Value)
			if v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// extractTitles extracts titles from dc:title elements. For ePub 3, titles
// are ordered by display-seq from refines metadata.
func extractTitles(titles []opfDCElement, refinesMap map[string][]opfMeta) []string {
	if len(titles) == 0 {
		return nil
	}

	type titleEntry struct {
		value string
		seq   int
		index int
	}

	entries := make([]titleEntry, 0, len(titles))
	hasSeq := false

	for i, t := range titles {
		v := strings.TrimSpace(t.Value)
		if v == "" {
			continue
		}
		e := titleEntry{value: v, seq: 0, index: i}
		if t.ID != "" {
			if seqStr, ok := findRefine(refinesMap, t.ID, "display-seq"); ok {
				if n, err := strconv.Atoi(seqStr); err == nil {
					e.seq = n
					hasSeq = true
				}
			}
		}
		entries = append(entries, e)
	}

	if hasSeq {
		sort.SliceStable(entries, func(i, j int) bool {
			si, sj := entries[i].seq, entries[j].seq
			if si == 0 && sj == 0 {
				return entries[i].index < entries[j].index
			}
			if si == 0 {
				return false
			}
			if sj == 0 {
				return true
			}
			return si < sj
		})
	}

	result := make([]string, len(entries))
	for i, e := range entries {
		result[i] = e.value
	}
	return result
}

// extractContributors extracts dc:creator or dc:contributor entries.
// ePub 2 uses opf:file-as/opf:role attributes directly; ePub 3 expresses the
// same via <meta refines="#id"> elements.
func extractContributors(raw []opfDCElement, refinesMap map[string][]opfMeta) []Contributor {
	if len(raw) == 0 {
		return nil
	}

	out := make([]Contributor, 0, len(raw))
	for _, c := range raw {
		name := strings.TrimSpace(c.Value)
		if name == "" {
			continue
		}

		a := Contributor{Name: name, FileAs: c.FileAs, Role: c.Role}

		if c.ID != "" {
			if a.FileAs == "" {
				if fa, ok := findRefine(refinesMap, c.ID, "file-as"); ok {
					a.FileAs = fa
				}
			}
			if a.Role == "" {
				if r, ok := findRefine(refinesMap, c.ID, "role"); ok {
					a.Role = r
				}
			}
		}

		out = append(out, a)
	}
	return out
}
