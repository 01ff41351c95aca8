package epub

import "fmt"

// Validate checks the structural invariants a Book must satisfy to be
// written or extracted (§4.2). All violations are collected and returned as
// a slice of messages; a nil or empty result means the book is valid. No
// error is raised for invalid content — the caller decides what to do with
// the report.
func (b *Book) Validate() []string {
	var errs []string

	if len(b.Metadata.Titles) == 0 {
		errs = append(errs, "metadata has no title")
	}
	if len(b.Metadata.Languages) == 0 {
		errs = append(errs, "metadata has no language")
	}
	if len(b.Metadata.Identifiers) == 0 {
		errs = append(errs, "metadata has no identifier")
	}

	if len(b.Spine) == 0 {
		errs = append(errs, "spine is empty")
	}
	for _, si := range b.Spine {
		if b.manifestByID(si.IDRef) == nil {
			errs = append(errs, fmt.Sprintf("spine idref %q does not resolve to a manifest item", si.IDRef))
		}
	}

	navCount := 0
	for _, item := range b.Manifest {
		if item.HasProperty("nav") {
			navCount++
		}
	}
	if navCount > 1 {
		errs = append(errs, fmt.Sprintf("%d manifest items carry the nav property, expected at most one", navCount))
	}

	return errs
}
