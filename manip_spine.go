package epub

import "github.com/pkg/errors"

// ReorderSpine moves the spine item at index from to index to (an alias of
// ReorderChapter exposed under the "spine" naming used by the CLI's
// "goepub spine reorder" command).
func ReorderSpine(book *Book, from, to int) error {
	return ReorderChapter(book, from, to)
}

// SetSpineOrder replaces book's spine with the items named by idrefs, in
// that order. Every idref in idrefs must already exist in the spine
// (ErrInvalidArgument otherwise); spine items not listed are dropped.
func SetSpineOrder(book *Book, idrefs []string) error {
	newSpine := make([]SpineItem, 0, len(idrefs))
	for _, idref := range idrefs {
		found := false
		for _, si := range book.Spine {
			if si.IDRef == idref {
				newSpine = append(newSpine, si)
				found = true
				break
			}
		}
		if !found {
			return errors.Wrapf(ErrInvalidArgument, "spine item not found: %s", idref)
		}
	}
	book.Spine = newSpine
	return nil
}
