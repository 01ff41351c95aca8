package main

import (
	epub "github.com/eduardoborges/goepub"
)

// withBook reads path, applies modify, and writes the result back in
// place, mirroring the library's own atomic modifyEPUB helper for the
// manipulation subcommands that operate on an in-memory Book rather than
// exposing their own path-based entry point.
func withBook(s *appState, path string, modify func(*epub.Book) error) error {
	book, err := epub.ReadBook(path)
	if err != nil {
		return err
	}
	if err := modify(book); err != nil {
		return err
	}
	return epub.WriteBook(book, path, epub.WithLogger(s.log))
}
