package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	epub "github.com/eduardoborges/goepub"
)

func readCommand(s *appState) *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "print a summary of an EPUB's metadata, manifest, and spine",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected a single EPUB path", 1)
			}
			book, err := epub.ReadBook(c.Args().First())
			if err != nil {
				return cli.Exit(err, 1)
			}

			if s.jsonOutput {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(book)
			}

			title := ""
			if len(book.Metadata.Titles) > 0 {
				title = book.Metadata.Titles[0]
			}
			fmt.Fprintf(c.App.Writer, "title:     %s\n", title)
			fmt.Fprintf(c.App.Writer, "version:   %s\n", book.Version)
			fmt.Fprintf(c.App.Writer, "manifest:  %d items\n", len(book.Manifest))
			fmt.Fprintf(c.App.Writer, "spine:     %d items\n", len(book.Spine))
			fmt.Fprintf(c.App.Writer, "toc:       %d top-level entries\n", len(book.Navigation.TOC))
			return nil
		},
	}
}
