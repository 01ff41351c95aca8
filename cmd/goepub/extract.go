package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	epub "github.com/eduardoborges/goepub"
)

func extractCommand(s *appState) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "extract an EPUB to an editable Markdown directory",
		ArgsUsage: "FILE OUTDIR",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("expected FILE and OUTDIR", 1)
			}
			book, err := epub.ReadBook(c.Args().Get(0))
			if err != nil {
				return cli.Exit(err, 1)
			}
			if err := epub.ExtractBook(book, c.Args().Get(1), epub.WithLogger(s.log)); err != nil {
				return cli.Exit(err, 1)
			}
			fmt.Fprintln(c.App.Writer, "extracted to", c.Args().Get(1))
			return nil
		},
	}
}

func assembleCommand(s *appState) *cli.Command {
	return &cli.Command{
		Name:      "assemble",
		Usage:     "assemble an extracted Markdown directory back into an EPUB",
		ArgsUsage: "DIR OUTFILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("expected DIR and OUTFILE", 1)
			}
			book, err := epub.AssembleBook(c.Args().Get(0), epub.WithLogger(s.log))
			if err != nil {
				return cli.Exit(err, 1)
			}
			if err := epub.WriteBook(book, c.Args().Get(1), epub.WithLogger(s.log)); err != nil {
				return cli.Exit(err, 1)
			}
			fmt.Fprintln(c.App.Writer, "assembled to", c.Args().Get(1))
			return nil
		},
	}
}
