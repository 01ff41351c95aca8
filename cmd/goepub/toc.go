package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	epub "github.com/eduardoborges/goepub"
)

func tocCommand(s *appState) *cli.Command {
	return &cli.Command{
		Name:  "toc",
		Usage: "show, set, or generate the navigation tree",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "print the current navigation tree",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "max-depth", Value: 0},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected FILE", 1)
					}
					book, err := epub.ReadBook(c.Args().First())
					if err != nil {
						return cli.Exit(err, 1)
					}
					printNavTree(c.App.Writer, book.Navigation.TOC, 0, c.Int("max-depth"))
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "replace the navigation tree from a Markdown link list",
				ArgsUsage: "FILE MARKDOWN",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected FILE MARKDOWN", 1)
					}
					data, err := os.ReadFile(c.Args().Get(1))
					if err != nil {
						return cli.Exit(err, 1)
					}
					err = withBook(s, c.Args().Get(0), func(book *epub.Book) error {
						return epub.SetTOCFromMarkdown(book, string(data))
					})
					if err != nil {
						return cli.Exit(err, 1)
					}
					return nil
				},
			},
			{
				Name:      "generate",
				Usage:     "rebuild the navigation tree from chapter headings",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "max-depth", Value: 3},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected FILE", 1)
					}
					err := withBook(s, c.Args().First(), func(book *epub.Book) error {
						return epub.GenerateTOC(book, c.Int("max-depth"))
					})
					if err != nil {
						return cli.Exit(err, 1)
					}
					return nil
				},
			},
		},
	}
}

func printNavTree(w io.Writer, points []epub.NavPoint, depth, maxDepth int) {
	if maxDepth > 0 && depth >= maxDepth {
		return
	}
	for _, p := range points {
		fmt.Fprintf(w, "%s- %s -> %s\n", strings.Repeat("  ", depth), p.Label, p.Target)
		printNavTree(w, p.Children, depth+1, maxDepth)
	}
}
