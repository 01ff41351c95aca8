package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	epub "github.com/eduardoborges/goepub"
)

func contentCommand(s *appState) *cli.Command {
	return &cli.Command{
		Name:  "content",
		Usage: "search, replace, or restructure chapter text",
		Subcommands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "search chapter text for a pattern",
				ArgsUsage: "FILE PATTERN",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "regex"},
					&cli.StringFlag{Name: "chapter"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected FILE PATTERN", 1)
					}
					book, err := epub.ReadBook(c.Args().Get(0))
					if err != nil {
						return cli.Exit(err, 1)
					}
					matches, err := epub.Search(book, c.Args().Get(1), c.String("chapter"), c.Bool("regex"))
					if err != nil {
						return cli.Exit(err, 1)
					}
					for _, m := range matches {
						fmt.Fprintf(c.App.Writer, "%s:%d: %s\n", m.ChapterHref, m.LineNumber, m.Context)
					}
					return nil
				},
			},
			{
				Name:      "replace",
				Usage:     "replace chapter text, preserving markup",
				ArgsUsage: "FILE PATTERN REPLACEMENT",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "regex"},
					&cli.StringFlag{Name: "chapter"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 3 {
						return cli.Exit("expected FILE PATTERN REPLACEMENT", 1)
					}
					var count int
					err := withBook(s, c.Args().Get(0), func(book *epub.Book) error {
						var err error
						count, err = epub.Replace(book, c.Args().Get(1), c.Args().Get(2), c.String("chapter"), c.Bool("regex"))
						return err
					})
					if err != nil {
						return cli.Exit(err, 1)
					}
					fmt.Fprintf(c.App.Writer, "%d replacements\n", count)
					return nil
				},
			},
			{
				Name:      "headings",
				Usage:     "list or restructure headings",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "restructure", Usage: "e.g. h2->h1,h3->h2"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected FILE", 1)
					}
					if mapping := c.String("restructure"); mapping != "" {
						var count int
						err := withBook(s, c.Args().First(), func(book *epub.Book) error {
							var err error
							count, err = epub.RestructureHeadings(book, mapping)
							return err
						})
						if err != nil {
							return cli.Exit(err, 1)
						}
						fmt.Fprintf(c.App.Writer, "%d headings restructured\n", count)
						return nil
					}

					book, err := epub.ReadBook(c.Args().First())
					if err != nil {
						return cli.Exit(err, 1)
					}
					for _, h := range epub.ListHeadings(book) {
						fmt.Fprintf(c.App.Writer, "%s h%d: %s\n", h.ChapterHref, h.Level, h.Text)
					}
					return nil
				},
			},
		},
	}
}
