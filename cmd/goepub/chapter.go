package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	epub "github.com/eduardoborges/goepub"
)

func chapterCommand(s *appState) *cli.Command {
	return &cli.Command{
		Name:  "chapter",
		Usage: "add, remove, or reorder chapters",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add a chapter from a Markdown file",
				ArgsUsage: "FILE MARKDOWN",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "after"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected FILE MARKDOWN", 1)
					}
					var id string
					err := withBook(s, c.Args().Get(0), func(book *epub.Book) error {
						var err error
						id, err = epub.AddChapter(book, c.Args().Get(1), c.String("after"), c.String("title"))
						return err
					})
					if err != nil {
						return cli.Exit(err, 1)
					}
					fmt.Fprintln(c.App.Writer, "added chapter", id)
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "remove a chapter by id or spine index",
				ArgsUsage: "FILE ID_OR_INDEX",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected FILE ID_OR_INDEX", 1)
					}
					var id string
					err := withBook(s, c.Args().Get(0), func(book *epub.Book) error {
						var err error
						id, err = epub.RemoveChapter(book, c.Args().Get(1))
						return err
					})
					if err != nil {
						return cli.Exit(err, 1)
					}
					fmt.Fprintln(c.App.Writer, "removed chapter", id)
					return nil
				},
			},
			{
				Name:      "reorder",
				Usage:     "move a chapter from one spine position to another",
				ArgsUsage: "FILE FROM TO",
				Action: func(c *cli.Context) error {
					if c.NArg() != 3 {
						return cli.Exit("expected FILE FROM TO", 1)
					}
					from, err := strconv.Atoi(c.Args().Get(1))
					if err != nil {
						return cli.Exit("FROM must be an integer", 1)
					}
					to, err := strconv.Atoi(c.Args().Get(2))
					if err != nil {
						return cli.Exit("TO must be an integer", 1)
					}
					err = withBook(s, c.Args().Get(0), func(book *epub.Book) error {
						return epub.ReorderChapter(book, from, to)
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
