package main

import (
	"os"
	"strconv"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	epub "github.com/eduardoborges/goepub"
)

func spineCommand(s *appState) *cli.Command {
	return &cli.Command{
		Name:  "spine",
		Usage: "reorder the spine or replace it wholesale",
		Subcommands: []*cli.Command{
			{
				Name:      "reorder",
				Usage:     "move a spine item from one position to another",
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
						return epub.ReorderSpine(book, from, to)
					})
					if err != nil {
						return cli.Exit(err, 1)
					}
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "replace the spine with an ordered list of idrefs from a YAML file",
				ArgsUsage: "FILE YAML",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected FILE YAML", 1)
					}
					data, err := os.ReadFile(c.Args().Get(1))
					if err != nil {
						return cli.Exit(err, 1)
					}
					var idrefs []string
					if err := yaml.Unmarshal(data, &idrefs); err != nil {
						return cli.Exit(err, 1)
					}
					err = withBook(s, c.Args().Get(0), func(book *epub.Book) error {
						return epub.SetSpineOrder(book, idrefs)
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
