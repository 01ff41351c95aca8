package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	epub "github.com/eduardoborges/goepub"
)

func metaCommand(s *appState) *cli.Command {
	return &cli.Command{
		Name:  "meta",
		Usage: "view or edit an EPUB's metadata",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "set a metadata field",
				ArgsUsage: "FILE FIELD VALUE",
				Action: func(c *cli.Context) error {
					if c.NArg() != 3 {
						return cli.Exit("expected FILE FIELD VALUE", 1)
					}
					err := epub.ModifyMetadataField(c.Args().Get(0), c.Args().Get(1), c.Args().Get(2), false, epub.WithLogger(s.log))
					if err != nil {
						return cli.Exit(err, 1)
					}
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "clear a metadata field",
				ArgsUsage: "FILE FIELD",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected FILE FIELD", 1)
					}
					err := epub.ModifyMetadataField(c.Args().Get(0), c.Args().Get(1), "", true, epub.WithLogger(s.log))
					if err != nil {
						return cli.Exit(err, 1)
					}
					return nil
				},
			},
			{
				Name:      "import",
				Usage:     "replace metadata wholesale from a YAML file",
				ArgsUsage: "FILE YAML",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected FILE YAML", 1)
					}
					book, err := epub.ReadBook(c.Args().Get(0))
					if err != nil {
						return cli.Exit(err, 1)
					}
					if err := epub.ImportMetadata(book, c.Args().Get(1)); err != nil {
						return cli.Exit(err, 1)
					}
					if err := epub.WriteBook(book, c.Args().Get(0), epub.WithLogger(s.log)); err != nil {
						return cli.Exit(err, 1)
					}
					return nil
				},
			},
			{
				Name:      "export",
				Usage:     "write metadata to a YAML file",
				ArgsUsage: "FILE YAML",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected FILE YAML", 1)
					}
					book, err := epub.ReadBook(c.Args().Get(0))
					if err != nil {
						return cli.Exit(err, 1)
					}
					if err := epub.ExportMetadata(book, c.Args().Get(1)); err != nil {
						return cli.Exit(err, 1)
					}
					fmt.Fprintln(c.App.Writer, "exported to", c.Args().Get(1))
					return nil
				},
			},
		},
	}
}
