package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	epub "github.com/eduardoborges/goepub"
)

func assetCommand(s *appState) *cli.Command {
	return &cli.Command{
		Name:  "asset",
		Usage: "list, extract, add, or remove assets",
		Subcommands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "enumerate manifest items, optionally by broad type",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Usage: "image|css|font|audio"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected FILE", 1)
					}
					book, err := epub.ReadBook(c.Args().First())
					if err != nil {
						return cli.Exit(err, 1)
					}
					filter := c.String("filter")
					if filter == "" {
						filter = s.cfg.DefaultAssetFilter
					}
					for _, item := range epub.ListAssets(book, filter) {
						fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", item.ID, item.Href, item.MediaType)
					}
					return nil
				},
			},
			{
				Name:      "extract",
				Usage:     "write a single asset's bytes to a file or stdout",
				ArgsUsage: "FILE HREF [OUT]",
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return cli.Exit("expected FILE HREF [OUT]", 1)
					}
					book, err := epub.ReadBook(c.Args().Get(0))
					if err != nil {
						return cli.Exit(err, 1)
					}
					out := c.Args().Get(2)
					data, err := epub.ExtractAsset(book, c.Args().Get(1), out)
					if err != nil {
						return cli.Exit(err, 1)
					}
					if out == "" {
						_, err = os.Stdout.Write(data)
						return err
					}
					return nil
				},
			},
			{
				Name:      "extract-all",
				Usage:     "extract every image, font, and stylesheet under a directory",
				ArgsUsage: "FILE DIR",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected FILE DIR", 1)
					}
					book, err := epub.ReadBook(c.Args().Get(0))
					if err != nil {
						return cli.Exit(err, 1)
					}
					if err := epub.ExtractAllAssets(book, c.Args().Get(1)); err != nil {
						return cli.Exit(err, 1)
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "add a file as a new asset",
				ArgsUsage: "FILE ASSETPATH",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "media-type"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected FILE ASSETPATH", 1)
					}
					var id string
					err := withBook(s, c.Args().Get(0), func(book *epub.Book) error {
						var err error
						id, err = epub.AddAsset(book, c.Args().Get(1), c.String("media-type"))
						return err
					})
					if err != nil {
						return cli.Exit(err, 1)
					}
					fmt.Fprintln(c.App.Writer, "added asset", id)
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "remove an asset by href or manifest id",
				ArgsUsage: "FILE HREF",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("expected FILE HREF", 1)
					}
					var stillReferenced bool
					err := withBook(s, c.Args().Get(0), func(book *epub.Book) error {
						var err error
						stillReferenced, err = epub.RemoveAsset(book, c.Args().Get(1))
						return err
					})
					if err != nil {
						return cli.Exit(err, 1)
					}
					if stillReferenced {
						fmt.Fprintln(c.App.ErrWriter, "warning: asset is still referenced in content")
					}
					return nil
				},
			},
		},
	}
}
