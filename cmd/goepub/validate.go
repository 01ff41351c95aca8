package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	epub "github.com/eduardoborges/goepub"
)

func validateCommand(s *appState) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check an EPUB against structural invariants",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected a single EPUB path", 1)
			}
			book, err := epub.ReadBook(c.Args().First())
			if err != nil {
				return cli.Exit(err, 1)
			}

			warnings := book.Validate()
			if len(warnings) == 0 {
				fmt.Fprintln(c.App.Writer, "ok")
				return nil
			}
			for _, w := range warnings {
				fmt.Fprintln(c.App.Writer, "warning:", w)
			}
			return cli.Exit("", 1)
		},
	}
}
