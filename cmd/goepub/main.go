// Command goepub reads, extracts, assembles, and manipulates EPUB files.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

type appState struct {
	log           *zap.Logger
	stdlogRestore func()
	cfg           cliConfig
	debug         bool
	jsonOutput    bool
}

func (s *appState) before(c *cli.Context) error {
	s.debug = c.Bool("debug")
	s.jsonOutput = c.Bool("json")

	cfg, err := loadConfig()
	if err != nil {
		return cli.Exit(fmt.Errorf("loading config: %w", err), 1)
	}
	s.cfg = cfg

	var log *zap.Logger
	if s.debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return cli.Exit(fmt.Errorf("building logger: %w", err), 1)
	}
	s.log = log
	s.stdlogRestore = zap.RedirectStdLog(log)

	return nil
}

func (s *appState) after(c *cli.Context) error {
	if s.log != nil {
		s.stdlogRestore()
		_ = s.log.Sync()
	}
	return nil
}

func main() {
	var state appState

	app := cli.NewApp()
	app.Name = "goepub"
	app.Usage = "read, extract, assemble, and manipulate EPUB files"
	app.Version = "dev (" + runtime.Version() + ")"
	app.Before = state.before
	app.After = state.after

	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "verbose debug logging"},
		&cli.BoolFlag{Name: "json", Usage: "render query output as JSON"},
		&cli.BoolFlag{Name: "no-color", Usage: "disable colored output"},
	}

	app.Commands = []*cli.Command{
		readCommand(&state),
		validateCommand(&state),
		extractCommand(&state),
		assembleCommand(&state),
		metaCommand(&state),
		chapterCommand(&state),
		spineCommand(&state),
		tocCommand(&state),
		contentCommand(&state),
		assetCommand(&state),
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
