package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/drake/stardate/config"
	"github.com/drake/stardate/debug"
	"github.com/drake/stardate/gameclock"
	"github.com/drake/stardate/session"
	"github.com/drake/stardate/ui"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "stardate:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	defaults := config.Defaults()

	app := cli.NewApp()
	app.Name = "stardate"
	app.Usage = "drive the game clock and run timed mission scripts"
	app.ArgsUsage = "[script.lua|script.js ...]"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "simple",
			Usage: "use the line-based console instead of the TUI",
		},
		cli.DurationFlag{
			Name:  "tick",
			Value: defaults.TickRate,
			Usage: "real time between simulation steps",
		},
		cli.Float64Flag{
			Name:  "start",
			Usage: "game time at boot, in seconds since the epoch",
		},
		cli.IntFlag{
			Name:  "accel",
			Value: defaults.Level,
			Usage: fmt.Sprintf("initial acceleration level (0-%d)", len(gameclock.Levels)-1),
		},
		cli.StringFlag{
			Name:  "config-dir",
			Value: defaults.Dir,
			Usage: "directory holding init.lua / init.js",
		},
	}
	app.Action = run
	return app
}

func run(c *cli.Context) error {
	cfg := config.Config{
		Dir:       c.String("config-dir"),
		TickRate:  c.Duration("tick"),
		StartTime: c.Float64("start"),
		Level:     c.Int("accel"),
		Scripts:   c.Args(),
	}

	// Select UI mode
	var u session.UI
	var logOut io.Writer = io.Discard
	if c.Bool("simple") {
		u = ui.NewConsoleUI()
		logOut = os.Stderr
	} else {
		u = ui.NewTUI()
	}
	if debug.Enabled() {
		logOut = os.Stderr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := session.New(u, cfg, session.Options{
		Logger: log.New(logOut, "", log.LstdFlags),
	})

	debug.NewMonitor(ctx, s, os.Stderr).Start()

	return s.Run(ctx)
}
