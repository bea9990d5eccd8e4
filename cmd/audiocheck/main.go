// Command audiocheck plays test signals, measures loudness and runs a
// hearing test from the terminal.
//
// Usage:
//
//	audiocheck [flags] <command> [args]
//
// Examples:
//
//	audiocheck tone 440 --gain 0.3 --duration 2
//	audiocheck noise pink --out pink.wav
//	audiocheck meter room.wav --png spectrum.png
//	audiocheck hearing
//	audiocheck serve --addr :8080
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/algo-audiocheck/internal/cli"
)

var version = "0.1.0"

const description = "Speaker check, sound meter and hearing test"

// versionFlag prints the styled version banner and exits.
type versionFlag bool

func (versionFlag) BeforeReset(app *kong.Kong, vars kong.Vars) error {
	cli.PrintVersion(app.Stdout, vars["version"])
	app.Exit(0)
	return nil
}

// Globals are the flags shared by every command.
type Globals struct {
	Version    versionFlag `short:"v" help:"Show version information"`
	LogLevel   string      `help:"Log level." enum:"debug,info,warn,error" default:"info"`
	SampleRate int         `help:"Sample rate in Hz." default:"48000"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Tone     ToneCmd     `cmd:"" help:"Play a sine tone."`
	Noise    NoiseCmd    `cmd:"" help:"Play white, pink or calibration noise."`
	Sweep    SweepCmd    `cmd:"" help:"Play an exponential frequency sweep."`
	Stereo   StereoCmd   `cmd:"" help:"Play the channel identification tone on one side."`
	Polarity PolarityCmd `cmd:"" help:"Play the in-phase or out-of-phase check."`
	Meter    MeterCmd    `cmd:"" help:"Measure the loudness of a WAV recording."`
	Hearing  HearingCmd  `cmd:"" help:"Run the interactive hearing test."`
	Serve    ServeCmd    `cmd:"" help:"Serve the live sound meter over WebSocket."`
}

// app carries the runtime collaborators into every command.
type app struct {
	ctx        context.Context
	log        *slog.Logger
	sampleRate int
}

func main() {
	cliArgs := &CLI{}
	kctx := kong.Parse(cliArgs,
		kong.Name("audiocheck"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(description)),
	)

	level, err := cli.ParseLevel(cliArgs.LogLevel)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(2)
	}
	logger := cli.NewLogger(os.Stderr, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{ctx: ctx, log: logger, sampleRate: cliArgs.SampleRate}
	if err := kctx.Run(a); err != nil {
		cli.PrintError(err.Error())
		stop()
		os.Exit(1)
	}
}
