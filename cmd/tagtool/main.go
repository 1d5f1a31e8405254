// tagtool inspects tag files and converts value files between the
// registered formats.
//
// Usage:
//
//	tagtool [flags] dump <file>
//	tagtool [flags] convert [--from F] [--to G] <in> <out>
//	tagtool [flags] formats
//	tagtool [flags] stats
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/WalkNetwork/serializer-framework/cfg"
	_ "github.com/WalkNetwork/serializer-framework/format/all"
	"github.com/WalkNetwork/serializer-framework/telemetry"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage: tagtool [flags] dump|convert|formats|stats ...")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("tagtool", pflag.ContinueOnError)
	flagSet.AddGoFlagSet(flag.CommandLine)
	flagSet.SetInterspersed(false)
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	// Load configuration
	if err := cfg.Load(*cfg.ConfigPathFlag); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogging()
	telemetry.InitializeTelemetry()

	rest := flagSet.Args()
	if len(rest) == 0 {
		return errUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", rest[0], errUsage)
	}
	log.Debug().Str("command", rest[0]).Strs("args", rest[1:]).Msg("Running command")
	return cmd(rest[1:], stdout)
}

// setupLogging configures the global logger; logs go to stderr so command
// output stays clean.
func setupLogging() {
	var writer io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.Config.Logging.Format == "json" {
		writer = os.Stderr
	}
	gLog := zerolog.New(writer).
		With().
		Timestamp().
		Logger()

	if cfg.Config.Logging.Verbose {
		log.Logger = gLog.Level(zerolog.DebugLevel)
	} else {
		log.Logger = gLog.Level(zerolog.InfoLevel)
	}
}
