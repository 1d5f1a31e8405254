package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/WalkNetwork/serializer-framework/cfg"
	"github.com/WalkNetwork/serializer-framework/compression"
	"github.com/WalkNetwork/serializer-framework/format"
	"github.com/WalkNetwork/serializer-framework/storage"
	"github.com/WalkNetwork/serializer-framework/strategy"
	"github.com/WalkNetwork/serializer-framework/tag"
	"github.com/WalkNetwork/serializer-framework/telemetry"
	"github.com/spf13/pflag"
)

type command func(args []string, stdout io.Writer) error

var commands = map[string]command{
	"dump":    dump,
	"convert": convert,
	"formats": formats,
	"stats":   stats,
}

// extensions maps file extensions to format names.
var extensions = map[string]string{
	".json":    "json",
	".jsonc":   "json",
	".yml":     "yaml",
	".yaml":    "yaml",
	".toml":    "toml",
	".msgpack": "msgpack",
	".mpk":     "msgpack",
	".cbor":    "cbor",
	".pb":      "protobuf",
	".tag":     "tag",
	".dat":     "tag",
	".nbt":     "tag",
}

// formatFor picks the explicit name, then the file extension, then the
// configured default.
func formatFor(name, path string) string {
	if name != "" {
		return name
	}
	if n, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return n
	}
	return cfg.Config.Format.Default
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func codecFlag(flagSet *pflag.FlagSet) *string {
	return flagSet.StringP("compression", "c", cfg.Config.Tag.Compression, "tag stream compression: "+strings.Join(compression.Names(), ", "))
}

// dump prints a tag file as a document.
func dump(args []string, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("dump", pflag.ContinueOnError)
	codecName := codecFlag(flagSet)
	outName := flagSet.StringP("output", "o", "json", "document format to print")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("dump takes exactly one file")
	}

	codec, err := compression.Lookup(*codecName)
	if err != nil {
		return err
	}
	out, err := format.New(*outName, format.Options{Pretty: true, Codec: codec})
	if err != nil {
		return err
	}

	data, err := readInput(flagSet.Arg(0))
	if err != nil {
		return err
	}
	tio := tag.NewIO()
	tio.Codec = codec
	t, err := tio.Read(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("read %s: %w", flagSet.Arg(0), err)
	}

	rendered, err := format.RenderTree(out, format.TagToTree(t))
	if err != nil {
		return err
	}
	if _, err := stdout.Write(rendered); err != nil {
		return err
	}
	if !bytes.HasSuffix(rendered, []byte("\n")) {
		_, err = io.WriteString(stdout, "\n")
	}
	return err
}

// convert re-encodes a value file from one format into another.
func convert(args []string, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("convert", pflag.ContinueOnError)
	fromName := flagSet.StringP("from", "f", "", "input format (default: by extension)")
	toName := flagSet.StringP("to", "t", "", "output format (default: by extension)")
	pretty := flagSet.Bool("pretty", cfg.Config.Format.Pretty, "indent text output")
	codecName := codecFlag(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 2 {
		return fmt.Errorf("convert takes an input and an output file")
	}
	in, out := flagSet.Arg(0), flagSet.Arg(1)

	codec, err := compression.Lookup(*codecName)
	if err != nil {
		return err
	}
	opts := format.Options{Pretty: *pretty, Codec: codec}
	from, err := format.New(formatFor(*fromName, in), opts)
	if err != nil {
		return err
	}
	to, err := format.New(formatFor(*toName, out), opts)
	if err != nil {
		return err
	}

	data, err := readInput(in)
	if err != nil {
		return err
	}
	converted, err := format.Convert(from, to, data)
	if err != nil {
		return fmt.Errorf("convert %s to %s: %w", from.Name(), to.Name(), err)
	}
	return writeOutput(out, converted, stdout)
}

// formats lists the registered formats, strategies and codecs.
func formats(_ []string, stdout io.Writer) error {
	_, err := fmt.Fprintf(stdout, "formats:     %s\nstrategies:  %s\ncompression: %s\n",
		strings.Join(format.Names(), " "),
		strings.Join(strategy.Names(), " "),
		strings.Join(compression.Names(), " "))
	return err
}

// stats reports what the configured storage backend holds.
func stats(_ []string, stdout io.Writer) error {
	backend, err := storage.Open()
	if err != nil {
		return err
	}
	defer backend.Close()

	files, size, err := backend.Stats()
	if err != nil {
		return err
	}
	telemetry.NewMetricsCollector(0, backend).Collect()

	_, err = fmt.Fprintf(stdout, "backend: %s\npath:    %s\nfiles:   %d\nbytes:   %d\n",
		backend.Name(), cfg.StoragePath(), files, size)
	return err
}
