// Brine CLI - pack, unpack, and inspect brine envelopes
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/brine/codec"
	"github.com/chazu/brine/wire"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("brine")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "pack":
		err = runPack(os.Args[2:])
	case "unpack":
		err = runUnpack(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "codecs":
		err = runCodecs(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "brine: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "brine: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: brine <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  pack    Encode a JSON document into a brine envelope\n")
	fmt.Fprintf(os.Stderr, "  unpack  Decode a brine envelope back to JSON\n")
	fmt.Fprintf(os.Stderr, "  info    Show envelope header and chunk layout\n")
	fmt.Fprintf(os.Stderr, "  codecs  List compression codecs available in this build\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  brine pack -codec ZSTD -chunk 65536 -o data.brine data.json\n")
	fmt.Fprintf(os.Stderr, "  brine unpack data.brine\n")
	fmt.Fprintf(os.Stderr, "  brine info data.brine\n")
	fmt.Fprintf(os.Stderr, "\nDefaults for -codec and -chunk may be set in brine.toml.\n")
}

func runPack(args []string) error {
	cfg := loadConfig()

	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	codecName := fs.String("codec", cfg.Codec, "Compression codec name (see 'brine codecs')")
	chunk := fs.Uint64("chunk", cfg.ChunkLimit, "Chunk size limit in bytes (0 = unbounded)")
	out := fs.String("o", "", "Output path (default: input path + .brine)")
	verbose := fs.Bool("v", false, "Verbose output")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("pack: expected exactly one input file")
	}
	configureLogging(*verbose)

	in := fs.Arg(0)
	id, err := codecByName(*codecName)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	root, err := valueFromJSON(data)
	if err != nil {
		return fmt.Errorf("pack %s: %w", in, err)
	}

	dest := *out
	if dest == "" {
		dest = in + ".brine"
	}

	opts := &wire.Options{Codec: id, ChunkLimit: *chunk}
	if err := wire.WriteFile(dest, root, opts); err != nil {
		return fmt.Errorf("pack %s: %w", in, err)
	}
	log.Infof("packed %s -> %s (codec=%s chunk=%d)", in, dest, *codecName, *chunk)
	fmt.Printf("%s\n", dest)
	return nil
}

func runUnpack(args []string) error {
	fs := flag.NewFlagSet("unpack", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("unpack: expected exactly one input file")
	}
	configureLogging(*verbose)

	res, err := wire.ReadFile(fs.Arg(0), wire.HostVersion())
	if err != nil {
		return fmt.Errorf("unpack %s: %w", fs.Arg(0), err)
	}
	log.Infof("producer %s (bytecode %s, usable=%t)",
		res.Producer.Interpreter, res.Producer.Bytecode, res.BytecodeUsable)

	out, err := jsonFromValue(res.Value)
	if err != nil {
		return fmt.Errorf("unpack %s: %w", fs.Arg(0), err)
	}
	fmt.Printf("%s\n", out)
	return nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("info: expected exactly one input file")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	h, chunks, err := wire.Inspect(wire.NewFileSource(f))
	if err != nil {
		return fmt.Errorf("info %s: %w", fs.Arg(0), err)
	}

	codecName := fmt.Sprintf("unknown (%d)", h.Codec)
	if c, err := codec.Lookup(h.Codec); err == nil {
		codecName = c.Name()
	}

	fmt.Printf("format version:  %d\n", wire.FormatVersion)
	fmt.Printf("producer:        %s\n", h.Producer.Interpreter)
	fmt.Printf("bytecode:        %s\n", h.Producer.Bytecode)
	fmt.Printf("codec:           %s\n", codecName)
	if h.ChunkLimit == 0 {
		fmt.Printf("chunk limit:     unbounded\n")
	} else {
		fmt.Printf("chunk limit:     %d\n", h.ChunkLimit)
	}
	fmt.Printf("chunks:          %d\n", len(chunks))
	var total uint64
	for _, c := range chunks {
		total += c.CompressedLen
	}
	fmt.Printf("compressed size: %d\n", total)
	return nil
}

func runCodecs(args []string) error {
	for _, info := range codec.Available() {
		fmt.Printf("%2d  %s\n", info.ID, info.Name)
	}
	return nil
}

func codecByName(name string) (codec.ID, error) {
	for _, info := range codec.Available() {
		if info.Name == name {
			return info.ID, nil
		}
	}
	return 0, fmt.Errorf("codec %q is not available (see 'brine codecs')", name)
}

func configureLogging(verbose bool) {
	verbosity := 0
	if verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)
}
