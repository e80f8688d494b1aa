package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/op/go-logging"

	"github.com/chronos-tachyon/smh"
)

const progName = "smh"

var log = logging.MustGetLogger("smh/cmd")

const usageMessageRaw = `
Usage: smh (-c | -d | -s) [options] FILE

Huffman byte-frequency analysis and compression.

Modes:
  -c          Compress FILE into an SMH1 container
  -d          Decompress the SMH1 container FILE
  -s          Only count byte frequencies and print the symbol table

Options:
  -f FILE     The file to process (same as the positional FILE)
  -o OUTPUT   Output path; defaults to FILE.huff when compressing, and to FILE
              without its .huff suffix (or FILE.out) when decompressing
  -verify     After compressing, decode the written container and compare
              xxhash64 digests with the input
  -debug      Enable debug logging
  -h          Show this help text
`

func usageMessage() string {
	return strings.TrimLeft(usageMessageRaw, "\n")
}

// usageError reports a malformed command line.  main exits with status 64
// for it, and with status 1 for any other error.
type usageError struct {
	detail string
}

func (e usageError) Error() string {
	return e.detail
}

func usageErrorf(detailFmt string, detailArgs ...interface{}) error {
	return usageError{detail: fmt.Sprintf(detailFmt, detailArgs...)}
}

func exitError(err error) {
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(os.Stderr, "%s: %s\n%s", progName, ue.detail, usageMessage())
		os.Exit(64)
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", progName, err.Error())
	os.Exit(1)
}

type nullWriter struct{}

func (n *nullWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

var leveledLogBackend logging.Leveled

func startLogging() {
	backend := logging.NewLogBackend(os.Stderr, progName+": ", 0)
	formatSpec := "%{color:bold}%{level:6s}%{color:reset} %{module:-8s} | %{message}"
	formatter := logging.MustStringFormatter(formatSpec)
	formatted := logging.NewBackendFormatter(backend, formatter)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.INFO, "")
	logging.SetBackend(leveled)
	leveledLogBackend = leveled
}

func defaultOutputPath(inputPath string, compress bool) string {
	if compress {
		return inputPath + ".huff"
	}
	if trimmed := strings.TrimSuffix(inputPath, ".huff"); trimmed != inputPath && trimmed != "" {
		return trimmed
	}
	return inputPath + ".out"
}

func verify(inputPath, containerPath string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return err
	}
	expect := digest.Sum64()

	c, err := smh.ReadContainerFile(containerPath)
	if err != nil {
		return err
	}
	data, err := smh.Decompress(c)
	if err != nil {
		return err
	}
	actual := xxhash.Sum64(data)

	if expect != actual {
		return fmt.Errorf("verification failed: input xxhash64 %016x, decoded xxhash64 %016x", expect, actual)
	}
	log.Infof("verified %q: xxhash64 %016x", containerPath, actual)
	return nil
}

func main() {
	startLogging()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		exitError(err)
	}
}

// run executes one invocation of the tool with the given command-line
// arguments (without the program name).  The frequency table of -s and the
// help text go to stdout.
func run(args []string, stdout io.Writer) error {
	ourFlags := flag.NewFlagSet(progName, flag.ContinueOnError)
	ourFlags.Usage = func() {}
	ourFlags.SetOutput(&nullWriter{})

	var compressMode, decompressMode, statsMode bool
	var inputPath, outputPath string
	var verifyFlag, debugLogging bool
	ourFlags.BoolVar(&compressMode, "c", false, "")
	ourFlags.BoolVar(&decompressMode, "d", false, "")
	ourFlags.BoolVar(&statsMode, "s", false, "")
	ourFlags.StringVar(&inputPath, "f", "", "")
	ourFlags.StringVar(&outputPath, "o", "", "")
	ourFlags.BoolVar(&verifyFlag, "verify", false, "")
	ourFlags.BoolVar(&debugLogging, "debug", false, "")

	argErr := ourFlags.Parse(args)
	if argErr == flag.ErrHelp || len(args) == 0 {
		_, err := io.WriteString(stdout, usageMessage())
		return err
	} else if argErr != nil {
		return usageErrorf("%s", argErr.Error())
	}

	if debugLogging && leveledLogBackend != nil {
		leveledLogBackend.SetLevel(logging.DEBUG, "")
	}

	switch {
	case ourFlags.NArg() > 1:
		return usageErrorf("unexpected arguments: %q", ourFlags.Args()[1:])
	case ourFlags.NArg() == 1 && inputPath != "":
		return usageErrorf("-f and FILE are mutually exclusive")
	case ourFlags.NArg() == 1:
		inputPath = ourFlags.Arg(0)
	case inputPath == "":
		return usageErrorf("no input file given")
	}

	numModes := 0
	for _, mode := range []bool{compressMode, decompressMode, statsMode} {
		if mode {
			numModes++
		}
	}
	if numModes != 1 {
		return usageErrorf("exactly one of -c, -d, -s is required")
	}
	if verifyFlag && !compressMode {
		return usageErrorf("-verify requires -c")
	}

	switch {
	case statsMode:
		ft, err := smh.ReadFrequencyTable(inputPath)
		if err != nil {
			return err
		}
		_, err = ft.Dump(stdout)
		return err

	case compressMode:
		if outputPath == "" {
			outputPath = defaultOutputPath(inputPath, true)
		}
		if err := smh.CompressFile(inputPath, outputPath); err != nil {
			return err
		}
		if verifyFlag {
			return verify(inputPath, outputPath)
		}
		return nil

	default:
		if outputPath == "" {
			outputPath = defaultOutputPath(inputPath, false)
		}
		return smh.DecompressFile(inputPath, outputPath)
	}
}
