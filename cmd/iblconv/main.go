package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"skyibl/liblog"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type commonArgs struct {
	compress int
	out      string
	quiet    bool
	silent   bool
	debug    bool
	ext      string
	suffix   string
}

var cargs *commonArgs

type command struct {
	Run   func(self *command)
	Name  string
	Help  string
	Flags *flag.FlagSet
}

var commands []*command

func printGeneralUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [arguments]\n\nThe commands are:\n\n", filepath.Base(os.Args[0]))
	width := 0
	for _, c := range commands {
		width = max(width, len(c.Name))
	}
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "    %-*s%s\n", width+4, c.Name, c.Help)
	}
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

func printCommandUsage(cmd *command, operands string) {
	fmt.Fprintf(os.Stderr, "Usage: %s %s [arguments]%s\n\nThe arguments are:\n\n", filepath.Base(os.Args[0]), cmd.Name, operands)
	cmd.Flags.SetOutput(os.Stderr)
	cmd.Flags.PrintDefaults()
	os.Exit(1)
}

func findCommand(name string) *command {
	i := slices.IndexFunc(commands, func(c *command) bool {
		return strings.EqualFold(c.Name, name)
	})
	if i < 0 {
		return nil
	}
	return commands[i]
}

func main() {
	commands = []*command{
		createIrradianceCommand(),
		createPackCommand(),
		createPrefilterCommand(),
		createUnpackCommand(),
	}

	if len(os.Args) < 2 {
		printGeneralUsage()
	}
	cmd := findCommand(os.Args[1])
	if cmd == nil {
		printGeneralUsage()
	}

	harderr(cmd.Flags.Parse(os.Args[2:]))
	cmd.Run(cmd)
	liblog.Sync()
}

func registerCommonFlags(flags *flag.FlagSet, args *commonArgs) {
	flags.IntVar(&args.compress, "compress", args.compress, "the compression level from 0 (none) to 10 (high)")
	flags.IntVar(&args.compress, "c", args.compress, "shorthand for compress")
	flags.StringVar(&args.out, "out", args.out, "the output directory")
	flags.StringVar(&args.out, "o", args.out, "shorthand for out")
	flags.BoolVar(&args.quiet, "quiet", args.quiet, "disables informational output")
	flags.BoolVar(&args.quiet, "q", args.quiet, "shorthand for quiet")
	flags.BoolVar(&args.silent, "silent", args.silent, "disables per file error output")
	flags.BoolVar(&args.debug, "debug", args.debug, "log to the console at debug level")
	flags.StringVar(&args.ext, "ext", args.ext, "the result file extension")
	flags.StringVar(&args.suffix, "suffix", args.suffix, "the result file suffix")
}

func setCommonArgs(args *commonArgs) {
	cargs = args
	harderr(liblog.Init(args.debug))
	if args.out == "" {
		var err error
		args.out, err = os.Getwd()
		harderr(err)
	}
	if _, err := os.Stat(args.out); err != nil {
		harderr(fmt.Errorf("cannot stat output directory: %w", err))
	}
}

// gatherInputFiles expands globs in order, files matched twice are kept once.
func gatherInputFiles(globs []string) []string {
	var matched []string
	for _, g := range globs {
		m, err := filepath.Glob(g)
		if softerr(err) {
			continue
		}
		if len(m) == 0 {
			softerr(fmt.Errorf("no files match %q", g))
		}
		for _, p := range m {
			if !slices.Contains(matched, p) {
				matched = append(matched, p)
			}
		}
	}
	return matched
}

func outputPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(cargs.out, base+cargs.suffix+cargs.ext)
}

func info(format string, a ...any) {
	if !cargs.quiet {
		fmt.Printf(format+"\n", a...)
	}
}

func closeFile(closer io.Closer) {
	if err := closer.Close(); err != nil {
		liblog.Log.Warn("could not close file", zap.Error(err))
	}
}

func softerr(err error) bool {
	if err == nil {
		return false
	}
	liblog.Log.Debug("file failed", zap.Error(err))
	if !cargs.silent {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return true
}

func harderr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
