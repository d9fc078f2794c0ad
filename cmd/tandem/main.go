package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/tandemjs/tandem/internal/config"
	"github.com/tandemjs/tandem/internal/diagnostics"
	"github.com/tandemjs/tandem/pkg/engine"
)

type options struct {
	backend string
	expr    string
	file    string
	mode    string // "", "tokens", "ast", "disasm"
	color   bool
}

func usage() {
	fmt.Print(`Usage: tandem [options] [file` + config.SourceExtension + `]

Runs the file, or starts a REPL when no file is given and stdin is a
terminal. Source may also come from a pipe.

Options:
  -e <source>          evaluate source and print its value
  --backend <name>     execution backend: vm (default) or treewalk
  --tokens             print the token stream instead of running
  --ast                print the syntax tree instead of running
  --disasm             print the bytecode instead of running
  -h, --help           show this help

A tandem.yaml in the working directory can set backend and color.
`)
}

func parseArgs(cfg *config.Config) (*options, error) {
	opts := &options{backend: cfg.Backend}

	opts.color = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	if cfg.Color != nil {
		opts.color = *cfg.Color
	}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help" || arg == "help":
			usage()
			os.Exit(0)
		case arg == "-e" || arg == "--eval":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", arg)
			}
			opts.expr = args[i]
		case arg == "--backend":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("--backend requires an argument")
			}
			opts.backend = args[i]
		case strings.HasPrefix(arg, "--backend="):
			opts.backend = strings.TrimPrefix(arg, "--backend=")
		case arg == "--tokens":
			opts.mode = "tokens"
		case arg == "--ast":
			opts.mode = "ast"
		case arg == "--disasm":
			opts.mode = "disasm"
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown flag: %s", arg)
		case opts.file == "":
			opts.file = arg
		default:
			return nil, fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	if opts.backend != "vm" && opts.backend != "treewalk" {
		return nil, fmt.Errorf("unknown backend: %s", opts.backend)
	}
	return opts, nil
}

func printDiagnostics(errs []*diagnostics.Diagnostic, color bool) {
	for _, d := range errs {
		msg := d.Error()
		if color {
			msg = "\x1b[31m" + msg + "\x1b[0m"
		}
		fmt.Fprintf(os.Stderr, "- %s\n", msg)
	}
}

// inspect runs one of the non-executing passes over source.
func inspect(mode, source, file string) (string, []*diagnostics.Diagnostic) {
	switch mode {
	case "tokens":
		return engine.Tokenize(source, file)
	case "ast":
		return engine.Parse(source, file)
	default:
		return engine.Disassemble(source, file)
	}
}

// run executes source on a fresh session. echo controls whether the
// final expression value is printed, which -e mode wants and file mode
// does not.
func run(opts *options, source, file string, echo bool) {
	if opts.mode != "" {
		out, errs := inspect(opts.mode, source, file)
		if len(errs) > 0 {
			printDiagnostics(errs, opts.color)
			os.Exit(1)
		}
		fmt.Print(out)
		return
	}

	session := engine.NewSession(os.Stdout, opts.backend)
	value, errs := session.Run(source, file)
	if len(errs) > 0 {
		printDiagnostics(errs, opts.color)
		os.Exit(1)
	}
	if echo && value != "" {
		fmt.Println(value)
	}
}

func repl(opts *options) {
	fmt.Printf("tandem (%s backend) - :help for commands\n", opts.backend)
	session := engine.NewSession(os.Stdout, opts.backend)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			parts := strings.SplitN(line, " ", 2)
			rest := ""
			if len(parts) == 2 {
				rest = parts[1]
			}
			switch parts[0] {
			case ":quit", ":q", ":exit":
				return
			case ":help":
				fmt.Println("  :tokens <src>  print the token stream")
				fmt.Println("  :ast <src>     print the syntax tree")
				fmt.Println("  :disasm <src>  print the bytecode")
				fmt.Println("  :quit          leave the REPL")
				continue
			case ":tokens", ":ast", ":disasm":
				out, errs := inspect(strings.TrimPrefix(parts[0], ":"), rest, "<repl>")
				if len(errs) > 0 {
					printDiagnostics(errs, opts.color)
					continue
				}
				fmt.Print(out)
				continue
			default:
				fmt.Fprintf(os.Stderr, "unknown command: %s\n", parts[0])
				continue
			}
		}

		value, errs := session.Run(line, "<repl>")
		if len(errs) > 0 {
			printDiagnostics(errs, opts.color)
			continue
		}
		if value != "" {
			fmt.Println(value)
		}
	}
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	opts, err := parseArgs(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	switch {
	case opts.expr != "":
		run(opts, opts.expr, "<eval>", true)

	case opts.file != "":
		source, err := os.ReadFile(opts.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		abs, err := filepath.Abs(opts.file)
		if err != nil {
			abs = opts.file
		}
		run(opts, string(source), abs, false)

	case isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()):
		repl(opts)

	default:
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		run(opts, string(source), "<stdin>", false)
	}
}
