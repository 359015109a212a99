/*
Tinyc parses programs in the toy C-like language against a context-free
grammar description, using either a backtracking top-down parser or a
table-free predictive recursive-descent parser.

Usage:

	tinyc [flags] [source-file]

The flags are:

	-v, --version
		Give the current version of tinyc and then exit.

	-g, --grammar FILE
		Use the provided grammar description file. Defaults to the value in
		.tinycrc.toml; with neither, tinyc exits with an error.

	-m, --mode {backtrack,predictive}
		Select which parser to use. Defaults to "predictive", automatically
		falling back to "backtrack" when the grammar fails the
		backtrack-freeness check and --mode was not given explicitly.

	-t, --transform
		Run left-recursion elimination and left-factoring on the grammar
		before parsing. Defaults to on.

	-r, --max-transform-rounds N
		Bound the number of alternating elimination/left-factoring rounds the
		transform driver may run before giving up.

	-e, --tree {indent,sexpr}
		Select how a successfully parsed tree is printed.

	-d, --direct
		Force reading directly from stdin instead of going through GNU
		readline, even if launched in a tty.

	-c, --config FILE
		Read defaults from the given TOML config file instead of
		.tinycrc.toml in the current directory.

If source-file is given, tinyc parses it once and prints the resulting tree
or error and exits. Otherwise it starts a REPL: lines are read until their
curly braces balance, that statement is parsed as a standalone program, and
the resulting tree or error is printed, until EOF.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/tinyc/internal/config"
	"github.com/dekarrin/tinyc/internal/gramcache"
	"github.com/dekarrin/tinyc/internal/grammar"
	"github.com/dekarrin/tinyc/internal/input"
	"github.com/dekarrin/tinyc/internal/lex"
	"github.com/dekarrin/tinyc/internal/parse"
	"github.com/dekarrin/tinyc/internal/tree"
	"github.com/dekarrin/tinyc/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitParseError indicates the input program failed to parse.
	ExitParseError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue loading the grammar or configuration.
	ExitInitError
)

var (
	returnCode int = ExitSuccess

	flagVersion   = pflag.BoolP("version", "v", false, "Gives the version info")
	flagGrammar   = pflag.StringP("grammar", "g", "", "The grammar description file to parse with")
	flagMode      = pflag.StringP("mode", "m", "", "Parser to use: backtrack or predictive")
	flagTransform = pflag.BoolP("transform", "t", true, "Run left-recursion elimination and left-factoring before parsing")
	flagRounds    = pflag.IntP("max-transform-rounds", "r", 0, "Bound on transform driver rounds")
	flagTree      = pflag.StringP("tree", "e", "indent", "Tree print style: indent or sexpr")
	flagDirect    = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of readline")
	flagConfig    = pflag.StringP("config", "c", ".tinycrc.toml", "Config file to read defaults from")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	applyFlagOverrides(&cfg)

	g, err := loadGrammar(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	mode, err := resolveMode(g, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	args := pflag.Args()
	if len(args) > 0 {
		src, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		if !runOnce(g, mode, string(src)) {
			returnCode = ExitParseError
		}
		return
	}

	runREPL(g, mode)
}

func applyFlagOverrides(cfg *config.Config) {
	if *flagGrammar != "" {
		cfg.Grammar = *flagGrammar
	}
	if *flagMode != "" {
		cfg.Mode = config.Mode(*flagMode)
	}
	pflag.CommandLine.Visit(func(f *pflag.Flag) {
		if f.Name == "transform" {
			cfg.Transform = *flagTransform
		}
		if f.Name == "max-transform-rounds" {
			cfg.MaxTransformRounds = *flagRounds
		}
	})
}

func loadGrammar(cfg config.Config) (*grammar.Grammar, error) {
	if cfg.Grammar == "" {
		return nil, fmt.Errorf("no grammar file configured; pass --grammar or set it in %s", *flagConfig)
	}

	src, err := os.ReadFile(cfg.Grammar)
	if err != nil {
		return nil, fmt.Errorf("read grammar %s: %w", cfg.Grammar, err)
	}

	if cfg.Transform {
		if g, ok, err := gramcache.Load(cfg.Grammar, src); err == nil && ok {
			return g, nil
		}
	}

	g, err := grammar.ParseDescription(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse grammar %s: %w", cfg.Grammar, err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grammar %s: %w", cfg.Grammar, err)
	}

	if cfg.Transform {
		if err := grammar.TransformDriver(g, cfg.MaxTransformRounds); err != nil {
			return nil, fmt.Errorf("transform grammar %s: %w", cfg.Grammar, err)
		}
		if err := gramcache.Save(cfg.Grammar, src, g); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not write grammar cache: %s\n", err.Error())
		}
	}

	return g, nil
}

// resolveMode decides backtrack vs predictive, auto-falling back to
// backtrack when the configured mode is predictive but wasn't explicitly
// requested on the command line and the grammar isn't backtrack-free.
func resolveMode(g *grammar.Grammar, cfg config.Config) (config.Mode, error) {
	if cfg.Mode == config.ModeBacktrack {
		return config.ModeBacktrack, nil
	}

	err := grammar.CheckBacktrackFree(g)
	if err == nil {
		return config.ModePredictive, nil
	}

	explicit := false
	pflag.CommandLine.Visit(func(f *pflag.Flag) {
		if f.Name == "mode" {
			explicit = true
		}
	})
	if explicit {
		return "", err
	}

	fmt.Fprintf(os.Stderr, "note: grammar is not backtrack-free (%s); falling back to backtrack mode\n", err.Error())
	return config.ModeBacktrack, nil
}

func runOnce(g *grammar.Grammar, mode config.Mode, src string) bool {
	toks, err := lex.Lex(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return false
	}
	stream := lex.NewStream(toks)

	var root *tree.Node
	if mode == config.ModeBacktrack {
		root, err = parse.Backtrack(g, stream)
	} else {
		root, err = parse.Predictive(g, stream)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return false
	}

	printTree(root)
	return true
}

func printTree(root *tree.Node) {
	if *flagTree == "sexpr" {
		fmt.Println(root.SExpr())
		return
	}
	fmt.Println(root.String())
}

func runREPL(g *grammar.Grammar, mode config.Mode) {
	isTTY := !*flagDirect && isInteractive()

	var reader interface {
		ReadLine() (string, error)
		LineNo() int
		Close() error
	}
	var err error
	if isTTY {
		reader, err = input.NewInteractiveReader("tinyc> ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
	} else {
		reader = input.NewDirectReader(os.Stdin)
	}
	defer reader.Close()

	for {
		stmt, startLine, err := input.ReadStatement(reader)
		if err != nil {
			return
		}
		if !runOnce(g, mode, stmt) {
			fmt.Fprintf(os.Stderr, "  (statement started at input line %d)\n", startLine)
		}
	}
}

func isInteractive() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
