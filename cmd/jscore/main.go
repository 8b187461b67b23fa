// Command jscore is the CLI front end: a script runner when given a
// positional file argument, a line-at-a-time REPL otherwise. Grounded in
// the teacher's cmd/paserati/main.go (flag.String/flag.Bool plus
// runFileWithTypes/runReplWithTypes), adapted to this runtime's flag set
// and exit-code conventions (see SPEC_FULL.md §6 External Interfaces).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"jscore/internal/rtlog"
	"jscore/pkg/interpreter"
	"jscore/pkg/lexer"
	"jscore/pkg/object"
	"jscore/pkg/parser"
	"jscore/pkg/repl"
	"jscore/pkg/runtime"
	"jscore/pkg/source"
	"jscore/pkg/value"
)

func main() {
	var (
		dumpAST           bool
		printLastResult   bool
		gcOnEveryAlloc    bool
		noSyntaxHighlight bool
		testMode          bool
	)

	flag.BoolVar(&dumpAST, "A", false, "dump the parsed AST before execution")
	flag.BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST before execution")
	flag.BoolVar(&printLastResult, "l", false, "print the value of the last expression")
	flag.BoolVar(&printLastResult, "print-last-result", false, "print the value of the last expression")
	flag.BoolVar(&gcOnEveryAlloc, "g", false, "collect garbage on every heap allocation")
	flag.BoolVar(&gcOnEveryAlloc, "gc-on-every-allocation", false, "collect garbage on every heap allocation")
	flag.BoolVar(&noSyntaxHighlight, "s", false, "disable REPL syntax highlighting")
	flag.BoolVar(&noSyntaxHighlight, "no-syntax-highlight", false, "disable REPL syntax highlighting")
	flag.BoolVar(&testMode, "t", false, "install test-mode globals (load, isStrictMode)")
	flag.BoolVar(&testMode, "test-mode", false, "install test-mode globals (load, isStrictMode)")
	flag.Parse()

	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Usage: jscore [flags] [script]")
		os.Exit(64)
	}

	log := rtlog.New()
	interp := interpreter.New(log)
	runtime.Initialize(interp)
	if gcOnEveryAlloc || getEnvBool("JSCORE_GC_ON_EVERY_ALLOC", false) {
		interp.Heap().SetThreshold(1)
	} else if n := getEnvInt("JSCORE_GC_THRESHOLD", 0); n > 0 {
		interp.Heap().SetThreshold(n)
	}
	installExit(interp)
	if testMode {
		installTestModeGlobals(interp)
	}

	if flag.NArg() == 1 {
		os.Exit(runFile(interp, flag.Arg(0), dumpAST, printLastResult))
	}

	// The REPL always echoes the last expression's value -- that is the
	// entire point of a REPL -- so -l only changes script-mode behavior.
	repl.Run(interp, os.Stdin, os.Stdout, repl.Options{
		PrintLastResult:   true,
		NoSyntaxHighlight: noSyntaxHighlight,
	})
}

func getEnvBool(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

func getEnvInt(name string, def int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// runFile parses and executes path, returning the process exit code: 0 on
// a clean run, 1 if parsing or execution ended in an uncaught exception.
func runFile(interp *interpreter.Interpreter, path string, dumpAST, printLastResult bool) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jscore: %s\n", err)
		return 1
	}
	src := stripShebang(string(raw))

	sf := source.FromFile(path, src)
	l := lexer.NewLexer(src)
	p := parser.New(l, sf)
	program, diags := p.ParseProgram()
	if len(diags) > 0 {
		interpreter.DisplayDiagnostics(src, diags)
		return 1
	}
	if dumpAST {
		fmt.Fprintln(os.Stderr, program.String())
	}

	result, err := interp.Run(program)
	if err != nil {
		if interp.HasException() {
			fmt.Fprintln(os.Stderr, runtime.Inspect(interp.Heap(), interp.Exception()))
			interp.ClearException()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	if printLastResult && !result.IsUndefined() {
		fmt.Fprintln(os.Stdout, runtime.Inspect(interp.Heap(), result))
	}
	return 0
}

// stripShebang removes a leading "#!...\n" line, per SPEC_FULL.md §6's
// shebang-handling requirement, so scripts can be made directly executable.
func stripShebang(src string) string {
	if len(src) < 2 || src[0] != '#' || src[1] != '!' {
		return src
	}
	if i := strings.IndexByte(src, '\n'); i != -1 {
		return src[i+1:]
	}
	return ""
}

// installExit wires a global exit(n) the way a script-runner host
// conventionally does: os.Exit(n) immediately, skipping any remaining
// statements and deferred cleanup (there is none to run).
func installExit(interp *interpreter.Interpreter) {
	interp.DefineNativeFunction(interp.Global(), "exit", func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		code := 0
		if len(args) > 0 {
			code = int(args[0].ToNumber())
		}
		os.Exit(code)
		return value.Undefined, nil
	}, 1, false)
}

// installTestModeGlobals adds load(files...) and isStrictMode(), the two
// globals SPEC_FULL.md §6 reserves for -t/--test-mode: a test harness loads
// fixture scripts by path (once each, via the interpreter's loaded-module
// bookkeeping) and asserts on the interpreter's current strictness.
func installTestModeGlobals(interp *interpreter.Interpreter) {
	interp.DefineNativeFunction(interp.Global(), "load", func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		for _, a := range args {
			path := a.ToStringValue()
			if interp.MarkModuleLoaded(path) {
				continue
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return value.Undefined, ctx.Throw("Error", "load: "+err.Error())
			}
			src := stripShebang(string(raw))
			sf := source.FromFile(path, src)
			l := lexer.NewLexer(src)
			p := parser.New(l, sf)
			program, diags := p.ParseProgram()
			if len(diags) > 0 {
				interpreter.DisplayDiagnostics(src, diags)
				return value.Undefined, ctx.Throw("SyntaxError", "load: failed to parse "+path)
			}
			if _, err := interp.Run(program); err != nil {
				return value.Undefined, err
			}
		}
		return value.Undefined, nil
	}, 1, false)

	interp.DefineNativeFunction(interp.Global(), "isStrictMode", func(ctx object.Context, this value.Value, args []value.Value) (value.Value, error) {
		return value.Boolean(interp.StrictMode()), nil
	}, 0, false)
}
