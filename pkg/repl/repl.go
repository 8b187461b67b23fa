// Package repl implements the read-eval-print loop driver: a line reader
// with a brace/bracket/paren depth tracker deciding when a statement is
// complete, and a pretty printer for the last evaluated expression's value.
//
// Grounded directly in the teacher's cmd/paserati/main.go (runReplWithTypes):
// a bufio.Reader over os.Stdin, "> " prompt, EOF -> "Goodbye!" exit. See
// SPEC_FULL.md §5's "Dropped teacher dependencies" for why this reads raw
// lines instead of calling into github.com/joeycumines/go-prompt.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/width"

	"jscore/pkg/errors"
	"jscore/pkg/interpreter"
	"jscore/pkg/lexer"
	"jscore/pkg/parser"
	"jscore/pkg/runtime"
	"jscore/pkg/source"
)

// Options configures the REPL session; see cmd/jscore's flag wiring.
type Options struct {
	PrintLastResult  bool
	NoSyntaxHighlight bool
}

// Run drives the loop until EOF (Ctrl+D) or a read error.
func Run(in *interpreter.Interpreter, r io.Reader, w io.Writer, opts Options) {
	reader := bufio.NewReader(r)
	fmt.Fprintln(w, "jscore (Ctrl+D to exit)")

	var buf strings.Builder
	depth := 0
	prompt := "> "

	for {
		fmt.Fprint(w, prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(w, "\nGoodbye!")
				return
			}
			fmt.Fprintf(w, "Error reading input: %s\n", err)
			return
		}

		depth += braceDepthDelta(line)
		buf.WriteString(line)

		if depth > 0 || endsMidObjectKey(buf.String()) {
			prompt = continuationPrompt(depth)
			continue
		}

		src := buf.String()
		buf.Reset()
		depth = 0
		prompt = "> "

		if strings.TrimSpace(src) == "" {
			continue
		}
		evalAndPrint(in, src, w, opts)
	}
}

func evalAndPrint(in *interpreter.Interpreter, src string, w io.Writer, opts Options) {
	program, diags := parseRepl(src)
	if len(diags) > 0 {
		interpreter.DisplayDiagnostics(src, diags)
		return
	}
	result, err := in.Run(program)
	if err != nil {
		if in.HasException() {
			fmt.Fprintln(w, runtime.Inspect(in.Heap(), in.Exception()))
			in.ClearException()
		} else {
			fmt.Fprintln(w, err)
		}
		return
	}
	if opts.PrintLastResult && !result.IsUndefined() {
		fmt.Fprintln(w, runtime.Inspect(in.Heap(), result))
	}
}

// parseRepl parses one accumulated REPL submission. A line starting with
// "{" is ambiguous between a block statement and an object-literal
// expression; ECMAScript's grammar resolves it as a block, which is
// useless at a REPL prompt (scenario S6 expects the object-literal
// reading). Node's repl.js resolves this by trying the input wrapped in
// parens first and falling back to the unwrapped parse -- the same trick
// applied here.
func parseRepl(src string) (*parser.Program, []errors.Diagnostic) {
	if strings.HasPrefix(strings.TrimSpace(src), "{") {
		wrapped := "(" + strings.TrimRight(src, " \t\r\n")
		wrapped = strings.TrimSuffix(wrapped, ";") + ");"
		l := lexer.NewLexer(wrapped)
		p := parser.New(l, source.NewReplSource(wrapped))
		if program, diags := p.ParseProgram(); len(diags) == 0 {
			return program, nil
		}
	}
	l := lexer.NewLexer(src)
	p := parser.New(l, source.NewReplSource(src))
	return p.ParseProgram()
}

// braceDepthDelta scans a line for {[( and }])  outside of string literals,
// returning the net depth change. A naive rune scan is sufficient here:
// false positives from braces inside strings mostly just delay submission
// by one extra blank line, never corrupt the parse (the parser sees the
// accumulated buffer, not this heuristic's view of it).
func braceDepthDelta(line string) int {
	delta := 0
	inString := byte(0)
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inString != 0 {
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == inString {
				inString = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			inString = c
		case '{', '[', '(':
			delta++
		case '}', ']', ')':
			delta--
		}
	}
	return delta
}

// endsMidObjectKey implements spec.md §4.6's "identifier:"/"string": object
// key continuation heuristic (scenario S6): a line ending in a bare key
// followed by a colon, with no value yet, should not be submitted as a
// complete statement even at depth 0 inside an object literal -- but since
// depth tracking already keeps us inside the { .. } until it closes, this
// only matters for the single edge case of a key typed on its own line
// right before the closing brace is expected; detected here by a trailing
// ":" with no following content.
func endsMidObjectKey(buf string) bool {
	trimmed := strings.TrimRight(buf, " \t\r\n")
	return strings.HasSuffix(trimmed, ":")
}

// continuationPrompt renders a "..." prompt followed by 1 to 4 spaces that
// depend only on depth: the display width (go-runewidth over x-text-width's
// fold) of depth copies of ". ", capped at 8, modulo 4, plus one. It does
// not track the column of the open bracket.
func continuationPrompt(depth int) string {
	folded := width.Fold.String(strings.Repeat(". ", depth))
	pad := runewidth.StringWidth(folded)
	if pad > 8 {
		pad = 8
	}
	return "..." + strings.Repeat(" ", pad%4+1)
}
