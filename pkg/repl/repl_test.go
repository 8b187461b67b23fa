package repl

import (
	"bytes"
	"strings"
	"testing"

	"jscore/pkg/interpreter"
	"jscore/pkg/runtime"
)

func newSession(t *testing.T) *interpreter.Interpreter {
	t.Helper()
	in := interpreter.New(nil)
	runtime.Initialize(in)
	return in
}

func TestRunEchoesLastExpressionResult(t *testing.T) {
	in := newSession(t)
	var out bytes.Buffer
	Run(in, strings.NewReader("1 + 2\n"), &out, Options{PrintLastResult: true})
	if !strings.Contains(out.String(), "3") {
		t.Errorf("output = %q, want it to contain the echoed result 3", out.String())
	}
}

// TestRunAcceptsMultilineObjectLiteral exercises scenario S6: "{" then
// "\"a\": 1 }" on the next line is a single object-literal submission, not
// two statements, and it prints as { "a": 1 }.
func TestRunAcceptsMultilineObjectLiteral(t *testing.T) {
	in := newSession(t)
	var out bytes.Buffer
	Run(in, strings.NewReader("{\n\"a\": 1 }\n"), &out, Options{PrintLastResult: true})
	if !strings.Contains(out.String(), `"a": 1`) {
		t.Errorf("output = %q, want it to contain the printed object literal", out.String())
	}
}

func TestRunExitsCleanlyOnEOF(t *testing.T) {
	in := newSession(t)
	var out bytes.Buffer
	Run(in, strings.NewReader(""), &out, Options{})
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Errorf("output = %q, want a Goodbye! on EOF", out.String())
	}
}

func TestRunReportsUncaughtException(t *testing.T) {
	in := newSession(t)
	var out bytes.Buffer
	Run(in, strings.NewReader("undeclaredVariable;\n"), &out, Options{PrintLastResult: true})
	if !strings.Contains(out.String(), "ReferenceError") {
		t.Errorf("output = %q, want it to report the ReferenceError", out.String())
	}
}
