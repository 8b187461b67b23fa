package parser

import (
	"testing"

	"jscore/pkg/lexer"
)

func parseProgram(t *testing.T, input string) *Program {
	t.Helper()
	l := lexer.NewLexer(input)
	p := New(l, nil)
	program, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("parser had %d errors for %q: %v", len(errs), input, errs)
	}
	return program
}

func TestParseVariableStatement(t *testing.T) {
	tests := []struct {
		input string
		kind  string
		name  string
	}{
		{"let a = 5;", "let", "a"},
		{"const b = 10;", "const", "b"},
		{"var c;", "var", "c"},
	}
	for _, tt := range tests {
		program := parseProgram(t, tt.input)
		if len(program.Statements) != 1 {
			t.Fatalf("expected 1 statement, got %d", len(program.Statements))
		}
		stmt, ok := program.Statements[0].(*VariableStatement)
		if !ok {
			t.Fatalf("expected *VariableStatement, got %T", program.Statements[0])
		}
		if stmt.Kind != tt.kind || stmt.Name.Value != tt.name {
			t.Errorf("got kind=%s name=%s, want kind=%s name=%s", stmt.Kind, stmt.Name.Value, tt.kind, tt.name)
		}
	}
}

func TestParseObjectLiteralScenarioS1(t *testing.T) {
	program := parseProgram(t, `let a={}; a.x=1; a.y=2; let b={}; b.x=1; b.y=2;`)
	if len(program.Statements) != 6 {
		t.Fatalf("expected 6 statements, got %d", len(program.Statements))
	}
}

func TestParseMemberAndDelete(t *testing.T) {
	program := parseProgram(t, `delete a.x;`)
	stmt, ok := program.Statements[0].(*ExpressionStatement)
	if !ok {
		t.Fatalf("expected *ExpressionStatement, got %T", program.Statements[0])
	}
	del, ok := stmt.Expression.(*PrefixExpression)
	if !ok || del.Operator != "delete" {
		t.Fatalf("expected delete prefix expression, got %#v", stmt.Expression)
	}
	member, ok := del.Right.(*MemberExpression)
	if !ok || member.Computed {
		t.Fatalf("expected non-computed member expression, got %#v", del.Right)
	}
}

func TestParseForInStatementScenarioS7(t *testing.T) {
	program := parseProgram(t, `let a=[]; a[0]=1; a[2]=3; for (let k in a) print(k);`)
	forIn, ok := program.Statements[len(program.Statements)-1].(*ForInStatement)
	if !ok {
		t.Fatalf("expected *ForInStatement, got %T", program.Statements[len(program.Statements)-1])
	}
	if forIn.Name.Value != "k" {
		t.Errorf("ForInStatement.Name = %s, want k", forIn.Name.Value)
	}
}

func TestParseFunctionLiteralAndCall(t *testing.T) {
	program := parseProgram(t, `function add(a, b) { return a + b; } add(1, 2);`)
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	fnStmt, ok := program.Statements[0].(*ExpressionStatement)
	if !ok {
		t.Fatalf("expected *ExpressionStatement, got %T", program.Statements[0])
	}
	fn, ok := fnStmt.Expression.(*FunctionLiteral)
	if !ok || fn.Name.Value != "add" || len(fn.Parameters) != 2 {
		t.Fatalf("unexpected function literal: %#v", fnStmt.Expression)
	}

	callStmt, ok := program.Statements[1].(*ExpressionStatement)
	if !ok {
		t.Fatalf("expected *ExpressionStatement, got %T", program.Statements[1])
	}
	call, ok := callStmt.Expression.(*CallExpression)
	if !ok || len(call.Arguments) != 2 {
		t.Fatalf("unexpected call expression: %#v", callStmt.Expression)
	}
}

func TestParseArrowFunction(t *testing.T) {
	program := parseProgram(t, `let f = (x, y) => x + y;`)
	stmt := program.Statements[0].(*VariableStatement)
	arrow, ok := stmt.Value.(*ArrowFunctionLiteral)
	if !ok {
		t.Fatalf("expected *ArrowFunctionLiteral, got %T", stmt.Value)
	}
	if len(arrow.Parameters) != 2 {
		t.Errorf("expected 2 parameters, got %d", len(arrow.Parameters))
	}
	if _, ok := arrow.Body.(*InfixExpression); !ok {
		t.Errorf("expected concise body to be an expression, got %T", arrow.Body)
	}
}

func TestParseSingleParamArrowFunctionRequiresParens(t *testing.T) {
	// This grammar only recognizes arrow functions whose parameter list is
	// parenthesized; a bare identifier before '=>' is not special-cased.
	l := lexer.NewLexer(`let f = x => x * 2;`)
	p := New(l, nil)
	_, errs := p.ParseProgram()
	if len(errs) == 0 {
		t.Fatalf("expected a parse error for an unparenthesized arrow parameter")
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	program := parseProgram(t, `try { throw 1; } catch (e) { print(e); } finally { print(0); }`)
	stmt, ok := program.Statements[0].(*TryStatement)
	if !ok {
		t.Fatalf("expected *TryStatement, got %T", program.Statements[0])
	}
	if stmt.CatchParam == nil || stmt.CatchParam.Value != "e" {
		t.Errorf("expected catch param 'e', got %#v", stmt.CatchParam)
	}
	if stmt.FinallyBlock == nil {
		t.Errorf("expected a finally block")
	}
}

func TestParseTernaryAndLogical(t *testing.T) {
	program := parseProgram(t, `let x = a && b ? 1 : 2;`)
	stmt := program.Statements[0].(*VariableStatement)
	cond, ok := stmt.Value.(*ConditionalExpression)
	if !ok {
		t.Fatalf("expected *ConditionalExpression, got %T", stmt.Value)
	}
	if _, ok := cond.Condition.(*LogicalExpression); !ok {
		t.Errorf("expected logical expression as condition, got %T", cond.Condition)
	}
}

func TestParseDefineOwnPropertyCallScenarioS5(t *testing.T) {
	program := parseProgram(t, `let o={a:1}; Object.defineProperty(o,"a",{writable:false});`)
	exprStmt, ok := program.Statements[1].(*ExpressionStatement)
	if !ok {
		t.Fatalf("expected *ExpressionStatement, got %T", program.Statements[1])
	}
	call, ok := exprStmt.Expression.(*CallExpression)
	if !ok {
		t.Fatalf("expected *CallExpression, got %T", exprStmt.Expression)
	}
	member, ok := call.Function.(*MemberExpression)
	if !ok || member.Property.(*Identifier).Value != "defineProperty" {
		t.Fatalf("unexpected call target: %#v", call.Function)
	}
	if len(call.Arguments) != 3 {
		t.Fatalf("expected 3 arguments, got %d", len(call.Arguments))
	}
}
