package parser

import (
	"fmt"
	"strconv"
	"strings"

	"jscore/pkg/errors"
	"jscore/pkg/lexer"
	"jscore/pkg/source"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	COMMA
	ASSIGNMENT
	TERNARY
	COALESCE
	LOGICAL_OR
	LOGICAL_AND
	BITWISE_OR
	EQUALS
	LESSGREATER
	SUM
	PRODUCT
	PREFIX
	POSTFIX
	CALL
	INDEX
	MEMBER
)

var precedences = map[lexer.TokenType]int{
	lexer.COMMA:           COMMA,
	lexer.ASSIGN:          ASSIGNMENT,
	lexer.PLUS_ASSIGN:     ASSIGNMENT,
	lexer.MINUS_ASSIGN:    ASSIGNMENT,
	lexer.ASTERISK_ASSIGN: ASSIGNMENT,
	lexer.SLASH_ASSIGN:    ASSIGNMENT,
	lexer.QUESTION:        TERNARY,
	lexer.COALESCE:        COALESCE,
	lexer.LOGICAL_OR:      LOGICAL_OR,
	lexer.LOGICAL_AND:     LOGICAL_AND,
	lexer.PIPE:            BITWISE_OR,
	lexer.EQ:              EQUALS,
	lexer.NOT_EQ:          EQUALS,
	lexer.STRICT_EQ:       EQUALS,
	lexer.STRICT_NOT_EQ:   EQUALS,
	lexer.LT:              LESSGREATER,
	lexer.GT:              LESSGREATER,
	lexer.LE:              LESSGREATER,
	lexer.GE:              LESSGREATER,
	lexer.IN:              LESSGREATER,
	lexer.INSTANCEOF:      LESSGREATER,
	lexer.PLUS:            SUM,
	lexer.MINUS:           SUM,
	lexer.SLASH:           PRODUCT,
	lexer.ASTERISK:        PRODUCT,
	lexer.PERCENT:         PRODUCT,
	lexer.INC:             POSTFIX,
	lexer.DEC:             POSTFIX,
	lexer.LPAREN:          CALL,
	lexer.LBRACKET:        INDEX,
	lexer.DOT:             MEMBER,
}

type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression
)

// Parser builds an AST from a token stream via recursive-descent, Pratt-style
// expression parsing.
type Parser struct {
	l      *lexer.Lexer
	source *source.SourceFile
	errors []errors.Diagnostic

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// New constructs a Parser reading from l, attributing diagnostics to src.
func New(l *lexer.Lexer, src *source.SourceFile) *Parser {
	p := &Parser{l: l, source: src}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.UNDEFINED, p.parseUndefinedLiteral)
	p.registerPrefix(lexer.THIS, p.parseThisExpression)
	p.registerPrefix(lexer.NEW, p.parseNewExpression)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.TYPEOF, p.parsePrefixExpression)
	p.registerPrefix(lexer.DELETE, p.parsePrefixExpression)
	p.registerPrefix(lexer.INC, p.parsePrefixExpression)
	p.registerPrefix(lexer.DEC, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedOrArrow)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.SLASH, lexer.ASTERISK, lexer.PERCENT,
		lexer.EQ, lexer.NOT_EQ, lexer.STRICT_EQ, lexer.STRICT_NOT_EQ,
		lexer.LT, lexer.GT, lexer.LE, lexer.GE, lexer.IN, lexer.INSTANCEOF, lexer.PIPE,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(lexer.LOGICAL_AND, p.parseLogicalExpression)
	p.registerInfix(lexer.LOGICAL_OR, p.parseLogicalExpression)
	p.registerInfix(lexer.COALESCE, p.parseLogicalExpression)
	p.registerInfix(lexer.ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.PLUS_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.MINUS_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.ASTERISK_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.SLASH_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.QUESTION, p.parseConditionalExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.DOT, p.parseDotExpression)
	p.registerInfix(lexer.INC, p.parsePostfixExpression)
	p.registerInfix(lexer.DEC, p.parsePostfixExpression)
	p.registerInfix(lexer.COMMA, p.parseSequenceExpression)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(tt lexer.TokenType, fn prefixParseFn) { p.prefixParseFns[tt] = fn }
func (p *Parser) registerInfix(tt lexer.TokenType, fn infixParseFn)   { p.infixParseFns[tt] = fn }

// Errors returns every diagnostic accumulated during parsing.
func (p *Parser) Errors() []errors.Diagnostic { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(tt lexer.TokenType) bool  { return p.curToken.Type == tt }
func (p *Parser) peekTokenIs(tt lexer.TokenType) bool { return p.peekToken.Type == tt }

func (p *Parser) expectPeek(tt lexer.TokenType) bool {
	if p.peekTokenIs(tt) {
		p.nextToken()
		return true
	}
	p.peekError(tt)
	return false
}

func (p *Parser) peekError(tt lexer.TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead", tt, p.peekToken.Type)
	p.addError(p.peekToken, msg)
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	p.errors = append(p.errors, &errors.SyntaxError{
		Position: errors.Position{Line: tok.Line, Column: tok.Column, StartPos: tok.StartPos, EndPos: tok.EndPos, Source: p.source},
		Msg:      msg,
	})
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram consumes the entire token stream, returning the Program and
// any diagnostics collected along the way.
func (p *Parser) ParseProgram() (*Program, []errors.Diagnostic) {
	program := &Program{}
	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}
	return program, p.errors
}

func (p *Parser) parseStatement() Statement {
	switch p.curToken.Type {
	case lexer.VAR, lexer.LET, lexer.CONST:
		return p.parseVariableStatement()
	case lexer.LBRACE:
		return p.parseBlockStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.DO:
		return p.parseDoWhileStatement()
	case lexer.FOR:
		return p.parseForOrForInStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.BREAK:
		return p.parseBreakStatement()
	case lexer.CONTINUE:
		return p.parseContinueStatement()
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.SEMICOLON:
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseVariableStatement() Statement {
	tok := p.curToken
	kind := tok.Literal

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	name := &Identifier{Token: p.curToken, Value: p.curToken.Literal}

	stmt := &VariableStatement{Token: tok, Kind: kind, Name: name}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpression(ASSIGNMENT)
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseBlockStatement() *BlockStatement {
	block := &BlockStatement{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseIfStatement() Statement {
	stmt := &IfStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Consequence = p.parseBlockStatement()

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		if p.peekTokenIs(lexer.IF) {
			p.nextToken()
			stmt.Alternative = p.parseIfStatement()
		} else if p.expectPeek(lexer.LBRACE) {
			stmt.Alternative = p.parseBlockStatement()
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() Statement {
	stmt := &WhileStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseDoWhileStatement() Statement {
	stmt := &DoWhileStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if !p.expectPeek(lexer.WHILE) {
		return nil
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseForOrForInStatement() Statement {
	forTok := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}

	var initKind string
	var declared *Identifier
	var initStmt Statement

	if p.peekTokenIs(lexer.VAR) || p.peekTokenIs(lexer.LET) || p.peekTokenIs(lexer.CONST) {
		p.nextToken()
		initKind = p.curToken.Literal
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		declared = &Identifier{Token: p.curToken, Value: p.curToken.Literal}

		if p.peekTokenIs(lexer.IN) {
			p.nextToken() // consume 'in'
			p.nextToken()
			obj := p.parseExpression(LOWEST)
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
			p.nextToken()
			var body *BlockStatement
			if p.curTokenIs(lexer.LBRACE) {
				body = p.parseBlockStatement()
			} else {
				body = &BlockStatement{Token: p.curToken}
				if stmt := p.parseStatement(); stmt != nil {
					body.Statements = []Statement{stmt}
				}
			}
			return &ForInStatement{Token: forTok, Kind: initKind, Name: declared, Object: obj, Body: body}
		}

		varStmt := &VariableStatement{Token: forTok, Kind: initKind, Name: declared}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			varStmt.Value = p.parseExpression(ASSIGNMENT)
		}
		initStmt = varStmt
	} else if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		expr := p.parseExpression(LOWEST)
		if ident, ok := expr.(*Identifier); ok && p.peekTokenIs(lexer.IN) {
			p.nextToken() // consume 'in'
			p.nextToken()
			obj := p.parseExpression(LOWEST)
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
			if !p.expectPeek(lexer.LBRACE) {
				return nil
			}
			body := p.parseBlockStatement()
			return &ForInStatement{Token: forTok, Kind: "", Name: ident, Object: obj, Body: body}
		}
		initStmt = &ExpressionStatement{Token: forTok, Expression: expr}
	}

	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	var condition Expression
	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		condition = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	var update Expression
	if !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		update = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return &ForStatement{Token: forTok, Init: initStmt, Condition: condition, Update: update, Body: body}
}

func (p *Parser) parseReturnStatement() Statement {
	stmt := &ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseBreakStatement() Statement {
	stmt := &BreakStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseContinueStatement() Statement {
	stmt := &ContinueStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseThrowStatement() Statement {
	stmt := &ThrowStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseTryStatement() Statement {
	stmt := &TryStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Block = p.parseBlockStatement()

	if p.peekTokenIs(lexer.CATCH) {
		p.nextToken()
		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			if !p.expectPeek(lexer.IDENT) {
				return nil
			}
			stmt.CatchParam = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
		}
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		stmt.CatchBlock = p.parseBlockStatement()
	}
	if p.peekTokenIs(lexer.FINALLY) {
		p.nextToken()
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		stmt.FinallyBlock = p.parseBlockStatement()
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() Statement {
	stmt := &ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseExpression(precedence int) Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError(p.curToken, fmt.Sprintf("no prefix parse function for %s found", p.curToken.Type))
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() Expression {
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() Expression {
	lit := &NumberLiteral{Token: p.curToken}
	v, err := parseNumericLiteral(p.curToken.Literal)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as a number", p.curToken.Literal))
		return nil
	}
	lit.Value = v
	return lit
}

// parseNumericLiteral interprets the raw lexeme produced by the lexer's
// readNumber, including 0x/0b/0o prefixes and '_' digit separators.
func parseNumericLiteral(raw string) (float64, error) {
	clean := strings.ReplaceAll(raw, "_", "")
	switch {
	case strings.HasPrefix(clean, "0x"), strings.HasPrefix(clean, "0X"):
		n, err := strconv.ParseInt(clean[2:], 16, 64)
		return float64(n), err
	case strings.HasPrefix(clean, "0b"), strings.HasPrefix(clean, "0B"):
		n, err := strconv.ParseInt(clean[2:], 2, 64)
		return float64(n), err
	case strings.HasPrefix(clean, "0o"), strings.HasPrefix(clean, "0O"):
		n, err := strconv.ParseInt(clean[2:], 8, 64)
		return float64(n), err
	default:
		return strconv.ParseFloat(clean, 64)
	}
}

func (p *Parser) parseStringLiteral() Expression {
	return &StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() Expression {
	return &BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNullLiteral() Expression      { return &NullLiteral{Token: p.curToken} }
func (p *Parser) parseUndefinedLiteral() Expression { return &UndefinedLiteral{Token: p.curToken} }
func (p *Parser) parseThisExpression() Expression   { return &ThisExpression{Token: p.curToken} }

func (p *Parser) parsePrefixExpression() Expression {
	expr := &PrefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	return expr
}

func (p *Parser) parsePostfixExpression(left Expression) Expression {
	return &PostfixExpression{Token: p.curToken, Operator: p.curToken.Literal, Left: left}
}

func (p *Parser) parseInfixExpression(left Expression) Expression {
	expr := &InfixExpression{Token: p.curToken, Left: left, Operator: p.curToken.Literal}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

func (p *Parser) parseLogicalExpression(left Expression) Expression {
	expr := &LogicalExpression{Token: p.curToken, Left: left, Operator: p.curToken.Literal}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

func (p *Parser) parseAssignmentExpression(left Expression) Expression {
	expr := &AssignmentExpression{Token: p.curToken, Target: left, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Value = p.parseExpression(ASSIGNMENT - 1)
	return expr
}

func (p *Parser) parseConditionalExpression(cond Expression) Expression {
	expr := &ConditionalExpression{Token: p.curToken, Condition: cond}
	p.nextToken()
	expr.Consequence = p.parseExpression(ASSIGNMENT)
	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	expr.Alternative = p.parseExpression(ASSIGNMENT)
	return expr
}

func (p *Parser) parseSequenceExpression(left Expression) Expression {
	seq := &SequenceExpression{Token: p.curToken, Expressions: []Expression{left}}
	p.nextToken()
	seq.Expressions = append(seq.Expressions, p.parseExpression(ASSIGNMENT))
	return seq
}

func (p *Parser) parseGroupedOrArrow() Expression {
	if arrow, ok := p.tryParseArrowFunction(); ok {
		return arrow
	}
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if p.peekTokenIs(lexer.ARROW) {
		if ident, ok := expr.(*Identifier); ok {
			p.nextToken() // consume '=>'
			return p.finishArrowFunction(p.curToken, []*Identifier{ident})
		}
	}
	return expr
}

// tryParseArrowFunction speculatively scans ahead from '(' to see whether
// this parenthesized group is actually an arrow function's parameter list.
// It backtracks via the lexer's byte-position save/restore if not.
func (p *Parser) tryParseArrowFunction() (Expression, bool) {
	startPos := p.l.CurrentPosition()
	savedCur, savedPeek := p.curToken, p.peekToken

	tok := p.curToken // '('
	var params []*Identifier
	p.nextToken()
	if p.curTokenIs(lexer.RPAREN) {
		// () => ...
		if p.peekTokenIs(lexer.ARROW) {
			p.nextToken() // consume '=>'
			return p.finishArrowFunction(tok, params), true
		}
		p.restore(startPos, savedCur, savedPeek)
		return nil, false
	}
	for {
		if !p.curTokenIs(lexer.IDENT) {
			p.restore(startPos, savedCur, savedPeek)
			return nil, false
		}
		params = append(params, &Identifier{Token: p.curToken, Value: p.curToken.Literal})
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.peekTokenIs(lexer.RPAREN) {
		p.restore(startPos, savedCur, savedPeek)
		return nil, false
	}
	p.nextToken() // consume ')'
	if !p.peekTokenIs(lexer.ARROW) {
		p.restore(startPos, savedCur, savedPeek)
		return nil, false
	}
	p.nextToken() // consume '=>'
	return p.finishArrowFunction(tok, params), true
}

func (p *Parser) restore(pos int, cur, peek lexer.Token) {
	p.l.SetPosition(pos)
	p.curToken, p.peekToken = cur, peek
}

func (p *Parser) finishArrowFunction(tok lexer.Token, params []*Identifier) Expression {
	arrow := &ArrowFunctionLiteral{Token: tok, Parameters: params}
	p.nextToken()
	if p.curTokenIs(lexer.LBRACE) {
		arrow.Body = p.parseBlockStatement()
	} else {
		arrow.Body = p.parseExpression(ASSIGNMENT)
	}
	return arrow
}

func (p *Parser) parseArrayLiteral() Expression {
	lit := &ArrayLiteral{Token: p.curToken}
	for !p.peekTokenIs(lexer.RBRACKET) {
		if p.peekTokenIs(lexer.COMMA) {
			lit.Elements = append(lit.Elements, nil)
			p.nextToken()
			continue
		}
		p.nextToken()
		lit.Elements = append(lit.Elements, p.parseExpression(ASSIGNMENT))
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return lit
}

func (p *Parser) parseObjectLiteral() Expression {
	lit := &ObjectLiteral{Token: p.curToken}
	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		var key Expression
		switch p.curToken.Type {
		case lexer.IDENT, lexer.STRING:
			key = &StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
		case lexer.NUMBER:
			key = p.parseNumberLiteral()
		default:
			p.addError(p.curToken, fmt.Sprintf("unexpected token %s as object key", p.curToken.Type))
			return nil
		}
		var value Expression
		if p.peekTokenIs(lexer.COMMA) || p.peekTokenIs(lexer.RBRACE) {
			// shorthand { x } == { x: x }
			value = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		} else {
			if !p.expectPeek(lexer.COLON) {
				return nil
			}
			p.nextToken()
			value = p.parseExpression(ASSIGNMENT)
		}
		lit.Keys = append(lit.Keys, key)
		lit.Values = append(lit.Values, value)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return lit
}

func (p *Parser) parseFunctionLiteral() Expression {
	lit := &FunctionLiteral{Token: p.curToken}
	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		lit.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	lit.Parameters = p.parseFunctionParameters()
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	lit.Body = p.parseBlockStatement()
	return lit
}

func (p *Parser) parseFunctionParameters() []*Identifier {
	var params []*Identifier
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, &Identifier{Token: p.curToken, Value: p.curToken.Literal})
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, &Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseNewExpression() Expression {
	tok := p.curToken
	p.nextToken()
	ctor := p.parseExpression(CALL)
	ne := &NewExpression{Token: tok, Constructor: ctor}
	// parseExpression(CALL) stops before '(' (CALL is not above CALL), so
	// the argument list is consumed here.
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		ne.Arguments = p.parseExpressionList(lexer.RPAREN)
	}
	return ne
}

func (p *Parser) parseCallExpression(fn Expression) Expression {
	expr := &CallExpression{Token: p.curToken, Function: fn}
	expr.Arguments = p.parseExpressionList(lexer.RPAREN)
	return expr
}

func (p *Parser) parseExpressionList(end lexer.TokenType) []Expression {
	var list []Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(ASSIGNMENT))
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(ASSIGNMENT))
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseIndexExpression(left Expression) Expression {
	expr := &MemberExpression{Token: p.curToken, Object: left, Computed: true}
	p.nextToken()
	expr.Property = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return expr
}

func (p *Parser) parseDotExpression(left Expression) Expression {
	expr := &MemberExpression{Token: p.curToken, Object: left, Computed: false}
	// A property name after '.' may be a reserved word (Symbol.for).
	if lexer.LookupIdent(p.peekToken.Literal) == p.peekToken.Type {
		p.nextToken()
	} else if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	expr.Property = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return expr
}
