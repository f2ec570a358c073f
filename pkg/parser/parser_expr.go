package parser

import (
	"fmt"
	"strings"

	"github.com/nullsql/nullsql/pkg/ast"
	"github.com/nullsql/nullsql/pkg/token"
)

// Operator precedence, lowest to highest. Comparison operators (including
// IS/IN/BETWEEN/LIKE) all bind at the same level, matching standard SQL.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precComparison
	precConcat
	precAdditive
	precMultiplicative
	precUnary
	precCast
)

var binaryPrecedence = map[token.TokenType]int{
	token.OR:    precOr,
	token.AND:   precAnd,
	token.EQ:    precComparison,
	token.NE:    precComparison,
	token.LT:    precComparison,
	token.GT:    precComparison,
	token.LE:    precComparison,
	token.GE:    precComparison,
	token.IS:    precComparison,
	token.IN:    precComparison,
	token.LIKE:  precComparison,
	token.DPIPE: precConcat,
	token.PLUS:  precAdditive,
	token.MINUS: precAdditive,
	token.STAR:  precMultiplicative,
	token.SLASH: precMultiplicative,
	token.MOD:   precMultiplicative,
}

func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseInfix(left, minPrec)
}

func (p *Parser) parseInfix(left ast.Expr, minPrec int) (ast.Expr, error) {
	for {
		if p.check(token.NOT) && (p.checkPeek(token.IN) || p.checkPeek(token.BETWEEN) || p.checkPeek(token.LIKE)) {
			if precComparison < minPrec {
				return left, nil
			}
			p.advanceOrPanic() // consume NOT
			next := p.cur.Type
			p.advanceOrPanic()
			expr, err := p.parseNotable(left, next, true)
			if err != nil {
				return nil, err
			}
			left = expr
			continue
		}

		if p.check(token.BETWEEN) || p.check(token.IN) || p.check(token.LIKE) {
			if precComparison < minPrec {
				return left, nil
			}
			next := p.cur.Type
			p.advanceOrPanic()
			expr, err := p.parseNotable(left, next, false)
			if err != nil {
				return nil, err
			}
			left = expr
			continue
		}

		if p.check(token.IS) {
			if precComparison < minPrec {
				return left, nil
			}
			p.advanceOrPanic()
			not := p.match(token.NOT)
			if _, err := p.expect(token.NULL); err != nil {
				return nil, err
			}
			left = &ast.IsNullExpr{NodeInfo: ast.NodeInfo{Position: left.Pos()}, Expr: left, Not: not}
			continue
		}

		prec, ok := binaryPrecedence[p.cur.Type]
		if !ok || prec < minPrec {
			return left, nil
		}
		op := p.cur.Type
		p.advanceOrPanic()

		// Left-associative: the right-hand side only consumes operators
		// strictly tighter than this one.
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{NodeInfo: ast.NodeInfo{Position: left.Pos()}, Left: left, Op: op, Right: right}
	}
}

// parseNotable parses the right-hand side of IN / BETWEEN / LIKE, with not
// already determined by the caller (NOT having been consumed already).
func (p *Parser) parseNotable(left ast.Expr, kind token.TokenType, not bool) (ast.Expr, error) {
	switch kind {
	case token.IN:
		pos := left.Pos()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		if p.check(token.SELECT) {
			sel, err := p.parseSelectStmt(nil)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			return &ast.InExpr{NodeInfo: ast.NodeInfo{Position: pos}, Expr: left, Not: not, Query: sel.(*ast.SelectStmt)}, nil
		}
		values, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.InExpr{NodeInfo: ast.NodeInfo{Position: pos}, Expr: left, Not: not, Values: values}, nil

	case token.BETWEEN:
		pos := left.Pos()
		low, err := p.parseExpr(precAdditive)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.AND); err != nil {
			return nil, err
		}
		high, err := p.parseExpr(precAdditive)
		if err != nil {
			return nil, err
		}
		return &ast.BetweenExpr{NodeInfo: ast.NodeInfo{Position: pos}, Expr: left, Not: not, Low: low, High: high}, nil

	case token.LIKE:
		pos := left.Pos()
		pattern, err := p.parseExpr(precConcat)
		if err != nil {
			return nil, err
		}
		return &ast.LikeExpr{NodeInfo: ast.NodeInfo{Position: pos}, Expr: left, Not: not, Pattern: pattern}, nil
	}
	return nil, fmt.Errorf("parser: unreachable notable kind %s", kind)
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.NOT:
		p.advanceOrPanic()
		operand, err := p.parseExpr(precNot)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{NodeInfo: ast.NodeInfo{Position: pos}, Op: token.NOT, Expr: operand}, nil
	case token.MINUS, token.PLUS:
		op := p.cur.Type
		p.advanceOrPanic()
		operand, err := p.parseExpr(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{NodeInfo: ast.NodeInfo{Position: pos}, Op: op, Expr: operand}, nil
	case token.EXISTS:
		p.advanceOrPanic()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		sel, err := p.parseSelectStmt(nil)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.ExistsExpr{NodeInfo: ast.NodeInfo{Position: pos}, Select: sel.(*ast.SelectStmt)}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.check(token.COLONCOLON) {
		p.advanceOrPanic()
		typeName, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		expr = &ast.CastExpr{NodeInfo: ast.NodeInfo{Position: expr.Pos()}, Expr: expr, TypeName: typeName}
	}
	return expr, nil
}

func (p *Parser) parseTypeName() (string, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return "", err
	}
	typeName := name.Literal
	if p.check(token.LBRACKET) {
		p.advanceOrPanic()
		if _, err := p.expect(token.RBRACKET); err != nil {
			return "", err
		}
		typeName += "[]"
	}
	return typeName, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := p.cur.Pos

	switch p.cur.Type {
	case token.NUMBER:
		lit := p.cur.Literal
		p.advanceOrPanic()
		return &ast.Literal{NodeInfo: ast.NodeInfo{Position: pos}, Type: ast.LiteralNumber, Value: lit}, nil
	case token.STRING:
		lit := p.cur.Literal
		p.advanceOrPanic()
		return &ast.Literal{NodeInfo: ast.NodeInfo{Position: pos}, Type: ast.LiteralString, Value: lit}, nil
	case token.TRUE:
		p.advanceOrPanic()
		return &ast.Literal{NodeInfo: ast.NodeInfo{Position: pos}, Type: ast.LiteralBool, Value: "true"}, nil
	case token.FALSE:
		p.advanceOrPanic()
		return &ast.Literal{NodeInfo: ast.NodeInfo{Position: pos}, Type: ast.LiteralBool, Value: "false"}, nil
	case token.NULL:
		p.advanceOrPanic()
		return &ast.Literal{NodeInfo: ast.NodeInfo{Position: pos}, Type: ast.LiteralNull}, nil
	case token.PARAM:
		lit := p.cur.Literal
		p.advanceOrPanic()
		return parsePlaceholder(pos, lit), nil
	case token.STAR:
		p.advanceOrPanic()
		return &ast.StarExpr{NodeInfo: ast.NodeInfo{Position: pos}}, nil
	case token.CASE:
		return p.parseCase()
	case token.CAST:
		return p.parseCast()
	case token.LPAREN:
		return p.parseParenOrSubquery()
	case token.IDENT:
		return p.parseIdentOrCall()
	}

	return nil, &ParseError{Pos: pos, Message: fmt.Sprintf("unexpected token %s in expression", p.cur.Type)}
}

func parsePlaceholder(pos token.Position, lit string) ast.Expr {
	if strings.HasPrefix(lit, "$") {
		n := 0
		fmt.Sscanf(lit[1:], "%d", &n)
		return &ast.Placeholder{NodeInfo: ast.NodeInfo{Position: pos}, Ordinal: n}
	}
	return &ast.Placeholder{NodeInfo: ast.NodeInfo{Position: pos}}
}

func (p *Parser) parseCase() (ast.Expr, error) {
	pos := p.cur.Pos
	p.advanceOrPanic() // CASE
	expr := &ast.CaseExpr{NodeInfo: ast.NodeInfo{Position: pos}}
	if !p.check(token.WHEN) {
		operand, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		expr.Operand = operand
	}
	for p.match(token.WHEN) {
		cond, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		result, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		expr.Whens = append(expr.Whens, ast.WhenClause{Condition: cond, Result: result})
	}
	if p.match(token.ELSE) {
		elseExpr, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		expr.Else = elseExpr
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseCast() (ast.Expr, error) {
	pos := p.cur.Pos
	p.advanceOrPanic() // CAST
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	inner, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.AS); err != nil {
		return nil, err
	}
	typeName, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.CastExpr{NodeInfo: ast.NodeInfo{Position: pos}, Expr: inner, TypeName: typeName}, nil
}

func (p *Parser) parseParenOrSubquery() (ast.Expr, error) {
	pos := p.cur.Pos
	p.advanceOrPanic() // (
	if p.check(token.SELECT) || p.check(token.WITH) {
		var with *ast.WithClause
		var err error
		if p.check(token.WITH) {
			with, err = p.parseWithClause()
			if err != nil {
				return nil, err
			}
		}
		sel, err := p.parseSelectStmt(with)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.SubqueryExpr{NodeInfo: ast.NodeInfo{Position: pos}, Select: sel.(*ast.SelectStmt)}, nil
	}

	items, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.ParenExpr{NodeInfo: ast.NodeInfo{Position: pos}, Items: items}, nil
}

func (p *Parser) parseIdentOrCall() (ast.Expr, error) {
	pos := p.cur.Pos
	first := p.cur.Literal
	p.advanceOrPanic()

	if p.check(token.LPAREN) {
		return p.parseCallArgs(pos, first)
	}

	segments := []string{first}
	for p.check(token.DOT) {
		p.advanceOrPanic()
		if p.check(token.STAR) {
			p.advanceOrPanic()
			return &ast.StarExpr{NodeInfo: ast.NodeInfo{Position: pos}, Table: strings.Join(segments, ".")}, nil
		}
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		segments = append(segments, name.Literal)
	}
	return &ast.Identifier{NodeInfo: ast.NodeInfo{Position: pos}, Segments: segments}, nil
}

func (p *Parser) parseCallArgs(pos token.Position, name string) (ast.Expr, error) {
	p.advanceOrPanic() // (
	call := &ast.FuncCall{NodeInfo: ast.NodeInfo{Position: pos}, Name: strings.ToLower(name)}

	if p.check(token.STAR) {
		p.advanceOrPanic()
		call.Star = true
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return call, nil
	}

	if p.check(token.RPAREN) {
		p.advanceOrPanic()
		return call, nil
	}

	p.match(token.DISTINCT) // COUNT(DISTINCT x) — distinctness doesn't affect nullability

	args, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	call.Args = args

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}
