// Package parser implements a hand-written recursive-descent parser that
// turns SQL text into the typed syntax tree in pkg/ast. It understands the
// pragmatic subset of SQL the nullability analyzer needs to reason about:
// SELECT (with CTEs, joins, set operations, scalar subqueries), INSERT,
// UPDATE and DELETE with RETURNING, and standalone VALUES. DDL statements
// are recognized but not descended into.
package parser

import (
	"fmt"

	"github.com/nullsql/nullsql/pkg/ast"
	"github.com/nullsql/nullsql/pkg/dialect"
	"github.com/nullsql/nullsql/pkg/token"
)

// Parser holds a 3-token lookahead buffer over a Lexer.
type Parser struct {
	lex     *Lexer
	dialect dialect.Dialect

	cur   token.Token
	peek  token.Token
	peek2 token.Token

	errs []error
}

// NewParser creates a Parser over src for the given dialect.
func NewParser(src string, d dialect.Dialect) (*Parser, error) {
	p := &Parser{lex: NewLexer(src), dialect: d}
	for i := 0; i < 3; i++ {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	p.peek = p.peek2
	next, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.peek2 = next
	return nil
}

func (p *Parser) check(t token.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) checkPeek(t token.TokenType) bool { return p.peek.Type == t }

func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.advanceOrPanic()
		return true
	}
	return false
}

func (p *Parser) matchAny(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advanceOrPanic()
			return true
		}
	}
	return false
}

// advanceOrPanic is used once the caller already branched on p.cur.Type, so
// a lex error here would be a lexer bug surfacing mid-parse; it is recorded
// like any other parse error instead of panicking the process.
func (p *Parser) advanceOrPanic() {
	if err := p.advance(); err != nil {
		p.errs = append(p.errs, err)
	}
}

func (p *Parser) expect(t token.TokenType) (token.Token, error) {
	if !p.check(t) {
		return token.Token{}, p.unexpected(t)
	}
	cur := p.cur
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return cur, nil
}

func (p *Parser) unexpected(want token.TokenType) error {
	return &ParseError{
		Pos:     p.cur.Pos,
		Message: fmt.Sprintf(ErrUnexpectedToken, p.cur.Type, want),
	}
}

// Parse parses a single top-level statement.
func (p *Parser) Parse() (ast.Stmt, error) {
	switch p.cur.Type {
	case token.WITH:
		return p.parseWithAndStmt()
	case token.SELECT:
		return p.parseSelectStmt(nil)
	case token.INSERT:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.VALUES:
		return p.parseValuesStmt()
	case token.CREATE:
		return p.parseIgnoredCreate()
	default:
		return nil, &ParseError{Pos: p.cur.Pos, Message: fmt.Sprintf("unexpected token %s at start of statement", p.cur.Type)}
	}
}

func (p *Parser) parseIgnoredCreate() (ast.Stmt, error) {
	pos := p.cur.Pos
	stmt := &ast.IgnoredStmt{NodeInfo: ast.NodeInfo{Position: pos}, Keyword: "CREATE"}
	// Swallow tokens until EOF or semicolon-equivalent (we don't model ';').
	for p.cur.Type != token.EOF {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// ---------- WITH / SELECT ----------

func (p *Parser) parseWithAndStmt() (ast.Stmt, error) {
	with, err := p.parseWithClause()
	if err != nil {
		return nil, err
	}
	switch p.cur.Type {
	case token.SELECT:
		return p.parseSelectStmt(with)
	case token.INSERT:
		stmt, err := p.parseInsert()
		return stmt, err
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	default:
		return nil, &ParseError{Pos: p.cur.Pos, Message: "expected SELECT, INSERT, UPDATE or DELETE after WITH clause"}
	}
}

func (p *Parser) parseWithClause() (*ast.WithClause, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.WITH); err != nil {
		return nil, err
	}
	recursive := p.match(token.RECURSIVE)

	with := &ast.WithClause{NodeInfo: ast.NodeInfo{Position: pos}, Recursive: recursive}
	for {
		cte, err := p.parseCTE()
		if err != nil {
			return nil, err
		}
		with.CTEs = append(with.CTEs, cte)
		if !p.match(token.COMMA) {
			break
		}
	}
	return with, nil
}

func (p *Parser) parseCTE() (*ast.CTE, error) {
	pos := p.cur.Pos
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.AS); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var with *ast.WithClause
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
	return &ast.CTE{NodeInfo: ast.NodeInfo{Position: pos}, Name: name.Literal, Select: sel.(*ast.SelectStmt)}, nil
}

func (p *Parser) parseSelectStmt(with *ast.WithClause) (ast.Stmt, error) {
	pos := p.cur.Pos
	body, err := p.parseSelectBody()
	if err != nil {
		return nil, err
	}
	return &ast.SelectStmt{NodeInfo: ast.NodeInfo{Position: pos}, With: with, Body: body}, nil
}

func (p *Parser) parseSelectBody() (*ast.SelectBody, error) {
	pos := p.cur.Pos
	core, err := p.parseSelectCore()
	if err != nil {
		return nil, err
	}
	body := &ast.SelectBody{NodeInfo: ast.NodeInfo{Position: pos}, Left: core}

	op, ok, err := p.matchSetOp()
	if err != nil {
		return nil, err
	}
	if !ok {
		return body, nil
	}
	right, err := p.parseSelectBody()
	if err != nil {
		return nil, err
	}
	body.Op = op
	body.Right = right
	return body, nil
}

func (p *Parser) matchSetOp() (ast.SetOpType, bool, error) {
	switch p.cur.Type {
	case token.UNION:
		if err := p.advance(); err != nil {
			return "", false, err
		}
		if p.match(token.ALL) {
			return ast.SetOpUnionAll, true, nil
		}
		return ast.SetOpUnion, true, nil
	case token.INTERSECT:
		if err := p.advance(); err != nil {
			return "", false, err
		}
		return ast.SetOpIntersect, true, nil
	case token.EXCEPT:
		if err := p.advance(); err != nil {
			return "", false, err
		}
		return ast.SetOpExcept, true, nil
	default:
		return "", false, nil
	}
}

func (p *Parser) parseSelectCore() (*ast.SelectCore, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.SELECT); err != nil {
		return nil, err
	}
	core := &ast.SelectCore{NodeInfo: ast.NodeInfo{Position: pos}}
	core.Distinct = p.match(token.DISTINCT)
	if !core.Distinct {
		p.match(token.ALL)
	}

	items, err := p.parseSelectItems()
	if err != nil {
		return nil, err
	}
	core.Columns = items

	if p.match(token.FROM) {
		from, err := p.parseFromClause()
		if err != nil {
			return nil, err
		}
		core.From = from
	}

	if p.match(token.WHERE) {
		where, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		core.Where = where
	}

	if p.match(token.GROUP) {
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		exprs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		core.GroupBy = exprs
	}

	if p.match(token.HAVING) {
		having, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		core.Having = having
	}

	if p.match(token.ORDER) {
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		items, err := p.parseOrderByItems()
		if err != nil {
			return nil, err
		}
		core.OrderBy = items
	}

	if p.match(token.LIMIT) {
		limit, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		core.Limit = limit
	}
	if p.match(token.OFFSET) {
		offset, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		core.Offset = offset
	}

	return core, nil
}

func (p *Parser) parseSelectItems() ([]ast.SelectItem, error) {
	var items []ast.SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.match(token.COMMA) {
			break
		}
	}
	return items, nil
}

func (p *Parser) parseSelectItem() (ast.SelectItem, error) {
	if p.check(token.STAR) {
		if err := p.advance(); err != nil {
			return ast.SelectItem{}, err
		}
		return ast.SelectItem{Star: true}, nil
	}
	if p.check(token.IDENT) && p.checkPeek(token.DOT) && p.peek2.Type == token.STAR {
		table := p.cur.Literal
		if err := p.advance(); err != nil { // consume ident
			return ast.SelectItem{}, err
		}
		if err := p.advance(); err != nil { // consume dot
			return ast.SelectItem{}, err
		}
		if err := p.advance(); err != nil { // consume star
			return ast.SelectItem{}, err
		}
		return ast.SelectItem{TableStar: table}, nil
	}

	expr, err := p.parseExpr(precLowest)
	if err != nil {
		return ast.SelectItem{}, err
	}
	item := ast.SelectItem{Expr: expr}
	if p.match(token.AS) {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return ast.SelectItem{}, err
		}
		item.Alias = name.Literal
	} else if p.check(token.IDENT) {
		item.Alias = p.cur.Literal
		if err := p.advance(); err != nil {
			return ast.SelectItem{}, err
		}
	}
	return item, nil
}

func (p *Parser) parseExprList() ([]ast.Expr, error) {
	var exprs []ast.Expr
	for {
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !p.match(token.COMMA) {
			break
		}
	}
	return exprs, nil
}

func (p *Parser) parseOrderByItems() ([]ast.OrderByItem, error) {
	var items []ast.OrderByItem
	for {
		e, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		item := ast.OrderByItem{Expr: e}
		if p.match(token.DESC) {
			item.Desc = true
		} else {
			p.match(token.ASC)
		}
		items = append(items, item)
		if !p.match(token.COMMA) {
			break
		}
	}
	return items, nil
}

// ---------- FROM / JOIN ----------

func (p *Parser) parseFromClause() (*ast.FromClause, error) {
	pos := p.cur.Pos
	source, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	from := &ast.FromClause{NodeInfo: ast.NodeInfo{Position: pos}, Source: source}

	for {
		join, ok, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		from.Joins = append(from.Joins, join)
	}
	return from, nil
}

func (p *Parser) parseJoin() (*ast.Join, bool, error) {
	pos := p.cur.Pos

	if p.check(token.COMMA) {
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		right, err := p.parseTableRef()
		if err != nil {
			return nil, false, err
		}
		return &ast.Join{NodeInfo: ast.NodeInfo{Position: pos}, Type: ast.JoinComma, Right: right}, true, nil
	}

	natural := p.match(token.NATURAL)

	var jtype ast.JoinType
	switch p.cur.Type {
	case token.INNER:
		jtype = ast.JoinInner
		p.advanceOrPanic()
	case token.LEFT:
		jtype = ast.JoinLeft
		p.advanceOrPanic()
		p.match(token.OUTER)
	case token.RIGHT:
		jtype = ast.JoinRight
		p.advanceOrPanic()
		p.match(token.OUTER)
	case token.FULL:
		jtype = ast.JoinFull
		p.advanceOrPanic()
		p.match(token.OUTER)
	case token.CROSS:
		jtype = ast.JoinCross
		p.advanceOrPanic()
	case token.JOIN:
		jtype = ast.JoinInner
	default:
		if natural {
			return nil, false, &ParseError{Pos: p.cur.Pos, Message: "expected join type after NATURAL"}
		}
		return nil, false, nil
	}

	if _, err := p.expect(token.JOIN); err != nil {
		return nil, false, err
	}

	right, err := p.parseTableRef()
	if err != nil {
		return nil, false, err
	}

	join := &ast.Join{NodeInfo: ast.NodeInfo{Position: pos}, Type: jtype, Natural: natural, Right: right}

	if natural || jtype == ast.JoinCross {
		return join, true, nil
	}

	if p.match(token.ON) {
		cond, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, false, err
		}
		join.Condition = cond
	} else if p.match(token.USING) {
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, false, err
		}
		for {
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, false, err
			}
			join.Using = append(join.Using, name.Literal)
			if !p.match(token.COMMA) {
				break
			}
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, false, err
		}
	}

	return join, true, nil
}

func (p *Parser) parseTableRef() (ast.TableRef, error) {
	pos := p.cur.Pos

	if p.check(token.LPAREN) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		sel, err := p.parseSelectStmt(nil)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		dt := &ast.DerivedTable{NodeInfo: ast.NodeInfo{Position: pos}, Select: sel.(*ast.SelectStmt)}
		dt.Alias = p.parseOptionalAlias()
		return dt, nil
	}

	first, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	name := &ast.TableName{NodeInfo: ast.NodeInfo{Position: pos}, Name: first.Literal}
	if p.match(token.DOT) {
		second, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		name.Schema = first.Literal
		name.Name = second.Literal
	}
	name.Alias = p.parseOptionalAlias()
	return name, nil
}

func (p *Parser) parseOptionalAlias() string {
	if p.match(token.AS) {
		if p.check(token.IDENT) {
			lit := p.cur.Literal
			p.advanceOrPanic()
			return lit
		}
		return ""
	}
	if p.check(token.IDENT) {
		lit := p.cur.Literal
		p.advanceOrPanic()
		return lit
	}
	return ""
}

// ---------- DML ----------

func (p *Parser) parseInsert() (ast.Stmt, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.INSERT); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.INTO); err != nil {
		return nil, err
	}
	table, err := p.parseTableNameOnly()
	if err != nil {
		return nil, err
	}
	stmt := &ast.InsertStmt{NodeInfo: ast.NodeInfo{Position: pos}, Table: table}

	// Skip optional column list and VALUES/SELECT source: the analyzer only
	// cares about the RETURNING projection, which reads from the catalog
	// row shape of Table, not from the inserted values.
	depth := 0
	for {
		switch p.cur.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		case token.RETURNING:
			if depth == 0 {
				goto returningClause
			}
		case token.EOF:
			return stmt, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

returningClause:
	if err := p.advance(); err != nil { // consume RETURNING
		return nil, err
	}
	items, err := p.parseSelectItems()
	if err != nil {
		return nil, err
	}
	stmt.Returning = items
	return stmt, nil
}

func (p *Parser) parseUpdate() (ast.Stmt, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.UPDATE); err != nil {
		return nil, err
	}
	table, err := p.parseTableNameOnly()
	if err != nil {
		return nil, err
	}
	stmt := &ast.UpdateStmt{NodeInfo: ast.NodeInfo{Position: pos}, Table: table}

	if _, err := p.expect(token.SET); err != nil {
		return nil, err
	}
	for {
		if _, err := p.expect(token.IDENT); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQ); err != nil {
			return nil, err
		}
		if _, err := p.parseExpr(precLowest); err != nil {
			return nil, err
		}
		if !p.match(token.COMMA) {
			break
		}
	}

	if p.match(token.WHERE) {
		where, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.match(token.RETURNING) {
		items, err := p.parseSelectItems()
		if err != nil {
			return nil, err
		}
		stmt.Returning = items
	}
	return stmt, nil
}

func (p *Parser) parseDelete() (ast.Stmt, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.DELETE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	table, err := p.parseTableNameOnly()
	if err != nil {
		return nil, err
	}
	stmt := &ast.DeleteStmt{NodeInfo: ast.NodeInfo{Position: pos}, Table: table}

	if p.match(token.WHERE) {
		where, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.match(token.RETURNING) {
		items, err := p.parseSelectItems()
		if err != nil {
			return nil, err
		}
		stmt.Returning = items
	}
	return stmt, nil
}

func (p *Parser) parseTableNameOnly() (*ast.TableName, error) {
	pos := p.cur.Pos
	first, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	name := &ast.TableName{NodeInfo: ast.NodeInfo{Position: pos}, Name: first.Literal}
	if p.match(token.DOT) {
		second, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		name.Schema = first.Literal
		name.Name = second.Literal
	}
	name.Alias = p.parseOptionalAlias()
	return name, nil
}

func (p *Parser) parseValuesStmt() (ast.Stmt, error) {
	pos := p.cur.Pos
	if _, err := p.expect(token.VALUES); err != nil {
		return nil, err
	}
	stmt := &ast.ValuesStmt{NodeInfo: ast.NodeInfo{Position: pos}}
	for {
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		row, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		stmt.Rows = append(stmt.Rows, row)
		if !p.match(token.COMMA) {
			break
		}
	}
	return stmt, nil
}
