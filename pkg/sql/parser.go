package sql

import (
	"fmt"

	"github.com/hozondb/hozon-db/pkg/catalog"
)

// Statement is a parsed SQL statement
type Statement interface {
	statement()
}

// CreateTableStatement defines a new table and its columns
type CreateTableStatement struct {
	Table   string
	Columns []catalog.Column
}

// InsertStatement appends one row of literal values to a table
type InsertStatement struct {
	Table  string
	Values []catalog.Value
}

// SelectStatement reads rows from a table. AllColumns marks `SELECT *`;
// otherwise Columns lists the requested projection in request order.
type SelectStatement struct {
	Table      string
	Columns    []string
	AllColumns bool
}

func (CreateTableStatement) statement() {}
func (InsertStatement) statement()      {}
func (SelectStatement) statement()      {}

// Parse tokenizes and parses a single SQL statement. Every statement must be
// closed with a semicolon.
func Parse(input string) (Statement, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.parseStatement()
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expectKeyword(kw string) error {
	tok := p.next()
	if !tok.IsKeyword(kw) {
		return p.fail(tok, kw)
	}
	return nil
}

func (p *parser) expectSymbol(sym string) error {
	tok := p.next()
	if !tok.IsSymbol(sym) {
		return p.fail(tok, sym)
	}
	return nil
}

func (p *parser) expectIdentifier() (string, error) {
	tok := p.next()
	if tok.Kind != TokenIdentifier {
		return "", p.fail(tok, "identifier")
	}
	return tok.Text, nil
}

func (p *parser) fail(tok Token, expected string) error {
	if tok.Kind == TokenEOF {
		return fmt.Errorf("%w: expected %s", ErrUnexpectedEOF, expected)
	}
	return fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedToken, expected, tok)
}

func (p *parser) parseStatement() (Statement, error) {
	tok := p.peek()
	switch {
	case tok.IsKeyword("CREATE"):
		return p.parseCreateTable()
	case tok.IsKeyword("INSERT"):
		return p.parseInsert()
	case tok.IsKeyword("SELECT"):
		return p.parseSelect()
	default:
		return nil, p.fail(tok, "CREATE, INSERT or SELECT")
	}
}

func (p *parser) parseCreateTable() (Statement, error) {
	if err := p.expectKeyword("CREATE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	table, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}

	var columns []catalog.Column
	for {
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		colType, err := p.parseColumnType()
		if err != nil {
			return nil, err
		}
		columns = append(columns, catalog.Column{Name: name, Type: colType})

		tok := p.next()
		if tok.IsSymbol(")") {
			break
		}
		if !tok.IsSymbol(",") {
			return nil, p.fail(tok, "',' or ')'")
		}
	}

	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return CreateTableStatement{Table: table, Columns: columns}, nil
}

func (p *parser) parseColumnType() (catalog.DataType, error) {
	tok := p.next()
	switch {
	case tok.IsKeyword("INTEGER"):
		return catalog.TypeInteger, nil
	case tok.IsKeyword("TEXT"):
		return catalog.TypeText, nil
	case tok.IsKeyword("BOOLEAN"):
		return catalog.TypeBoolean, nil
	default:
		return 0, p.fail(tok, "column type")
	}
}

func (p *parser) parseInsert() (Statement, error) {
	if err := p.expectKeyword("INSERT"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}

	var values []catalog.Value
	for {
		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		tok := p.next()
		if tok.IsSymbol(")") {
			break
		}
		if !tok.IsSymbol(",") {
			return nil, p.fail(tok, "',' or ')'")
		}
	}

	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return InsertStatement{Table: table, Values: values}, nil
}

func (p *parser) parseLiteral() (catalog.Value, error) {
	tok := p.next()
	switch {
	case tok.Kind == TokenInteger:
		return catalog.NewIntegerValue(tok.Int), nil
	case tok.Kind == TokenString:
		return catalog.NewTextValue(tok.Text), nil
	case tok.IsKeyword("TRUE"):
		return catalog.NewBooleanValue(true), nil
	case tok.IsKeyword("FALSE"):
		return catalog.NewBooleanValue(false), nil
	case tok.IsKeyword("NULL"):
		return catalog.NewNullValue(), nil
	default:
		return catalog.Value{}, p.fail(tok, "literal value")
	}
}

func (p *parser) parseSelect() (Statement, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}

	stmt := SelectStatement{}
	if p.peek().IsSymbol("*") {
		p.next()
		stmt.AllColumns = true
	} else {
		for {
			name, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, name)

			if !p.peek().IsSymbol(",") {
				break
			}
			p.next()
		}
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	stmt.Table = table

	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return stmt, nil
}
