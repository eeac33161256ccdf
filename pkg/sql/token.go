package sql

import "fmt"

// TokenKind discriminates lexical classes produced by the tokenizer
type TokenKind uint8

const (
	TokenKeyword TokenKind = iota
	TokenIdentifier
	TokenInteger
	TokenString
	TokenSymbol
	TokenEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokenKeyword:
		return "keyword"
	case TokenIdentifier:
		return "identifier"
	case TokenInteger:
		return "integer"
	case TokenString:
		return "string"
	case TokenSymbol:
		return "symbol"
	case TokenEOF:
		return "end of input"
	default:
		return "unknown"
	}
}

// Token is a single lexical unit. Keywords carry their upper-cased spelling
// in Text; integers carry the parsed value in Int alongside the raw text.
type Token struct {
	Kind TokenKind
	Text string
	Int  int32
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// IsKeyword reports whether the token is the given keyword
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == TokenKeyword && t.Text == kw
}

// IsSymbol reports whether the token is the given symbol
func (t Token) IsSymbol(sym string) bool {
	return t.Kind == TokenSymbol && t.Text == sym
}
