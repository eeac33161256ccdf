package sql

import (
	"fmt"
	"strconv"
	"strings"
)

var keywords = map[string]struct{}{
	"SELECT":  {},
	"FROM":    {},
	"WHERE":   {},
	"CREATE":  {},
	"TABLE":   {},
	"INSERT":  {},
	"INTO":    {},
	"VALUES":  {},
	"INTEGER": {},
	"TEXT":    {},
	"BOOLEAN": {},
	"NULL":    {},
	"TRUE":    {},
	"FALSE":   {},
}

// Tokenize splits a statement into tokens. Keywords are recognized
// case-insensitively and normalized to upper case; identifiers keep their
// original spelling. The returned slice always ends with an EOF token.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	i := 0

	for i < len(input) {
		c := input[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case isAlpha(c) || c == '_':
			start := i
			for i < len(input) && (isAlpha(input[i]) || isDigit(input[i]) || input[i] == '_') {
				i++
			}
			word := input[start:i]
			upper := strings.ToUpper(word)
			if _, ok := keywords[upper]; ok {
				tokens = append(tokens, Token{Kind: TokenKeyword, Text: upper})
			} else {
				tokens = append(tokens, Token{Kind: TokenIdentifier, Text: word})
			}

		case isDigit(c) || (c == '-' && i+1 < len(input) && isDigit(input[i+1])):
			start := i
			i++ // sign or first digit
			for i < len(input) && isDigit(input[i]) {
				i++
			}
			text := input[start:i]
			n, err := strconv.ParseInt(text, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrIntegerOutOfRange, text)
			}
			tokens = append(tokens, Token{Kind: TokenInteger, Text: text, Int: int32(n)})

		case c == '\'':
			i++
			start := i
			for i < len(input) && input[i] != '\'' {
				i++
			}
			if i >= len(input) {
				return nil, ErrUnterminatedString
			}
			tokens = append(tokens, Token{Kind: TokenString, Text: input[start:i]})
			i++ // closing quote

		case c == ',' || c == ';' || c == '*' || c == '(' || c == ')' || c == '=':
			tokens = append(tokens, Token{Kind: TokenSymbol, Text: string(c)})
			i++

		default:
			return nil, fmt.Errorf("%w: %q", ErrUnexpectedChar, c)
		}
	}

	tokens = append(tokens, Token{Kind: TokenEOF})
	return tokens, nil
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
