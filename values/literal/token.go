package literal

import "fmt"

// TokenType classifies a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenString
	TokenAtom
	TokenLeftBracket
	TokenRightBracket
	TokenLeftBrace
	TokenRightBrace
)

var tokenTypeNames = [...]string{
	TokenEOF:          "EOF",
	TokenString:       "String",
	TokenAtom:         "Atom",
	TokenLeftBracket:  "LeftBracket",
	TokenRightBracket: "RightBracket",
	TokenLeftBrace:    "LeftBrace",
	TokenRightBrace:   "RightBrace",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return "Unknown"
}

// Token is one lexical unit. Value holds the decoded string contents or the
// atom text; Line and Col are 1-based and point at its first character.
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
}

// String renders the token for error messages, e.g. Atom[3:4]:nil
func (t Token) String() string {
	pos := fmt.Sprintf("%s[%d:%d]", t.Type, t.Line, t.Col)
	switch t.Type {
	case TokenString:
		return fmt.Sprintf("%s:%q", pos, t.Value)
	case TokenEOF, TokenLeftBracket, TokenRightBracket, TokenLeftBrace, TokenRightBrace:
		return pos
	default:
		return pos + ":" + t.Value
	}
}
