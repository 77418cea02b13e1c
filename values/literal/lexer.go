package literal

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Lexer tokenizes literal input
type Lexer struct {
	input   string
	pos     int
	line    int
	col     int
	tokens  []Token
	current int
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		col:    1,
		tokens: []Token{},
	}
}

// Lex tokenizes the entire input
func (l *Lexer) Lex() error {
	for l.pos < len(l.input) {
		l.skipWhitespaceAndComments()
		if l.pos >= len(l.input) {
			break
		}

		startLine := l.line
		startCol := l.col

		ch := l.peek()
		switch ch {
		case '"':
			str, err := l.readString()
			if err != nil {
				return err
			}
			l.emit(TokenString, str, startLine, startCol)
		case '[':
			l.advance()
			l.emit(TokenLeftBracket, "", startLine, startCol)
		case ']':
			l.advance()
			l.emit(TokenRightBracket, "", startLine, startCol)
		case '{':
			l.advance()
			l.emit(TokenLeftBrace, "", startLine, startCol)
		case '}':
			l.advance()
			l.emit(TokenRightBrace, "", startLine, startCol)
		default:
			atom := l.readAtom()
			if atom == "" {
				return syntaxErrorf(l.line, l.col, "unexpected character '%c'", ch)
			}
			l.emit(TokenAtom, atom, startLine, startCol)
		}
	}

	l.emit(TokenEOF, "", l.line, l.col)
	return nil
}

func (l *Lexer) emit(typ TokenType, value string, line, col int) {
	l.tokens = append(l.tokens, Token{Type: typ, Value: value, Line: line, Col: col})
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	token := l.tokens[l.current]
	l.current++
	return token
}

// PeekToken returns the next token without advancing
func (l *Lexer) PeekToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	return l.tokens[l.current]
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

// skipWhitespaceAndComments skips whitespace, commas and ; comments
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.peek()
		if isSpace(ch) || ch == ',' {
			l.advance()
		} else if ch == ';' {
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
		} else {
			break
		}
	}
}

// readString reads a string literal. Bytes between the quotes are taken
// as-is, so strings holding invalid UTF-8 survive a round trip.
func (l *Lexer) readString() (string, error) {
	var result strings.Builder
	startLine, startCol := l.line, l.col
	l.advance() // skip opening quote

	for l.pos < len(l.input) {
		ch := l.peek()
		if ch == '"' {
			l.advance()
			return result.String(), nil
		}
		if ch != '\\' {
			result.WriteByte(ch)
			l.advance()
			continue
		}

		l.advance()
		if l.pos >= len(l.input) {
			return "", syntaxErrorf(l.line, l.col, "unexpected end of input in string")
		}
		escaped := l.peek()
		switch escaped {
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case 'n':
			result.WriteByte('\n')
		case '\\':
			result.WriteByte('\\')
		case '"':
			result.WriteByte('"')
		case 'u':
			r, err := l.readUnicodeEscape()
			if err != nil {
				return "", err
			}
			result.WriteRune(r)
			continue
		default:
			return "", syntaxErrorf(l.line, l.col, "invalid escape sequence '\\%c'", escaped)
		}
		l.advance()
	}

	return "", syntaxErrorf(startLine, startCol, "unterminated string")
}

// readUnicodeEscape reads the XXXX of \uXXXX with the lexer on the 'u'
func (l *Lexer) readUnicodeEscape() (rune, error) {
	line, col := l.line, l.col
	if l.pos+5 > len(l.input) {
		return 0, syntaxErrorf(line, col, "truncated \\u escape")
	}
	code, err := strconv.ParseUint(l.input[l.pos+1:l.pos+5], 16, 32)
	if err != nil {
		return 0, syntaxErrorf(line, col, "invalid \\u escape %q", l.input[l.pos+1:l.pos+5])
	}
	r := rune(code)
	if !utf8.ValidRune(r) {
		return 0, syntaxErrorf(line, col, "\\u escape %04x is not a valid code point", code)
	}
	for i := 0; i < 5; i++ {
		l.advance()
	}
	return r, nil
}

// readAtom reads an atom (non-string, non-delimiter token)
func (l *Lexer) readAtom() string {
	start := l.pos
	for l.pos < len(l.input) {
		ch := l.peek()
		if isDelimiter(ch) || isSpace(ch) || ch == ',' {
			break
		}
		l.advance()
	}
	return l.input[start:l.pos]
}

func isDelimiter(ch byte) bool {
	return ch == '(' || ch == ')' || ch == '[' || ch == ']' || ch == '{' || ch == '}' || ch == '"' || ch == ';'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}
