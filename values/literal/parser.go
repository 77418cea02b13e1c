// Package literal reads values written in the text syntax produced by
// values.Value.String:
//
//	nil true false 42 -1.5 1e20 ##NaN ##Inf ##-Inf #bits 0x7ff8000000000001
//	"text" #ts [1463739600 0] #ts "2016-05-20T10:20:00Z"
//	#sts [1463739600 0] #sts [1463739600 0 "previous"]
//	#blob [0 1 255] #ref ["project" "(default)" "rooms/eros"] #ref ["project" "rooms/eros"]
//	#geo [51.5 -0.12] [1 "two" 3.0] {"key" "value" "nested" {"a" 1}}
//
// Commas are whitespace, ; starts a comment and #_ discards the next form.
package literal

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/wbrown/fieldvalues/values"
)

// ErrSyntax is wrapped by every error caused by malformed input
var ErrSyntax = errors.New("literal syntax error")

var (
	intPattern   = regexp.MustCompile(`^[+-]?\d+$`)
	floatPattern = regexp.MustCompile(`^[+-]?\d+(\.\d+)?([eE][+-]?\d+)?$`)
)

func syntaxErrorf(line, col int, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s at %d:%d", ErrSyntax, fmt.Sprintf(format, args...), line, col)
}

// Parser reads values from a token stream
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new parser
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// Parse reads exactly one value from input
func Parse(input string) (values.Value, error) {
	lexer := NewLexer(input)
	if err := lexer.Lex(); err != nil {
		return nil, err
	}

	parser := NewParser(lexer)
	v, err := parser.Parse()
	if err != nil {
		return nil, err
	}
	if err := parser.skipDiscards(); err != nil {
		return nil, err
	}
	if token := lexer.PeekToken(); token.Type != TokenEOF {
		return nil, syntaxErrorf(token.Line, token.Col, "unexpected trailing input %s", token)
	}
	return v, nil
}

// ParseAll reads every value in input
func ParseAll(input string) ([]values.Value, error) {
	lexer := NewLexer(input)
	if err := lexer.Lex(); err != nil {
		return nil, err
	}
	return NewParser(lexer).ParseAll()
}

// MustParse is like Parse but panics on error. It is intended for tests
// and fixed fixtures.
func MustParse(input string) values.Value {
	v, err := Parse(input)
	if err != nil {
		panic(fmt.Sprintf("literal.MustParse(%q): %v", input, err))
	}
	return v
}

// Parse reads a single value
func (p *Parser) Parse() (values.Value, error) {
	if err := p.skipDiscards(); err != nil {
		return nil, err
	}
	return p.readValue()
}

// ParseAll reads all values until EOF
func (p *Parser) ParseAll() ([]values.Value, error) {
	var vs []values.Value
	for {
		if err := p.skipDiscards(); err != nil {
			return nil, err
		}
		if p.lexer.PeekToken().Type == TokenEOF {
			return vs, nil
		}
		v, err := p.readValue()
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
}

// skipDiscards consumes any #_ forms at the current position
func (p *Parser) skipDiscards() error {
	for {
		token := p.lexer.PeekToken()
		if token.Type != TokenAtom || token.Value != "#_" {
			return nil
		}
		p.lexer.NextToken()
		if err := p.skipDiscards(); err != nil {
			return err
		}
		if _, err := p.readValue(); err != nil {
			return err
		}
	}
}

// readValue reads a single value
func (p *Parser) readValue() (values.Value, error) {
	token := p.lexer.PeekToken()

	switch token.Type {
	case TokenEOF:
		return nil, syntaxErrorf(token.Line, token.Col, "unexpected EOF")
	case TokenString:
		p.lexer.NextToken()
		return values.String(token.Value), nil
	case TokenAtom:
		return p.readAtom()
	case TokenLeftBracket:
		return p.readArray()
	case TokenLeftBrace:
		return p.readMap()
	default:
		return nil, syntaxErrorf(token.Line, token.Col, "unexpected token %s", token)
	}
}

// readAtom reads and classifies an atom
func (p *Parser) readAtom() (values.Value, error) {
	token := p.lexer.NextToken()
	value := token.Value

	switch value {
	case "nil":
		return values.Null(), nil
	case "true":
		return values.Bool(true), nil
	case "false":
		return values.Bool(false), nil
	case "##NaN":
		return values.Float(math.NaN()), nil
	case "##Inf":
		return values.Float(math.Inf(1)), nil
	case "##-Inf":
		return values.Float(math.Inf(-1)), nil
	}

	if len(value) > 1 && value[0] == '#' {
		return p.readTagged(token)
	}

	if intPattern.MatchString(value) {
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, syntaxErrorf(token.Line, token.Col, "integer %s out of range", value)
		}
		return values.Int(i), nil
	}

	if floatPattern.MatchString(value) {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, syntaxErrorf(token.Line, token.Col, "double %s out of range", value)
		}
		return values.Float(f), nil
	}

	return nil, syntaxErrorf(token.Line, token.Col, "unrecognized atom %q", value)
}

// readTagged reads the form following a #tag and converts it
func (p *Parser) readTagged(tag Token) (values.Value, error) {
	if tag.Value == "#bits" {
		next := p.lexer.NextToken()
		if next.Type != TokenAtom {
			return nil, syntaxErrorf(next.Line, next.Col, "#bits expects a hexadecimal atom")
		}
		bits, err := strconv.ParseUint(next.Value, 0, 64)
		if err != nil {
			return nil, syntaxErrorf(next.Line, next.Col, "invalid #bits %q", next.Value)
		}
		return values.FloatBits(bits), nil
	}

	form, err := p.readValue()
	if err != nil {
		return nil, err
	}

	var v values.Value
	switch tag.Value {
	case "#ts":
		v, err = timestampFromForm(form)
	case "#sts":
		v, err = serverTimestampFromForm(form)
	case "#blob":
		v, err = blobFromForm(form)
	case "#ref":
		v, err = referenceFromForm(form)
	case "#geo":
		v, err = geoPointFromForm(form)
	default:
		return nil, syntaxErrorf(tag.Line, tag.Col, "unknown tag %s", tag.Value)
	}
	if err != nil {
		return nil, fmt.Errorf("%s at %d:%d: %w", tag.Value, tag.Line, tag.Col, err)
	}
	return v, nil
}

// readArray reads [...]
func (p *Parser) readArray() (values.Value, error) {
	startToken := p.lexer.NextToken() // consume [

	var elems []values.Value
	for {
		if err := p.skipDiscards(); err != nil {
			return nil, err
		}
		token := p.lexer.PeekToken()
		if token.Type == TokenRightBracket {
			p.lexer.NextToken()
			break
		}
		if token.Type == TokenEOF {
			return nil, syntaxErrorf(startToken.Line, startToken.Col, "unterminated array")
		}

		v, err := p.readValue()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}

	return values.Array(elems...), nil
}

// readMap reads {"key" value ...}
func (p *Parser) readMap() (values.Value, error) {
	startToken := p.lexer.NextToken() // consume {

	var entries []values.Entry
	for {
		if err := p.skipDiscards(); err != nil {
			return nil, err
		}
		token := p.lexer.PeekToken()
		if token.Type == TokenRightBrace {
			p.lexer.NextToken()
			break
		}
		if token.Type == TokenEOF {
			return nil, syntaxErrorf(startToken.Line, startToken.Col, "unterminated map")
		}
		if token.Type != TokenString {
			return nil, syntaxErrorf(token.Line, token.Col, "map keys must be strings, got %s", token)
		}
		p.lexer.NextToken()

		if err := p.skipDiscards(); err != nil {
			return nil, err
		}
		next := p.lexer.PeekToken()
		if next.Type == TokenRightBrace || next.Type == TokenEOF {
			return nil, syntaxErrorf(token.Line, token.Col, "map missing value for key %q", token.Value)
		}

		v, err := p.readValue()
		if err != nil {
			return nil, err
		}
		entries = append(entries, values.Entry{Key: token.Value, Value: v})
	}

	m, err := values.MapFromEntries(entries...)
	if err != nil {
		return nil, fmt.Errorf("map at %d:%d: %w", startToken.Line, startToken.Col, err)
	}
	return m, nil
}

// Tag conversions

func formElems(form values.Value, lo, hi int) ([]values.Value, error) {
	arr, ok := form.(values.ArrayValue)
	if !ok {
		return nil, fmt.Errorf("%w: expected an array, got %s", ErrSyntax, form.Type())
	}
	if arr.Len() < lo || arr.Len() > hi {
		if lo == hi {
			return nil, fmt.Errorf("%w: expected %d elements, got %d", ErrSyntax, lo, arr.Len())
		}
		return nil, fmt.Errorf("%w: expected %d to %d elements, got %d", ErrSyntax, lo, hi, arr.Len())
	}
	return arr.Values(), nil
}

func formInt(v values.Value) (int64, error) {
	i, ok := v.(values.IntegerValue)
	if !ok {
		return 0, fmt.Errorf("%w: expected an integer, got %s", ErrSyntax, v)
	}
	return int64(i), nil
}

func formString(v values.Value) (string, error) {
	s, ok := v.(values.StringValue)
	if !ok {
		return "", fmt.Errorf("%w: expected a string, got %s", ErrSyntax, v)
	}
	return string(s), nil
}

func formNumber(v values.Value) (float64, error) {
	switch n := v.(type) {
	case values.IntegerValue:
		return float64(n), nil
	case values.DoubleValue:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: expected a number, got %s", ErrSyntax, v)
	}
}

// timestampPair reads [seconds nanos] from the first two elements
func timestampPair(elems []values.Value) (values.Timestamp, error) {
	seconds, err := formInt(elems[0])
	if err != nil {
		return values.Timestamp{}, err
	}
	nanos, err := formInt(elems[1])
	if err != nil {
		return values.Timestamp{}, err
	}
	if nanos < math.MinInt32 || nanos > math.MaxInt32 {
		return values.Timestamp{}, fmt.Errorf("%w: nanoseconds %d out of range", values.ErrInvalidTimestamp, nanos)
	}
	return values.NewTimestamp(seconds, int32(nanos))
}

func timestampFromForm(form values.Value) (values.Value, error) {
	if s, ok := form.(values.StringValue); ok {
		t, err := time.Parse(time.RFC3339Nano, string(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", values.ErrInvalidTimestamp, err)
		}
		ts := values.TimestampFromTime(t)
		if _, err := values.NewTimestamp(ts.Seconds, ts.Nanos); err != nil {
			return nil, err
		}
		return values.Time(ts), nil
	}

	elems, err := formElems(form, 2, 2)
	if err != nil {
		return nil, err
	}
	ts, err := timestampPair(elems)
	if err != nil {
		return nil, err
	}
	return values.Time(ts), nil
}

func serverTimestampFromForm(form values.Value) (values.Value, error) {
	elems, err := formElems(form, 2, 3)
	if err != nil {
		return nil, err
	}
	ts, err := timestampPair(elems)
	if err != nil {
		return nil, err
	}
	var previous values.Value
	if len(elems) == 3 {
		previous = elems[2]
	}
	return values.ServerTime(ts, previous), nil
}

func blobFromForm(form values.Value) (values.Value, error) {
	arr, ok := form.(values.ArrayValue)
	if !ok {
		return nil, fmt.Errorf("%w: expected an array of bytes, got %s", ErrSyntax, form.Type())
	}
	b := make([]byte, arr.Len())
	for i := range b {
		n, err := formInt(arr.At(i))
		if err != nil {
			return nil, err
		}
		if n < 0 || n > math.MaxUint8 {
			return nil, fmt.Errorf("%w: byte %d out of range", ErrSyntax, n)
		}
		b[i] = byte(n)
	}
	return values.Bytes(b), nil
}

func referenceFromForm(form values.Value) (values.Value, error) {
	elems, err := formElems(form, 2, 3)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		if parts[i], err = formString(e); err != nil {
			return nil, err
		}
	}
	if len(parts) == 2 {
		return values.Ref(values.NewDatabaseID(parts[0], values.DefaultDatabase), parts[1]), nil
	}
	// An explicit database is kept as written, even when empty
	return values.Ref(values.DatabaseID{Project: parts[0], Database: parts[1]}, parts[2]), nil
}

func geoPointFromForm(form values.Value) (values.Value, error) {
	elems, err := formElems(form, 2, 2)
	if err != nil {
		return nil, err
	}
	lat, err := formNumber(elems[0])
	if err != nil {
		return nil, err
	}
	lng, err := formNumber(elems[1])
	if err != nil {
		return nil, err
	}
	return values.NewGeoPoint(lat, lng)
}
