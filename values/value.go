package values

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Value is a single field value stored in a document.
// The set of implementations is closed: every Value is exactly one of
// NullValue, BooleanValue, IntegerValue, DoubleValue, TimestampValue,
// ServerTimestampValue, StringValue, BlobValue, ReferenceValue,
// GeoPointValue, ArrayValue or MapValue. Values are immutable.
type Value interface {
	// Type returns the variant tag
	Type() ValueType
	// String renders the value in literal syntax (see package literal)
	String() string

	isValue()
}

// NullValue is the single null value
type NullValue struct{}

// BooleanValue is true or false
type BooleanValue bool

// IntegerValue is a 64-bit signed integer
type IntegerValue int64

// DoubleValue is an IEEE-754 binary64 number. Its exact bit pattern is
// significant for equality.
type DoubleValue float64

// TimestampValue is a concrete point in time
type TimestampValue struct {
	Timestamp
}

// ServerTimestampValue is a pending server timestamp written locally.
// Previous is the value it shadows until the server resolves it, or nil.
// Previous never participates in equality or ordering.
type ServerTimestampValue struct {
	LocalWriteTime Timestamp
	Previous       Value
}

// StringValue is a UTF-8 string, compared as stored without normalization
type StringValue string

// BlobValue is an immutable byte sequence
type BlobValue struct {
	b string
}

// ReferenceValue points at another document
type ReferenceValue struct {
	Database DatabaseID
	Path     string // Document path, e.g. "rooms/eros/messages/1"
}

// GeoPointValue is a latitude/longitude pair
type GeoPointValue struct {
	Latitude  float64
	Longitude float64
}

// ArrayValue is an ordered sequence of values
type ArrayValue struct {
	elems []Value
}

// MapValue maps string keys to values. Key order is not significant.
type MapValue struct {
	fields map[string]Value
}

// Entry is a single key/value pair used to build a MapValue
type Entry struct {
	Key   string
	Value Value
}

func (NullValue) isValue()            {}
func (BooleanValue) isValue()         {}
func (IntegerValue) isValue()         {}
func (DoubleValue) isValue()          {}
func (TimestampValue) isValue()       {}
func (ServerTimestampValue) isValue() {}
func (StringValue) isValue()          {}
func (BlobValue) isValue()            {}
func (ReferenceValue) isValue()       {}
func (GeoPointValue) isValue()        {}
func (ArrayValue) isValue()           {}
func (MapValue) isValue()             {}

func (NullValue) Type() ValueType            { return TypeNull }
func (BooleanValue) Type() ValueType         { return TypeBoolean }
func (IntegerValue) Type() ValueType         { return TypeInteger }
func (DoubleValue) Type() ValueType          { return TypeDouble }
func (TimestampValue) Type() ValueType       { return TypeTimestamp }
func (ServerTimestampValue) Type() ValueType { return TypeServerTimestamp }
func (StringValue) Type() ValueType          { return TypeString }
func (BlobValue) Type() ValueType            { return TypeBlob }
func (ReferenceValue) Type() ValueType       { return TypeReference }
func (GeoPointValue) Type() ValueType        { return TypeGeoPoint }
func (ArrayValue) Type() ValueType           { return TypeArray }
func (MapValue) Type() ValueType             { return TypeMap }

// checkValue panics on a nil Value, which has no type to dispatch on
func checkValue(v Value) {
	if v == nil {
		panic(fmt.Sprintf("unknown value type: %T", v))
	}
}

// Helper functions for creating typed values
func Null() NullValue                  { return NullValue{} }
func Bool(b bool) BooleanValue         { return BooleanValue(b) }
func Float(f float64) DoubleValue      { return DoubleValue(f) }
func String(s string) StringValue      { return StringValue(s) }
func Time(ts Timestamp) TimestampValue { return TimestampValue{Timestamp: ts} }

// Int creates an integer value from any signed integer width.
// Int(int8(1)) and Int(int64(1)) are the same value.
func Int[T constraints.Signed](i T) IntegerValue {
	return IntegerValue(int64(i))
}

// FloatBits creates a double from its raw IEEE-754 bit pattern
func FloatBits(bits uint64) DoubleValue {
	return DoubleValue(math.Float64frombits(bits))
}

// ServerTime creates a pending server timestamp. previous may be nil.
func ServerTime(localWriteTime Timestamp, previous Value) ServerTimestampValue {
	return ServerTimestampValue{LocalWriteTime: localWriteTime, Previous: previous}
}

// Bytes creates a blob. The input is copied.
func Bytes(b []byte) BlobValue {
	return BlobValue{b: string(b)}
}

// Ref creates a document reference
func Ref(db DatabaseID, path string) ReferenceValue {
	return ReferenceValue{Database: db, Path: path}
}

// NewGeoPoint validates and creates a geo point
func NewGeoPoint(latitude, longitude float64) (GeoPointValue, error) {
	if !(latitude >= -90 && latitude <= 90) {
		return GeoPointValue{}, fmt.Errorf("%w: latitude %v must be in [-90, 90]", ErrInvalidGeoPoint, latitude)
	}
	if !(longitude >= -180 && longitude <= 180) {
		return GeoPointValue{}, fmt.Errorf("%w: longitude %v must be in [-180, 180]", ErrInvalidGeoPoint, longitude)
	}
	return GeoPointValue{Latitude: latitude, Longitude: longitude}, nil
}

// Array creates an array. The slice is copied.
func Array(elems ...Value) ArrayValue {
	return ArrayValue{elems: slices.Clone(elems)}
}

// Map creates a map. The input map is copied.
func Map(fields map[string]Value) MapValue {
	return MapValue{fields: maps.Clone(fields)}
}

// MapFromEntries creates a map from key/value pairs, in any order.
// Repeated keys are rejected.
func MapFromEntries(entries ...Entry) (MapValue, error) {
	fields := make(map[string]Value, len(entries))
	for _, e := range entries {
		if _, ok := fields[e.Key]; ok {
			return MapValue{}, fmt.Errorf("%w: %q", ErrDuplicateKey, e.Key)
		}
		fields[e.Key] = e.Value
	}
	return MapValue{fields: fields}, nil
}

// Bytes returns a copy of the blob contents
func (b BlobValue) Bytes() []byte {
	return []byte(b.b)
}

// Len returns the number of bytes
func (b BlobValue) Len() int {
	return len(b.b)
}

// Len returns the number of elements
func (a ArrayValue) Len() int {
	return len(a.elems)
}

// At returns the element at position i
func (a ArrayValue) At(i int) Value {
	return a.elems[i]
}

// Values returns a copy of the elements
func (a ArrayValue) Values() []Value {
	return slices.Clone(a.elems)
}

// Contains reports whether any element is Equal to v
func (a ArrayValue) Contains(v Value) bool {
	for _, e := range a.elems {
		if Equal(e, v) {
			return true
		}
	}
	return false
}

// Len returns the number of fields
func (m MapValue) Len() int {
	return len(m.fields)
}

// Get returns the value stored under key
func (m MapValue) Get(key string) (Value, bool) {
	v, ok := m.fields[key]
	return v, ok
}

// Keys returns the keys in ascending byte order
func (m MapValue) Keys() []string {
	keys := maps.Keys(m.fields)
	slices.Sort(keys)
	return keys
}

// Field resolves a dot-separated field path through nested maps,
// e.g. "address.city"
func (m MapValue) Field(path string) (Value, bool) {
	current := m
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		v, ok := current.fields[seg]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return v, true
		}
		next, ok := v.(MapValue)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// String representations use the literal syntax read by package literal

func (NullValue) String() string { return "nil" }

func (b BooleanValue) String() string {
	return strconv.FormatBool(bool(b))
}

func (i IntegerValue) String() string {
	return strconv.FormatInt(int64(i), 10)
}

func (d DoubleValue) String() string {
	return formatDouble(float64(d))
}

func (t TimestampValue) String() string {
	return fmt.Sprintf("#ts [%d %d]", t.Seconds, t.Nanos)
}

func (s ServerTimestampValue) String() string {
	if s.Previous == nil {
		return fmt.Sprintf("#sts [%d %d]", s.LocalWriteTime.Seconds, s.LocalWriteTime.Nanos)
	}
	return fmt.Sprintf("#sts [%d %d %s]", s.LocalWriteTime.Seconds, s.LocalWriteTime.Nanos, s.Previous)
}

func (s StringValue) String() string {
	return quoteLiteral(string(s))
}

func (b BlobValue) String() string {
	parts := make([]string, len(b.b))
	for i := 0; i < len(b.b); i++ {
		parts[i] = strconv.Itoa(int(b.b[i]))
	}
	return "#blob [" + strings.Join(parts, " ") + "]"
}

func (r ReferenceValue) String() string {
	return fmt.Sprintf("#ref [%s %s %s]",
		quoteLiteral(r.Database.Project), quoteLiteral(r.Database.Database), quoteLiteral(r.Path))
}

func (g GeoPointValue) String() string {
	return fmt.Sprintf("#geo [%s %s]", formatDouble(g.Latitude), formatDouble(g.Longitude))
}

func (a ArrayValue) String() string {
	parts := make([]string, len(a.elems))
	for i, e := range a.elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (m MapValue) String() string {
	keys := m.Keys()
	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, quoteLiteral(k), m.fields[k].String())
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// formatDouble always produces a literal that reads back as a double,
// never as an integer
func formatDouble(f float64) string {
	switch {
	case isNaN(f):
		return "##NaN"
	case math.IsInf(f, 1):
		return "##Inf"
	case math.IsInf(f, -1):
		return "##-Inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// quoteLiteral quotes s using only the escapes the literal lexer accepts
func quoteLiteral(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"':
			sb.WriteString(`\"`)
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			// Invalid UTF-8 is written through byte for byte
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	sb.WriteByte('"')
	return sb.String()
}
