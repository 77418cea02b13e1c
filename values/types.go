package values

import (
	"errors"
	"fmt"
	"time"
)

// ValueType identifies which of the twelve variants a Value holds
type ValueType byte

const (
	TypeNull ValueType = iota
	TypeBoolean
	TypeInteger
	TypeDouble
	TypeTimestamp
	TypeServerTimestamp
	TypeString
	TypeBlob
	TypeReference
	TypeGeoPoint
	TypeArray
	TypeMap
)

var typeNames = [...]string{
	TypeNull:            "null",
	TypeBoolean:         "boolean",
	TypeInteger:         "integer",
	TypeDouble:          "double",
	TypeTimestamp:       "timestamp",
	TypeServerTimestamp: "server-timestamp",
	TypeString:          "string",
	TypeBlob:            "blob",
	TypeReference:       "reference",
	TypeGeoPoint:        "geo-point",
	TypeArray:           "array",
	TypeMap:             "map",
}

// String returns the lower-case name of the type
func (t ValueType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("ValueType(%d)", byte(t))
}

// TypeOrder is the precedence rank used as the primary sort key.
// Integer and Double share TypeOrderNumber.
type TypeOrder int

const (
	TypeOrderNull TypeOrder = iota
	TypeOrderBoolean
	TypeOrderNumber
	TypeOrderTimestamp
	TypeOrderServerTimestamp
	TypeOrderString
	TypeOrderBlob
	TypeOrderReference
	TypeOrderGeoPoint
	TypeOrderArray
	TypeOrderMap
)

// Order returns the precedence rank of the type
func (t ValueType) Order() TypeOrder {
	switch t {
	case TypeNull:
		return TypeOrderNull
	case TypeBoolean:
		return TypeOrderBoolean
	case TypeInteger, TypeDouble:
		return TypeOrderNumber
	case TypeTimestamp:
		return TypeOrderTimestamp
	case TypeServerTimestamp:
		return TypeOrderServerTimestamp
	case TypeString:
		return TypeOrderString
	case TypeBlob:
		return TypeOrderBlob
	case TypeReference:
		return TypeOrderReference
	case TypeGeoPoint:
		return TypeOrderGeoPoint
	case TypeArray:
		return TypeOrderArray
	case TypeMap:
		return TypeOrderMap
	default:
		panic(fmt.Sprintf("unknown value type: %v", t))
	}
}

var (
	// ErrInvalidTimestamp is returned for out-of-range seconds or nanoseconds
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidGeoPoint is returned for latitudes outside [-90, 90] or
	// longitudes outside [-180, 180]
	ErrInvalidGeoPoint = errors.New("invalid geo point")

	// ErrDuplicateKey is returned when a map is built with a repeated key
	ErrDuplicateKey = errors.New("duplicate map key")
)

const (
	// 0001-01-01T00:00:00Z and 9999-12-31T23:59:59Z
	minTimestampSeconds = -62135596800
	maxTimestampSeconds = 253402300799
)

// Timestamp is a point in time with nanosecond precision, independent of
// any time zone
type Timestamp struct {
	Seconds int64 // Seconds since the Unix epoch
	Nanos   int32 // Non-negative fraction of a second, in [0, 1e9)
}

// NewTimestamp validates and creates a timestamp
func NewTimestamp(seconds int64, nanos int32) (Timestamp, error) {
	if nanos < 0 || nanos >= 1e9 {
		return Timestamp{}, fmt.Errorf("%w: nanoseconds %d out of range", ErrInvalidTimestamp, nanos)
	}
	if seconds < minTimestampSeconds || seconds > maxTimestampSeconds {
		return Timestamp{}, fmt.Errorf("%w: seconds %d out of range", ErrInvalidTimestamp, seconds)
	}
	return Timestamp{Seconds: seconds, Nanos: nanos}, nil
}

// TimestampFromTime converts a time.Time. The location is discarded.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Time returns the timestamp as a UTC time.Time
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// Compare compares two timestamps lexicographically by (seconds, nanos)
func (ts Timestamp) Compare(other Timestamp) ComparisonResult {
	if r := compareInt64s(ts.Seconds, other.Seconds); r != Same {
		return r
	}
	return compareInt64s(int64(ts.Nanos), int64(other.Nanos))
}

// String returns the timestamp as RFC 3339 with nanoseconds
func (ts Timestamp) String() string {
	return ts.Time().Format(time.RFC3339Nano)
}

// DefaultDatabase is the database name used when none is given
const DefaultDatabase = "(default)"

// DatabaseID names the database a reference points into
type DatabaseID struct {
	Project  string
	Database string
}

// NewDatabaseID creates a database id, defaulting an empty database name
func NewDatabaseID(project, database string) DatabaseID {
	if database == "" {
		database = DefaultDatabase
	}
	return DatabaseID{Project: project, Database: database}
}

// IsDefault reports whether this is the default database of its project
func (d DatabaseID) IsDefault() bool {
	return d.Database == DefaultDatabase
}

// Compare compares by project, then database name
func (d DatabaseID) Compare(other DatabaseID) ComparisonResult {
	if r := compareStrings(d.Project, other.Project); r != Same {
		return r
	}
	return compareStrings(d.Database, other.Database)
}

// String returns project/database
func (d DatabaseID) String() string {
	return d.Project + "/" + d.Database
}
