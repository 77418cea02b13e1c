package values

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/wbrown/fieldvalues/values/codec"
)

// CanonicalID returns a deterministic, type-tagged string for v. Two values
// have the same canonical id exactly when they are Equal, so the id can
// stand in for the value as a map key or dedup key.
//
// Grammar:
//
//	null                    null
//	bool(true)              boolean
//	int(-12)                integer, base 10
//	double(1.5) double(-0)  double, shortest round-trip form; every NaN is double(NaN)
//	time(s,n)               timestamp
//	sts(s,n)                server timestamp (local write time only)
//	str("...")              string, Go-quoted
//	blob"..."               blob, L85 encoded
//	ref("p","d","path")     reference
//	geo(lat,lng)            geo point
//	[a,b]                   array
//	{"k":v,"k2":v2}         map, keys ascending
func CanonicalID(v Value) string {
	return string(appendCanonicalID(nil, v))
}

// Hash returns a 64-bit hash of v, consistent with Equal: equal values
// always hash the same
func Hash(v Value) uint64 {
	return xxhash.Sum64(appendCanonicalID(nil, v))
}

func appendCanonicalID(buf []byte, v Value) []byte {
	switch val := v.(type) {
	case NullValue:
		return append(buf, "null"...)
	case BooleanValue:
		buf = append(buf, "bool("...)
		buf = strconv.AppendBool(buf, bool(val))
		return append(buf, ')')
	case IntegerValue:
		buf = append(buf, "int("...)
		buf = strconv.AppendInt(buf, int64(val), 10)
		return append(buf, ')')
	case DoubleValue:
		buf = append(buf, "double("...)
		buf = appendCanonicalDouble(buf, float64(val))
		return append(buf, ')')
	case TimestampValue:
		return appendTimestamp(append(buf, "time"...), val.Timestamp)
	case ServerTimestampValue:
		return appendTimestamp(append(buf, "sts"...), val.LocalWriteTime)
	case StringValue:
		buf = append(buf, "str("...)
		buf = strconv.AppendQuote(buf, string(val))
		return append(buf, ')')
	case BlobValue:
		buf = append(buf, `blob"`...)
		buf = codec.Append(buf, []byte(val.b))
		return append(buf, '"')
	case ReferenceValue:
		buf = append(buf, "ref("...)
		buf = strconv.AppendQuote(buf, val.Database.Project)
		buf = append(buf, ',')
		buf = strconv.AppendQuote(buf, val.Database.Database)
		buf = append(buf, ',')
		buf = strconv.AppendQuote(buf, val.Path)
		return append(buf, ')')
	case GeoPointValue:
		buf = append(buf, "geo("...)
		buf = appendCanonicalDouble(buf, val.Latitude)
		buf = append(buf, ',')
		buf = appendCanonicalDouble(buf, val.Longitude)
		return append(buf, ')')
	case ArrayValue:
		buf = append(buf, '[')
		for i, e := range val.elems {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendCanonicalID(buf, e)
		}
		return append(buf, ']')
	case MapValue:
		buf = append(buf, '{')
		for i, k := range val.Keys() {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = strconv.AppendQuote(buf, k)
			buf = append(buf, ':')
			buf = appendCanonicalID(buf, val.fields[k])
		}
		return append(buf, '}')
	default:
		panic(fmt.Sprintf("unknown value type: %T", v))
	}
}

// appendCanonicalDouble writes the shortest decimal that round-trips to the
// same bits, which keeps -0 distinct from 0. All NaNs print as NaN.
func appendCanonicalDouble(buf []byte, f float64) []byte {
	if isNaN(f) {
		return append(buf, "NaN"...)
	}
	return strconv.AppendFloat(buf, f, 'g', -1, 64)
}

func appendTimestamp(buf []byte, ts Timestamp) []byte {
	buf = append(buf, '(')
	buf = strconv.AppendInt(buf, ts.Seconds, 10)
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, int64(ts.Nanos), 10)
	return append(buf, ')')
}
