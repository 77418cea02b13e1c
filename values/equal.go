package values

import (
	"fmt"
)

// Equal reports whether two values are the same value. It is an
// equivalence relation and is stricter than Compare:
//
//   - Different types are never equal, so Int(1) != Float(1.0) and a
//     Timestamp never equals a ServerTimestamp
//   - Doubles are equal when their bit patterns are identical, except that
//     all NaNs are equal to each other; -0.0 != 0.0
//   - Strings are compared byte for byte with no Unicode normalization
//   - Server timestamps compare only their local write time
//   - Maps ignore key order; arrays do not
//
// Equal panics if either argument is not one of the package's value types.
func Equal(a, b Value) bool {
	checkValue(a)
	checkValue(b)
	if a.Type() != b.Type() {
		return false
	}

	switch av := a.(type) {
	case NullValue:
		return true
	case BooleanValue:
		return av == b.(BooleanValue)
	case IntegerValue:
		return av == b.(IntegerValue)
	case DoubleValue:
		return doublesEqual(float64(av), float64(b.(DoubleValue)))
	case TimestampValue:
		return av.Timestamp == b.(TimestampValue).Timestamp
	case ServerTimestampValue:
		return av.LocalWriteTime == b.(ServerTimestampValue).LocalWriteTime
	case StringValue:
		return av == b.(StringValue)
	case BlobValue:
		return av.b == b.(BlobValue).b
	case ReferenceValue:
		return av == b.(ReferenceValue)
	case GeoPointValue:
		bv := b.(GeoPointValue)
		return doublesEqual(av.Latitude, bv.Latitude) && doublesEqual(av.Longitude, bv.Longitude)
	case ArrayValue:
		return arraysEqual(av, b.(ArrayValue))
	case MapValue:
		return mapsEqual(av, b.(MapValue))
	default:
		panic(fmt.Sprintf("unknown value type: %T", a))
	}
}

func arraysEqual(a, b ArrayValue) bool {
	if len(a.elems) != len(b.elems) {
		return false
	}
	for i := range a.elems {
		if !Equal(a.elems[i], b.elems[i]) {
			return false
		}
	}
	return true
}

func mapsEqual(a, b MapValue) bool {
	if len(a.fields) != len(b.fields) {
		return false
	}
	for k, av := range a.fields {
		bv, ok := b.fields[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}
