package values

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// ComparisonResult is the outcome of ordering two values.
// The numeric values match the -1/0/1 convention of strings.Compare.
type ComparisonResult int

const (
	Less    ComparisonResult = -1
	Same    ComparisonResult = 0
	Greater ComparisonResult = 1
)

// String returns "less", "same" or "greater"
func (r ComparisonResult) String() string {
	switch r {
	case Less:
		return "less"
	case Same:
		return "same"
	case Greater:
		return "greater"
	default:
		return fmt.Sprintf("ComparisonResult(%d)", int(r))
	}
}

// Compare orders any two values. It is a total order:
//
//   - Values of different type precedence order by precedence alone:
//     null < boolean < number < timestamp < server timestamp < string <
//     blob < reference < geo point < array < map
//   - Integers and doubles share one rank and compare by mathematical value,
//     so Int(1) and Float(1.0) are Same even though they are not Equal
//   - NaN is the smallest number; -0.0, 0.0 and Int(0) are Same
//   - Arrays and maps compare element by element; a prefix sorts first
//
// Compare panics if either argument is not one of the package's value types.
func Compare(left, right Value) ComparisonResult {
	checkValue(left)
	checkValue(right)
	leftOrder, rightOrder := left.Type().Order(), right.Type().Order()
	if leftOrder != rightOrder {
		return compareInt64s(int64(leftOrder), int64(rightOrder))
	}

	switch l := left.(type) {
	case NullValue:
		return Same
	case BooleanValue:
		return compareBools(bool(l), bool(right.(BooleanValue)))
	case IntegerValue, DoubleValue:
		return compareNumbers(left, right)
	case TimestampValue:
		return l.Timestamp.Compare(right.(TimestampValue).Timestamp)
	case ServerTimestampValue:
		return l.LocalWriteTime.Compare(right.(ServerTimestampValue).LocalWriteTime)
	case StringValue:
		return compareStrings(string(l), string(right.(StringValue)))
	case BlobValue:
		// Byte-wise; a strict prefix sorts first
		return compareStrings(l.b, right.(BlobValue).b)
	case ReferenceValue:
		return compareReferences(l, right.(ReferenceValue))
	case GeoPointValue:
		return compareGeoPoints(l, right.(GeoPointValue))
	case ArrayValue:
		return compareArrays(l, right.(ArrayValue))
	case MapValue:
		return compareMaps(l, right.(MapValue))
	default:
		panic(fmt.Sprintf("unknown value type: %T", left))
	}
}

// Before reports whether left sorts strictly before right
func Before(left, right Value) bool {
	return Compare(left, right) == Less
}

// Sort sorts vs in place in ascending order. Values that compare Same keep
// their relative order.
func Sort(vs []Value) {
	slices.SortStableFunc(vs, func(a, b Value) int {
		return int(Compare(a, b))
	})
}

func compareBools(a, b bool) ComparisonResult {
	if a == b {
		return Same
	}
	if !a {
		return Less
	}
	return Greater
}

// compareStrings compares UTF-8 byte sequences, which orders the same as
// code points
func compareStrings(a, b string) ComparisonResult {
	return ComparisonResult(strings.Compare(a, b))
}

func compareReferences(a, b ReferenceValue) ComparisonResult {
	if r := a.Database.Compare(b.Database); r != Same {
		return r
	}
	return compareStrings(a.Path, b.Path)
}

func compareGeoPoints(a, b GeoPointValue) ComparisonResult {
	if r := compareDoubles(a.Latitude, b.Latitude); r != Same {
		return r
	}
	return compareDoubles(a.Longitude, b.Longitude)
}

func compareArrays(a, b ArrayValue) ComparisonResult {
	n := min(len(a.elems), len(b.elems))
	for i := 0; i < n; i++ {
		if r := Compare(a.elems[i], b.elems[i]); r != Same {
			return r
		}
	}
	return compareInt64s(int64(len(a.elems)), int64(len(b.elems)))
}

// compareMaps walks both maps in ascending key order, comparing each key and
// then its value. The first difference decides; when every shared position
// matches, the map with fewer keys sorts first.
func compareMaps(a, b MapValue) ComparisonResult {
	aKeys, bKeys := a.Keys(), b.Keys()
	n := min(len(aKeys), len(bKeys))
	for i := 0; i < n; i++ {
		if r := compareStrings(aKeys[i], bKeys[i]); r != Same {
			return r
		}
		if r := Compare(a.fields[aKeys[i]], b.fields[bKeys[i]]); r != Same {
			return r
		}
	}
	return compareInt64s(int64(len(aKeys)), int64(len(bKeys)))
}
