package values

import (
	"math"
)

const (
	signMask     = 1 << 63
	exponentMask = 0x7ff << 52
	mantissaMask = 1<<52 - 1

	// 2^63 is the first float64 above every int64
	twoTo63 = 9223372036854775808.0
)

// isNaN tests the bit layout directly: exponent all ones, mantissa
// non-zero. Sign and payload are irrelevant.
func isNaN(f float64) bool {
	bits := math.Float64bits(f)
	return bits&exponentMask == exponentMask && bits&mantissaMask != 0
}

// isNegativeZero reports whether f is -0.0
func isNegativeZero(f float64) bool {
	return math.Float64bits(f) == signMask
}

// doublesEqual is the equality rule for doubles: identical bit patterns,
// except that every NaN equals every other NaN. -0.0 and 0.0 differ.
func doublesEqual(a, b float64) bool {
	if isNaN(a) {
		return isNaN(b)
	}
	return math.Float64bits(a) == math.Float64bits(b)
}

// compareDoubles orders doubles numerically. NaN sorts below every other
// number and all NaNs are Same; -0.0 and 0.0 are Same.
func compareDoubles(a, b float64) ComparisonResult {
	aNaN, bNaN := isNaN(a), isNaN(b)
	switch {
	case aNaN && bNaN:
		return Same
	case aNaN:
		return Less
	case bNaN:
		return Greater
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Same
	}
}

// compareIntegerToDouble compares the exact mathematical values of i and d.
// Converting i to float64 would round large magnitudes, so d is truncated
// into the integer domain instead and the fraction breaks ties.
func compareIntegerToDouble(i int64, d float64) ComparisonResult {
	switch {
	case isNaN(d):
		return Greater
	case d < -twoTo63:
		return Greater
	case d >= twoTo63:
		return Less
	}

	// d is in [-2^63, 2^63) so the conversion is exact
	truncated := int64(d)
	if r := compareInt64s(i, truncated); r != Same {
		return r
	}
	frac := d - float64(truncated)
	switch {
	case frac > 0:
		return Less
	case frac < 0:
		return Greater
	default:
		return Same
	}
}

// compareNumbers orders any combination of IntegerValue and DoubleValue
func compareNumbers(left, right Value) ComparisonResult {
	switch l := left.(type) {
	case IntegerValue:
		switch r := right.(type) {
		case IntegerValue:
			return compareInt64s(int64(l), int64(r))
		case DoubleValue:
			return compareIntegerToDouble(int64(l), float64(r))
		}
	case DoubleValue:
		switch r := right.(type) {
		case IntegerValue:
			return -compareIntegerToDouble(int64(r), float64(l))
		case DoubleValue:
			return compareDoubles(float64(l), float64(r))
		}
	}
	panic("compareNumbers called with non-numeric values")
}

// compareInt64s compares two int64 values
func compareInt64s(a, b int64) ComparisonResult {
	if a < b {
		return Less
	} else if a > b {
		return Greater
	}
	return Same
}
