package values

import (
	"math"
	"testing"
	"time"
)

const (
	canonicalNaNBits = 0x7ff8000000000000
	// All permutations of the 51 other non-MSB significand bits are also NaNs
	alternateNaNBits = 0x7fff000000000000
	negativeNaNBits  = 0xfff8000000000000
	payloadNaNBits   = 0x7ff0000000000001
)

var (
	date1      = time.Date(2016, 5, 20, 10, 20, 0, 0, time.UTC)
	timestamp1 = Timestamp{Seconds: 1463739600}
	date2      = time.Date(2016, 10, 21, 15, 32, 0, 0, time.UTC)
	timestamp2 = Timestamp{Seconds: 1477063920}

	defaultDB = NewDatabaseID("project", DefaultDatabase)
)

func mustGeo(t testing.TB, lat, lng float64) GeoPointValue {
	t.Helper()
	g, err := NewGeoPoint(lat, lng)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func stringArray(ss ...string) ArrayValue {
	vs := make([]Value, len(ss))
	for i, s := range ss {
		vs[i] = String(s)
	}
	return Array(vs...)
}

// equalityGroups returns groups of values where every member of a group is
// Equal to every other member and unequal to members of every other group
func equalityGroups(t testing.TB) [][]Value {
	barFoo := map[string]Value{}
	barFoo["bar"] = Int(1)
	barFoo["foo"] = Int(2)
	fooBar := map[string]Value{}
	fooBar["foo"] = Int(2)
	fooBar["bar"] = Int(1)

	return [][]Value{
		{Null(), Null()},
		{Bool(false), Bool(false)},
		{Bool(true), Bool(true)},
		{
			Float(math.NaN()),
			FloatBits(canonicalNaNBits),
			FloatBits(alternateNaNBits),
			FloatBits(negativeNaNBits),
			FloatBits(payloadNaNBits),
			FloatBits(canonicalNaNBits | 1),
			FloatBits(canonicalNaNBits | 2),
		},
		// -0.0 and 0.0 compare the same but are not equal
		{Float(math.Copysign(0, -1))},
		{Float(0.0)},
		{Int(1), Int(int64(1)), Int(int8(1)), Int(int32(1))},
		// Doubles and integers aren't equal even though they compare the same
		{Float(1.0), Float(1.0)},
		{Float(1.1), Float(1.1)},
		{Bytes([]byte{0, 1, 1})},
		{Bytes([]byte{0, 1})},
		{Bytes(nil), Bytes([]byte{})},
		{String("string"), String("string")},
		{String("strin")},
		{String("")},
		// latin small letter e + combining acute accent
		{String("e\u0301b")},
		// latin small letter e with acute accent
		{String("\u00e9a")},
		{Time(TimestampFromTime(date1)), Time(timestamp1)},
		{Time(TimestampFromTime(date2)), Time(timestamp2)},
		{ServerTime(timestamp1, nil), ServerTime(timestamp1, Int(42)), ServerTime(timestamp1, String("old"))},
		{ServerTime(timestamp2, nil)},
		{mustGeo(t, 0, 1), mustGeo(t, 0, 1)},
		{mustGeo(t, 1, 0)},
		{Ref(defaultDB, "coll/doc1"), Ref(defaultDB, "coll/doc1")},
		{Ref(defaultDB, "coll/doc2")},
		{Ref(NewDatabaseID("project", "baz"), "coll/doc2")},
		{stringArray("foo", "bar"), stringArray("foo", "bar")},
		{stringArray("bar", "foo")},
		{stringArray("foo", "bar", "baz")},
		{stringArray("foo")},
		{Array()},
		{Map(barFoo), Map(fooBar)},
		{Map(map[string]Value{"bar": Int(2), "foo": Int(1)})},
		{Map(map[string]Value{"bar": Int(1)})},
		{Map(map[string]Value{"foo": Int(1)})},
		{Map(nil), Map(map[string]Value{})},
	}
}

// comparisonGroups returns groups in strictly ascending order; members of a
// group compare Same to each other
func comparisonGroups(t testing.TB) [][]Value {
	return [][]Value{
		// null first
		{Null()},

		// booleans
		{Bool(false)},
		{Bool(true)},

		// numbers
		{Float(math.NaN()), FloatBits(alternateNaNBits)},
		{Float(math.Inf(-1))},
		{Float(-1e20)},
		{Int(int64(math.MinInt64))},
		{Float(-0.1)},
		// Zeros all compare the same
		{Float(math.Copysign(0, -1)), Float(0.0), Int(0)},
		{Float(0.1)},
		// Doubles and integers compare the same
		{Float(1.0), Int(1)},
		{Int(int64(math.MaxInt64))},
		// 2^63 is above every int64
		{Float(float64(math.MaxInt64))},
		{Float(1e20)},
		{Float(math.Inf(1))},

		// dates
		{Time(timestamp1)},
		{Time(timestamp2)},

		// server timestamps come after all concrete timestamps
		{ServerTime(timestamp1, nil), ServerTime(timestamp1, Time(timestamp2))},
		{ServerTime(timestamp2, nil)},

		// strings
		{String("")},
		{String("\x01\ud7ff\uffff")},
		{String("(╯°□°）╯︵ ┻━┻")},
		{String("a")},
		{String("abc def")},
		// latin small letter e + combining acute accent + latin small letter b
		{String("e\u0301b")},
		{String("\u00e6")},
		// latin small letter e with acute accent + latin small letter a
		{String("\u00e9a")},

		// blobs
		{Bytes(nil)},
		{Bytes([]byte{0})},
		{Bytes([]byte{0, 1, 2, 3, 4})},
		{Bytes([]byte{0, 1, 2, 4, 3})},
		{Bytes([]byte{255})},

		// references
		{Ref(NewDatabaseID("p1", "d1"), "c1/doc1")},
		{Ref(NewDatabaseID("p1", "d1"), "c1/doc2")},
		{Ref(NewDatabaseID("p1", "d1"), "c10/doc1")},
		{Ref(NewDatabaseID("p1", "d1"), "c2/doc1")},
		{Ref(NewDatabaseID("p1", "d2"), "c1/doc1")},
		{Ref(NewDatabaseID("p2", "d1"), "c1/doc1")},

		// geo points
		{mustGeo(t, -90, -180)},
		{mustGeo(t, -90, 0)},
		{mustGeo(t, -90, 180)},
		{mustGeo(t, 0, -180)},
		{mustGeo(t, 0, 0), mustGeo(t, math.Copysign(0, -1), 0)},
		{mustGeo(t, 0, 180)},
		{mustGeo(t, 1, -180)},
		{mustGeo(t, 1, 0)},
		{mustGeo(t, 1, 180)},
		{mustGeo(t, 90, -180)},
		{mustGeo(t, 90, 0)},
		{mustGeo(t, 90, 180)},

		// arrays
		{Array()},
		{stringArray("bar")},
		{stringArray("foo")},
		{Array(String("foo"), Int(1))},
		{Array(String("foo"), Int(2))},
		{Array(String("foo"), String("0"))},

		// maps
		{Map(nil)},
		{Map(map[string]Value{"bar": Int(0)})},
		{Map(map[string]Value{"bar": Int(0), "foo": Int(1)})},
		{Map(map[string]Value{"foo": Int(1)})},
		{Map(map[string]Value{"foo": Int(2)})},
		{Map(map[string]Value{"foo": String("0")})},
	}
}
