package values

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueTypes(t *testing.T) {
	tests := []struct {
		value Value
		typ   ValueType
		order TypeOrder
		name  string
	}{
		{Null(), TypeNull, TypeOrderNull, "null"},
		{Bool(true), TypeBoolean, TypeOrderBoolean, "boolean"},
		{Int(1), TypeInteger, TypeOrderNumber, "integer"},
		{Float(1), TypeDouble, TypeOrderNumber, "double"},
		{Time(timestamp1), TypeTimestamp, TypeOrderTimestamp, "timestamp"},
		{ServerTime(timestamp1, nil), TypeServerTimestamp, TypeOrderServerTimestamp, "server-timestamp"},
		{String("s"), TypeString, TypeOrderString, "string"},
		{Bytes(nil), TypeBlob, TypeOrderBlob, "blob"},
		{Ref(defaultDB, "a/b"), TypeReference, TypeOrderReference, "reference"},
		{mustGeo(t, 0, 0), TypeGeoPoint, TypeOrderGeoPoint, "geo-point"},
		{Array(), TypeArray, TypeOrderArray, "array"},
		{Map(nil), TypeMap, TypeOrderMap, "map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.value.Type())
			assert.Equal(t, tt.order, tt.value.Type().Order())
			assert.Equal(t, tt.name, tt.value.Type().String())
		})
	}

	assert.Equal(t, "ValueType(99)", ValueType(99).String())
	assert.Panics(t, func() { ValueType(99).Order() })
}

func TestValuesAreImmutable(t *testing.T) {
	t.Run("blob", func(t *testing.T) {
		src := []byte{1, 2, 3}
		b := Bytes(src)
		src[0] = 9
		assert.Equal(t, []byte{1, 2, 3}, b.Bytes())

		out := b.Bytes()
		out[1] = 9
		assert.Equal(t, []byte{1, 2, 3}, b.Bytes())
	})

	t.Run("array", func(t *testing.T) {
		src := []Value{Int(1), Int(2)}
		a := Array(src...)
		src[0] = Int(9)
		assert.True(t, Equal(Int(1), a.At(0)))

		out := a.Values()
		out[1] = Int(9)
		assert.True(t, Equal(Int(2), a.At(1)))
	})

	t.Run("map", func(t *testing.T) {
		src := map[string]Value{"a": Int(1)}
		m := Map(src)
		src["a"] = Int(9)
		src["b"] = Int(2)
		assert.Equal(t, 1, m.Len())
		got, ok := m.Get("a")
		require.True(t, ok)
		assert.True(t, Equal(Int(1), got))
	})
}

func TestMapFromEntries(t *testing.T) {
	m, err := MapFromEntries(Entry{"b", Int(2)}, Entry{"a", Int(1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, m.Keys())

	_, err = MapFromEntries(Entry{"a", Int(1)}, Entry{"a", Int(1)})
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	empty, err := MapFromEntries()
	require.NoError(t, err)
	assert.True(t, Equal(Map(nil), empty))
}

func TestMapField(t *testing.T) {
	m := Map(map[string]Value{
		"name": String("Ada"),
		"address": Map(map[string]Value{
			"city": String("London"),
			"geo":  Map(map[string]Value{"lat": Float(51.5)}),
		}),
	})

	tests := []struct {
		path string
		want Value
	}{
		{"name", String("Ada")},
		{"address.city", String("London")},
		{"address.geo.lat", Float(51.5)},
		{"address.zip", nil},
		{"name.first", nil},
		{"missing.city", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := m.Field(tt.path)
			if tt.want == nil {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.True(t, Equal(tt.want, got), "got %s", got)
		})
	}
}

func TestArrayContains(t *testing.T) {
	a := Array(Int(1), Float(math.NaN()), String("x"))

	assert.True(t, a.Contains(Int(1)))
	assert.False(t, a.Contains(Float(1)), "containment uses equality, not ordering")
	assert.True(t, a.Contains(FloatBits(payloadNaNBits)))
	assert.False(t, a.Contains(Null()))
}

func TestNewTimestamp(t *testing.T) {
	ts, err := NewTimestamp(1463739600, 5)
	require.NoError(t, err)
	assert.Equal(t, Timestamp{Seconds: 1463739600, Nanos: 5}, ts)

	for _, tt := range []struct {
		seconds int64
		nanos   int32
	}{
		{0, -1},
		{0, 1e9},
		{minTimestampSeconds - 1, 0},
		{maxTimestampSeconds + 1, 0},
	} {
		_, err := NewTimestamp(tt.seconds, tt.nanos)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, "NewTimestamp(%d, %d)", tt.seconds, tt.nanos)
	}

	_, err = NewTimestamp(maxTimestampSeconds, 999999999)
	assert.NoError(t, err)
}

func TestTimestampConversions(t *testing.T) {
	when := time.Date(2016, 5, 20, 10, 20, 0, 123, time.FixedZone("X", 3600))
	ts := TimestampFromTime(when)

	assert.True(t, when.Equal(ts.Time()))
	assert.Equal(t, time.UTC, ts.Time().Location())
	assert.Equal(t, "2016-05-20T09:20:00.000000123Z", ts.String())
	assert.Equal(t, Less, timestamp1.Compare(timestamp2))
	assert.Equal(t, Greater, Timestamp{Seconds: 1, Nanos: 1}.Compare(Timestamp{Seconds: 1}))
}

func TestNewGeoPoint(t *testing.T) {
	g, err := NewGeoPoint(-90, 180)
	require.NoError(t, err)
	assert.Equal(t, GeoPointValue{Latitude: -90, Longitude: 180}, g)

	for _, c := range [][2]float64{{90.1, 0}, {-90.1, 0}, {0, 180.1}, {0, -180.1}, {math.NaN(), 0}, {0, math.NaN()}, {math.Inf(1), 0}} {
		_, err := NewGeoPoint(c[0], c[1])
		assert.ErrorIs(t, err, ErrInvalidGeoPoint, "NewGeoPoint(%v, %v)", c[0], c[1])
	}
}

func TestDatabaseID(t *testing.T) {
	db := NewDatabaseID("p", "")
	assert.True(t, db.IsDefault())
	assert.Equal(t, "p/(default)", db.String())
	assert.False(t, NewDatabaseID("p", "d").IsDefault())
	assert.Equal(t, Less, NewDatabaseID("a", "z").Compare(NewDatabaseID("b", "a")))
	assert.Equal(t, Greater, NewDatabaseID("a", "z").Compare(NewDatabaseID("a", "b")))
}

func TestValueString(t *testing.T) {
	got := make([]string, 0)
	for _, v := range []Value{
		Null(),
		Bool(false),
		Int(-7),
		Float(1),
		Float(0.25),
		Float(1e21),
		Float(math.Copysign(0, -1)),
		Float(math.NaN()),
		Float(math.Inf(1)),
		Float(math.Inf(-1)),
		Time(Timestamp{Seconds: 10, Nanos: 20}),
		ServerTime(Timestamp{Seconds: 10}, nil),
		ServerTime(Timestamp{Seconds: 10}, Int(3)),
		String("a\"b\\c\nd\te\x01"),
		Bytes([]byte{0, 255}),
		Ref(defaultDB, "coll/doc"),
		GeoPointValue{Latitude: 1.5, Longitude: -2},
		Array(Int(1), String("x")),
		Map(map[string]Value{"b": Int(2), "a": Int(1)}),
	} {
		got = append(got, v.String())
	}

	want := []string{
		"nil",
		"false",
		"-7",
		"1.0",
		"0.25",
		"1e+21",
		"-0.0",
		"##NaN",
		"##Inf",
		"##-Inf",
		"#ts [10 20]",
		"#sts [10 0]",
		"#sts [10 0 3]",
		`"a\"b\\c\nd\te\u0001"`,
		"#blob [0 255]",
		`#ref ["project" "(default)" "coll/doc"]`,
		"#geo [1.5 -2.0]",
		`[1 "x"]`,
		`{"a" 1 "b" 2}`,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("String() mismatch (-want +got):\n%s", diff)
	}
}
