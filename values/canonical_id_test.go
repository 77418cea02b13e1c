package values

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalIDMatchesEquality(t *testing.T) {
	groups := equalityGroups(t)

	seen := make(map[string]int)
	for i, group := range groups {
		id := CanonicalID(group[0])
		for _, v := range group[1:] {
			assert.Equal(t, id, CanonicalID(v), "members of group %d must share an id", i)
			assert.Equal(t, Hash(group[0]), Hash(v))
		}
		if prev, ok := seen[id]; ok {
			t.Errorf("groups %d and %d share canonical id %s", prev, i, id)
		}
		seen[id] = i
	}
}

func TestCanonicalIDGolden(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Null(), "null"},
		{Bool(true), "bool(true)"},
		{Bool(false), "bool(false)"},
		{Int(-12), "int(-12)"},
		{Float(1.0), "double(1)"},
		{Float(1.5), "double(1.5)"},
		{Float(math.Copysign(0, -1)), "double(-0)"},
		{Float(1e20), "double(1e+20)"},
		{Float(math.Inf(-1)), "double(-Inf)"},
		{FloatBits(negativeNaNBits), "double(NaN)"},
		{Time(Timestamp{Seconds: 1, Nanos: 2}), "time(1,2)"},
		{ServerTime(Timestamp{Seconds: 1, Nanos: 2}, String("x")), "sts(1,2)"},
		{String(`say "hi"`), `str("say \"hi\"")`},
		{String(""), `str("")`},
		{Bytes(nil), `blob""`},
		{Ref(defaultDB, "coll/doc"), `ref("project","(default)","coll/doc")`},
		{GeoPointValue{Latitude: 1.5, Longitude: -2}, "geo(1.5,-2)"},
		{Array(), "[]"},
		{Array(Int(1), String("a")), `[int(1),str("a")]`},
		{Map(nil), "{}"},
		{Map(map[string]Value{"b": Null(), "a": Array(Bool(true))}), `{"a":[bool(true)],"b":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalID(tt.value))
		})
	}
}

func TestCanonicalIDDistinguishesLookalikes(t *testing.T) {
	// Each pair is unequal and must never collide
	pairs := [][2]Value{
		{Int(1), Float(1)},
		{String("1"), Int(1)},
		{String("abc"), Bytes([]byte("abc"))},
		{Time(timestamp1), ServerTime(timestamp1, nil)},
		{Array(String("a,b")), Array(String("a"), String("b"))},
		{Map(map[string]Value{"a": String("b")}), Map(map[string]Value{`a":str("b`: Null()})},
		{Array(Array()), Array()},
		{Map(nil), Array()},
		{Bytes([]byte{0}), Bytes(nil)},
		{Ref(NewDatabaseID("p", "d"), "x"), Ref(NewDatabaseID("p", "d,x"), "")},
	}

	for _, p := range pairs {
		assert.False(t, Equal(p[0], p[1]))
		assert.NotEqual(t, CanonicalID(p[0]), CanonicalID(p[1]), "%s vs %s", p[0], p[1])
	}
}

func TestCanonicalIDIgnoresMapConstructionOrder(t *testing.T) {
	a, err := MapFromEntries(Entry{"x", Int(1)}, Entry{"y", Int(2)}, Entry{"z", Int(3)})
	assert.NoError(t, err)
	b, err := MapFromEntries(Entry{"z", Int(3)}, Entry{"x", Int(1)}, Entry{"y", Int(2)})
	assert.NoError(t, err)

	assert.Equal(t, CanonicalID(a), CanonicalID(b))
	assert.Equal(t, Hash(a), Hash(b))
}
