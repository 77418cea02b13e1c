package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wbrown/fieldvalues/internal/logging"
	"github.com/wbrown/fieldvalues/values"
	"github.com/wbrown/fieldvalues/values/literal"
)

func newTestCache(t *testing.T) *BadgerCache {
	t.Helper()
	cache, err := NewBadgerCache(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func doc(t *testing.T, key, fields string) *Document {
	t.Helper()
	v, err := literal.Parse(fields)
	require.NoError(t, err)
	m, ok := v.(values.MapValue)
	require.True(t, ok, "fields must be a map: %s", fields)
	return &Document{Key: key, Fields: m}
}

func keys(docs []*Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Key
	}
	return out
}

func TestBadgerCachePutGetDelete(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	got, err := cache.Get(ctx, "rooms/eros")
	require.NoError(t, err)
	assert.Nil(t, got, "absent documents are nil without error")

	d := doc(t, "rooms/eros", `{"name" "Eros" "nan" ##NaN}`)
	d.UpdateTime = values.Timestamp{Seconds: 10}
	require.NoError(t, cache.Put(ctx, d))

	got, err = cache.Get(ctx, "rooms/eros")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, values.Equal(d.Fields, got.Fields))
	assert.Equal(t, d.UpdateTime, got.UpdateTime)

	require.NoError(t, cache.Delete(ctx, "rooms/eros"))
	require.NoError(t, cache.Delete(ctx, "rooms/eros"), "deleting twice is fine")
	got, err = cache.Get(ctx, "rooms/eros")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, cache.Put(ctx, doc(t, "rooms", `{}`)), ErrInvalidKey)
	_, err = cache.Get(ctx, "rooms/eros/messages")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestBadgerCacheReconcile(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	tests := []struct {
		name   string
		fields string
		want   Change
	}{
		{"first snapshot", `{"n" 1 "f" ##NaN "z" -0.0}`, ChangeAdded},
		{"same fields", `{"z" -0.0 "f" #bits 0x7ff0000000000001 "n" 1}`, ChangeUnchanged},
		{"integer becomes double", `{"n" 1.0 "f" ##NaN "z" -0.0}`, ChangeModified},
		{"same again", `{"n" 1.0 "f" ##NaN "z" -0.0}`, ChangeUnchanged},
		{"negative zero becomes zero", `{"n" 1.0 "f" ##NaN "z" 0.0}`, ChangeModified},
		{"field removed", `{"n" 1.0 "f" ##NaN}`, ChangeModified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := cache.Reconcile(ctx, doc(t, "c/d", tt.fields))
			require.NoError(t, err)
			assert.Equal(t, tt.want, change, "got %s", change)

			cached, err := cache.Get(ctx, "c/d")
			require.NoError(t, err)
			assert.True(t, values.Equal(doc(t, "c/d", tt.fields).Fields, cached.Fields))
		})
	}
}

func TestBadgerCacheReconcileUnchangedKeepsStoredSnapshot(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	first := doc(t, "c/d", `{"a" 1}`)
	first.UpdateTime = values.Timestamp{Seconds: 1}
	_, err := cache.Reconcile(ctx, first)
	require.NoError(t, err)

	second := doc(t, "c/d", `{"a" 1}`)
	second.UpdateTime = values.Timestamp{Seconds: 2}
	change, err := cache.Reconcile(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, ChangeUnchanged, change)

	cached, err := cache.Get(ctx, "c/d")
	require.NoError(t, err)
	assert.Equal(t, first.UpdateTime, cached.UpdateTime)
}

func TestBadgerCacheLogsThroughContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := logging.WithLogger(context.Background(), zap.New(core).Sugar())

	cache, err := NewBadgerCache(ctx, "")
	require.NoError(t, err)
	defer cache.Close()

	_, err = cache.Reconcile(ctx, doc(t, "c/d", `{}`))
	require.NoError(t, err)

	assert.NotZero(t, logs.FilterMessage("reconciled document").Len())
}

func seedScores(t *testing.T, cache *BadgerCache) {
	t.Helper()
	ctx := context.Background()
	for _, d := range []*Document{
		doc(t, "scores/a", `{"score" 10}`),
		doc(t, "scores/b", `{"score" 2.5}`),
		doc(t, "scores/c", `{"score" 10.0}`),
		doc(t, "scores/d", `{"score" "ten"}`),
		doc(t, "scores/e", `{"score" nil}`),
		doc(t, "scores/f", `{"score" ##NaN}`),
		doc(t, "scores/g", `{"other" 1}`),
		doc(t, "scores/h", `{"score" -0.0}`),
		doc(t, "scores/i", `{"score" 0}`),
		doc(t, "scores/a/history/1", `{"score" 0}`),
		doc(t, "scoresx/a", `{"score" 0}`),
	} {
		require.NoError(t, cache.Put(ctx, d))
	}
}

func TestBadgerCacheQuery(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	seedScores(t, cache)

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{
			name:  "ascending",
			query: Query{Collection: "scores", OrderBy: "score"},
			// null < NaN < numbers (ties by key) < strings; g lacks the field
			want: []string{"scores/e", "scores/f", "scores/h", "scores/i", "scores/b", "scores/a", "scores/c", "scores/d"},
		},
		{
			name:  "descending",
			query: Query{Collection: "scores", OrderBy: "score", Descending: true},
			want:  []string{"scores/d", "scores/c", "scores/a", "scores/b", "scores/i", "scores/h", "scores/f", "scores/e"},
		},
		{
			name:  "by key",
			query: Query{Collection: "scores"},
			want:  []string{"scores/a", "scores/b", "scores/c", "scores/d", "scores/e", "scores/f", "scores/g", "scores/h", "scores/i"},
		},
		{
			name: "inclusive bounds",
			query: Query{Collection: "scores", OrderBy: "score",
				StartAt: &Bound{Value: values.Int(0), Inclusive: true},
				EndAt:   &Bound{Value: values.Int(10), Inclusive: true}},
			want: []string{"scores/h", "scores/i", "scores/b", "scores/a", "scores/c"},
		},
		{
			name: "exclusive bounds",
			query: Query{Collection: "scores", OrderBy: "score",
				StartAt: &Bound{Value: values.Float(0)},
				EndAt:   &Bound{Value: values.Float(10)}},
			want: []string{"scores/b"},
		},
		{
			name: "descending bounds",
			query: Query{Collection: "scores", OrderBy: "score", Descending: true,
				StartAt: &Bound{Value: values.Int(10), Inclusive: true},
				EndAt:   &Bound{Value: values.Float(2.5), Inclusive: true}},
			want: []string{"scores/c", "scores/a", "scores/b"},
		},
		{
			name:  "limit",
			query: Query{Collection: "scores", OrderBy: "score", Limit: 2},
			want:  []string{"scores/e", "scores/f"},
		},
		{
			name:  "subcollection",
			query: Query{Collection: "scores/a/history", OrderBy: "score"},
			want:  []string{"scores/a/history/1"},
		},
		{
			name:  "empty collection",
			query: Query{Collection: "missing", OrderBy: "score"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := cache.Query(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(docs))
		})
	}
}

func TestBadgerCacheQueryErrors(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	_, err := cache.Query(ctx, Query{Collection: "a/b"})
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = cache.Query(ctx, Query{Collection: "a", StartAt: &Bound{Value: values.Int(1)}})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = cache.Query(ctx, Query{Collection: "a", Limit: -1})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestBadgerCacheOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cache, err := NewBadgerCache(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, cache.Put(ctx, doc(t, "c/d", `{"ts" #ts [1463739600 0]}`)))
	require.NoError(t, cache.Close())

	reopened, err := NewBadgerCache(ctx, dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "c/d")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, values.Equal(literal.MustParse(`{"ts" #ts [1463739600 0]}`), got.Fields))
}

func TestChangeString(t *testing.T) {
	assert.Equal(t, "added", ChangeAdded.String())
	assert.Equal(t, "modified", ChangeModified.String())
	assert.Equal(t, "unchanged", ChangeUnchanged.String())
	assert.Equal(t, "Change(9)", Change(9).String())
}
