package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/slices"

	"github.com/wbrown/fieldvalues/internal/logging"
	"github.com/wbrown/fieldvalues/values"
)

// Change is the outcome of reconciling a snapshot with the cache
type Change int

const (
	ChangeUnchanged Change = iota
	ChangeAdded
	ChangeModified
)

func (c Change) String() string {
	switch c {
	case ChangeUnchanged:
		return "unchanged"
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	default:
		return fmt.Sprintf("Change(%d)", int(c))
	}
}

// ErrInvalidQuery is returned for queries that cannot be run
var ErrInvalidQuery = errors.New("invalid query")

// Bound is a cursor position on the order-by field
type Bound struct {
	Value     values.Value
	Inclusive bool
}

// Query selects the direct children of a collection in field order
type Query struct {
	Collection string
	// OrderBy is a dotted field path. Documents without the field are
	// excluded. Empty orders by document key alone.
	OrderBy    string
	Descending bool
	// StartAt and EndAt bound the result in result order, so with
	// Descending set StartAt is the upper value
	StartAt *Bound
	EndAt   *Bound
	Limit   int // 0 means no limit
}

// Cache is a local document cache
type Cache interface {
	// Put stores doc, replacing any cached copy
	Put(ctx context.Context, doc *Document) error
	// Get returns the cached document, or nil if there is none
	Get(ctx context.Context, key string) (*Document, error)
	Delete(ctx context.Context, key string) error
	// Reconcile applies an incoming snapshot and reports what changed
	Reconcile(ctx context.Context, doc *Document) (Change, error)
	// Query returns documents ordered by a field
	Query(ctx context.Context, q Query) ([]*Document, error)
	Close() error
}

// documentPrefix namespaces document entries within badger
const documentPrefix = "doc/"

// BadgerCache implements Cache using BadgerDB
type BadgerCache struct {
	db     *badger.DB
	tracer trace.Tracer
}

var _ Cache = (*BadgerCache)(nil)

// Option configures a BadgerCache
type Option func(*BadgerCache)

// WithTracerProvider traces cache operations with tp instead of the global
// provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *BadgerCache) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// NewBadgerCache opens a cache stored at path. An empty path keeps the
// cache in memory.
func NewBadgerCache(ctx context.Context, path string, options ...Option) (*BadgerCache, error) {
	logger := logging.FromContext(ctx)

	c := &BadgerCache{tracer: otel.Tracer(tracerName)}
	for _, opt := range options {
		opt(c)
	}

	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = newBadgerLogger(logger)
	opts.ValueThreshold = 1 << 10 // 1KB - store small documents in the LSM tree

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	c.db = db

	logger.Debugw("opened document cache", "path", path, "inMemory", path == "")
	return c, nil
}

func documentKey(key string) []byte {
	return []byte(documentPrefix + key)
}

// Put stores doc
func (c *BadgerCache) Put(ctx context.Context, doc *Document) error {
	if err := ValidateKey(doc.Key); err != nil {
		return err
	}
	data, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", doc.Key, err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(documentKey(doc.Key), data)
	})
}

// Get retrieves a single document by key
func (c *BadgerCache) Get(ctx context.Context, key string) (*Document, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	var result *Document
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		result, err = getDocument(txn, key)
		return err
	})
	return result, err
}

func getDocument(txn *badger.Txn, key string) (*Document, error) {
	item, err := txn.Get(documentKey(key))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc *Document
	err = item.Value(func(val []byte) error {
		doc, err = DocumentFromBytes(key, val)
		return err
	})
	return doc, err
}

// Delete removes a document. Deleting an absent document is not an error.
func (c *BadgerCache) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(documentKey(key)); err != nil && err != badger.ErrKeyNotFound {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		return nil
	})
}

// Reconcile compares doc with the cached copy field by field using
// values.Equal and writes it only when the fields differ
func (c *BadgerCache) Reconcile(ctx context.Context, doc *Document) (Change, error) {
	ctx, span := c.tracer.Start(ctx, "cache.Reconcile",
		trace.WithAttributes(attribute.String("document", doc.Key)))
	defer span.End()

	if err := ValidateKey(doc.Key); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ChangeUnchanged, err
	}
	data, err := doc.Bytes()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ChangeUnchanged, fmt.Errorf("failed to encode %s: %w", doc.Key, err)
	}

	change := ChangeUnchanged
	err = c.db.Update(func(txn *badger.Txn) error {
		cached, err := getDocument(txn, doc.Key)
		if err != nil {
			return err
		}
		switch {
		case cached == nil:
			change = ChangeAdded
		case !values.Equal(cached.Fields, doc.Fields):
			change = ChangeModified
		default:
			return nil
		}
		return txn.Set(documentKey(doc.Key), data)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ChangeUnchanged, err
	}

	span.SetAttributes(attribute.String("change", change.String()))
	reconcileTotal.WithLabelValues(change.String()).Inc()
	logging.FromContext(ctx).Debugw("reconciled document", "document", doc.Key, "change", change.String())
	return change, nil
}

// Query scans the collection and orders the matching documents with
// values.Compare, breaking ties by document key
func (c *BadgerCache) Query(ctx context.Context, q Query) ([]*Document, error) {
	ctx, span := c.tracer.Start(ctx, "cache.Query",
		trace.WithAttributes(
			attribute.String("collection", q.Collection),
			attribute.String("orderBy", q.OrderBy),
			attribute.Bool("descending", q.Descending),
		))
	defer span.End()

	start := time.Now()
	docs, err := c.query(q)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	queryLatency.WithLabelValues(q.Collection).Observe(time.Since(start).Seconds())
	queryResults.Observe(float64(len(docs)))
	span.SetAttributes(attribute.Int("results", len(docs)))
	logging.FromContext(ctx).Debugw("queried cache", "collection", q.Collection, "results", len(docs))

	return docs, nil
}

type orderedDocument struct {
	doc   *Document
	value values.Value
}

func (c *BadgerCache) query(q Query) ([]*Document, error) {
	if err := ValidateCollection(q.Collection); err != nil {
		return nil, err
	}
	if q.OrderBy == "" && (q.StartAt != nil || q.EndAt != nil) {
		return nil, fmt.Errorf("%w: cursor bounds need an order-by field", ErrInvalidQuery)
	}
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, q.Limit)
	}

	var matched []orderedDocument
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := documentKey(q.Collection + "/")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key()[len(documentPrefix):])
			// Direct children only, not documents of subcollections
			if strings.Contains(key[len(q.Collection)+1:], "/") {
				continue
			}

			var doc *Document
			err := item.Value(func(val []byte) error {
				var err error
				doc, err = DocumentFromBytes(key, val)
				return err
			})
			if err != nil {
				return err
			}

			od := orderedDocument{doc: doc}
			if q.OrderBy != "" {
				v, ok := doc.Fields.Field(q.OrderBy)
				if !ok {
					continue
				}
				od.value = v
			}
			if q.inBounds(od.value) {
				matched = append(matched, od)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(matched, q.compare)

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	docs := make([]*Document, len(matched))
	for i, od := range matched {
		docs[i] = od.doc
	}
	return docs, nil
}

// directed applies the query direction to an ascending comparison
func (q *Query) directed(r values.ComparisonResult) values.ComparisonResult {
	if q.Descending {
		return -r
	}
	return r
}

// compare orders documents by the order-by value, then by key
func (q *Query) compare(a, b orderedDocument) int {
	if q.OrderBy != "" {
		if r := q.directed(values.Compare(a.value, b.value)); r != values.Same {
			return int(r)
		}
	}
	return int(q.directed(values.ComparisonResult(strings.Compare(a.doc.Key, b.doc.Key))))
}

func (q *Query) inBounds(v values.Value) bool {
	if q.StartAt != nil {
		r := q.directed(values.Compare(v, q.StartAt.Value))
		if r == values.Less || (r == values.Same && !q.StartAt.Inclusive) {
			return false
		}
	}
	if q.EndAt != nil {
		r := q.directed(values.Compare(v, q.EndAt.Value))
		if r == values.Greater || (r == values.Same && !q.EndAt.Inclusive) {
			return false
		}
	}
	return true
}

// Close closes the cache
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
