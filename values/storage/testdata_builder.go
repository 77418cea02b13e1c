package storage

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/wbrown/fieldvalues/internal/logging"
	"github.com/wbrown/fieldvalues/values"
)

// TestDataConfig specifies what kind of test cache to build
type TestDataConfig struct {
	Collection   string           // Collection the documents are written to
	NumDocuments int              // Number of documents
	OutputPath   string           // Badger directory; empty builds in memory
	Seed         int64            // Random seed, so builds are reproducible
	StartTime    values.Timestamp // Update time of the first document
}

// DefaultTestDataConfig returns a small mixed-type collection
func DefaultTestDataConfig() TestDataConfig {
	return TestDataConfig{
		Collection:   "samples",
		NumDocuments: 200,
		OutputPath:   "testdata/samples.db",
		Seed:         1,
		StartTime:    values.Timestamp{Seconds: 1748736000}, // 2025-06-01
	}
}

// LargeTestDataConfig returns a collection big enough for scan timings
func LargeTestDataConfig() TestDataConfig {
	config := DefaultTestDataConfig()
	config.NumDocuments = 50000
	config.OutputPath = "testdata/samples_large.db"
	return config
}

// BuildTestCache creates a pre-populated cache. An existing cache at
// OutputPath is replaced.
func BuildTestCache(ctx context.Context, config TestDataConfig) (*BadgerCache, error) {
	logger := logging.FromContext(ctx)

	if config.OutputPath != "" {
		if err := os.RemoveAll(config.OutputPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove existing cache: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	cache, err := NewBadgerCache(ctx, config.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	for i, doc := range GenerateDocuments(config) {
		if err := cache.Put(ctx, doc); err != nil {
			cache.Close()
			return nil, fmt.Errorf("failed to write document %d: %w", i, err)
		}
		if (i+1)%10000 == 0 {
			logger.Infof("written %d/%d documents", i+1, config.NumDocuments)
		}
	}

	logger.Infow("built test cache", "path", config.OutputPath, "collection", config.Collection, "documents", config.NumDocuments)
	return cache, nil
}

// GenerateDocuments returns config.NumDocuments documents whose "value"
// field cycles through every value type, with a nested "meta" map
func GenerateDocuments(config TestDataConfig) []*Document {
	rng := rand.New(rand.NewSource(config.Seed))
	docs := make([]*Document, config.NumDocuments)
	for i := range docs {
		fields := map[string]values.Value{
			"value": sampleValue(rng, i),
			"rank":  values.Int(int64(i)),
			"meta": values.Map(map[string]values.Value{
				"group":  values.String(fmt.Sprintf("g%02d", rng.Intn(10))),
				"weight": values.Float(math.Round(rng.Float64()*1000) / 10),
			}),
		}
		docs[i] = &Document{
			Key:    fmt.Sprintf("%s/doc%06d", config.Collection, i),
			Fields: values.Map(fields),
			UpdateTime: values.Timestamp{
				Seconds: config.StartTime.Seconds + int64(i),
				Nanos:   config.StartTime.Nanos,
			},
		}
	}
	return docs
}

func sampleValue(rng *rand.Rand, i int) values.Value {
	switch i % 12 {
	case 0:
		return values.Null()
	case 1:
		return values.Bool(rng.Intn(2) == 1)
	case 2:
		return values.Int(rng.Int63n(2000) - 1000)
	case 3:
		specials := []float64{math.NaN(), math.Inf(1), math.Inf(-1), math.Copysign(0, -1)}
		if rng.Intn(8) == 0 {
			return values.Float(specials[rng.Intn(len(specials))])
		}
		return values.Float(rng.NormFloat64() * 100)
	case 4:
		return values.Time(values.Timestamp{Seconds: 1600000000 + rng.Int63n(1e8), Nanos: int32(rng.Intn(1e9))})
	case 5:
		return values.ServerTime(values.Timestamp{Seconds: 1700000000 + rng.Int63n(1e6)}, values.Null())
	case 6:
		return values.String(fmt.Sprintf("item-%d", rng.Intn(1000)))
	case 7:
		b := make([]byte, rng.Intn(8))
		rng.Read(b)
		return values.Bytes(b)
	case 8:
		return values.Ref(values.NewDatabaseID("sample-project", ""), fmt.Sprintf("things/t%d", rng.Intn(100)))
	case 9:
		return values.GeoPointValue{Latitude: rng.Float64()*180 - 90, Longitude: rng.Float64()*360 - 180}
	case 10:
		return values.Array(values.Int(rng.Int63n(10)), values.String(fmt.Sprintf("x%d", rng.Intn(10))))
	default:
		return values.Map(map[string]values.Value{"k": values.Int(rng.Int63n(10))})
	}
}

// TypeCounts reports how many documents of collection hold each type in
// field. Documents missing the field are not counted.
func TypeCounts(ctx context.Context, cache Cache, collection, field string) (map[values.ValueType]int, error) {
	docs, err := cache.Query(ctx, Query{Collection: collection, OrderBy: field})
	if err != nil {
		return nil, err
	}
	counts := make(map[values.ValueType]int)
	for _, doc := range docs {
		if v, ok := doc.Fields.Field(field); ok {
			counts[v.Type()]++
		}
	}
	return counts, nil
}
