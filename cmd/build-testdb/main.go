package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/exp/slices"

	"github.com/wbrown/fieldvalues/internal/logging"
	"github.com/wbrown/fieldvalues/values"
	"github.com/wbrown/fieldvalues/values/storage"
)

func main() {
	configType := flag.String("config", "default", "Config type: default or large")
	output := flag.String("o", "", "output directory (overrides the config's path)")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	var config storage.TestDataConfig
	switch *configType {
	case "default":
		config = storage.DefaultTestDataConfig()
	case "large":
		config = storage.LargeTestDataConfig()
	default:
		fmt.Fprintf(os.Stderr, "Unknown config type: %s (use 'default' or 'large')\n", *configType)
		os.Exit(1)
	}
	if *output != "" {
		config.OutputPath = *output
	}

	logger, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	ctx := logging.WithLogger(context.Background(), logger)

	fmt.Printf("Building test cache: %s\n", config.OutputPath)
	fmt.Printf("  Collection: %s\n", config.Collection)
	fmt.Printf("  Documents: %d\n", config.NumDocuments)
	fmt.Println()

	cache, err := storage.BuildTestCache(ctx, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build cache: %v\n", err)
		os.Exit(1)
	}
	defer cache.Close()

	counts, err := storage.TypeCounts(ctx, cache, config.Collection, "value")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get stats: %v\n", err)
		os.Exit(1)
	}

	types := make([]values.ValueType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	slices.SortFunc(types, func(a, b values.ValueType) int { return int(a) - int(b) })

	fmt.Println("Value types in field \"value\":")
	for _, t := range types {
		fmt.Printf("  %-18s %d\n", t, counts[t])
	}

	fmt.Println("\nDone! Query this cache with:")
	fmt.Printf("   fieldvalues -cache %s query -collection %s -order-by value\n", config.OutputPath, config.Collection)
}
