package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/wbrown/fieldvalues/internal/config"
	"github.com/wbrown/fieldvalues/internal/logging"
	"github.com/wbrown/fieldvalues/values"
	"github.com/wbrown/fieldvalues/values/literal"
	"github.com/wbrown/fieldvalues/values/render"
	"github.com/wbrown/fieldvalues/values/storage"
)

type commands struct {
	cfg            *config.Config
	tracerProvider trace.TracerProvider
	stdin          io.Reader
	stdout         io.Writer
	stderr         io.Writer
}

func (c *commands) tableFormatter() *render.TableFormatter {
	tf := render.NewTableFormatter()
	tf.MaxWidth = c.cfg.MaxWidth
	return tf
}

func (c *commands) newFlagSet(name, synopsis string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(c.stderr)
	flags.Usage = func() {
		fmt.Fprintf(c.stderr, "Usage: fieldvalues %s %s\n", name, synopsis)
		flags.PrintDefaults()
	}
	return flags
}

func (c *commands) printTable(table string) {
	fmt.Fprintln(c.stdout, strings.TrimRight(table, "\n"))
}

// parseArgs parses flags and requires exactly n positional arguments
func parseArgs(flags *flag.FlagSet, args []string, n int) error {
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if flags.NArg() != n {
		flags.Usage()
		return errUsage
	}
	return nil
}

func (c *commands) sort(ctx context.Context, args []string) error {
	flags := c.newFlagSet("sort", "[-file path]")
	file := flags.String("file", "", "read literals from this file instead of stdin")
	descending := flags.Bool("desc", false, "sort in descending order")
	if err := parseArgs(flags, args, 0); err != nil {
		return ignoreHelp(err)
	}

	in := c.stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	vs, err := literal.ParseAll(string(data))
	if err != nil {
		return err
	}

	values.Sort(vs)
	if *descending {
		for i, j := 0, len(vs)-1; i < j; i, j = i+1, j-1 {
			vs[i], vs[j] = vs[j], vs[i]
		}
	}
	logging.FromContext(ctx).Debugw("sorted values", "count", len(vs), "descending", *descending)

	c.printTable(c.tableFormatter().FormatValues(vs))
	return nil
}

func (c *commands) compare(ctx context.Context, args []string) error {
	flags := c.newFlagSet("compare", "A B")
	if err := parseArgs(flags, args, 2); err != nil {
		return ignoreHelp(err)
	}

	left, err := literal.Parse(flags.Arg(0))
	if err != nil {
		return fmt.Errorf("left value: %w", err)
	}
	right, err := literal.Parse(flags.Arg(1))
	if err != nil {
		return fmt.Errorf("right value: %w", err)
	}

	formatter := render.NewComparisonFormatter(c.stdout)
	if !c.cfg.Color {
		formatter.WithColor(false)
	}

	fmt.Fprintln(c.stdout, formatter.Format(left, right))
	fmt.Fprintf(c.stdout, "compare: %s\n", values.Compare(left, right))
	fmt.Fprintf(c.stdout, "equal:   %t\n", values.Equal(left, right))
	return nil
}

func (c *commands) id(ctx context.Context, args []string) error {
	flags := c.newFlagSet("id", "V")
	if err := parseArgs(flags, args, 1); err != nil {
		return ignoreHelp(err)
	}

	v, err := literal.Parse(flags.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "type: %s\n", v.Type())
	fmt.Fprintf(c.stdout, "id:   %s\n", values.CanonicalID(v))
	fmt.Fprintf(c.stdout, "hash: %016x\n", values.Hash(v))
	return nil
}

func (c *commands) query(ctx context.Context, args []string) error {
	flags := c.newFlagSet("query", "-collection path [options]")
	collection := flags.String("collection", "", "collection path (required)")
	orderBy := flags.String("order-by", "", "dotted field path to order by; empty orders by key")
	descending := flags.Bool("desc", false, "descending order")
	startAt := flags.String("start-at", "", "literal: first value to include")
	startAfter := flags.String("start-after", "", "literal: values up to and including this are skipped")
	endAt := flags.String("end-at", "", "literal: last value to include")
	endBefore := flags.String("end-before", "", "literal: values from this one on are skipped")
	limit := flags.Int("limit", 0, "maximum number of documents (0 for all)")
	fields := flags.String("fields", "", "comma-separated fields to show; empty shows all")
	if err := parseArgs(flags, args, 0); err != nil {
		return ignoreHelp(err)
	}
	if *collection == "" {
		flags.Usage()
		return errUsage
	}
	if c.cfg.CacheDir == "" {
		return errors.New("query needs a cache directory (-cache or FIELDVALUES_CACHE_DIR)")
	}

	q := storage.Query{
		Collection: *collection,
		OrderBy:    *orderBy,
		Descending: *descending,
		Limit:      *limit,
	}
	var err error
	if q.StartAt, err = bound(*startAt, *startAfter); err != nil {
		return fmt.Errorf("start bound: %w", err)
	}
	if q.EndAt, err = bound(*endAt, *endBefore); err != nil {
		return fmt.Errorf("end bound: %w", err)
	}

	cache, err := storage.NewBadgerCache(ctx, c.cfg.CacheDir, storage.WithTracerProvider(c.tracerProvider))
	if err != nil {
		return err
	}
	defer cache.Close()

	docs, err := cache.Query(ctx, q)
	if err != nil {
		return err
	}

	var shown []string
	if *fields != "" {
		shown = strings.Split(*fields, ",")
	}
	c.printTable(c.tableFormatter().FormatDocuments(docs, shown...))
	return nil
}

// bound builds a cursor bound from an inclusive or exclusive literal; at
// most one may be given
func bound(inclusive, exclusive string) (*storage.Bound, error) {
	switch {
	case inclusive != "" && exclusive != "":
		return nil, errors.New("inclusive and exclusive bounds are mutually exclusive")
	case inclusive != "":
		v, err := literal.Parse(inclusive)
		if err != nil {
			return nil, err
		}
		return &storage.Bound{Value: v, Inclusive: true}, nil
	case exclusive != "":
		v, err := literal.Parse(exclusive)
		if err != nil {
			return nil, err
		}
		return &storage.Bound{Value: v}, nil
	}
	return nil, nil
}

func ignoreHelp(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}
