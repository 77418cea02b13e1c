package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wbrown/fieldvalues/internal/config"
	"github.com/wbrown/fieldvalues/internal/logging"
	"github.com/wbrown/fieldvalues/internal/observability"
)

// errUsage is returned when the command line is malformed; usage has
// already been printed
var errUsage = errors.New("usage error")

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	ctx = logging.WithLogger(ctx, logger)

	if err := run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer, flags *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(w, "Usage: fieldvalues [options] <command> [arguments]\n\n")
		fmt.Fprintf(w, "Compares, orders and identifies document field values.\n\n")
		fmt.Fprintf(w, "Commands:\n")
		fmt.Fprintf(w, "  sort [-file path]      Sort literals read from a file or stdin\n")
		fmt.Fprintf(w, "  compare A B            Show how two literals order and whether they are equal\n")
		fmt.Fprintf(w, "  id V                   Print the canonical id and hash of a literal\n")
		fmt.Fprintf(w, "  query [options]        List a cached collection in field order\n")
		fmt.Fprintf(w, "\nOptions:\n")
		flags.PrintDefaults()
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  echo '1 nil \"a\" 0.5' | fieldvalues sort\n")
		fmt.Fprintf(w, "  fieldvalues compare 1 1.0\n")
		fmt.Fprintf(w, "  fieldvalues id '{\"a\" ##NaN}'\n")
		fmt.Fprintf(w, "  fieldvalues -cache testdata/samples.db query -collection samples -order-by value -limit 20\n")
		fmt.Fprintf(w, "  fieldvalues -metrics -trace -cache testdata/samples.db query -collection samples\n")
	}
}

// run parses the global options, applies them over cfg and dispatches the
// command
func run(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("fieldvalues", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&cfg.CacheDir, "cache", cfg.CacheDir, "document cache directory")
	flags.BoolVar(&cfg.Color, "color", cfg.Color, "colour comparison output on terminals")
	flags.IntVar(&cfg.MaxWidth, "width", cfg.MaxWidth, "maximum table column width (0 for no limit)")
	showMetrics := flags.Bool("metrics", false, "print cache metrics to stderr after the command")
	showTrace := flags.Bool("trace", false, "print cache spans to stderr")
	flags.Usage = usage(stderr, flags)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errUsage
	}

	telemetryConfig := observability.Config{
		ServiceName:  "fieldvalues",
		OTLPEndpoint: cfg.OTLPEndpoint,
	}
	if *showTrace {
		telemetryConfig.TraceOutput = stderr
	}
	telemetry, err := observability.Start(ctx, telemetryConfig)
	if err != nil {
		return err
	}
	defer telemetry.Shutdown(context.Background())

	cmd := &commands{
		cfg:            cfg,
		tracerProvider: telemetry.TracerProvider(),
		stdin:          stdin,
		stdout:         stdout,
		stderr:         stderr,
	}
	if err := dispatch(ctx, cmd, flags); err != nil {
		return err
	}

	if *showMetrics {
		return observability.WriteMetrics(stderr, prometheus.DefaultGatherer, "fieldvalues_")
	}
	return nil
}

func dispatch(ctx context.Context, cmd *commands, flags *flag.FlagSet) error {
	rest := flags.Args()[1:]
	switch flags.Arg(0) {
	case "sort":
		return cmd.sort(ctx, rest)
	case "compare":
		return cmd.compare(ctx, rest)
	case "id":
		return cmd.id(ctx, rest)
	case "query":
		return cmd.query(ctx, rest)
	case "help":
		flags.Usage()
		return nil
	default:
		fmt.Fprintf(cmd.stderr, "Unknown command: %s\n\n", flags.Arg(0))
		flags.Usage()
		return errUsage
	}
}
