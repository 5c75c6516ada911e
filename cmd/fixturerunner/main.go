package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/example/evaljs/fixtures"
)

func main() {
	dir := flag.String("dir", "fixtures/testdata", "directory of fixture scripts")
	filter := flag.String("filter", "", "filter fixtures by path substring")
	limit := flag.Int("limit", 0, "maximum number of fixtures to run (0 = all)")
	verbose := flag.Bool("v", false, "verbose output (print each result as it finishes)")
	timeout := flag.Duration("timeout", 5*time.Second, "per-fixture time limit")
	diagnostics := flag.Bool("diag", false, "log interpreter diagnostics to stderr")
	flag.Parse()

	if _, err := os.Stat(*dir); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: fixture directory not found at %s\n", *dir)
		os.Exit(1)
	}

	var logger *slog.Logger
	if *diagnostics {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cfg := fixtures.Config{
		Dir:     *dir,
		Filter:  *filter,
		Limit:   *limit,
		Verbose: *verbose,
		Timeout: *timeout,
		Logger:  logger,
	}

	results, summary := fixtures.Run(cfg)

	if !*verbose {
		for _, r := range results {
			msg := ""
			if r.Message != "" {
				msg = " " + r.Message
			}
			fmt.Printf("%s %s%s\n", r.Result, r.Path, msg)
		}
	}

	fmt.Println()
	fmt.Println("=== Fixture Summary ===")
	fmt.Printf("Total:   %d\n", summary.Total)
	fmt.Printf("Passed:  %d\n", summary.Passed)
	fmt.Printf("Failed:  %d\n", summary.Failed)
	fmt.Printf("Skipped: %d\n", summary.Skipped)
	fmt.Printf("Errors:  %d\n", summary.Errors)
	if ran := summary.Total - summary.Skipped; ran > 0 {
		fmt.Printf("Pass rate: %.1f%% (%d/%d excluding skipped)\n",
			float64(summary.Passed)/float64(ran)*100, summary.Passed, ran)
	}
	fmt.Printf("Elapsed: %s\n", summary.Elapsed)

	if summary.Failed > 0 || summary.Errors > 0 {
		os.Exit(1)
	}
}
