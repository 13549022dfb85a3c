// Command tags-export scans the record table and writes an XLSX report,
// optionally filtered by document and date window.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/velora-health/docenrich/internal/awsx"
	"github.com/velora-health/docenrich/internal/common"
	"github.com/velora-health/docenrich/internal/export"
	"github.com/velora-health/docenrich/internal/records"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		out     = flag.String("out", "tags.xlsx", "output XLSX file path")
		docID   = flag.String("document", "", "restrict to a single document id")
		fromStr = flag.String("from", "", "from date YYYY-MM-DD")
		toStr   = flag.String("to", "", "to date YYYY-MM-DD")
	)
	flag.Parse()

	// Parse date filters
	var from, to *time.Time
	if *fromStr != "" {
		if parsed, err := time.Parse("2006-01-02", *fromStr); err != nil {
			printError("Error: invalid --from date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		} else {
			from = &parsed
		}
	}
	if *toStr != "" {
		if parsed, err := time.Parse("2006-01-02", *toStr); err != nil {
			printError("Error: invalid --to date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		} else {
			to = &parsed
		}
	}

	cfg := common.LoadConfig()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	clients, err := awsx.NewClients(ctx)
	if err != nil {
		printError("Error: failed to initialize aws clients: %v\n", err)
		os.Exit(1)
	}

	svc := export.NewService(records.NewScanner(clients.DynamoDB, cfg.Store.Table), logger)
	data, err := svc.ExportTagsXLSX(ctx, *docID, from, to)
	if err != nil {
		printError("Error: export failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		printError("Error: write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", *out, len(data))
}
