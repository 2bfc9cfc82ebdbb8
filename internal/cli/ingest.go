package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"medeval/internal/merge"
	"medeval/internal/store"
)

// runIngest builds the handler for the ingest command.
func runIngest(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		dbPath := flags.String("db", "", "DuckDB database file")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if *dbPath == "" {
			fmt.Fprintln(stderr, "--db is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if flags.NArg() == 0 {
			fmt.Fprintln(stderr, "at least one merged summary is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		db, err := store.Open(*dbPath)
		if err != nil {
			fmt.Fprintf(stderr, "Ingest failed: %v\n", err)
			return ExitError
		}
		defer db.Close()
		if err := store.EnsureSchema(db); err != nil {
			fmt.Fprintf(stderr, "Ingest failed: %v\n", err)
			return ExitError
		}

		ctx := context.Background()
		for _, path := range flags.Args() {
			merged, err := merge.LoadMerged(path)
			if err != nil {
				fmt.Fprintf(stderr, "Ingest failed: %v\n", err)
				return ExitError
			}
			runID, err := store.IngestRun(ctx, db, merged, time.Now().UTC())
			if err != nil {
				fmt.Fprintf(stderr, "Ingest failed: %s: %v\n", path, err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Ingested %s as run %s\n", path, runID)
		}
		return ExitOK
	}
}
