// Command journal manages the device-local journal stored in a SQLite file.
//
//	journal list
//	journal add <text>
//	journal edit <id> <text>
//	journal delete <id>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"alianca-go/internal/domain/journal"
	"alianca-go/internal/repository/sqlite"
	"alianca-go/pkg/logger"
)

func main() {
	log := logger.NewFromEnv()

	dbPath := flag.String("db", envOr("JOURNAL_DB_PATH", "./data/journal.db"), "journal database file")
	zone := flag.String("tz", envOr("APP_TIMEZONE", "America/Sao_Paulo"), "time zone used to date entries")
	flag.Parse()

	loc, err := time.LoadLocation(*zone)
	if err != nil {
		log.Warn("journal: unknown time zone, using UTC", "tz", *zone, "err", err)
		loc = time.UTC
	}

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Critical("journal: open store failed", "path", *dbPath, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	svc := journal.NewService(store, loc)
	if err := run(context.Background(), svc, flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			flag.Usage()
			store.Close()
			os.Exit(2)
		}
		log.Error("journal: command failed", "err", err)
		store.Close()
		os.Exit(1)
	}
}

var errUsage = errors.New("usage: journal [flags] list | add <text> | edit <id> <text> | delete <id>")

func run(ctx context.Context, svc *journal.Service, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "list":
		entries, err := svc.List(ctx)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			fmt.Fprintf(out, "%s  %s  %s\n", entry.ID, entry.Date, entry.Text)
		}
		return nil
	case "add":
		if len(args) < 2 {
			return errUsage
		}
		entry, err := svc.Add(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, entry.ID)
		return nil
	case "edit":
		if len(args) < 3 {
			return errUsage
		}
		_, err := svc.Update(ctx, args[1], strings.Join(args[2:], " "))
		return err
	case "delete":
		if len(args) != 2 {
			return errUsage
		}
		return svc.Delete(ctx, args[1])
	default:
		return errUsage
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
