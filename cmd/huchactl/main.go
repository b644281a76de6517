package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hucha-app/hucha/internal/core/domain"
	"github.com/hucha-app/hucha/internal/core/ports"
	"github.com/hucha-app/hucha/internal/core/services"
	"github.com/hucha-app/hucha/internal/importexport"
	"github.com/hucha-app/hucha/internal/platform/config"
	"github.com/hucha-app/hucha/internal/transport/flatfile"
	"github.com/hucha-app/hucha/internal/transport/resthttp"
)

const usage = `Usage: huchactl <command> [flags]

Commands:
  status                     show record counts and current balance
  add                        add a transaction
  report                     show per-category totals
  export-csv [-o file]       export transactions as CSV
  import-csv -i file         import transactions from CSV
  export-json [-o file]      export the full snapshot as JSON
  import-json -i file        import a (partial) snapshot from JSON

Connection comes from the environment: SERVER_URL and CLIENT_TOKEN select
the remote server, otherwise DATA_FILE is used as a local store.`

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fail("failed to load config: %v", err)
	}

	transport, err := buildTransport(cfg)
	if err != nil {
		fail("failed to build transport: %v", err)
	}

	ctx := context.Background()
	session := services.NewSessionService(domain.Snapshot{Settings: domain.DefaultSettings()}, transport, logger)
	if err := session.Refresh(ctx); err != nil {
		fail("failed to load data: %v", err)
	}

	switch os.Args[1] {
	case "status":
		err = runStatus(session)
	case "add":
		err = runAdd(ctx, session, os.Args[2:])
	case "report":
		err = runReport(session, os.Args[2:])
	case "export-csv":
		err = runExportCSV(session, os.Args[2:])
	case "import-csv":
		err = runImportCSV(ctx, session, os.Args[2:])
	case "export-json":
		err = runExportJSON(session, os.Args[2:])
	case "import-json":
		err = runImportJSON(ctx, session, os.Args[2:])
	case "help", "-h", "--help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fail("%v", err)
	}

	if err := session.Flush(ctx); err != nil {
		fail("failed to save changes: %v", err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "huchactl: "+format+"\n", args...)
	os.Exit(1)
}

func buildTransport(cfg *config.Config) (ports.SyncTransport, error) {
	if cfg.ClientToken != "" {
		return resthttp.NewClient(cfg.ServerURL, cfg.ClientToken), nil
	}
	return flatfile.New(cfg.DataFile)
}

func runStatus(session *services.SessionService) error {
	snap := session.Snapshot()
	reporting := services.NewReportingService()
	fmt.Printf("transactions: %d\n", len(snap.Transactions))
	fmt.Printf("categories:   %d\n", len(snap.Categories))
	fmt.Printf("tags:         %d\n", len(snap.Tags))
	fmt.Printf("todos:        %d\n", len(snap.Todos))
	fmt.Printf("balance:      %s\n", reporting.Balance(snap).StringFixed(2))
	return nil
}

func runAdd(ctx context.Context, session *services.SessionService, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	date := fs.String("date", "", "transaction date (yyyy-mm-dd)")
	amount := fs.String("amount", "", "signed amount, negative for expenses")
	description := fs.String("desc", "", "description")
	categoryCode := fs.String("category", "", "category code")
	tagCodes := fs.String("tags", "", "tag codes joined with |")
	pinned := fs.Bool("pinned", false, "pin the transaction")
	fs.Parse(args)

	amt, err := decimal.NewFromString(*amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", *amount, err)
	}

	t := domain.Transaction{
		Date:        *date,
		Amount:      amt,
		Description: *description,
		TagIDs:      []string{},
		IsPinned:    *pinned,
	}
	snap := session.Snapshot()
	if *categoryCode != "" {
		for _, c := range snap.Categories {
			if strings.EqualFold(c.Code, *categoryCode) {
				t.CategoryID = c.ID
				break
			}
		}
		if t.CategoryID == "" {
			return fmt.Errorf("unknown category code %q", *categoryCode)
		}
	}
	for _, code := range strings.Split(*tagCodes, "|") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		found := false
		for _, tag := range snap.Tags {
			if strings.EqualFold(tag.Code, code) {
				t.TagIDs = append(t.TagIDs, tag.ID)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown tag code %q", code)
		}
	}

	added, err := session.AddTransaction(ctx, t)
	if err != nil {
		return err
	}
	fmt.Printf("added %s\n", added.ID)
	return nil
}

func runReport(session *services.SessionService, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	from := fs.String("from", "", "start date (yyyy-mm-dd, inclusive)")
	to := fs.String("to", "", "end date (yyyy-mm-dd, inclusive)")
	fs.Parse(args)

	reporting := services.NewReportingService()
	for _, b := range reporting.CategoryTotals(session.Snapshot(), *from, *to) {
		fmt.Printf("%-20s %s\n", b.Name, b.Total.StringFixed(2))
	}
	return nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func runExportCSV(session *services.SessionService, args []string) error {
	fs := flag.NewFlagSet("export-csv", flag.ExitOnError)
	out := fs.String("o", "", "output file (default stdout)")
	fs.Parse(args)

	w, done, err := openOutput(*out)
	if err != nil {
		return err
	}
	defer done()
	return importexport.ExportTransactionsCSV(w, session.Snapshot())
}

func runImportCSV(ctx context.Context, session *services.SessionService, args []string) error {
	fs := flag.NewFlagSet("import-csv", flag.ExitOnError)
	in := fs.String("i", "", "input file")
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("import-csv requires -i file")
	}

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", *in, err)
	}
	defer f.Close()

	result, err := importexport.ImportTransactionsCSV(f, session.Snapshot())
	if err != nil {
		return err
	}

	existing := map[string]bool{}
	for _, t := range session.Transactions() {
		existing[t.ID] = true
	}
	added, updated := 0, 0
	for _, t := range result.Transactions {
		if existing[t.ID] {
			if err := session.UpdateTransaction(ctx, t); err != nil {
				return err
			}
			updated++
			continue
		}
		if _, err := session.AddTransaction(ctx, t); err != nil {
			return err
		}
		added++
	}
	fmt.Printf("imported %d transactions (%d new, %d updated, %d skipped)\n",
		added+updated, added, updated, result.Skipped)
	return nil
}

func runExportJSON(session *services.SessionService, args []string) error {
	fs := flag.NewFlagSet("export-json", flag.ExitOnError)
	out := fs.String("o", "", "output file (default stdout)")
	fs.Parse(args)

	w, done, err := openOutput(*out)
	if err != nil {
		return err
	}
	defer done()
	return importexport.ExportSnapshotJSON(w, session.Snapshot())
}

func runImportJSON(ctx context.Context, session *services.SessionService, args []string) error {
	fs := flag.NewFlagSet("import-json", flag.ExitOnError)
	in := fs.String("i", "", "input file")
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("import-json requires -i file")
	}

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", *in, err)
	}
	defer f.Close()

	imp, err := importexport.ImportSnapshotJSON(f)
	if err != nil {
		return err
	}
	if err := session.ImportSnapshot(ctx, imp); err != nil {
		return err
	}
	fmt.Println("snapshot imported")
	return nil
}
