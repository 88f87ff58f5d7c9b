// Command textpressctl operates on a TextPress database from the
// command line: ingest text, run the processing pass, search, and
// inspect entries.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmhart/textpress/internal/config"
	"github.com/jmhart/textpress/internal/logging"
	"github.com/jmhart/textpress/internal/service"
	"github.com/jmhart/textpress/internal/store"
)

const usage = `Usage: textpressctl <command> [arguments]

Commands:
  add [text]          ingest text (reads stdin when no argument given)
  process             run the cleaning pass over pending entries
  recent [-limit n] [-offset n]
                      list recent entries, newest first
  search [-scan] <query>
                      search cleaned entries (indexed when available)
  show <id>           show the full raw and cleaned record
  retry <id>          re-queue an errored entry
  delete <id>         delete an entry and its cleaned derivative
  stats               entry counts by status
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	logger := logging.New(os.Stderr, "error")

	st, err := store.New(store.Options{Dir: cfg.Database.Dir, File: cfg.Database.File})
	if err != nil {
		fatal(err)
	}
	defer func() { _ = st.Close() }()

	svc := service.New(st, logger)
	ctx := context.Background()

	if err := run(ctx, svc, os.Args[1], os.Args[2:]); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, svc *service.Service, command string, args []string) error {
	switch command {
	case "add":
		return runAdd(ctx, svc, args)
	case "process":
		return runProcess(ctx, svc)
	case "recent":
		return runRecent(ctx, svc, args)
	case "search":
		return runSearch(ctx, svc, args)
	case "show":
		return runShow(ctx, svc, args)
	case "retry":
		return runWithID(args, func(id int64) error { return svc.RetryEntry(ctx, id) })
	case "delete":
		return runWithID(args, func(id int64) error { return svc.DeleteEntry(ctx, id) })
	case "stats":
		return runStats(ctx, svc)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runAdd(ctx context.Context, svc *service.Service, args []string) error {
	var text string
	if len(args) > 0 {
		text = strings.Join(args, " ")
	} else {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(raw)
	}

	id, err := svc.AddRaw(ctx, text)
	if err != nil {
		return err
	}
	fmt.Printf("added entry %d\n", id)
	return nil
}

func runProcess(ctx context.Context, svc *service.Service) error {
	ok, failed, err := svc.ProcessPending(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("processed %d, failed %d\n", ok, failed)
	return nil
}

func runRecent(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("recent", flag.ExitOnError)
	limit := fs.Int("limit", 10, "maximum entries to list")
	offset := fs.Int("offset", 0, "entries to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	summaries, err := svc.Recent(ctx, *limit, *offset)
	if err != nil {
		return err
	}
	for _, sum := range summaries {
		fmt.Printf("%6d  %-9s  %s  %s\n",
			sum.ID, sum.Status, sum.CreatedAt.Format("2006-01-02 15:04:05"), firstLine(sum.TextPreview))
	}
	return nil
}

func runSearch(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	scan := fs.Bool("scan", false, "force the substring scan instead of the index")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("search requires a query")
	}

	resp, err := svc.SearchClean(ctx, strings.Join(fs.Args(), " "), !*scan)
	if err != nil {
		return err
	}
	fmt.Printf("%d results (%s search, %s)\n", len(resp.Results), resp.Mode, resp.Duration)
	for _, hit := range resp.Results {
		fmt.Printf("%6d  raw %-6d %s\n", hit.ID, hit.RawID, firstLine(hit.CleanPreview))
	}
	return nil
}

func runShow(ctx context.Context, svc *service.Service, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	detail, err := svc.GetEntryDetail(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("entry %d  status=%s  created=%s\n",
		detail.Raw.ID, detail.Raw.Status, detail.Raw.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("text:\n%s\n", detail.Raw.Text)
	if detail.Cleaned != nil {
		meta := detail.Cleaned.Metadata
		fmt.Printf("\nclean text:\n%s\n", detail.Cleaned.CleanText)
		fmt.Printf("\nwords=%d chars=%d language=%s reading=%dmin tags=%s\n",
			meta.WordCount, meta.CharCount, meta.LanguageGuess,
			meta.ReadingTimeMinutes, strings.Join(meta.Tags, ","))
	}
	return nil
}

func runStats(ctx context.Context, svc *service.Service) error {
	counts, err := svc.CountStats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("total:     %d\n", counts.Total)
	fmt.Printf("processed: %d\n", counts.Processed)
	fmt.Printf("errors:    %d\n", counts.Errors)
	fmt.Printf("pending:   %d\n", counts.Pending())
	fmt.Printf("index:     %v\n", svc.CheckIndexAvailable(ctx))
	return nil
}

func runWithID(args []string, fn func(int64) error) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := fn(id); err != nil {
		return err
	}
	fmt.Printf("ok\n")
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one entry id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", args[0])
	}
	return id, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "..."
	}
	return s
}

func fatal(err error) {
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintln(os.Stderr, "error: entry not found")
	} else {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(1)
}
