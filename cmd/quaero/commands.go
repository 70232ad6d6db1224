package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/poiesic/quaero"
	"github.com/poiesic/quaero/core"
	"github.com/poiesic/quaero/query"
	"github.com/poiesic/quaero/search"
	"github.com/poiesic/quaero/watch"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one file or directory is required")
	}
	if c.String("id") != "" && c.NArg() > 1 {
		return errors.New("--id can only be used with a single file")
	}

	return withEngine(c, func(engine *quaero.Engine) error {
		cfg := engine.Config().Watch
		w, err := watch.New(engine, watch.WithExtensions(cfg.Extensions...), watch.WithRate(cfg.Rate))
		if err != nil {
			return err
		}

		var ids []string
		for _, path := range c.Args().Slice() {
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if info.IsDir() {
				n, err := w.Scan(c.Context, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Queued %d files from %s\n", n, path)
				continue
			}

			id := c.String("id")
			if id == "" {
				id = watch.DocumentID(path)
			}
			if err := engine.DeleteDocument(c.Context, id); err != nil {
				return err
			}
			if _, err := engine.IngestFile(c.Context, path, id); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			ids = append(ids, id)
		}

		engine.Wait()
		for _, id := range ids {
			doc, err := engine.DocumentStatus(c.Context, id)
			if err != nil {
				return err
			}
			printDocument(c.App.Writer, doc)
		}
		return nil
	})
}

func queryCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return errors.New("a question is required")
	}

	return withEngine(c, func(engine *quaero.Engine) error {
		result := engine.Ask(c.Context, request(c, engine, question))
		return printResult(c.App.Writer, result, c.Bool("sources"))
	})
}

func chatCommand(c *cli.Context) error {
	return withEngine(c, func(engine *quaero.Engine) error {
		return chat(c, engine, c.App.Reader, c.App.Writer)
	})
}

func chat(c *cli.Context, engine *quaero.Engine, in io.Reader, out io.Writer) error {
	user := c.String("user")
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "Ask a question. /clear forgets the conversation, /stats shows memory use, /quit exits.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			fmt.Fprintf(out, "Forgot %d turns\n", engine.ClearMemory(user))
			continue
		case "/stats":
			stats := engine.MemoryStats()
			fmt.Fprintf(out, "%d users, %d turns (%d yours)\n", stats.Users, stats.TotalTurns, stats.PerUser[user])
			continue
		}

		if err := printResult(out, engine.Ask(c.Context, request(c, engine, line)), true); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		if c.Context.Err() != nil {
			return c.Context.Err()
		}
	}
}

func request(c *cli.Context, engine *quaero.Engine, question string) query.Request {
	temperature := c.Float64("temperature")
	if temperature < 0 {
		temperature = engine.Config().Generation.Temperature
	}
	return query.Request{
		UserID:      c.String("user"),
		Query:       question,
		TopK:        c.Int("top-k"),
		Temperature: temperature,
	}
}

func printResult(w io.Writer, result query.Result, withSources bool) error {
	switch r := result.(type) {
	case query.Answered:
		fmt.Fprintln(w, r.Answer)
		if withSources {
			printSources(w, r.Sources)
		}
	case query.NoResults:
		fmt.Fprintln(w, r.Answer)
	case query.Failed:
		return r
	default:
		return fmt.Errorf("unexpected query result %T", result)
	}
	return nil
}

func printSources(w io.Writer, sources []*core.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, src := range sources {
		fmt.Fprintf(w, "%d: %s chunk %d [%0.3f]\n", i+1, src.Filename, src.ChunkIndex, src.SimilarityScore)
	}
}

func searchCommand(c *cli.Context) error {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return errors.New("a query is required")
	}

	return withEngine(c, func(engine *quaero.Engine) error {
		var monitor search.SearchMonitor
		if c.Bool("explain") {
			monitor = newExplainMonitor(c.App.Writer)
		}
		hits, err := engine.Search(c.Context, text, c.Int("top-k"), monitor)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "Found %d hits\n", len(hits))
		for i, hit := range hits {
			fmt.Fprintf(c.App.Writer, "%d: %s chunk %d [%0.3f] %s\n", i, hit.Metadata.Filename,
				hit.Metadata.ChunkIndex, hit.Score, preview(hit.Metadata.Text, 80))
		}
		return nil
	})
}

func listCommand(c *cli.Context) error {
	return withEngine(c, func(engine *quaero.Engine) error {
		summaries, err := engine.ListDocuments(c.Context)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Fprintln(c.App.Writer, "No documents indexed")
			return nil
		}

		tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DOCUMENT\tFILENAME\tCHUNKS\tUPLOADED")
		for _, s := range summaries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.DocumentID, s.Filename, s.ChunkCount, s.UploadDate.Format(time.RFC3339))
		}
		return tw.Flush()
	})
}

func statusCommand(c *cli.Context) error {
	return withEngine(c, func(engine *quaero.Engine) error {
		if c.NArg() > 0 {
			doc, err := engine.DocumentStatus(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			printDocument(c.App.Writer, doc)
			return nil
		}

		docs, err := engine.Documents(c.Context)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			printDocument(c.App.Writer, doc)
		}
		return nil
	})
}

func printDocument(w io.Writer, doc *core.Document) {
	switch doc.State {
	case core.DocumentFailed:
		fmt.Fprintf(w, "%s %s: failed at %s: %s\n", doc.ID, doc.Filename, doc.FailedStage, doc.Error)
	case core.DocumentIndexed:
		fmt.Fprintf(w, "%s %s: indexed, %d chunks (%s)\n", doc.ID, doc.Filename, doc.ChunkCount, doc.DocumentType)
	default:
		fmt.Fprintf(w, "%s %s: %s\n", doc.ID, doc.Filename, doc.State)
	}
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one document ID is required")
	}
	return withEngine(c, func(engine *quaero.Engine) error {
		id := c.Args().First()
		if err := engine.DeleteDocument(c.Context, id); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Deleted %s\n", id)
		return nil
	})
}

func statsCommand(c *cli.Context) error {
	return withEngine(c, func(engine *quaero.Engine) error {
		stats, err := engine.Stats(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Collection: %s\n", stats.Collection)
		fmt.Fprintf(c.App.Writer, "Points:     %d\n", stats.PointCount)
		fmt.Fprintf(c.App.Writer, "Dimension:  %d\n", stats.VectorDimension)
		fmt.Fprintf(c.App.Writer, "Health:     %s\n", stats.Health)
		if device, ok := engine.Device(); ok {
			fmt.Fprintf(c.App.Writer, "Device:     %s\n", device)
		}
		return nil
	})
}

func reindexCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withEngine(c, func(engine *quaero.Engine) error {
		err := engine.Reindex(ctx, c.App.ErrWriter)
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(c.App.ErrWriter, "Interrupted; run reindex again to resume")
		}
		return err
	})
}

func watchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one directory is required")
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withEngine(c, func(engine *quaero.Engine) error {
		cfg := engine.Config().Watch
		w, err := watch.New(engine,
			watch.WithExtensions(cfg.Extensions...),
			watch.WithRate(cfg.Rate),
			watch.WithDebounce(cfg.Debounce))
		if err != nil {
			return err
		}

		if c.Bool("scan") {
			for _, dir := range c.Args().Slice() {
				n, err := w.Scan(ctx, dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Queued %d files from %s\n", n, dir)
			}
		}

		fmt.Fprintln(c.App.Writer, "Watching for changes, press Ctrl-C to stop")
		err = w.Run(ctx, c.Args().Slice()...)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}

func configCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
