package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

type SearchCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewSearchCommand(stdout, stderr io.Writer, newEnv envFactory) *SearchCommand {
	return &SearchCommand{stdout: stdout, stderr: stderr, newEnv: newEnv}
}

func (c *SearchCommand) Run(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	chatID := fs.Int64("chat", 0, "scope results to one conversation")
	topK := fs.Int("top", 0, "number of results (defaults from config)")
	stats := fs.Bool("stats", false, "print corpus stats instead of searching")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := c.newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	if *stats {
		corpus, err := env.client.RAGStats(ctx)
		if err != nil {
			return err
		}
		enabled := "no"
		if corpus.RAGEnabled {
			enabled = "yes"
		}
		fmt.Fprintf(c.stdout, "documents: %d\nprocessed: %d\nchunks: %d\nenabled: %s\n",
			corpus.TotalDocuments, corpus.ProcessedDocuments, corpus.TotalChunks, enabled)
		return nil
	}

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return errors.New("query is required")
	}
	limit := *topK
	if limit <= 0 {
		limit = env.cfg.TopK()
	}

	hits, err := env.client.SearchRAG(ctx, query, *chatID, limit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Fprintln(c.stdout, "no results")
		return nil
	}
	for i, hit := range hits {
		excerpt := hit.Content
		if runes := []rune(excerpt); len(runes) > env.cfg.ExcerptLimit() {
			excerpt = string(runes[:env.cfg.ExcerptLimit()]) + "..."
		}
		fmt.Fprintf(c.stdout, "%d. %s (%.2f)\n   %s\n", i+1, hit.Filename, hit.RelevanceScore, excerpt)
	}
	return nil
}
