// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/docvault"
	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/ingestion"
)

func main() {
	app := &cli.App{
		Name:  "docvault",
		Usage: "Document ingestion and semantic retrieval vault",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to the vault directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest one or more document files",
				ArgsUsage: "FILE...",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "title",
						Usage: "Document title (single file only; defaults to the filename)",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for embedding and vector writes",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.DurationFlag{
						Name:  "stage-timeout",
						Usage: "Timeout applied to each pipeline stage",
						Value: 2 * time.Minute,
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List documents, newest first",
				Action: listCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a document and its vectors",
				ArgsUsage: "DOCUMENT_ID",
				Action:    deleteCommand,
			},
			{
				Name:      "search",
				Usage:     "Search ingested documents",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 5,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(c *cli.Context) (*docvault.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := docvault.NewDatabase(c.String("db"), docvault.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}
	if c.String("title") != "" && c.NArg() > 1 {
		return fmt.Errorf("--title applies to a single file")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		ingestion.WithStageTimeout(c.Duration("stage-timeout")),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		filename := filepath.Base(path)
		title := c.String("title")
		if title == "" {
			title = strings.TrimSuffix(filename, filepath.Ext(filename))
		}
		fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

		doc, err := pipeline.Ingest(ctx, ingestion.IngestRequest{
			Title:    title,
			Filename: filename,
			FileType: fileType,
			Data:     data,
		})
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}

		fmt.Printf("%s: %s (%d chunks, %d vectors)\n",
			doc.DocumentID, doc.Title, doc.ChunkCount, doc.VectorCount)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	docs, err := db.DocumentRepository().List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		fmt.Println("No documents.")
		return nil
	}

	for _, doc := range docs {
		line := fmt.Sprintf("%s  %-10s  %s  (%s, %d bytes, uploaded %s)",
			doc.DocumentID, doc.Status, doc.Title, doc.FileType, doc.FileSize,
			doc.UploadedAt.Format(time.RFC3339))
		if doc.ErrorMessage != "" {
			line += " error: " + doc.ErrorMessage
		}
		fmt.Println(line)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one document id is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	deleter, err := db.NewDeleter()
	if err != nil {
		return fmt.Errorf("failed to create deleter: %w", err)
	}

	documentID := c.Args().First()
	if err := deleter.Delete(context.Background(), documentID); err != nil {
		return fmt.Errorf("failed to delete %s: %w", documentID, err)
	}

	fmt.Printf("Deleted %s\n", documentID)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	query := strings.Join(c.Args().Slice(), " ")
	results, err := searcher.Search(context.Background(), query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: %s [%0.3f] %s\n",
			i, hit.Record.Metadata.Title, hit.Score, snippet(hit.Record.Metadata.Content, 120))
	}
	return nil
}

// snippet flattens whitespace and truncates to n characters.
func snippet(text string, n int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n]) + "..."
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
