// Command ragingest decodes a single document, segments it into
// sentences, embeds and semantically chunks it, and prints the
// resulting ProcessedDocument as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"ragcore/internal/config"
	"ragcore/internal/logging"
	"ragcore/internal/rag/embedder"
	"ragcore/internal/rag/obs"
	"ragcore/internal/rag/service"
)

func main() {
	log.SetFlags(0)
	var (
		path       = flag.String("file", "", "path to the document to ingest (.pdf or .docx)")
		mimeHint   = flag.String("mime", "", "MIME type hint (optional, inferred from extension otherwise)")
		configPath = flag.String("config", "", "path to an optional config.yaml overlay")
		useClient  = flag.Bool("remote-embed", false, "embed via the configured HTTP backend instead of the deterministic embedder")
		logFile    = flag.String("log-file", "ragingest.log", "where to write structured logs (stdout is reserved for the JSON result)")
	)
	flag.Parse()

	if *path == "" {
		log.Fatal("no input provided; use -file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := logging.Init(*logFile, "info"); err != nil {
		log.Fatalf("init logging: %v", err)
	}

	blob, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read file: %v", err)
	}

	var emb embedder.Embedder
	if *useClient {
		emb = embedder.NewClient(cfg.Embedding, cfg.Embedding.Dimension)
	} else {
		emb = embedder.NewDeterministic(cfg.Embedding.Dimension, true, 0)
	}

	svc := service.New(cfg, emb,
		service.WithLogger(logging.NewZerologAdapter()),
		service.WithMetrics(obs.NewOtelMetrics()),
	)

	doc, err := svc.ProcessDocument(context.Background(), filepath.Base(*path), *mimeHint, blob)
	if err != nil {
		log.Fatalf("process document: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
