// Package service wires the ingestion stages — decode, segment, embed,
// chunk, assemble — into the single-pass pipeline a caller drives
// through Service.ProcessDocument.
package service

import (
	"context"
	"time"

	"ragcore/internal/config"
	"ragcore/internal/rag/assemble"
	"ragcore/internal/rag/chunker"
	"ragcore/internal/rag/decode"
	"ragcore/internal/rag/docmodel"
	"ragcore/internal/rag/embedder"
	"ragcore/internal/rag/segment"
)

// Service runs the ingestion pipeline: decode -> segment -> embed ->
// chunk -> assemble, in that order, with no back-edges between stages.
type Service struct {
	registry *decode.Registry
	emb      embedder.Embedder
	builder  *chunker.Builder
	cfg      config.Config

	log     Logger
	metrics Metrics
	clock   Clock
}

// New constructs a Service from a loaded Config and an Embedder. The
// decode registry and chunk builder are derived from cfg.
func New(cfg config.Config, emb embedder.Embedder, opts ...Option) *Service {
	s := &Service{
		registry: decode.NewDefaultRegistry(func(p *decode.PDFDecoder, d *decode.DOCXDecoder) {
			p.UseOCR = cfg.UseOCR
			d.ExtractTables = cfg.ExtractTables
			d.ExtractHeadersFooters = cfg.ExtractHeadersFooters
			d.PreserveFormatting = cfg.PreserveFormatting
		}),
		emb: emb,
		builder: chunker.NewBuilder(chunker.Config{
			MaxChunkSize:        cfg.ChunkSize,
			MinChunkSize:        cfg.MinChunkSize,
			ChunkOverlap:        cfg.ChunkOverlap,
			SimilarityThreshold: cfg.SimilarityThreshold,
		}),
		cfg:     cfg,
		log:     defaultLogger{},
		metrics: NoopMetrics{},
		clock:   SystemClock{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Option configures a Service during construction.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l Logger) Option { return func(s *Service) { s.log = l } }

// WithMetrics sets a custom metrics collector.
func WithMetrics(m Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithClock sets a custom clock implementation.
func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }

// WithRegistry overrides the default decode.Registry, e.g. to inject an
// OCR-backed PDFDecoder.
func WithRegistry(r *decode.Registry) Option { return func(s *Service) { s.registry = r } }

// ProcessDocument runs blob through the full pipeline and returns the
// terminal ProcessedDocument. mimeHint may be empty, in which case the
// decoder is resolved from fileName's extension. ctx is checked for
// cancellation at each stage boundary; a cancelled run never returns a
// partial ProcessedDocument alongside the error.
func (s *Service) ProcessDocument(ctx context.Context, fileName, mimeHint string, blob []byte) (docmodel.ProcessedDocument, error) {
	start := s.clock.Now()
	s.metrics.IncCounter("ingestion_docs_total", nil)
	s.log.Info("processing document", map[string]any{"file_name": fileName})

	text, metadata, err := s.decodeStage(ctx, fileName, mimeHint, blob, start)
	if err != nil {
		return docmodel.ProcessedDocument{}, err
	}

	sentences, err := s.segmentStage(ctx, text, start)
	if err != nil {
		return docmodel.ProcessedDocument{}, err
	}

	embeddings, err := s.embedStage(ctx, sentences, start)
	if err != nil {
		return docmodel.ProcessedDocument{}, err
	}

	chunks, err := s.chunkStage(ctx, sentences, embeddings, start)
	if err != nil {
		return docmodel.ProcessedDocument{}, err
	}

	if err := checkCancelled(ctx); err != nil {
		return docmodel.ProcessedDocument{}, err
	}
	t0 := s.clock.Now()
	metadata.FileName = fileName
	doc, err := assemble.Assemble(fileName, text, metadata, chunks, s.cfg, s.clock.Now())
	if err != nil {
		return docmodel.ProcessedDocument{}, err
	}
	s.observeStage("assemble", t0, start)

	s.metrics.ObserveHistogram("ingestion_stage_ms", float64(ms(s.clock.Now().Sub(start))), map[string]string{"stage": "total"})
	s.log.Info("document processed", map[string]any{"document_id": doc.ID, "chunks": len(doc.Chunks)})
	return doc, nil
}

func (s *Service) decodeStage(ctx context.Context, fileName, mimeHint string, blob []byte, runStart time.Time) (docmodel.NormalizedText, docmodel.DocumentMetadata, error) {
	if err := checkCancelled(ctx); err != nil {
		return "", docmodel.DocumentMetadata{}, err
	}
	t0 := s.clock.Now()
	text, metadata, err := s.registry.Decode(blob, fileName, mimeHint)
	if err != nil {
		return "", docmodel.DocumentMetadata{}, err
	}
	s.observeStage("decode", t0, runStart)
	return text, metadata, nil
}

func (s *Service) segmentStage(ctx context.Context, text docmodel.NormalizedText, runStart time.Time) ([]docmodel.Sentence, error) {
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	t0 := s.clock.Now()
	sentences := segment.Split(string(text))
	s.observeStage("segment", t0, runStart)
	return sentences, nil
}

func (s *Service) embedStage(ctx context.Context, sentences []docmodel.Sentence, runStart time.Time) ([][]float32, error) {
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	if len(sentences) == 0 {
		return nil, nil
	}
	texts := make([]string, len(sentences))
	for i, sent := range sentences {
		texts[i] = sent.Text
	}
	t0 := s.clock.Now()
	vectors, err := s.emb.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	s.observeStage("embed", t0, runStart)
	for range vectors {
		s.metrics.IncCounter("ingestion_sentences_embedded_total", nil)
	}
	return vectors, nil
}

func (s *Service) chunkStage(ctx context.Context, sentences []docmodel.Sentence, embeddings [][]float32, runStart time.Time) ([]docmodel.Chunk, error) {
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	t0 := s.clock.Now()
	chunks, err := s.builder.Build("", sentences, embeddings)
	if err != nil {
		return nil, err
	}
	s.observeStage("chunk", t0, runStart)
	for range chunks {
		s.metrics.IncCounter("ingestion_chunks_total", nil)
	}
	return chunks, nil
}

func (s *Service) observeStage(stage string, t0, runStart time.Time) {
	s.metrics.ObserveHistogram("ingestion_stage_ms", float64(ms(s.clock.Now().Sub(t0))), map[string]string{"stage": stage})
}

// checkCancelled returns docmodel.ErrCancelled itself (unwrapped) if ctx
// has been cancelled, and nil otherwise.
func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return docmodel.ErrCancelled
	default:
		return nil
	}
}

// defaultLogger drops every log line; New installs it as the Service's
// logger unless a caller supplies a real one via WithLogger.
type defaultLogger struct{}

func (defaultLogger) Info(string, map[string]any)  {}
func (defaultLogger) Error(string, map[string]any) {}
func (defaultLogger) Debug(string, map[string]any) {}

func ms(d time.Duration) int64 { return int64(d / time.Millisecond) }
