// Package chunker implements the online greedy semantic chunk builder:
// the algorithmic heart of the ingestion pipeline. It walks segmented
// sentences in order, growing a buffer while its running centroid stays
// similar enough to the next sentence, and splitting off a chunk
// whenever similarity drops or the buffer outgrows its size bounds.
package chunker

import (
	"fmt"
	"math"
	"strings"

	"ragcore/internal/rag/docmodel"
)

// Config tunes the chunk builder. Every field maps directly to the
// pipeline's documented configuration surface.
type Config struct {
	MaxChunkSize        int
	MinChunkSize        int
	ChunkOverlap        int
	SimilarityThreshold float64
}

// DefaultConfig returns the documented defaults: 1024/256/256 chars and
// a 0.7 cosine-similarity split threshold.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize:        1024,
		MinChunkSize:        256,
		ChunkOverlap:        256,
		SimilarityThreshold: 0.7,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxChunkSize <= 0 {
		c.MaxChunkSize = d.MaxChunkSize
	}
	if c.MinChunkSize <= 0 {
		c.MinChunkSize = d.MinChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = d.ChunkOverlap
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = d.SimilarityThreshold
	}
	return c
}

// Builder accumulates sentences into semantically coherent chunks.
//
// Chunk offsets (StartChar/EndChar) are tracked by a cursor that assumes
// sentences are joined by single spaces. They locate a chunk within the
// normalized text closely enough for retrieval, but where the source
// separated sentences by other or longer whitespace they are
// approximate and do not slice the chunk's content back out exactly.
type Builder struct {
	cfg Config
}

// NewBuilder constructs a Builder, filling in zero or negative sizes and
// similarity threshold with the documented defaults. A zero ChunkOverlap
// is kept (no overlap); only a negative one is replaced.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg.withDefaults()}
}

// Build clusters sentences into chunks for documentID (which may be
// empty when the caller has not yet assigned a document ID; the
// assembler fills it in afterward). sentences and embeddings must be
// the same length and in the same order — a mismatch is a programming
// defect, not a user-facing error.
func (b *Builder) Build(documentID string, sentences []docmodel.Sentence, embeddings [][]float32) ([]docmodel.Chunk, error) {
	if len(sentences) != len(embeddings) {
		return nil, &docmodel.InvariantViolation{
			Message: fmt.Sprintf("sentence count %d does not match embedding count %d", len(sentences), len(embeddings)),
		}
	}
	if len(sentences) == 0 {
		return nil, nil
	}

	cfg := b.cfg
	var chunks []docmodel.Chunk
	charCursor := 0

	bufText := []string{sentences[0].Text}
	bufVectors := [][]float32{embeddings[0]}

	emit := func(content string, embedding []float32, startChar int) {
		idx := len(chunks)
		chunks = append(chunks, docmodel.Chunk{
			ID:         chunkID(documentID, idx),
			DocumentID: documentID,
			Content:    content,
			Embedding:  embedding,
			StartChar:  startChar,
			EndChar:    startChar + len(content),
			ChunkIndex: idx,
			Metadata: map[string]any{
				"chunk_index":  idx,
				"chunk_method": "semantic",
				"chunk_size":   len(content),
			},
		})
	}

	for i := 1; i < len(sentences); i++ {
		centroid := meanVector(bufVectors)
		sim := cosine(centroid, embeddings[i])
		currentText := strings.Join(bufText, " ")
		currentLen := len(currentText)
		nextLen := len(sentences[i].Text)

		shouldSplit := sim < cfg.SimilarityThreshold ||
			currentLen > cfg.MaxChunkSize ||
			(currentLen > cfg.MinChunkSize && currentLen+nextLen > cfg.MaxChunkSize)

		if !shouldSplit {
			bufText = append(bufText, sentences[i].Text)
			bufVectors = append(bufVectors, embeddings[i])
			continue
		}

		emit(currentText, meanVector(bufVectors), charCursor)

		overlapText, overlapCount := overlapSuffix(bufText, cfg.ChunkOverlap)
		joinedOverlap := strings.Join(overlapText, " ")
		charCursor += currentLen - len(joinedOverlap)

		nextBufText := make([]string, 0, overlapCount+1)
		nextBufText = append(nextBufText, overlapText...)
		nextBufText = append(nextBufText, sentences[i].Text)
		bufText = nextBufText

		nextBufVectors := make([][]float32, 0, overlapCount+1)
		nextBufVectors = append(nextBufVectors, bufVectors[len(bufVectors)-overlapCount:]...)
		nextBufVectors = append(nextBufVectors, embeddings[i])
		bufVectors = nextBufVectors
	}

	finalText := strings.Join(bufText, " ")
	emit(finalText, meanVector(bufVectors), charCursor)

	total := len(chunks)
	for i := range chunks {
		chunks[i].Metadata["total_chunks"] = total
	}
	return chunks, nil
}

func chunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// overlapSuffix returns the shortest trailing run of sentences whose
// combined raw length reaches target, scanning from the end of buf
// backward and stopping as soon as the accumulated length meets or
// exceeds it. When even the whole buffer falls short of target, no
// sentences are carried over. It returns the run in original order plus
// its length, so the caller can splice the matching embeddings by the
// same count.
func overlapSuffix(buf []string, target int) ([]string, int) {
	if target <= 0 || len(buf) == 0 {
		return nil, 0
	}
	var length int
	count := 0
	for i := len(buf) - 1; i >= 0; i-- {
		length += len(buf[i])
		count++
		if length >= target {
			break
		}
	}
	if length < target {
		return nil, 0
	}
	return append([]string(nil), buf[len(buf)-count:]...), count
}

// meanVector computes the component-wise mean of vecs in a fixed,
// deterministic summation order (first to last).
func meanVector(vecs [][]float32) []float32 {
	if len(vecs) == 0 {
		return nil
	}
	dim := len(vecs[0])
	sum := make([]float64, dim)
	for _, v := range vecs {
		for i := 0; i < dim && i < len(v); i++ {
			sum[i] += float64(v[i])
		}
	}
	out := make([]float32, dim)
	n := float64(len(vecs))
	for i := range sum {
		out[i] = float32(sum[i] / n)
	}
	return out
}

// cosine computes cosine similarity, returning 0 for either zero-norm
// input rather than dividing by zero.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
