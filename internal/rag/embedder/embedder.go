package embedder

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"ragcore/internal/config"
	"ragcore/internal/embedding"
	"ragcore/internal/rag/docmodel"
)

// Embedder defines the interface for converting text to embedding
// vectors. Implementations must return one vector per input, in input
// order, and must produce the same vector for a given text regardless
// of what else shares its batch; the chunk builder depends on both
// properties to stay deterministic across batch-size choices.
type Embedder interface {
	// EmbedBatch returns an embedding vector per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Name returns a model identifier string.
	Name() string
	// Dimension returns the embedding dimensionality (0 for variable/unknown).
	Dimension() int
	// Ping checks if the embedding service is reachable, surfacing
	// failure as a docmodel.EmbedError the way a model-load failure
	// would.
	Ping(ctx context.Context) error
}

// clientEmbedder wraps the embedding.EmbedText HTTP client, windowing a
// document's sentence stream into calls of bounded size and applying
// backpressure when the backend starts failing.
type clientEmbedder struct {
	cfg              config.EmbeddingConfig
	dim              int
	sentencesPerCall int // window size: sentences sent per request

	mu      sync.Mutex
	backoff time.Duration // current delay before the next call, grows on failure
}

// maxBackoff caps how long a run of backend failures can stall a
// single document's embedding stage before the error is surfaced.
const maxBackoff = 8 * time.Second

// NewClient constructs an embedder that calls the configured embedding
// endpoint, windowing sentences into groups of at most
// cfg.MaxSentencesPerCall per request (falling back to 1 if unset) so a
// single long document never builds one unbounded request body.
func NewClient(cfg config.EmbeddingConfig, dim int) Embedder {
	window := cfg.MaxSentencesPerCall
	if window <= 0 {
		window = 1
	}
	return &clientEmbedder{cfg: cfg, dim: dim, sentencesPerCall: window}
}

func (c *clientEmbedder) Name() string   { return c.cfg.Model }
func (c *clientEmbedder) Dimension() int { return c.dim }

func (c *clientEmbedder) Ping(ctx context.Context) error {
	if err := embedding.CheckReachability(ctx, c.cfg); err != nil {
		return &docmodel.EmbedError{Message: "embedding backend unreachable", Err: err}
	}
	return nil
}

// EmbedBatch windows texts (one sentence per entry) into calls of at
// most sentencesPerCall and concatenates the results in order, so the
// chunk builder sees the same 1:1 correspondence regardless of how
// many windows the document's sentence count required.
func (c *clientEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += c.sentencesPerCall {
		end := i + c.sentencesPerCall
		if end > len(texts) {
			end = len(texts)
		}
		window := texts[i:end]
		embeddings, err := c.backoffCall(ctx, window)
		if err != nil {
			return out, err
		}
		if len(embeddings) != len(window) {
			return out, &docmodel.InvariantViolation{Message: fmt.Sprintf(
				"embedding backend returned %d vectors for a window of %d sentences", len(embeddings), len(window))}
		}
		out = append(out, embeddings...)
	}
	return out, nil
}

// backoffCall applies the embedder's current backoff delay before
// calling the backend, then grows the delay on failure (capped at
// maxBackoff) or resets it on success. A cluster of sentence windows
// hitting a struggling backend slows down instead of hammering it at
// a fixed rate regardless of how it's responding.
func (c *clientEmbedder) backoffCall(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	delay := c.backoff
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	embeddings, err := embedding.EmbedText(ctx, c.cfg, texts)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.backoff == 0 {
			c.backoff = 250 * time.Millisecond
		} else if c.backoff < maxBackoff {
			c.backoff *= 2
			if c.backoff > maxBackoff {
				c.backoff = maxBackoff
			}
		}
		return nil, err
	}
	c.backoff = 0
	return embeddings, nil
}

// deterministicEmbedder is a lightweight, deterministic embedder suitable for tests.
// It hashes byte 3-grams into a fixed-size vector and optionally L2-normalizes.
type deterministicEmbedder struct {
	dim       int
	normalize bool
	seed      uint64
	name      string
}

// NewDeterministic constructs a deterministic embedder with the given dimension.
// If normalize is true, vectors are L2-normalized. Seed perturbs hashing.
func NewDeterministic(dim int, normalize bool, seed uint64) Embedder {
	if dim <= 0 {
		dim = 64
	}
	return &deterministicEmbedder{dim: dim, normalize: normalize, seed: seed, name: "deterministic"}
}

func (d *deterministicEmbedder) Name() string   { return d.name }
func (d *deterministicEmbedder) Dimension() int { return d.dim }

func (d *deterministicEmbedder) Ping(_ context.Context) error { return nil }

func (d *deterministicEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = d.embedOne(t)
	}
	return out, nil
}

func (d *deterministicEmbedder) embedOne(s string) []float32 {
	v := make([]float32, d.dim)
	if len(s) == 0 {
		return v
	}
	// 3-gram hashing over bytes
	b := []byte(s)
	if len(b) < 3 {
		add(d.seed, b, v)
	} else {
		for i := 0; i <= len(b)-3; i++ {
			add(d.seed, b[i:i+3], v)
		}
	}
	if d.normalize {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		if sum > 0 {
			inv := float32(1.0 / math.Sqrt(sum))
			for i := range v {
				v[i] *= inv
			}
		}
	}
	return v
}

func add(seed uint64, gram []byte, v []float32) {
	h := fnv.New64a()
	if seed != 0 {
		var tmp [8]byte
		for i := 0; i < 8; i++ {
			tmp[i] = byte(seed >> (8 * i))
		}
		_, _ = h.Write(tmp[:])
	}
	_, _ = h.Write(gram)
	hv := h.Sum64()
	idx := int(hv % uint64(len(v)))
	// map hash to a signed weight in [-1, 1]
	w := float32(int32(hv>>32)) / float32(1<<31)
	v[idx] += w
}
