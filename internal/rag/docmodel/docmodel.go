// Package docmodel defines the data types shared across the ingestion
// pipeline: decoders, the sentence segmenter, the embedder, the chunk
// builder, and the document assembler all exchange values in terms of
// these types rather than importing one another directly.
package docmodel

import "time"

// NormalizedText is UTF-8 document body text after decoding and whitespace
// normalization, ready for sentence segmentation.
type NormalizedText string

// DocumentMetadata carries both recognized, strongly-typed fields and an
// open-ended bag of extras a particular decoder may produce. Recognized
// keys are promoted to struct fields so callers do not have to guess at
// map key spelling; everything else lives in Extra.
type DocumentMetadata struct {
	Title            string
	Author           string
	Subject          string
	Creator          string
	CreationDate     time.Time
	ModificationDate time.Time
	PageCount        int
	FileName         string
	FileSize         int64
	FileType         string

	// ExtractionError records a recoverable fault encountered while
	// decoding (e.g. a single malformed page, an unreadable OLE stream)
	// without aborting the whole decode. Empty when extraction was clean.
	ExtractionError string

	// Extra holds decoder-specific fields that have no dedicated struct
	// field (paragraph_count, table_count, word_count, keywords,
	// category, and similar).
	Extra map[string]any
}

// Sentence is one segmented unit of NormalizedText, with half-open byte
// offsets [Start, End) into the source text it was cut from.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// SentenceEmbedding pairs a sentence with its embedding vector. The slice
// index of a SentenceEmbedding always matches the slice index of the
// Sentence it was derived from.
type SentenceEmbedding struct {
	Sentence  Sentence
	Embedding []float32
}

// Chunk is one semantically coherent span of a document, with its own
// aggregate embedding and document-relative character offsets.
type Chunk struct {
	ID         string
	DocumentID string
	Content    string
	Embedding  []float32
	Metadata   map[string]any
	StartChar  int
	EndChar    int
	ChunkIndex int
}

// ProcessedDocument is the terminal output of the ingestion pipeline: a
// decoded, chunked, embedded document ready to be handed to a vector
// store by the caller.
type ProcessedDocument struct {
	ID                 string
	SourcePath         string
	Content            string
	Chunks             []Chunk
	Metadata           DocumentMetadata
	ProcessingTimestamp time.Time
	Checksum           string
}

// ConsumerPayload is the shape a vector-store upsert call is expected to
// take; producing one is the pipeline's responsibility, persisting it is
// not. See ConsumerPayloadFor in the assemble package.
type ConsumerPayload struct {
	Vectors  [][]float32
	IDs      []string
	Payloads []ChunkPayload
}

// ChunkPayload is the per-chunk record inside a ConsumerPayload.
type ChunkPayload struct {
	DocumentID string
	ChunkIndex int
	Content    string
	Metadata   map[string]any
	StartChar  int
	EndChar    int
}
