// Package assemble produces the terminal ProcessedDocument from a
// decoded document's text, metadata, and chunks: it computes the
// document's checksum, derives its ID according to the configured
// DocumentIDPolicy, and restamps any placeholder chunk IDs the chunk
// builder emitted before the document ID was known.
package assemble

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"ragcore/internal/config"
	"ragcore/internal/rag/docmodel"
)

// Assemble computes the document's checksum and ID, restamps any
// placeholder chunk IDs, and returns the finished ProcessedDocument.
// chunks are consumed in place: the returned value's Chunks slice is a
// new slice, but chunk Metadata maps are shared with the input.
func Assemble(
	sourcePath string,
	text docmodel.NormalizedText,
	metadata docmodel.DocumentMetadata,
	chunks []docmodel.Chunk,
	cfg config.Config,
	now time.Time,
) (docmodel.ProcessedDocument, error) {
	checksum := Checksum(string(text))

	docID, err := DocumentID(cfg.DocumentIDPolicy, sourcePath, checksum, now)
	if err != nil {
		return docmodel.ProcessedDocument{}, err
	}

	stamped := make([]docmodel.Chunk, len(chunks))
	for i, c := range chunks {
		if c.DocumentID == "" {
			c.DocumentID = docID
			c.ID = fmt.Sprintf("%s_chunk_%d", docID, c.ChunkIndex)
		}
		stamped[i] = c
	}

	return docmodel.ProcessedDocument{
		ID:                  docID,
		SourcePath:          sourcePath,
		Content:             string(text),
		Chunks:              stamped,
		Metadata:            metadata,
		ProcessingTimestamp: now,
		Checksum:            checksum,
	}, nil
}

// Checksum returns the hex-encoded SHA-256 digest of s.
func Checksum(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// DocumentID derives a ProcessedDocument.ID according to policy.
//
// DocumentIDPathTimestamp reproduces the reference processor's
// behavior exactly: sha256(sourcePath + ":" + RFC3339Nano timestamp),
// truncated to 16 hex characters. Two ingestions of identical bytes at
// different times get different IDs.
//
// DocumentIDContentChecksum instead truncates the already-computed
// content checksum to 16 hex characters, so re-ingesting unchanged
// content is idempotent regardless of source path or timing.
func DocumentID(policy config.DocumentIDPolicy, sourcePath, checksum string, now time.Time) (string, error) {
	switch policy {
	case config.DocumentIDContentChecksum:
		return checksum[:16], nil
	case config.DocumentIDPathTimestamp, "":
		sum := sha256.Sum256([]byte(sourcePath + ":" + now.Format(time.RFC3339Nano)))
		return hex.EncodeToString(sum[:])[:16], nil
	default:
		return "", fmt.Errorf("assemble: unknown document id policy %q", policy)
	}
}

// ConsumerPayloadFor projects a ProcessedDocument's chunks into the
// flat vectors/ids/payloads shape a vector-store upsert call expects.
func ConsumerPayloadFor(doc docmodel.ProcessedDocument) docmodel.ConsumerPayload {
	payload := docmodel.ConsumerPayload{
		Vectors:  make([][]float32, len(doc.Chunks)),
		IDs:      make([]string, len(doc.Chunks)),
		Payloads: make([]docmodel.ChunkPayload, len(doc.Chunks)),
	}
	for i, c := range doc.Chunks {
		payload.Vectors[i] = c.Embedding
		payload.IDs[i] = c.ID
		payload.Payloads[i] = docmodel.ChunkPayload{
			DocumentID: c.DocumentID,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
			Metadata:   c.Metadata,
			StartChar:  c.StartChar,
			EndChar:    c.EndChar,
		}
	}
	return payload
}
