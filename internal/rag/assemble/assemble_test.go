package assemble

import (
	"testing"
	"time"

	"ragcore/internal/config"
	"ragcore/internal/rag/docmodel"
)

func TestDocumentID_ContentChecksumPolicyIsIdempotent(t *testing.T) {
	checksum := Checksum("identical content")
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	id1, err := DocumentID(config.DocumentIDContentChecksum, "/a/one.pdf", checksum, t1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := DocumentID(config.DocumentIDContentChecksum, "/b/two.pdf", checksum, t2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected content_checksum policy to be path/time independent, got %q vs %q", id1, id2)
	}
	if len(id1) != 16 {
		t.Fatalf("expected a 16-char id, got %q", id1)
	}
}

func TestDocumentID_PathTimestampPolicyVariesByTime(t *testing.T) {
	checksum := Checksum("identical content")
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	id1, err := DocumentID(config.DocumentIDPathTimestamp, "/a/one.pdf", checksum, t1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := DocumentID(config.DocumentIDPathTimestamp, "/a/one.pdf", checksum, t2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 == id2 {
		t.Fatal("expected path_timestamp policy to differ across ingestion times")
	}
}

func TestDocumentID_UnknownPolicyErrors(t *testing.T) {
	_, err := DocumentID(config.DocumentIDPolicy("bogus"), "/a.pdf", "abc", time.Now())
	if err == nil {
		t.Fatal("expected an error for an unknown policy")
	}
}

func TestAssemble_RestampsPlaceholderChunks(t *testing.T) {
	cfg := config.NewDefault()
	cfg.DocumentIDPolicy = config.DocumentIDContentChecksum
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	chunks := []docmodel.Chunk{
		{ID: "_chunk_0", DocumentID: "", Content: "first", ChunkIndex: 0, Metadata: map[string]any{}},
		{ID: "_chunk_1", DocumentID: "", Content: "second", ChunkIndex: 1, Metadata: map[string]any{}},
	}

	doc, err := Assemble("/docs/report.pdf", docmodel.NormalizedText("first second"), docmodel.DocumentMetadata{FileName: "report.pdf"}, chunks, cfg, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("expected a non-empty document id")
	}
	for i, c := range doc.Chunks {
		if c.DocumentID != doc.ID {
			t.Fatalf("chunk %d not restamped with document id: got %q want %q", i, c.DocumentID, doc.ID)
		}
		want := doc.ID + "_chunk_" + itoa(i)
		if c.ID != want {
			t.Fatalf("chunk %d id = %q, want %q", i, c.ID, want)
		}
	}
	if doc.Checksum == "" {
		t.Fatal("expected a non-empty checksum")
	}
	if !doc.ProcessingTimestamp.Equal(now) {
		t.Fatalf("expected processing timestamp %v, got %v", now, doc.ProcessingTimestamp)
	}
}

func TestAssemble_LeavesAlreadyStampedChunksAlone(t *testing.T) {
	cfg := config.NewDefault()
	now := time.Now()
	chunks := []docmodel.Chunk{
		{ID: "preset_chunk_0", DocumentID: "preset", Content: "x", ChunkIndex: 0, Metadata: map[string]any{}},
	}
	doc, err := Assemble("/docs/a.pdf", docmodel.NormalizedText("x"), docmodel.DocumentMetadata{}, chunks, cfg, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Chunks[0].DocumentID != "preset" || doc.Chunks[0].ID != "preset_chunk_0" {
		t.Fatalf("expected already-stamped chunk to be left alone, got %+v", doc.Chunks[0])
	}
}

func TestConsumerPayloadFor_ProjectsChunksInOrder(t *testing.T) {
	doc := docmodel.ProcessedDocument{
		ID: "doc1",
		Chunks: []docmodel.Chunk{
			{ID: "doc1_chunk_0", DocumentID: "doc1", Content: "a", Embedding: []float32{1, 2}, ChunkIndex: 0, StartChar: 0, EndChar: 1},
			{ID: "doc1_chunk_1", DocumentID: "doc1", Content: "b", Embedding: []float32{3, 4}, ChunkIndex: 1, StartChar: 1, EndChar: 2},
		},
	}
	payload := ConsumerPayloadFor(doc)
	if len(payload.Vectors) != 2 || len(payload.IDs) != 2 || len(payload.Payloads) != 2 {
		t.Fatalf("expected 2 entries in every field, got vectors=%d ids=%d payloads=%d", len(payload.Vectors), len(payload.IDs), len(payload.Payloads))
	}
	if payload.IDs[0] != "doc1_chunk_0" || payload.Payloads[1].ChunkIndex != 1 {
		t.Fatalf("unexpected payload contents: %+v", payload)
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := "0123456789"
	var b []byte
	for i > 0 {
		b = append([]byte{digits[i%10]}, b...)
		i /= 10
	}
	return string(b)
}
