package config

import "testing"

func TestNewDefaultMatchesDocumentedDefaults(t *testing.T) {
	cfg := NewDefault()
	if cfg.ChunkSize != 1024 || cfg.MinChunkSize != 256 || cfg.ChunkOverlap != 256 {
		t.Fatalf("unexpected chunk defaults: %+v", cfg)
	}
	if cfg.SimilarityThreshold != 0.7 {
		t.Fatalf("unexpected similarity threshold: %v", cfg.SimilarityThreshold)
	}
	if cfg.DocumentIDPolicy != DocumentIDPathTimestamp {
		t.Fatalf("unexpected default id policy: %v", cfg.DocumentIDPolicy)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "2048")
	t.Setenv("SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("USE_OCR", "true")
	t.Setenv("DOCUMENT_ID_POLICY", "content_checksum")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ChunkSize != 2048 {
		t.Fatalf("expected CHUNK_SIZE override, got %d", cfg.ChunkSize)
	}
	if cfg.SimilarityThreshold != 0.5 {
		t.Fatalf("expected SIMILARITY_THRESHOLD override, got %v", cfg.SimilarityThreshold)
	}
	if !cfg.UseOCR {
		t.Fatalf("expected USE_OCR override to be true")
	}
	if cfg.DocumentIDPolicy != DocumentIDContentChecksum {
		t.Fatalf("expected DOCUMENT_ID_POLICY override, got %v", cfg.DocumentIDPolicy)
	}
}

func TestLoadIgnoresMissingYAMLFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load should tolerate a missing yaml file: %v", err)
	}
	if cfg.ChunkSize != DefaultChunkSize {
		t.Fatalf("expected defaults when yaml file absent, got %+v", cfg)
	}
}
