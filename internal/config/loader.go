package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads a .env file if present (via godotenv.Overload, so a local
// .env always wins over a stale shell environment), applies an optional
// YAML file on top of the defaults, and finally re-applies environment
// variables so CHUNK_SIZE-style overrides always take precedence over
// both.
func Load(yamlPath string) (Config, error) {
	_ = godotenv.Overload()

	cfg := NewDefault()

	if yamlPath != "" {
		if b, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, err
			}
		} else if !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := firstNonEmpty(os.Getenv("CHUNK_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ChunkSize = n
		}
	}
	if v := firstNonEmpty(os.Getenv("CHUNK_OVERLAP")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ChunkOverlap = n
		}
	}
	if v := firstNonEmpty(os.Getenv("MIN_CHUNK_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MinChunkSize = n
		}
	}
	if v := firstNonEmpty(os.Getenv("SIMILARITY_THRESHOLD")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SimilarityThreshold = f
		}
	}
	if v := firstNonEmpty(os.Getenv("EXTRACT_TABLES")); v != "" {
		cfg.ExtractTables = parseBool(v, cfg.ExtractTables)
	}
	if v := firstNonEmpty(os.Getenv("EXTRACT_IMAGES")); v != "" {
		cfg.ExtractImages = parseBool(v, cfg.ExtractImages)
	}
	if v := firstNonEmpty(os.Getenv("EXTRACT_HEADERS_FOOTERS")); v != "" {
		cfg.ExtractHeadersFooters = parseBool(v, cfg.ExtractHeadersFooters)
	}
	if v := firstNonEmpty(os.Getenv("PRESERVE_FORMATTING")); v != "" {
		cfg.PreserveFormatting = parseBool(v, cfg.PreserveFormatting)
	}
	if v := firstNonEmpty(os.Getenv("USE_OCR")); v != "" {
		cfg.UseOCR = parseBool(v, cfg.UseOCR)
	}
	if v := firstNonEmpty(os.Getenv("EMBEDDER_MODEL_NAME")); v != "" {
		cfg.EmbedderModelName = v
	}
	if v := firstNonEmpty(os.Getenv("DOCUMENT_ID_POLICY")); v != "" {
		cfg.DocumentIDPolicy = DocumentIDPolicy(v)
	}

	if v := firstNonEmpty(os.Getenv("EMBED_BASE_URL")); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := firstNonEmpty(os.Getenv("EMBED_PATH")); v != "" {
		cfg.Embedding.Path = v
	}
	if v := firstNonEmpty(os.Getenv("EMBED_MODEL")); v != "" {
		cfg.Embedding.Model = v
	}
	if v := firstNonEmpty(os.Getenv("EMBED_API_KEY")); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := firstNonEmpty(os.Getenv("EMBED_API_HEADER")); v != "" {
		cfg.Embedding.APIHeader = v
	}
	if v := firstNonEmpty(os.Getenv("EMBED_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Timeout = n
		}
	}
	if v := firstNonEmpty(os.Getenv("EMBED_DIMENSION")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimension = n
		}
	}
	if v := firstNonEmpty(os.Getenv("EMBED_MAX_SENTENCES_PER_CALL")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.MaxSentencesPerCall = n
		}
	}
}

func firstNonEmpty(v string) string { return strings.TrimSpace(v) }

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}
