package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sariqm/brandmate/internal/providers/ai"
	"github.com/sariqm/brandmate/internal/utils"
)

const (
	textKey         = "text"
	upsertBatchSize = 100
	defaultTopK     = 3
)

// PineconeConfig carries the remote index coordinates.
type PineconeConfig struct {
	BaseURL string
	APIKey  string
	TopK    int
	Timeout time.Duration
}

// PineconeDB talks to a Pinecone index over its REST surface. Embeddings are
// produced by the injected Embedder, one call per text.
type PineconeDB struct {
	cfg      PineconeConfig
	embedder ai.Embedder
	httpc    *http.Client
	log      *logrus.Logger
}

func NewPineconeDB(cfg PineconeConfig, embedder ai.Embedder, log *logrus.Logger) *PineconeDB {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &PineconeDB{
		cfg:      cfg,
		embedder: embedder,
		httpc:    &http.Client{Timeout: cfg.Timeout},
		log:      log,
	}
}

type vectorRecord struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata"`
}

// post sends one JSON request and decodes the JSON response. A 401 is a
// distinct, fatal authorization failure. A body that is not valid JSON is
// returned as an empty document, not an error.
func (p *PineconeDB) post(ctx context.Context, path string, payload any) (map[string]any, error) {
	const op = "PineconeDB.post"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/"+path, bytes.NewReader(body))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to build request", err)
	}
	req.Header.Set("Api-Key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpc.Do(req)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "vector index unreachable", err)
	}
	defer resp.Body.Close()

	p.log.WithFields(logrus.Fields{"path": path, "status": resp.StatusCode}).Debug("pinecone request")

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, utils.E(utils.CodeUnauthorized, op, "vector index rejected the API key", nil)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to read response", err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		// non-JSON body: callers treat this as an empty result
		return map[string]any{}, nil
	}
	return out, nil
}

func (p *PineconeDB) Ingest(ctx context.Context, texts []string, tags []string, namespace string) ([]string, error) {
	const op = "PineconeDB.Ingest"

	records := make([]vectorRecord, 0, len(texts))
	for _, text := range texts {
		vec, err := p.embedder.Embed(ctx, text)
		if err != nil {
			return nil, utils.E(utils.CodeUnavailable, op, "embedding failed", err)
		}
		metadata := map[string]any{textKey: text}
		if len(tags) > 0 {
			metadata["tags"] = tags
		}
		records = append(records, vectorRecord{
			ID:       uuid.NewString(),
			Values:   vec,
			Metadata: metadata,
		})
	}

	upserted := make([]string, 0, len(records))
	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		res, err := p.post(ctx, "vectors/upsert", map[string]any{
			"vectors":   batch,
			"namespace": namespace,
		})
		if err != nil {
			if utils.IsCode(err, utils.CodeUnauthorized) {
				return nil, err
			}
			p.log.WithError(err).WithField("batch", start/upsertBatchSize+1).
				Error("upsert batch failed, skipping")
			continue
		}
		if msg, ok := res["message"]; ok {
			p.log.WithFields(logrus.Fields{
				"batch":   start/upsertBatchSize + 1,
				"message": msg,
			}).Error("vector index refused upsert batch, skipping")
			continue
		}

		for _, rec := range batch {
			upserted = append(upserted, rec.ID)
		}
	}
	return upserted, nil
}

func (p *PineconeDB) Retrieve(ctx context.Context, query, namespace string) ([]ScoredPassage, error) {
	const op = "PineconeDB.Retrieve"

	vec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "query embedding failed", err)
	}

	res, err := p.post(ctx, "query", map[string]any{
		"top_k":           p.cfg.TopK,
		"namespace":       namespace,
		"filter":          nil,
		"vector":          vec,
		"includeMetadata": true,
	})
	if err != nil {
		return nil, err
	}

	matches, _ := res["matches"].([]any)
	passages := make([]ScoredPassage, 0, len(matches))
	for _, m := range matches {
		match, ok := m.(map[string]any)
		if !ok {
			continue
		}
		metadata, _ := match["metadata"].(map[string]any)
		text, ok := metadata[textKey].(string)
		if !ok {
			p.log.WithField("match", match["id"]).
				Warnf("match has no %q metadata key, skipping", textKey)
			continue
		}
		delete(metadata, textKey)
		score, _ := match["score"].(float64)

		passages = append(passages, ScoredPassage{
			Passage: Passage{Text: text, Metadata: metadata},
			Score:   score,
		})
	}
	return passages, nil
}

func (p *PineconeDB) DeleteNamespace(ctx context.Context, namespace string) error {
	const op = "PineconeDB.DeleteNamespace"

	body, err := json.Marshal(map[string]any{
		"deleteAll": true,
		"namespace": namespace,
	})
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to encode payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/vectors/delete", bytes.NewReader(body))
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to build request", err)
	}
	req.Header.Set("Api-Key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpc.Do(req)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "vector index unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return utils.E(utils.CodeUnauthorized, op, "vector index rejected the API key", nil)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return utils.E(utils.CodeUnavailable, op,
			fmt.Sprintf("namespace deletion failed with status %d: %s", resp.StatusCode, raw), nil)
	}

	p.log.WithField("namespace", namespace).Info("namespace deleted")
	return nil
}
