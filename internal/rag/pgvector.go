package rag

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sariqm/brandmate/internal/providers/ai"
	"github.com/sariqm/brandmate/internal/utils"
)

// BrandPassage is one embedded chunk of the brand corpus in Postgres.
type BrandPassage struct {
	ID        string          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Namespace string          `gorm:"column:namespace;type:text;index" json:"namespace"`
	Content   string          `gorm:"column:content;type:text" json:"content"`
	Tags      pq.StringArray  `gorm:"column:tags;type:text[]" json:"tags"`
	Metadata  datatypes.JSON  `gorm:"column:metadata;type:jsonb" json:"metadata"`
	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(1536)" json:"-"`
	CreatedAt time.Time       `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (BrandPassage) TableName() string { return "brand_passages" }

// AutoMigrate installs the vector extension and the brand_passages table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return err
	}
	return db.AutoMigrate(&BrandPassage{})
}

// PgVectorDB is the self-hosted VectorDB: same contract as the remote index,
// backed by Postgres with cosine similarity.
type PgVectorDB struct {
	db       *gorm.DB
	embedder ai.Embedder
	topK     int
	log      *logrus.Logger
}

func NewPgVectorDB(db *gorm.DB, embedder ai.Embedder, topK int, log *logrus.Logger) *PgVectorDB {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &PgVectorDB{db: db, embedder: embedder, topK: topK, log: log}
}

func (p *PgVectorDB) Ingest(ctx context.Context, texts []string, tags []string, namespace string) ([]string, error) {
	const op = "PgVectorDB.Ingest"

	rows := make([]BrandPassage, 0, len(texts))
	for _, text := range texts {
		vec, err := p.embedder.Embed(ctx, text)
		if err != nil {
			return nil, utils.E(utils.CodeUnavailable, op, "embedding failed", err)
		}
		rows = append(rows, BrandPassage{
			ID:        uuid.NewString(),
			Namespace: namespace,
			Content:   text,
			Tags:      pq.StringArray(tags),
			Embedding: pgvector.NewVector(vec),
			CreatedAt: time.Now().UTC(),
		})
	}

	inserted := make([]string, 0, len(rows))
	for start := 0; start < len(rows); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		if err := p.db.WithContext(ctx).Create(&batch).Error; err != nil {
			p.log.WithError(err).WithField("batch", start/upsertBatchSize+1).
				Error("passage batch insert failed, skipping")
			continue
		}
		for _, row := range batch {
			inserted = append(inserted, row.ID)
		}
	}
	return inserted, nil
}

func (p *PgVectorDB) Retrieve(ctx context.Context, query, namespace string) ([]ScoredPassage, error) {
	const op = "PgVectorDB.Retrieve"

	vec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "query embedding failed", err)
	}
	qv := pgvector.NewVector(vec)

	var hits []struct {
		Content  string
		Tags     pq.StringArray
		Metadata datatypes.JSON
		Score    float64
	}
	err = p.db.WithContext(ctx).Raw(`
		SELECT content, tags, metadata, 1 - (embedding <=> ?) AS score
		FROM brand_passages
		WHERE namespace = ?
		ORDER BY embedding <=> ?
		LIMIT ?`,
		qv, namespace, qv, p.topK,
	).Scan(&hits).Error
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "similarity query failed", err)
	}

	passages := make([]ScoredPassage, 0, len(hits))
	for _, h := range hits {
		var md map[string]any
		if len(h.Metadata) > 0 {
			_ = json.Unmarshal(h.Metadata, &md)
		}
		if len(h.Tags) > 0 {
			if md == nil {
				md = map[string]any{}
			}
			md["tags"] = []string(h.Tags)
		}
		passages = append(passages, ScoredPassage{
			Passage: Passage{Text: h.Content, Metadata: md},
			Score:   h.Score,
		})
	}
	return passages, nil
}

func (p *PgVectorDB) DeleteNamespace(ctx context.Context, namespace string) error {
	const op = "PgVectorDB.DeleteNamespace"

	res := p.db.WithContext(ctx).
		Where("namespace = ?", namespace).
		Delete(&BrandPassage{})
	if res.Error != nil {
		return utils.E(utils.CodeUnavailable, op, "namespace deletion failed", res.Error)
	}

	p.log.WithFields(logrus.Fields{
		"namespace": namespace,
		"deleted":   res.RowsAffected,
	}).Info("namespace deleted")
	return nil
}
