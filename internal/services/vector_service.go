package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sariqm/brandmate/internal/rag"
	"github.com/sariqm/brandmate/internal/utils"
)

// VectorService is the brand-corpus facade over the retrieval index. Raw
// document parsing happens upstream; this service takes already-extracted
// text chunks.
type VectorService interface {
	// IngestTexts embeds and indexes the chunks, returning the ids that made
	// it in. Tags label every chunk of the call. Partial batch failures
	// shrink the id list, they do not fail the call.
	IngestTexts(ctx context.Context, texts []string, tags []string) ([]string, error)
	Retrieve(ctx context.Context, query string) ([]rag.ScoredPassage, error)
	// Reset irreversibly drops the whole brand namespace.
	Reset(ctx context.Context) error
}

type vectorService struct {
	index     rag.VectorDB
	namespace string
	log       *logrus.Logger
}

func NewVectorService(index rag.VectorDB, namespace string, log *logrus.Logger) VectorService {
	return &vectorService{index: index, namespace: namespace, log: log}
}

func (s *vectorService) IngestTexts(ctx context.Context, texts []string, tags []string) ([]string, error) {
	const op = "VectorService.IngestTexts"

	chunks := make([]string, 0, len(texts))
	for _, t := range texts {
		if t != "" {
			chunks = append(chunks, t)
		}
	}
	if len(chunks) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "no texts to ingest", nil)
	}

	ids, err := s.index.Ingest(ctx, chunks, tags, s.namespace)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"namespace": s.namespace,
		"requested": len(chunks),
		"ingested":  len(ids),
	}).Info("corpus ingested")
	return ids, nil
}

func (s *vectorService) Retrieve(ctx context.Context, query string) ([]rag.ScoredPassage, error) {
	const op = "VectorService.Retrieve"

	if query == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "query is required", nil)
	}
	return s.index.Retrieve(ctx, query, s.namespace)
}

func (s *vectorService) Reset(ctx context.Context) error {
	return s.index.DeleteNamespace(ctx, s.namespace)
}
