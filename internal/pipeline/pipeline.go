// Package pipeline drives one user message through the fixed five-stage
// reply workflow: classify, validate context, generate, format, grade.
// Stages run strictly in order; the first failure aborts the run and the
// failing stage's output is discarded.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sariqm/brandmate/internal/providers/ai"
	"github.com/sariqm/brandmate/internal/rag"
)

// scoreThreshold gates which retrieved passages make it into the state.
const scoreThreshold = 0.4

type stageFunc func(ctx context.Context, s State) (State, error)

type stage struct {
	name Stage
	run  stageFunc
}

// Engine executes the pipeline. It holds no per-run state; a single Engine
// serves concurrent runs.
type Engine struct {
	model     ai.Completer
	vectors   rag.VectorDB
	namespace string
	log       *logrus.Logger
	stages    []stage
}

func NewEngine(model ai.Completer, vectors rag.VectorDB, namespace string, log *logrus.Logger) *Engine {
	e := &Engine{
		model:     model,
		vectors:   vectors,
		namespace: namespace,
		log:       log,
	}
	e.stages = []stage{
		{StageClassify, e.classify},
		{StageValidateContext, e.validateContext},
		{StageGenerateReply, e.generateReply},
		{StageFormatReply, e.formatReply},
		{StageGradeConsistency, e.gradeConsistency},
	}
	return e
}

// Run threads st through every stage. Stages are individually asynchronous
// against remote services but never overlap; there is exactly one path and
// no retries.
func (e *Engine) Run(ctx context.Context, st State) (Result, error) {
	cur := st
	for _, sg := range e.stages {
		e.log.WithField("stage", sg.name).Debug("pipeline stage")

		next, err := sg.run(ctx, cur)
		if err != nil {
			e.log.WithError(err).WithField("stage", sg.name).Error("pipeline aborted")
			return Result{}, err
		}
		cur = next
	}

	// The formatted variant is computed above but the surfaced reply is the
	// draft; see Result.
	return Result{
		Category:      cur.Category,
		Reply:         cur.DraftReply,
		ClarityStatus: cur.ClarityStatus,
	}, nil
}

func (e *Engine) classify(ctx context.Context, s State) (State, error) {
	out, err := e.model.Complete(ctx, classifierPrompt(s.LatestMessage, renderJSON(s.History)))
	if err != nil {
		return s, err
	}

	var parsed struct {
		Category string `json:"category"`
		Query    string `json:"conversation_history_query"`
	}
	if err := decodeModelJSON(StageClassify, out, &parsed); err != nil {
		return s, err
	}
	if parsed.Category == "" || parsed.Query == "" {
		return s, &ParseError{Stage: StageClassify, Raw: out,
			Err: fmt.Errorf("missing category or conversation_history_query")}
	}

	s.Category = parsed.Category
	s.DerivedQuery = parsed.Query
	return s, nil
}

func (e *Engine) validateContext(ctx context.Context, s State) (State, error) {
	scored, err := e.vectors.Retrieve(ctx, s.DerivedQuery, e.namespace)
	if err != nil {
		return s, err
	}

	kept := make([]string, 0, len(scored))
	for _, p := range scored {
		if p.Score >= scoreThreshold {
			kept = append(kept, p.Text)
		}
	}
	contextText := NoContextSentinel
	if len(kept) > 0 {
		contextText = strings.Join(kept, "\n\n")
	}

	// The clarity judgment sees the complete scored retrieval, not the
	// filtered text kept in state.
	out, err := e.model.Complete(ctx, contextValidationPrompt(
		s.DerivedQuery, renderJSON(s.History), renderJSON(scored)))
	if err != nil {
		return s, err
	}

	var parsed struct {
		IsContextMiss string `json:"is_context_miss"`
	}
	if err := decodeModelJSON(StageValidateContext, out, &parsed); err != nil {
		return s, err
	}
	clarity := strings.ToLower(strings.TrimSpace(parsed.IsContextMiss))
	if clarity != "yes" && clarity != "no" {
		return s, &ParseError{Stage: StageValidateContext, Raw: out,
			Err: fmt.Errorf("is_context_miss must be yes or no, got %q", parsed.IsContextMiss)}
	}

	s.RetrievedContext = contextText
	s.ClarityStatus = clarity
	return s, nil
}

func (e *Engine) generateReply(ctx context.Context, s State) (State, error) {
	out, err := e.model.Complete(ctx, replyPrompt(
		s.RetrievedContext, s.DerivedQuery, renderJSON(s.History)))
	if err != nil {
		return s, err
	}

	// free text, accepted verbatim
	s.DraftReply = strings.TrimSpace(out)
	return s, nil
}

func (e *Engine) formatReply(ctx context.Context, s State) (State, error) {
	out, err := e.model.Complete(ctx, formatPrompt(s.UserName, s.DraftReply))
	if err != nil {
		return s, err
	}

	s.FormattedReply = strings.TrimSpace(out)
	return s, nil
}

func (e *Engine) gradeConsistency(ctx context.Context, s State) (State, error) {
	out, err := e.model.Complete(ctx, consistencyPrompt(
		s.DraftReply, s.RetrievedContext, renderJSON(s.History)))
	if err != nil {
		return s, err
	}

	var parsed struct {
		FactualConsistency string `json:"factual_consistency"`
		Reason             string `json:"reason"`
	}
	if err := decodeModelJSON(StageGradeConsistency, out, &parsed); err != nil {
		return s, err
	}

	switch strings.ToLower(strings.TrimSpace(parsed.FactualConsistency)) {
	case "yes":
		s.Consistency = Consistency{Status: true}
	case "no":
		reason := parsed.Reason
		if reason == "" {
			reason = "No reason provided."
		}
		// an inconsistent-but-well-formed verdict completes the run
		s.Consistency = Consistency{Status: false, Reason: reason}
		e.log.WithField("reason", reason).Warn("reply graded factually inconsistent")
	default:
		return s, &ParseError{Stage: StageGradeConsistency, Raw: out,
			Err: fmt.Errorf("factual_consistency must be yes or no, got %q", parsed.FactualConsistency)}
	}
	return s, nil
}
