package services

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/sariqm/brandmate/internal/models"
	"github.com/sariqm/brandmate/internal/pipeline"
	mongorepo "github.com/sariqm/brandmate/internal/repositories/mongo"
	"github.com/sariqm/brandmate/internal/utils"
)

const (
	maxMessageChars = 500
	historyWindow   = 20
)

// Pipeline is the reply workflow as the orchestrator sees it.
type Pipeline interface {
	Run(ctx context.Context, st pipeline.State) (pipeline.Result, error)
}

type MessageService interface {
	// Process persists the inbound user message, runs the reply pipeline
	// over recent history, persists the bot reply, and returns it. The
	// inbound message stays stored even when the pipeline fails.
	Process(ctx context.Context, userID int64, text string) (string, error)
	History(ctx context.Context, userID int64, limit int64) ([]models.Message, error)
}

type messageService struct {
	messages mongorepo.MessageRepository
	users    mongorepo.UserRepository
	engine   Pipeline
	log      *logrus.Logger
}

func NewMessageService(messages mongorepo.MessageRepository, users mongorepo.UserRepository, engine Pipeline, log *logrus.Logger) MessageService {
	return &messageService{messages: messages, users: users, engine: engine, log: log}
}

func (s *messageService) Process(ctx context.Context, userID int64, text string) (string, error) {
	const op = "MessageService.Process"

	if text == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "text is required", nil)
	}
	if utf8.RuneCountInString(text) > maxMessageChars {
		return "", utils.E(utils.CodeInvalidArgument, op, "text exceeds 500 characters", nil)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}

	if _, err := s.store(ctx, userID, models.SenderUser, text); err != nil {
		return "", err
	}

	rows, err := s.messages.ListByUser(ctx, userID, historyWindow)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to load history", err)
	}

	// timestamps are transport detail; the model never sees them
	history := make([]pipeline.HistoryMessage, 0, len(rows))
	for _, m := range rows {
		history = append(history, pipeline.HistoryMessage{
			ID:     m.ID,
			Text:   m.Text,
			Sender: string(m.Sender),
			UserID: m.UserID,
		})
	}

	res, err := s.engine.Run(ctx, pipeline.State{
		History:       history,
		LatestMessage: text,
		UserName:      user.UserName,
	})
	if err != nil {
		// the inbound message above is already durable; the caller may
		// retry Process from the stored history
		s.log.WithError(err).WithField("user_id", userID).Error("reply pipeline failed")
		var pe *pipeline.ParseError
		if errors.As(err, &pe) {
			return "", utils.E(utils.CodeBadModelOutput, op, "model returned malformed output", err)
		}
		return "", err
	}

	if _, err := s.store(ctx, userID, models.SenderBot, res.Reply); err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"category": res.Category,
		"clarity":  res.ClarityStatus,
	}).Info("message processed")

	return res.Reply, nil
}

func (s *messageService) History(ctx context.Context, userID int64, limit int64) ([]models.Message, error) {
	const op = "MessageService.History"

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}

	rows, err := s.messages.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list messages", err)
	}
	return rows, nil
}

func (s *messageService) store(ctx context.Context, userID int64, sender models.Sender, text string) (int64, error) {
	const op = "MessageService.store"

	if !sender.Valid() {
		return 0, utils.E(utils.CodeInvalidArgument, op, "invalid sender", nil)
	}

	id, err := s.messages.Store(ctx, &models.Message{
		Text:      text,
		Sender:    sender,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to store message", err)
	}
	return id, nil
}
