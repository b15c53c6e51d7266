// Package advisor provides the conversational crop advisory backed by a
// generative model, grounded on static local agronomy references and the
// caller's farm profile.
package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Fixed degradation messages. The chat endpoint always answers 200;
// failure states are carried in the reply text.
const (
	// OfflineMessage is returned when no model credential is configured.
	OfflineMessage = "AI Advisor is offline. Please check API key configuration."

	// ExitMessage acknowledges an exit/quit command.
	ExitMessage = "Exiting chat..."

	// ApologyMessage is returned on any model or network failure.
	ApologyMessage = "Sorry, I ran into a network or API error while processing your request."
)

// DefaultSessionID keys transcripts of callers that do not name a session.
const DefaultSessionID = "default"

// Generator is the generative model boundary. A nil Generator means the
// advisor is offline.
type Generator interface {
	// Generate answers the prompt given the prior conversation and the
	// grounding documents.
	Generate(ctx context.Context, history []Message, docs []Document, prompt string) (string, error)

	// Name identifies the model backend for logging.
	Name() string
}

// ServiceConfig holds configuration for the advisory service.
type ServiceConfig struct {
	// Generator is the model backend; nil puts the advisor in the
	// offline state (never calls out, fixed reply).
	Generator Generator

	// Repository stores per-session transcripts.
	Repository Repository

	// Docs are the static reference documents sent with every prompt.
	Docs []Document

	// Logger for service operations.
	Logger zerolog.Logger

	// Now supplies timestamps for recorded turns (defaults to time.Now).
	Now func() time.Time
}

// Service runs advisory conversations.
type Service struct {
	generator Generator
	repo      Repository
	docs      []Document
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService creates a new advisory service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	repo := cfg.Repository
	if repo == nil {
		repo = NewInMemoryRepository()
	}

	return &Service{
		generator: cfg.Generator,
		repo:      repo,
		docs:      cfg.Docs,
		logger:    cfg.Logger,
		now:       now,
	}
}

// Chat answers one user message in the context of the session's prior
// turns and the caller's farm profile. It never fails: degraded states
// answer with their fixed message.
func (s *Service) Chat(ctx context.Context, sessionID, message string, profile map[string]any) string {
	if s.generator == nil {
		return OfflineMessage
	}

	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	switch strings.ToLower(message) {
	case "exit", "quit":
		return ExitMessage
	}

	prompt := message
	if len(profile) > 0 {
		prompt = fmt.Sprintf("%s\n\nUser Field Data:\n%s", message, renderProfile(profile))
	}

	history, err := s.repo.History(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("load transcript failed")
		history = nil
	}

	reply, err := s.generator.Generate(ctx, history, s.docs, prompt)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Str("model", s.generator.Name()).
			Msg("advisory generation failed")
		return ApologyMessage
	}

	now := s.now()
	err = s.repo.Append(ctx, sessionID,
		Message{Role: RoleUser, Text: prompt, CreatedAt: now},
		Message{Role: RoleModel, Text: reply, CreatedAt: now},
	)
	if err != nil {
		// The farmer already has the answer; losing one transcript turn
		// is not worth failing the exchange.
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("record transcript failed")
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("history_turns", len(history)).
		Int("reference_docs", len(s.docs)).
		Msg("advisory reply sent")

	return reply
}

// renderProfile flattens the farm profile map to readable key/value lines
// in stable order.
func renderProfile(profile map[string]any) string {
	keys := make([]string, 0, len(profile))
	for key := range profile {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s: %v\n", key, profile[key])
	}
	return strings.TrimRight(b.String(), "\n")
}
