// Package service orchestrates the chat flow: resolve the scenario, compose
// the system prompt, generate the reply, record the exchange.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avamarket/support-relay-go/internal/composer"
	"github.com/avamarket/support-relay-go/internal/conversation"
	"github.com/avamarket/support-relay-go/internal/domain"
	"github.com/avamarket/support-relay-go/internal/infra/observability"
	"github.com/avamarket/support-relay-go/internal/port"
	"github.com/avamarket/support-relay-go/internal/resolver"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/chat")

// Chat handles one user message end to end.
type Chat struct {
	resolver       *resolver.Resolver
	composer       *composer.Composer
	store          *conversation.Store
	completer      port.Completer
	classifyWindow int
	replyWindow    int
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewChat creates the chat service with all dependencies injected.
// classifyWindow bounds the history handed to the resolver, replyWindow the
// history sent with the generation call.
func NewChat(
	res *resolver.Resolver,
	comp *composer.Composer,
	store *conversation.Store,
	completer port.Completer,
	classifyWindow, replyWindow int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Chat {
	return &Chat{
		resolver:       res,
		composer:       comp,
		store:          store,
		completer:      completer,
		classifyWindow: classifyWindow,
		replyWindow:    replyWindow,
		metrics:        metrics,
		logger:         logger,
	}
}

// HandleMessage runs the full exchange for one incoming message.
// Classification failures never surface (the resolver falls back internally);
// a generation failure aborts the exchange and nothing is appended to history.
func (s *Chat) HandleMessage(ctx context.Context, userID, message string) (*domain.ChatReply, error) {
	// Bail out early if the caller already cancelled.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "Chat.HandleMessage")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("chat", time.Since(start))
	}()

	state := s.store.GetOrCreate(userID)

	// --- Step 1: resolve the scenario (never fails) ---
	scenario := s.resolver.Resolve(ctx, message, state.RecentHistory(s.classifyWindow))
	span.SetAttributes(attribute.String("scenario.name", scenario.Name))

	s.logger.Info("message received",
		zap.String("user_id", userID),
		zap.String("session_id", state.SessionID),
		zap.String("scenario", scenario.Name),
		zap.Int("message_length", len(message)),
	)

	// --- Step 2: compose the system prompt ---
	systemPrompt, err := s.composer.Compose(ctx, scenario, userID)
	if err != nil {
		s.metrics.IncrRequest("error")
		return nil, fmt.Errorf("compose prompt: %w", err)
	}

	// --- Step 3: generate the reply ---
	reply, err := s.completer.GenerateReply(ctx, &domain.CompletionRequest{
		SystemPrompt: systemPrompt,
		LastScenario: state.LastScenario(),
		History:      state.RecentHistory(s.replyWindow),
		Message:      message,
	})
	if err != nil {
		s.logger.Error("reply generation failed",
			zap.String("user_id", userID),
			zap.String("scenario", scenario.Name),
			zap.Error(err),
		)
		s.metrics.IncrExternalError("completions")
		s.metrics.IncrRequest("error")
		return nil, err
	}

	// --- Step 4: record the exchange atomically ---
	state.AppendExchange(message, reply, scenario.Name)
	s.metrics.IncrRequest("success")

	followUps := scenario.FollowUps
	if followUps == nil {
		followUps = []string{}
	}
	return &domain.ChatReply{Reply: reply, FollowUps: followUps}, nil
}
