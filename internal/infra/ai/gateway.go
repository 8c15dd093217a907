// Package ai wraps the external completion provider behind the Classifier and
// Completer ports. The provider speaks the OpenAI chat-completions API; the
// base URL is configurable because production routes through a proxy.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avamarket/support-relay-go/internal/domain"
	"github.com/avamarket/support-relay-go/internal/infra/observability"
	"github.com/avamarket/support-relay-go/internal/infra/resilience"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("infra/ai")

// classifierPrompt precedes the raw catalog JSON in the classification call.
// The model must answer with exactly one scenario name or the token "default".
const classifierPrompt = "Ты классификатор обращений. Тебе дан JSON со всеми сценариями. " +
	"Верни только поле \"name\" того сценария, который лучше всего подходит для нового сообщения. " +
	"Если ничего не подходит — верни \"default\".\n\n"

// Gateway is the completion gateway. Every call is attempted exactly once,
// no retries, behind a shared circuit breaker and a bulkhead capping
// concurrent provider calls.
type Gateway struct {
	client   *openai.Client
	model    string
	cb       *gobreaker.CircuitBreaker
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewGateway creates a gateway. An empty baseURL keeps the SDK default.
func NewGateway(
	apiKey, baseURL, model string,
	httpClient *http.Client,
	cb *gobreaker.CircuitBreaker,
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Gateway {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &Gateway{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		cb:       cb,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
	}
}

// Classify asks the provider to pick a scenario name for the message given a
// transcript of the recent history.
func (g *Gateway) Classify(ctx context.Context, req *domain.ClassifyRequest) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: classifierPrompt + req.CatalogJSON},
		{Role: openai.ChatMessageRoleSystem, Content: "История диалога:\n" + transcript(req.History)},
		{Role: openai.ChatMessageRoleUser, Content: req.Message},
	}
	return g.complete(ctx, "classify", messages)
}

// GenerateReply produces the assistant reply. Message order is fixed: system
// prompt, last-scenario marker, bounded history, new user message.
func (g *Gateway) GenerateReply(ctx context.Context, req *domain.CompletionRequest) (string, error) {
	lastScenario := req.LastScenario
	if lastScenario == "" {
		lastScenario = "none"
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+3)
	messages = append(messages,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: "Последний сценарий: " + lastScenario},
	)
	for _, turn := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Message})

	return g.complete(ctx, "generate", messages)
}

// transcript renders history turns the way the original prompt expects them.
func transcript(history []domain.Turn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		who := "Пользователь"
		if turn.Role == domain.RoleAssistant {
			who = "Бот"
		}
		lines = append(lines, who+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

func (g *Gateway) complete(ctx context.Context, operation string, messages []openai.ChatCompletionMessage) (string, error) {
	ctx, span := tracer.Start(ctx, "Gateway."+operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", g.model),
		attribute.Int("llm.messages", len(messages)),
	)

	if err := g.bulkhead.Acquire(ctx); err != nil {
		return "", err
	}
	defer g.bulkhead.Release()

	start := time.Now()
	defer func() {
		g.metrics.RecordRequestDuration(operation, time.Since(start))
	}()

	result, err := g.cb.Execute(func() (any, error) {
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    g.model,
			Messages: messages,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("provider returned no choices")
		}
		g.metrics.RecordTokens(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	})
	if err != nil {
		g.logger.Warn("provider call failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &domain.ErrCircuitOpen{Service: "completions"}
		}
		return "", &domain.ErrExternalService{Service: "completions", Err: err}
	}
	return result.(string), nil
}
