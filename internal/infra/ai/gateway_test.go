package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avamarket/support-relay-go/internal/domain"
	"github.com/avamarket/support-relay-go/internal/infra/ai"
	"github.com/avamarket/support-relay-go/internal/infra/observability"
	"github.com/avamarket/support-relay-go/internal/infra/resilience"

	"go.uber.org/zap"
)

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
}

// fakeProvider emulates the chat-completions endpoint and records requests.
type fakeProvider struct {
	t        *testing.T
	reply    string
	status   int
	requests []completionRequest
}

func (f *fakeProvider) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}

		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			f.t.Errorf("malformed request body: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.requests = append(f.requests, req)

		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": f.reply}},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5},
		})
	}
}

func newTestGateway(t *testing.T, provider *fakeProvider) *ai.Gateway {
	t.Helper()
	ts := httptest.NewServer(provider.handler())
	t.Cleanup(ts.Close)

	return ai.NewGateway(
		"test-key", ts.URL, "gpt-4o-mini",
		ts.Client(),
		resilience.NewCircuitBreaker("test"),
		resilience.NewBulkhead(4),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func TestClassify_MessageLayout(t *testing.T) {
	provider := &fakeProvider{t: t, reply: " bonusBalance \n"}
	gw := newTestGateway(t, provider)

	name, err := gw.Classify(context.Background(), &domain.ClassifyRequest{
		CatalogJSON: `[{"name":"bonusBalance"}]`,
		History: []domain.Turn{
			{Role: domain.RoleUser, Content: "привет"},
			{Role: domain.RoleAssistant, Content: "здравствуйте"},
		},
		Message: "где мой баланс?",
	})
	if err != nil {
		t.Fatal(err)
	}
	if name != "bonusBalance" {
		t.Errorf("expected trimmed answer, got %q", name)
	}

	req := provider.requests[0]
	if req.Model != "gpt-4o-mini" {
		t.Errorf("unexpected model: %q", req.Model)
	}
	if len(req.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(req.Messages))
	}

	if req.Messages[0].Role != "system" || !strings.Contains(req.Messages[0].Content, "Ты классификатор обращений") {
		t.Errorf("first message must carry the classifier instruction: %+v", req.Messages[0])
	}
	if !strings.Contains(req.Messages[0].Content, `[{"name":"bonusBalance"}]`) {
		t.Errorf("classifier instruction must include the catalog JSON: %q", req.Messages[0].Content)
	}
	if req.Messages[1].Role != "system" ||
		!strings.Contains(req.Messages[1].Content, "Пользователь: привет") ||
		!strings.Contains(req.Messages[1].Content, "Бот: здравствуйте") {
		t.Errorf("second message must carry the transcript: %+v", req.Messages[1])
	}
	if req.Messages[2].Role != "user" || req.Messages[2].Content != "где мой баланс?" {
		t.Errorf("third message must be the raw user message: %+v", req.Messages[2])
	}
}

func TestGenerateReply_MessageLayout(t *testing.T) {
	provider := &fakeProvider{t: t, reply: "Ваш баланс: 1250 бонусов."}
	gw := newTestGateway(t, provider)

	reply, err := gw.GenerateReply(context.Background(), &domain.CompletionRequest{
		SystemPrompt: "Данные пользователя: ...",
		LastScenario: "bonusBalance",
		History: []domain.Turn{
			{Role: domain.RoleUser, Content: "привет"},
			{Role: domain.RoleAssistant, Content: "здравствуйте"},
		},
		Message: "сколько у меня бонусов?",
	})
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Ваш баланс: 1250 бонусов." {
		t.Errorf("unexpected reply: %q", reply)
	}

	req := provider.requests[0]
	if len(req.Messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != "system" || req.Messages[0].Content != "Данные пользователя: ..." {
		t.Errorf("system prompt must come first: %+v", req.Messages[0])
	}
	if req.Messages[1].Content != "Последний сценарий: bonusBalance" {
		t.Errorf("unexpected last-scenario marker: %q", req.Messages[1].Content)
	}
	if req.Messages[2].Role != "user" || req.Messages[3].Role != "assistant" {
		t.Errorf("history turns must keep their roles: %+v / %+v", req.Messages[2], req.Messages[3])
	}
	if req.Messages[4].Role != "user" || req.Messages[4].Content != "сколько у меня бонусов?" {
		t.Errorf("the new user message must come last: %+v", req.Messages[4])
	}
}

func TestGenerateReply_NoLastScenario(t *testing.T) {
	provider := &fakeProvider{t: t, reply: "ок"}
	gw := newTestGateway(t, provider)

	if _, err := gw.GenerateReply(context.Background(), &domain.CompletionRequest{
		SystemPrompt: "x",
		Message:      "привет",
	}); err != nil {
		t.Fatal(err)
	}

	if got := provider.requests[0].Messages[1].Content; got != "Последний сценарий: none" {
		t.Errorf("expected the none marker, got %q", got)
	}
}

func TestGenerateReply_ProviderFailure(t *testing.T) {
	provider := &fakeProvider{t: t, status: http.StatusInternalServerError}
	gw := newTestGateway(t, provider)

	_, err := gw.GenerateReply(context.Background(), &domain.CompletionRequest{
		SystemPrompt: "x",
		Message:      "привет",
	})
	if err == nil {
		t.Fatal("expected an error")
	}

	var extErr *domain.ErrExternalService
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if extErr.Service != "completions" {
		t.Errorf("unexpected service label: %q", extErr.Service)
	}

	// Exactly one attempt, no retries.
	if len(provider.requests) != 1 {
		t.Errorf("expected exactly one provider call, got %d", len(provider.requests))
	}
}

func TestGenerateReply_CircuitOpens(t *testing.T) {
	provider := &fakeProvider{t: t, status: http.StatusInternalServerError}
	gw := newTestGateway(t, provider)

	req := &domain.CompletionRequest{SystemPrompt: "x", Message: "привет"}
	for i := 0; i < 6; i++ {
		gw.GenerateReply(context.Background(), req)
	}

	_, err := gw.GenerateReply(context.Background(), req)
	var circuitErr *domain.ErrCircuitOpen
	if !errors.As(err, &circuitErr) {
		t.Fatalf("expected ErrCircuitOpen after repeated failures, got %v", err)
	}
}

func TestClassify_CancelledContext(t *testing.T) {
	provider := &fakeProvider{t: t, reply: "default"}
	gw := newTestGateway(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := gw.Classify(ctx, &domain.ClassifyRequest{Message: "привет"}); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
	if len(provider.requests) != 0 {
		t.Errorf("cancelled call must not reach the provider, got %d requests", len(provider.requests))
	}
}
