package conversation_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/avamarket/support-relay-go/internal/conversation"
	"github.com/avamarket/support-relay-go/internal/domain"

	"go.uber.org/zap"
)

func newTestStore() *conversation.Store {
	return conversation.NewStore(100, time.Hour, zap.NewNop())
}

func TestGetOrCreate_SameStatePerUser(t *testing.T) {
	store := newTestStore()

	a := store.GetOrCreate("u1")
	b := store.GetOrCreate("u1")
	if a != b {
		t.Error("expected the same state instance for one user")
	}

	c := store.GetOrCreate("u2")
	if a == c {
		t.Error("expected distinct states for distinct users")
	}
	if a.SessionID == c.SessionID {
		t.Error("expected distinct session ids")
	}
}

func TestRecentHistory_BoundAndOrder(t *testing.T) {
	store := newTestStore()
	state := store.GetOrCreate("u1")

	for i := 0; i < 5; i++ {
		state.AppendExchange(
			fmt.Sprintf("вопрос %d", i),
			fmt.Sprintf("ответ %d", i),
			"default",
		)
	}

	recent := state.RecentHistory(4)
	if len(recent) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(recent))
	}

	// Last two exchanges, in append order.
	want := []domain.Turn{
		{Role: domain.RoleUser, Content: "вопрос 3"},
		{Role: domain.RoleAssistant, Content: "ответ 3"},
		{Role: domain.RoleUser, Content: "вопрос 4"},
		{Role: domain.RoleAssistant, Content: "ответ 4"},
	}
	for i, turn := range want {
		if recent[i] != turn {
			t.Errorf("turn %d: got %+v, want %+v", i, recent[i], turn)
		}
	}

	// Asking for more than exists returns everything.
	if got := len(state.RecentHistory(100)); got != 10 {
		t.Errorf("expected 10 turns, got %d", got)
	}
}

func TestRecentHistory_ReturnsCopy(t *testing.T) {
	store := newTestStore()
	state := store.GetOrCreate("u1")
	state.AppendExchange("привет", "здравствуйте", "default")

	recent := state.RecentHistory(2)
	recent[0].Content = "mutated"

	if state.RecentHistory(2)[0].Content != "привет" {
		t.Error("RecentHistory must not expose internal state")
	}
}

func TestLastScenario(t *testing.T) {
	store := newTestStore()
	state := store.GetOrCreate("u1")

	if got := state.LastScenario(); got != "" {
		t.Errorf("expected empty last scenario, got %q", got)
	}

	state.AppendExchange("где заказ", "в пути", "orderTracking")
	if got := state.LastScenario(); got != "orderTracking" {
		t.Errorf("expected orderTracking, got %q", got)
	}
}

func TestLRUEviction(t *testing.T) {
	store := conversation.NewStore(2, time.Hour, zap.NewNop())

	first := store.GetOrCreate("u1")
	store.GetOrCreate("u2")
	store.GetOrCreate("u1") // refresh u1, u2 becomes LRU
	store.GetOrCreate("u3") // evicts u2

	if store.Len() != 2 {
		t.Fatalf("expected 2 tracked users, got %d", store.Len())
	}
	if got := store.GetOrCreate("u1"); got != first {
		t.Error("expected refreshed u1 to survive eviction")
	}

	// u2 was evicted; contacting it again creates a fresh state.
	second := store.GetOrCreate("u2")
	if second.LastScenario() != "" || len(second.RecentHistory(10)) != 0 {
		t.Error("expected a fresh state after eviction")
	}
}

func TestAppendExchange_ConcurrentSameUser(t *testing.T) {
	store := newTestStore()
	state := store.GetOrCreate("u1")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state.AppendExchange(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), "default")
		}(i)
	}
	wg.Wait()

	history := state.RecentHistory(200)
	if len(history) != 100 {
		t.Fatalf("expected 100 turns, got %d", len(history))
	}

	// Each exchange must stay contiguous: user turn immediately followed by
	// the matching assistant turn.
	for i := 0; i < len(history); i += 2 {
		if history[i].Role != domain.RoleUser || history[i+1].Role != domain.RoleAssistant {
			t.Fatalf("exchange %d interleaved: %+v / %+v", i/2, history[i], history[i+1])
		}
		if "a"+history[i].Content[1:] != history[i+1].Content {
			t.Fatalf("exchange %d mismatched: %q / %q", i/2, history[i].Content, history[i+1].Content)
		}
	}
}
