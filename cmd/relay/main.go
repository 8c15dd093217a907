package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avamarket/support-relay-go/internal/catalog"
	"github.com/avamarket/support-relay-go/internal/composer"
	"github.com/avamarket/support-relay-go/internal/config"
	"github.com/avamarket/support-relay-go/internal/conversation"
	"github.com/avamarket/support-relay-go/internal/handler"
	"github.com/avamarket/support-relay-go/internal/infra/ai"
	"github.com/avamarket/support-relay-go/internal/infra/observability"
	"github.com/avamarket/support-relay-go/internal/infra/resilience"
	"github.com/avamarket/support-relay-go/internal/port"
	"github.com/avamarket/support-relay-go/internal/resolver"
	"github.com/avamarket/support-relay-go/internal/service"
	"github.com/avamarket/support-relay-go/internal/userdata"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("data_dir", cfg.DataDir),
		zap.String("model", cfg.OpenAIModel),
		zap.Bool("classifier_enabled", cfg.ClassifierEnabled),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("conversation_max_entries", cfg.ConversationMaxEntries),
		zap.Duration("conversation_ttl", cfg.ConversationTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "support-relay")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Static data ---
	cat, err := catalog.Load(cfg.DataDir)
	if err != nil {
		logger.Fatal("failed to load scenario catalog", zap.Error(err))
	}
	logger.Info("scenario catalog loaded",
		zap.Int("scenarios", len(cat.All())),
		zap.Int("products", len(cat.Products())),
	)

	loader := userdata.NewLoader(cfg.DataDir, logger)

	// --- Conversation store ---
	store := conversation.NewStore(cfg.ConversationMaxEntries, cfg.ConversationTTL, logger)

	// --- Completion gateway ---
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, provider calls will fail")
	}
	cb := resilience.NewCircuitBreaker("completions")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	gateway := ai.NewGateway(
		cfg.OpenAIAPIKey,
		cfg.OpenAIBaseURL,
		cfg.OpenAIModel,
		httpClient,
		cb,
		bulkhead,
		metrics,
		logger,
	)

	// --- Services ---
	var classifier port.Classifier
	if cfg.ClassifierEnabled {
		classifier = gateway
	} else {
		logger.Info("classifier disabled, resolution uses trigger matching only")
	}
	res := resolver.New(cat, classifier, cfg.ClassifyHistoryWindow, metrics, logger)
	comp := composer.New(loader, cat, logger)
	chatSvc := service.NewChat(res, comp, store, gateway,
		cfg.ClassifyHistoryWindow, cfg.ReplyHistoryWindow, metrics, logger)

	// --- Router ---
	publicDir := cfg.PublicDir
	if _, err := os.Stat(publicDir); err != nil {
		logger.Warn("public dir not found, static serving disabled", zap.String("dir", publicDir))
		publicDir = ""
	}
	router := handler.NewRouter(chatSvc, cat, metrics, publicDir, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
