// Package resolver maps an incoming message to a catalog scenario.
//
// Precedence is fixed: the external classifier is asked first (when
// configured), a catalog-order trigger match is the fallback, and the
// synthesized default scenario is the terminal case. Resolution never fails:
// classifier errors are logged and absorbed.
package resolver

import (
	"context"
	"strings"

	"github.com/avamarket/support-relay-go/internal/catalog"
	"github.com/avamarket/support-relay-go/internal/domain"
	"github.com/avamarket/support-relay-go/internal/infra/observability"
	"github.com/avamarket/support-relay-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("resolver")

// Resolver picks the scenario for each incoming message.
type Resolver struct {
	catalog       *catalog.Catalog
	classifier    port.Classifier
	historyWindow int
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// New creates a resolver. A nil classifier disables classification entirely,
// leaving trigger matching as the first step.
func New(cat *catalog.Catalog, classifier port.Classifier, historyWindow int, metrics *observability.Metrics, logger *zap.Logger) *Resolver {
	return &Resolver{
		catalog:       cat,
		classifier:    classifier,
		historyWindow: historyWindow,
		metrics:       metrics,
		logger:        logger,
	}
}

// Resolve determines the scenario for message given the recent history.
// First success wins: classifier, trigger match, default.
func (r *Resolver) Resolve(ctx context.Context, message string, history []domain.Turn) domain.Scenario {
	ctx, span := tracer.Start(ctx, "Resolver.Resolve")
	defer span.End()

	if r.classifier != nil {
		if start := len(history) - r.historyWindow; start > 0 {
			history = history[start:]
		}

		name, err := r.classifier.Classify(ctx, &domain.ClassifyRequest{
			CatalogJSON: r.catalog.JSON(),
			History:     history,
			Message:     message,
		})
		switch {
		case err != nil:
			// Absorbed: classification must never surface to the caller.
			r.metrics.IncrExternalError("classifier")
			r.logger.Warn("classification failed, falling back to triggers", zap.Error(err))
		default:
			name = strings.TrimSpace(name)
			if s, ok := r.catalog.ByName(name); ok {
				span.SetAttributes(attribute.String("scenario.name", s.Name))
				r.metrics.IncrScenarioResolved(s.Name, "classifier")
				return s
			}
			// "default" and unknown names both fall through to trigger
			// matching, same as a failed call.
			r.logger.Debug("classifier returned no catalog scenario",
				zap.String("name", name),
			)
		}
	}

	if s, ok := r.catalog.MatchTriggers(message); ok {
		span.SetAttributes(attribute.String("scenario.name", s.Name))
		r.metrics.IncrScenarioResolved(s.Name, "triggers")
		return s
	}

	span.SetAttributes(attribute.String("scenario.name", domain.DefaultScenarioName))
	r.metrics.IncrScenarioResolved(domain.DefaultScenarioName, "default")
	return domain.DefaultScenario()
}
