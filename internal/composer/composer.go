// Package composer renders the system prompt for a resolved scenario.
//
// Scenarios without a registered formatter use their script verbatim. The
// data-driven scenarios each have a formatter that loads the relevant user
// record, renders it as a human-readable block and appends a fixed instruction
// telling the model to answer from that data. The formatter table keeps the
// composer open to new scenarios without a growing branch chain.
package composer

import (
	"context"

	"github.com/avamarket/support-relay-go/internal/catalog"
	"github.com/avamarket/support-relay-go/internal/domain"
	"github.com/avamarket/support-relay-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("composer")

// dataInstruction is the fixed suffix appended to every rendered data block.
const dataInstruction = "Используй эти данные, чтобы ответить на вопрос пользователя."

// formatter renders the user-facing data block for one scenario.
type formatter func(ctx context.Context, c *Composer, userID string) (string, error)

// Composer builds system prompts from scenarios and per-user records.
type Composer struct {
	loader     port.RecordLoader
	catalog    *catalog.Catalog
	formatters map[string]formatter
	logger     *zap.Logger
}

// New creates a composer and registers the formatter table.
func New(loader port.RecordLoader, cat *catalog.Catalog, logger *zap.Logger) *Composer {
	c := &Composer{
		loader:  loader,
		catalog: cat,
		logger:  logger,
	}
	c.formatters = map[string]formatter{
		domain.ScenarioBonusBalance:            formatBonusBalance,
		domain.ScenarioViewPromoCodes:          formatPromoCodes,
		domain.ScenarioPersonalDiscounts:       formatPersonalDiscounts,
		domain.ScenarioOrderTracking:           formatOrderTracking,
		domain.ScenarioProductRecommendations:  formatProductRecommendations,
		domain.ScenarioCartSuggestions:         formatCartSuggestions,
		domain.ScenarioPromoNavigation:         formatPromoNavigation,
		domain.ScenarioContactInfo:             formatContactInfo,
		domain.ScenarioFAQ:                     formatFAQ,
		domain.ScenarioSiteNavigation:          formatSiteNavigation,
		domain.ScenarioNewsletterSubscriptions: formatNewsletters,
		domain.ScenarioPurchaseHistory:         formatPurchaseHistory,
		domain.ScenarioProductReturns:          formatProductReturns,
	}
	return c
}

// Compose returns the system prompt for scenario. Missing user-specific
// records never surface here; the loader falls back to shared defaults.
// An error means the shared default itself is unreadable, which is a
// deployment problem and does propagate.
func (c *Composer) Compose(ctx context.Context, scenario domain.Scenario, userID string) (string, error) {
	ctx, span := tracer.Start(ctx, "Composer.Compose")
	defer span.End()
	span.SetAttributes(attribute.String("scenario.name", scenario.Name))

	f, ok := c.formatters[scenario.Name]
	if !ok {
		return scenario.Script, nil
	}

	block, err := f(ctx, c, userID)
	if err != nil {
		c.logger.Error("prompt composition failed",
			zap.String("scenario", scenario.Name),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return "", err
	}
	return block, nil
}
