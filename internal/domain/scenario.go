package domain

// ScenarioTypePublic marks scenarios the widget advertises as quick-start buttons.
// Filtering happens client-side; the API always returns the full catalog.
const (
	ScenarioTypePublic   = "public"
	ScenarioTypeInternal = "internal"
)

// DefaultScenarioName is the synthesized fallback scenario. The classifier is
// instructed to return this literal token when nothing in the catalog fits.
const DefaultScenarioName = "default"

// Well-known scenario names with data-driven prompt composition. The catalog
// may carry more scenarios than these; unknown names fall back to rendering
// the script verbatim.
const (
	ScenarioBonusBalance            = "bonusBalance"
	ScenarioViewPromoCodes          = "viewPromoCodes"
	ScenarioPersonalDiscounts       = "personalDiscounts"
	ScenarioOrderTracking           = "orderTracking"
	ScenarioProductRecommendations  = "productRecommendations"
	ScenarioCartSuggestions         = "cartSuggestions"
	ScenarioPromoNavigation         = "promoNavigation"
	ScenarioContactInfo             = "contactInfo"
	ScenarioFAQ                     = "faq"
	ScenarioSiteNavigation          = "siteNavigation"
	ScenarioNewsletterSubscriptions = "newsletterSubscriptions"
	ScenarioPurchaseHistory         = "purchaseHistory"
	ScenarioProductReturns          = "productReturns"
)

// Scenario is a named conversation topic from the catalog.
// Immutable after load.
type Scenario struct {
	// Name uniquely identifies the scenario within the catalog.
	Name string `json:"name"`

	// Triggers are keywords matched case-insensitively as substrings of the
	// user message when classification is unavailable. Catalog order wins on
	// keyword collisions.
	Triggers []string `json:"triggers"`

	// Script is the system-prompt template. For data-driven scenarios the
	// composer replaces it with a rendered data block.
	Script string `json:"script"`

	// FollowUps are suggested next messages shown as clickable shortcuts.
	FollowUps []string `json:"followUps,omitempty"`

	// Type is "public" or "internal".
	Type string `json:"type,omitempty"`
}

// DefaultScenario returns the hard-coded fallback used when neither the
// classifier nor trigger matching selects anything.
func DefaultScenario() Scenario {
	return Scenario{
		Name:   DefaultScenarioName,
		Script: "Ты дружелюбный помощник интернет-магазина.",
	}
}
