package domain

// Per-domain user records loaded from the data directory. Each domain is an
// independent JSON document: `<domain>_<userId>.json` with a `<domain>.json`
// shared default. No referential integrity is enforced across domains: a cart
// item may name a product absent from the catalog, in which case enrichment is
// simply skipped.

// LoyaltyRecord holds a user's bonus/cashback state.
type LoyaltyRecord struct {
	BonusBalance      int            `json:"bonus_balance"`
	CashbackAvailable int            `json:"cashback_available"`
	LoyaltyTier       string         `json:"loyalty_tier"`
	LastUpdated       string         `json:"last_updated"`
	History           []LoyaltyEvent `json:"history"`
}

// LoyaltyEvent is one history entry. Entries come in two shapes: "event" lines
// (Event + Points set) and "change" lines (Reason + signed Change, optional
// product list).
type LoyaltyEvent struct {
	Date     string   `json:"date"`
	Event    string   `json:"event,omitempty"`
	Points   string   `json:"points,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Change   int      `json:"change,omitempty"`
	Products []string `json:"products,omitempty"`
}

// PromoCodesRecord lists store-wide promo codes (not user-sharded).
type PromoCodesRecord struct {
	PromoCodes []PromoCode `json:"promoCodes"`
}

type PromoCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Discount    int    `json:"discount"`
}

// PersonalPromoCodesRecord lists a user's personal discounts.
type PersonalPromoCodesRecord struct {
	PersonalPromoCodes []PersonalPromoCode `json:"personalPromoCodes"`
}

// PersonalPromoCode renders its value as a percentage or an absolute ruble
// amount depending on Type ("percent" or "amount").
type PersonalPromoCode struct {
	Code           string   `json:"code"`
	Description    string   `json:"description"`
	Type           string   `json:"type"`
	Value          int      `json:"value"`
	MinOrderAmount int      `json:"minOrderAmount,omitempty"`
	Expires        string   `json:"expires"`
	AppliesTo      []string `json:"appliesTo,omitempty"`
}

// OrderStatusRecord lists a user's orders.
type OrderStatusRecord struct {
	Orders []Order `json:"orders"`
}

type Order struct {
	ID           string   `json:"id"`
	Status       string   `json:"status"`
	DeliveryDate string   `json:"deliveryDate,omitempty"`
	Items        []string `json:"items,omitempty"`
}

// CartRecord is the user's current cart.
type CartRecord struct {
	Items []CartItem `json:"items"`
}

type CartItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
}

// NewslettersRecord lists the user's newsletter subscriptions.
type NewslettersRecord struct {
	Subscriptions []Newsletter `json:"subscriptions"`
}

type Newsletter struct {
	Name       string `json:"name"`
	Subscribed bool   `json:"subscribed"`
	Frequency  string `json:"frequency,omitempty"`
}

// PurchaseHistoryRecord lists past purchases.
type PurchaseHistoryRecord struct {
	Purchases []Purchase `json:"purchases"`
}

type Purchase struct {
	Date  string   `json:"date"`
	Items []string `json:"items"`
	Total int      `json:"total"`
}

// ContactsRecord holds the store's contact details (shared, not user-sharded).
type ContactsRecord struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Hours   string `json:"hours"`
}

// FAQRecord holds the frequently-asked-questions list.
type FAQRecord struct {
	Questions []FAQEntry `json:"questions"`
}

type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SiteSectionsRecord describes the store's site structure for navigation help.
type SiteSectionsRecord struct {
	Sections []SiteSection `json:"sections"`
}

type SiteSection struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Product is one entry of the store-wide product listing loaded at startup
// alongside the scenario catalog.
type Product struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       int    `json:"price"`
	Description string `json:"description,omitempty"`
}
