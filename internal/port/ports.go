// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/avamarket/support-relay-go/internal/domain"
)

// Classifier asks the completion provider to pick a scenario name for a
// message. The returned name is the model's raw guess; the resolver decides
// whether it maps to a real catalog entry.
type Classifier interface {
	Classify(ctx context.Context, req *domain.ClassifyRequest) (string, error)
}

// Completer generates the assistant reply for a composed prompt.
type Completer interface {
	GenerateReply(ctx context.Context, req *domain.CompletionRequest) (string, error)
}

// RecordLoader retrieves per-domain user records, substituting the shared
// default record when no user-specific one exists.
type RecordLoader interface {
	Loyalty(userID string) (domain.LoyaltyRecord, error)
	PromoCodes() (domain.PromoCodesRecord, error)
	PersonalPromoCodes(userID string) (domain.PersonalPromoCodesRecord, error)
	Orders(userID string) (domain.OrderStatusRecord, error)
	Cart(userID string) (domain.CartRecord, error)
	Newsletters(userID string) (domain.NewslettersRecord, error)
	PurchaseHistory(userID string) (domain.PurchaseHistoryRecord, error)
	Contacts() (domain.ContactsRecord, error)
	FAQ() (domain.FAQRecord, error)
	SiteSections() (domain.SiteSectionsRecord, error)
}
