// Package userdata reads per-user JSON records from the data directory.
//
// Every domain follows the same layout: a user-specific document named
// `<domain>_<userId>.json` and a shared default `<domain>.json`. When the
// user-specific file is absent the shared default is substituted without
// surfacing an error; callers never see the difference.
package userdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/avamarket/support-relay-go/internal/domain"

	"go.uber.org/zap"
)

// Record domain names, matching the data-file naming on disk.
const (
	DomainLoyalty            = "loyalty"
	DomainPromoCodes         = "promoCodes"
	DomainPersonalPromoCodes = "personalPromoCodes"
	DomainOrderStatus        = "orderStatus"
	DomainCart               = "cart"
	DomainNewsletters        = "newsletters"
	DomainPurchaseHistory    = "purchaseHistory"
	DomainContacts           = "contacts"
	DomainFAQ                = "faq"
	DomainSiteSections       = "siteSections"
)

// Loader resolves and parses record files for one data directory.
type Loader struct {
	dir    string
	logger *zap.Logger
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, logger *zap.Logger) *Loader {
	return &Loader{dir: dir, logger: logger}
}

// Load reads the record for domainName, preferring the user-sharded file and
// falling back to the shared default. An empty userID skips straight to the
// shared file. The fallback is transparent: only a missing or unparsable
// shared default is an error.
func Load[T any](l *Loader, domainName, userID string) (T, error) {
	var record T

	if userID != "" {
		userFile := filepath.Join(l.dir, fmt.Sprintf("%s_%s.json", domainName, userID))
		raw, err := os.ReadFile(userFile)
		if err == nil {
			if err := json.Unmarshal(raw, &record); err != nil {
				return record, fmt.Errorf("parse %s: %w", userFile, err)
			}
			return record, nil
		}
		l.logger.Debug("no user-specific record, using shared default",
			zap.String("domain", domainName),
			zap.String("user_id", userID),
		)
	}

	sharedFile := filepath.Join(l.dir, domainName+".json")
	raw, err := os.ReadFile(sharedFile)
	if err != nil {
		return record, fmt.Errorf("read %s: %w", sharedFile, err)
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return record, fmt.Errorf("parse %s: %w", sharedFile, err)
	}
	return record, nil
}

// Typed accessors, one per record domain. These exist so the composer can
// depend on an interface instead of the generic function.

func (l *Loader) Loyalty(userID string) (domain.LoyaltyRecord, error) {
	return Load[domain.LoyaltyRecord](l, DomainLoyalty, userID)
}

// PromoCodes are store-wide, never user-sharded.
func (l *Loader) PromoCodes() (domain.PromoCodesRecord, error) {
	return Load[domain.PromoCodesRecord](l, DomainPromoCodes, "")
}

func (l *Loader) PersonalPromoCodes(userID string) (domain.PersonalPromoCodesRecord, error) {
	return Load[domain.PersonalPromoCodesRecord](l, DomainPersonalPromoCodes, userID)
}

func (l *Loader) Orders(userID string) (domain.OrderStatusRecord, error) {
	return Load[domain.OrderStatusRecord](l, DomainOrderStatus, userID)
}

func (l *Loader) Cart(userID string) (domain.CartRecord, error) {
	return Load[domain.CartRecord](l, DomainCart, userID)
}

func (l *Loader) Newsletters(userID string) (domain.NewslettersRecord, error) {
	return Load[domain.NewslettersRecord](l, DomainNewsletters, userID)
}

func (l *Loader) PurchaseHistory(userID string) (domain.PurchaseHistoryRecord, error) {
	return Load[domain.PurchaseHistoryRecord](l, DomainPurchaseHistory, userID)
}

// Contacts are store-wide.
func (l *Loader) Contacts() (domain.ContactsRecord, error) {
	return Load[domain.ContactsRecord](l, DomainContacts, "")
}

// FAQ is store-wide.
func (l *Loader) FAQ() (domain.FAQRecord, error) {
	return Load[domain.FAQRecord](l, DomainFAQ, "")
}

// SiteSections are store-wide.
func (l *Loader) SiteSections() (domain.SiteSectionsRecord, error) {
	return Load[domain.SiteSectionsRecord](l, DomainSiteSections, "")
}
