// Package catalog loads the static scenario catalog and product listing.
// Both are read once at process start and are read-only thereafter.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avamarket/support-relay-go/internal/domain"
)

// Catalog holds the loaded scenarios (in file order) and products.
type Catalog struct {
	scenarios []domain.Scenario
	byName    map[string]domain.Scenario
	products  []domain.Product
	rawJSON   []byte
}

// Load reads scenarios.json and products.json from dataDir.
// A missing or unparsable scenarios file is fatal: the relay cannot run
// without its catalog. A missing products file only disables catalog
// enrichment, so it is tolerated.
func Load(dataDir string) (*Catalog, error) {
	raw, err := os.ReadFile(filepath.Join(dataDir, "scenarios.json"))
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}

	var scenarios []domain.Scenario
	if err := json.Unmarshal(raw, &scenarios); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}

	byName := make(map[string]domain.Scenario, len(scenarios))
	for _, s := range scenarios {
		if s.Name == "" {
			return nil, fmt.Errorf("scenario with empty name in catalog")
		}
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate scenario name: %s", s.Name)
		}
		byName[s.Name] = s
	}

	var products []domain.Product
	if rawProducts, err := os.ReadFile(filepath.Join(dataDir, "products.json")); err == nil {
		if err := json.Unmarshal(rawProducts, &products); err != nil {
			return nil, fmt.Errorf("parse products: %w", err)
		}
	}

	return &Catalog{
		scenarios: scenarios,
		byName:    byName,
		products:  products,
		rawJSON:   raw,
	}, nil
}

// All returns the scenarios in catalog order. Callers must not mutate the slice.
func (c *Catalog) All() []domain.Scenario {
	return c.scenarios
}

// ByName looks a scenario up by its unique name.
func (c *Catalog) ByName(name string) (domain.Scenario, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// MatchTriggers scans scenarios in catalog order and returns the first whose
// trigger list contains a case-insensitive substring of message.
func (c *Catalog) MatchTriggers(message string) (domain.Scenario, bool) {
	text := strings.ToLower(message)
	for _, s := range c.scenarios {
		for _, trigger := range s.Triggers {
			if strings.Contains(text, strings.ToLower(trigger)) {
				return s, true
			}
		}
	}
	return domain.Scenario{}, false
}

// Products returns the product listing loaded alongside the catalog.
func (c *Catalog) Products() []domain.Product {
	return c.products
}

// ProductByName finds a product by exact name. Used for cart enrichment;
// a miss means the item is rendered without catalog data.
func (c *Catalog) ProductByName(name string) (domain.Product, bool) {
	for _, p := range c.products {
		if p.Name == name {
			return p, true
		}
	}
	return domain.Product{}, false
}

// JSON returns the raw catalog document as loaded from disk. The classifier
// prompt embeds it verbatim so the model sees exactly what the widget sees.
func (c *Catalog) JSON() string {
	return string(c.rawJSON)
}
