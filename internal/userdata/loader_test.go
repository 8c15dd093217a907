package userdata_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/avamarket/support-relay-go/internal/domain"
	"github.com/avamarket/support-relay-go/internal/userdata"

	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_UserSpecificFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "loyalty.json", `{"bonus_balance": 0, "loyalty_tier": "Базовый"}`)
	writeFile(t, dir, "loyalty_u1.json", `{"bonus_balance": 500, "loyalty_tier": "Золотой"}`)

	loader := userdata.NewLoader(dir, zap.NewNop())

	record, err := loader.Loyalty("u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if record.BonusBalance != 500 {
		t.Errorf("expected user-specific balance 500, got %d", record.BonusBalance)
	}
	if record.LoyaltyTier != "Золотой" {
		t.Errorf("expected user-specific tier, got %q", record.LoyaltyTier)
	}
}

func TestLoad_FallsBackToSharedDefault(t *testing.T) {
	dir := t.TempDir()
	shared := `{"bonus_balance": 42, "loyalty_tier": "Базовый", "last_updated": "2026-08-01", "history": []}`
	writeFile(t, dir, "loyalty.json", shared)

	loader := userdata.NewLoader(dir, zap.NewNop())

	record, err := loader.Loyalty("no-such-user")
	if err != nil {
		t.Fatalf("expected transparent fallback, got %v", err)
	}

	// The fallback must be equivalent to parsing the shared file directly.
	var direct domain.LoyaltyRecord
	if err := json.Unmarshal([]byte(shared), &direct); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(record, direct) {
		t.Errorf("fallback record differs from shared default:\n got %+v\nwant %+v", record, direct)
	}
}

func TestLoad_MissingSharedDefault(t *testing.T) {
	loader := userdata.NewLoader(t.TempDir(), zap.NewNop())

	if _, err := loader.Loyalty("u1"); err == nil {
		t.Fatal("expected error when shared default is missing")
	}
}

func TestLoad_MalformedUserFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "loyalty.json", `{"bonus_balance": 0}`)
	writeFile(t, dir, "loyalty_u1.json", `{not json`)

	loader := userdata.NewLoader(dir, zap.NewNop())

	if _, err := loader.Loyalty("u1"); err == nil {
		t.Fatal("expected error for malformed user-specific file")
	}
}

func TestLoad_SharedDomainsIgnoreUser(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "promoCodes.json", `{"promoCodes": [{"code": "X", "description": "тест", "discount": 5}]}`)

	loader := userdata.NewLoader(dir, zap.NewNop())

	record, err := loader.PromoCodes()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(record.PromoCodes) != 1 || record.PromoCodes[0].Code != "X" {
		t.Errorf("unexpected promo codes: %+v", record.PromoCodes)
	}
}
