package config

import "testing"

func TestLoad(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_ID", "sheet-id-1")
	t.Setenv("AUTH_TOKEN", "secret")
	t.Setenv("VISION_PROVIDER", "")
	t.Setenv("GOOGLE_SHEETS_WORKSHEET", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SpreadsheetID != "sheet-id-1" {
		t.Errorf("SpreadsheetID = %q", cfg.SpreadsheetID)
	}
	if cfg.AuthToken != "secret" {
		t.Errorf("AuthToken = %q", cfg.AuthToken)
	}
	if cfg.DefaultProvider != "claude" {
		t.Errorf("DefaultProvider = %q, want default claude", cfg.DefaultProvider)
	}
	if cfg.Worksheet != "Sheet1" {
		t.Errorf("Worksheet = %q, want default Sheet1", cfg.Worksheet)
	}
	if cfg.ServiceAccountFile != "service_account.json" {
		t.Errorf("ServiceAccountFile = %q", cfg.ServiceAccountFile)
	}
}

func TestLoadRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_ID", "")

	if _, err := Load(); err == nil {
		t.Error("Load() succeeded without GOOGLE_SHEETS_ID")
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = false", c)
		}
	}
	if ValidCategory("Несъществуваща") {
		t.Error("ValidCategory accepted an unknown label")
	}
	if ValidCategory("") {
		t.Error("ValidCategory accepted the empty string")
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, p := range PaymentMethods {
		if !ValidPaymentMethod(p) {
			t.Errorf("ValidPaymentMethod(%q) = false", p)
		}
	}
	if ValidPaymentMethod("чекове") {
		t.Error("ValidPaymentMethod accepted an unknown label")
	}
}

func TestDefaultCategoryIsConfigured(t *testing.T) {
	if !ValidCategory(DefaultCategory) {
		t.Errorf("default category %q is not in the category set", DefaultCategory)
	}
}
