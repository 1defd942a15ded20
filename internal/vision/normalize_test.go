package vision

import (
	"strings"
	"testing"

	"github.com/fireto/receit-processor/internal/config"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"plain json", `{"date": "15.02.2026", "total_eur": 10.5}`, false},
		{"json code fence", "```json\n{\"date\": \"15.02.2026\", \"total_eur\": 10.5}\n```", false},
		{"plain code fence", "```\n{\"date\": \"15.02.2026\", \"total_eur\": 10.5}\n```", false},
		{"surrounding text", "Here is the result:\n{\"date\": \"15.02.2026\", \"total_eur\": 10.5}\nDone.", false},
		{"no json", "This is not JSON at all", true},
		{"broken json", `{"date": `, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := extractJSON(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("extractJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && obj["date"] != "15.02.2026" {
				t.Errorf("date = %v, want 15.02.2026", obj["date"])
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    float64
		wantErr bool
	}{
		{"json number", 12.34, 12.34, false},
		{"dot decimal string", "12.34", 12.34, false},
		{"comma decimal string", "12,34", 12.34, false},
		{"currency suffix", "12,34 лв", 12.34, false},
		{"currency prefix", "€12.34", 12.34, false},
		{"comma thousands dot decimal", "1,234.56", 1234.56, false},
		{"dot thousands comma decimal", "1.234,56", 1234.56, false},
		{"comma thousands comma decimal", "1,234,56", 1234.56, false},
		{"repeated commas", "1,234,567,89", 1234567.89, false},
		{"missing", nil, 0, true},
		{"no digits", "abc", 0, true},
		{"wrong type", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAmount(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("parseAmount(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	base := func() map[string]interface{} {
		return map[string]interface{}{
			"date":           "15.02.2026",
			"total_eur":      23.45,
			"category":       "Храна",
			"payment_method": "Revolut",
			"notes":          "хляб, мляко, сирене",
			"bulstat":        "BG 123456789",
		}
	}

	t.Run("valid response", func(t *testing.T) {
		ext, err := normalize(base())
		if err != nil {
			t.Fatalf("normalize() failed: %v", err)
		}
		if ext.Date != "15.02.2026" {
			t.Errorf("Date = %q", ext.Date)
		}
		if ext.TotalEUR != 23.45 {
			t.Errorf("TotalEUR = %v", ext.TotalEUR)
		}
		if ext.Category != "Храна" {
			t.Errorf("Category = %q", ext.Category)
		}
		if ext.PaymentMethod != "Revolut" {
			t.Errorf("PaymentMethod = %q", ext.PaymentMethod)
		}
		if ext.Bulstat != "123456789" {
			t.Errorf("Bulstat = %q, want digits only", ext.Bulstat)
		}
	})

	t.Run("unknown category falls back to default", func(t *testing.T) {
		obj := base()
		obj["category"] = "NonExistent"
		ext, err := normalize(obj)
		if err != nil {
			t.Fatalf("normalize() failed: %v", err)
		}
		if ext.Category != config.DefaultCategory {
			t.Errorf("Category = %q, want %q", ext.Category, config.DefaultCategory)
		}
	})

	t.Run("unknown payment method dropped", func(t *testing.T) {
		obj := base()
		obj["payment_method"] = "Bitcoin"
		ext, err := normalize(obj)
		if err != nil {
			t.Fatalf("normalize() failed: %v", err)
		}
		if ext.PaymentMethod != "" {
			t.Errorf("PaymentMethod = %q, want empty", ext.PaymentMethod)
		}
	})

	t.Run("all configured categories accepted", func(t *testing.T) {
		for _, cat := range config.Categories {
			obj := base()
			obj["category"] = cat
			ext, err := normalize(obj)
			if err != nil {
				t.Fatalf("normalize() failed for %q: %v", cat, err)
			}
			if ext.Category != cat {
				t.Errorf("Category = %q, want %q", ext.Category, cat)
			}
		}
	})

	t.Run("missing date fails", func(t *testing.T) {
		obj := base()
		delete(obj, "date")
		if _, err := normalize(obj); err == nil {
			t.Fatal("normalize() succeeded, want error")
		}
	})

	t.Run("wrong date format fails", func(t *testing.T) {
		obj := base()
		obj["date"] = "2026-02-15"
		if _, err := normalize(obj); err == nil {
			t.Fatal("normalize() succeeded, want error")
		}
	})

	t.Run("missing total fails", func(t *testing.T) {
		obj := base()
		delete(obj, "total_eur")
		if _, err := normalize(obj); err == nil {
			t.Fatal("normalize() succeeded, want error")
		}
	})

	t.Run("zero total fails", func(t *testing.T) {
		obj := base()
		obj["total_eur"] = 0.0
		if _, err := normalize(obj); err == nil {
			t.Fatal("normalize() succeeded, want error")
		}
	})
}

func TestParseResponseEndToEnd(t *testing.T) {
	raw := "```json\n" +
		`{"date": "03.01.2026", "total_eur": "45,50", "category": "Храна", "payment_method": null, "notes": "хляб", "bulstat": null}` +
		"\n```"

	ext, err := parseResponse(raw)
	if err != nil {
		t.Fatalf("parseResponse() failed: %v", err)
	}
	if ext.TotalEUR != 45.50 {
		t.Errorf("TotalEUR = %v, want 45.50", ext.TotalEUR)
	}
	if ext.PaymentMethod != "" || ext.Bulstat != "" {
		t.Errorf("nullable fields not empty: payment=%q bulstat=%q", ext.PaymentMethod, ext.Bulstat)
	}
}

func TestBuildPromptListsClosedSets(t *testing.T) {
	prompt := buildPrompt()
	for _, cat := range config.Categories {
		if !strings.Contains(prompt, cat) {
			t.Errorf("prompt is missing category %q", cat)
		}
	}
	for _, pm := range config.PaymentMethods {
		if !strings.Contains(prompt, pm) {
			t.Errorf("prompt is missing payment method %q", pm)
		}
	}
}
