package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/fireto/receit-processor/internal/domain"
)

// stubProvider is a canned Provider for dispatch tests.
type stubProvider struct {
	name string
	ext  *Extraction
	err  error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Extract(ctx context.Context, image []byte, mimeType string) (*Extraction, error) {
	return s.ext, s.err
}

func TestRegistryDispatch(t *testing.T) {
	want := &Extraction{Date: "15.02.2026", TotalEUR: 23.45, Category: "Храна"}
	r := NewRegistry(
		&stubProvider{name: "claude", ext: want},
		&stubProvider{name: "gemini", err: errors.New("API error")},
	)

	t.Run("names in registration order", func(t *testing.T) {
		names := r.Names()
		if len(names) != 2 || names[0] != "claude" || names[1] != "gemini" {
			t.Errorf("Names() = %v", names)
		}
	})

	t.Run("dispatches by name", func(t *testing.T) {
		ext, err := r.Extract(context.Background(), "claude", []byte("img"), "image/jpeg")
		if err != nil {
			t.Fatalf("Extract() failed: %v", err)
		}
		if ext != want {
			t.Errorf("Extract() = %+v, want %+v", ext, want)
		}
	})

	t.Run("unknown provider is a validation error", func(t *testing.T) {
		_, err := r.Extract(context.Background(), "unknown", []byte("img"), "image/jpeg")
		if !domain.IsValidationError(err) {
			t.Errorf("error = %v, want ValidationError", err)
		}
	})

	t.Run("backend error surfaces as extraction error", func(t *testing.T) {
		_, err := r.Extract(context.Background(), "gemini", []byte("img"), "image/jpeg")
		if !domain.IsExtractionError(err) {
			t.Errorf("error = %v, want ExtractionError", err)
		}
	})
}
