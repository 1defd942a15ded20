// Package vision extracts structured expense data from receipt photos
// using interchangeable AI vision backends.
package vision

import (
	"context"
	"time"

	"github.com/fireto/receit-processor/internal/domain"
)

// requestTimeout bounds a single backend attempt. There is no retry;
// a failed upload is reported to the caller, who decides to resubmit.
const requestTimeout = 60 * time.Second

// Extraction is the normalized output shared by all backends. Category
// and PaymentMethod are already mapped onto the configured closed sets.
type Extraction struct {
	Date          string
	TotalEUR      float64
	Category      string
	PaymentMethod string
	Notes         string
	Bulstat       string
}

// Provider is one vision backend. Each implementation owns its own
// request/response mapping; Extract returns raw model text parsed and
// normalized into an Extraction.
type Provider interface {
	Name() string
	Extract(ctx context.Context, image []byte, mimeType string) (*Extraction, error)
}

// Registry dispatches extraction requests to providers by name.
type Registry struct {
	providers map[string]Provider
	names     []string
}

// NewRegistry creates a registry over the given providers, preserving
// their order for the /api/config listing.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
		r.names = append(r.names, p.Name())
	}
	return r
}

// Names returns the enabled provider names in registration order.
func (r *Registry) Names() []string {
	return r.names
}

// Extract runs a single extraction attempt with the named provider.
// An unknown name is a validation error; backend and parse failures
// surface as extraction errors.
func (r *Registry) Extract(ctx context.Context, provider string, image []byte, mimeType string) (*Extraction, error) {
	p, ok := r.providers[provider]
	if !ok {
		return nil, domain.NewValidationError("unknown provider %q", provider)
	}

	ext, err := p.Extract(ctx, image, mimeType)
	if err != nil {
		return nil, domain.NewExtractionError(p.Name(), err)
	}
	return ext, nil
}
