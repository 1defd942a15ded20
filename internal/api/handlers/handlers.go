package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/fireto/receit-processor/internal/api/middleware"
	"github.com/fireto/receit-processor/internal/config"
	"github.com/fireto/receit-processor/internal/domain"
	"github.com/fireto/receit-processor/internal/qr"
	"github.com/fireto/receit-processor/internal/vision"
	"github.com/rs/zerolog"
)

// maxUploadBytes bounds the multipart form held in memory.
const maxUploadBytes = 16 << 20

// Extractor runs one vision extraction attempt with the named provider.
type Extractor interface {
	Extract(ctx context.Context, provider string, image []byte, mimeType string) (*vision.Extraction, error)
	Names() []string
}

// Synchronizer is the mutation surface of the expense sheet.
type Synchronizer interface {
	Append(ctx context.Context, rec *domain.Record) (domain.Handle, error)
	PatchField(ctx context.Context, h domain.Handle, column, value string) error
	DeleteRow(ctx context.Context, h domain.Handle) error
	LookupCategoryByBulstat(ctx context.Context, bulstat string) (string, error)
}

// Archiver stores the original receipt image for audit.
type Archiver interface {
	Store(ctx context.Context, image []byte, mimeType string) (string, error)
}

// QRDecoder attempts to read the fiscal QR payload from an image.
type QRDecoder func(image []byte) *qr.CrossCheck

// ReceiptsHandler handles the receipt upload, manual entry, edit and
// undo endpoints.
type ReceiptsHandler struct {
	extractor       Extractor
	sync            Synchronizer
	decodeQR        QRDecoder
	archiver        Archiver // nil when no bucket is configured
	defaultProvider string
	log             zerolog.Logger
}

// NewReceiptsHandler creates a receipts handler. archiver may be nil.
func NewReceiptsHandler(extractor Extractor, sync Synchronizer, decodeQR QRDecoder, archiver Archiver, defaultProvider string, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{
		extractor:       extractor,
		sync:            sync,
		decodeQR:        decodeQR,
		archiver:        archiver,
		defaultProvider: defaultProvider,
		log:             log,
	}
}

// recordPayload is the JSON shape of a record in responses, with the
// derived secondary currency spelled out.
type recordPayload struct {
	Date             string                  `json:"date"`
	TotalEUR         float64                 `json:"total_eur"`
	TotalBGN         float64                 `json:"total_bgn"`
	Category         string                  `json:"category"`
	PaymentMethod    string                  `json:"payment_method,omitempty"`
	Notes            string                  `json:"notes"`
	Bulstat          string                  `json:"bulstat,omitempty"`
	ValidationStatus domain.ValidationStatus `json:"validation_status"`
}

func toPayload(rec *domain.Record) recordPayload {
	return recordPayload{
		Date:             rec.Date,
		TotalEUR:         rec.TotalEUR,
		TotalBGN:         rec.TotalBGN(),
		Category:         rec.Category,
		PaymentMethod:    rec.PaymentMethod,
		Notes:            rec.Notes,
		Bulstat:          rec.Bulstat,
		ValidationStatus: rec.Status,
	}
}

// Upload handles POST /api/upload: extract, cross-check, append.
func (h *ReceiptsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		middleware.WriteError(w, http.StatusBadRequest, "File must be an image")
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	provider := r.FormValue("provider")
	if provider == "" {
		provider = h.defaultProvider
	}

	// QR decode is fast and local, so it runs before the AI call.
	crossCheck := h.decodeQR(image)

	ext, err := h.extractor.Extract(ctx, provider, image, mimeType)
	if err != nil {
		h.log.Error().Err(err).Str("provider", provider).Msg("Failed to parse receipt")
		h.writeFailure(w, err)
		return
	}

	// Merchants we have seen before beat the model's catch-all guess.
	if ext.Bulstat != "" && ext.Category == config.DefaultCategory {
		if hist, err := h.sync.LookupCategoryByBulstat(ctx, ext.Bulstat); err != nil {
			h.log.Warn().Err(err).Str("bulstat", ext.Bulstat).Msg("Category history lookup failed")
		} else if hist != "" {
			h.log.Info().Str("bulstat", ext.Bulstat).Str("category", hist).Msg("Auto-mapped category from history")
			ext.Category = hist
		}
	}

	var qrAmount *float64
	if crossCheck != nil {
		qrAmount = crossCheck.Amount
	}
	rec := domain.NewRecord(ext.Date, ext.TotalEUR, ext.Category, ext.PaymentMethod, ext.Notes, ext.Bulstat, qrAmount)
	if rec.Status == domain.StatusMismatch {
		h.log.Warn().
			Float64("qr_amount", *qrAmount).
			Float64("extracted", rec.TotalEUR).
			Msg("QR amount differs from extracted amount")
	}

	if h.archiver != nil {
		if uri, err := h.archiver.Store(ctx, image, mimeType); err != nil {
			h.log.Warn().Err(err).Msg("Failed to archive receipt image")
		} else {
			h.log.Info().Str("uri", uri).Msg("Receipt image archived")
		}
	}

	handle, err := h.sync.Append(ctx, rec)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to append expense row")
		h.writeFailure(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"row":  handle.Row,
		"data": toPayload(rec),
		"qr":   crossCheck,
	})
}

type manualEntryRequest struct {
	Date          string  `json:"date"`
	TotalEUR      float64 `json:"total_eur"`
	Category      string  `json:"category"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

// Manual handles POST /api/manual: append a caller-supplied record.
func (h *ReceiptsHandler) Manual(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req manualEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := domain.NewManualRecord(req.Date, req.TotalEUR, req.Category, req.PaymentMethod, req.Notes)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	handle, err := h.sync.Append(ctx, rec)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to append expense row")
		h.writeFailure(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"row":  handle.Row,
		"data": toPayload(rec),
	})
}

type updateRequest struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Update handles PATCH /api/entry/{row}: patch one editable column.
func (h *ReceiptsHandler) Update(w http.ResponseWriter, r *http.Request, handle domain.Handle) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.sync.PatchField(r.Context(), handle, req.Column, req.Value); err != nil {
		h.log.Error().Err(err).Int64("row", handle.Row).Str("column", req.Column).Msg("Failed to update entry")
		h.writeFailure(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Delete handles DELETE /api/entry/{row}: remove the row (undo).
func (h *ReceiptsHandler) Delete(w http.ResponseWriter, r *http.Request, handle domain.Handle) {
	if err := h.sync.DeleteRow(r.Context(), handle); err != nil {
		h.log.Error().Err(err).Int64("row", handle.Row).Msg("Failed to delete entry")
		h.writeFailure(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// writeFailure maps the error taxonomy onto HTTP statuses.
func (h *ReceiptsHandler) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidationError(err):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrStaleHandle):
		middleware.WriteError(w, http.StatusGone, "Row no longer exists")
	case domain.IsExtractionError(err):
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// ConfigHandler serves the closed sets and provider list to the client.
type ConfigHandler struct {
	providers       []string
	defaultProvider string
}

// NewConfigHandler creates the config handler.
func NewConfigHandler(providers []string, defaultProvider string) *ConfigHandler {
	return &ConfigHandler{providers: providers, defaultProvider: defaultProvider}
}

// Get handles GET /api/config.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":          config.Version,
		"categories":       config.Categories,
		"payment_methods":  config.PaymentMethods,
		"providers":        h.providers,
		"default_provider": h.defaultProvider,
	})
}
