package domain

import (
	"math"
	"strings"
	"time"

	"github.com/fireto/receit-processor/internal/config"
)

// BGNPerEUR is the fixed Bulgarian lev / euro currency board rate.
const BGNPerEUR = 1.95583

// DateLayout is the calendar date format used on Bulgarian receipts and
// in the spreadsheet. No timezone semantics.
const DateLayout = "02.01.2006"

// crossCheckTolerance absorbs rounding differences between the fiscal
// device total and the AI-read total. Design constant, not tunable.
const crossCheckTolerance = 0.02

// ValidationStatus records the outcome of comparing the extracted total
// against the QR cross-check amount.
type ValidationStatus string

const (
	StatusUnchecked ValidationStatus = "unchecked"
	StatusVerified  ValidationStatus = "verified"
	StatusMismatch  ValidationStatus = "mismatch"
)

// Record is the canonical expense record appended to the spreadsheet.
// TotalBGN is always derived from TotalEUR, never stored independently.
type Record struct {
	Date          string           `json:"date"`
	TotalEUR      float64          `json:"total_eur"`
	Category      string           `json:"category"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Notes         string           `json:"notes"`
	Bulstat       string           `json:"bulstat,omitempty"`
	Status        ValidationStatus `json:"validation_status"`
}

// TotalBGN returns the secondary currency value at the fixed rate.
func (r *Record) TotalBGN() float64 {
	return DeriveBGN(r.TotalEUR)
}

// DeriveBGN converts a euro amount to leva at the fixed rate, rounded
// to two decimals.
func DeriveBGN(eur float64) float64 {
	return math.Round(eur*BGNPerEUR*100) / 100
}

// CrossCheckStatus compares the extracted total against an optional QR
// cross-check amount. A nil cross-check yields StatusUnchecked.
func CrossCheckStatus(totalEUR float64, crossCheck *float64) ValidationStatus {
	if crossCheck == nil {
		return StatusUnchecked
	}
	if math.Abs(*crossCheck-totalEUR) < crossCheckTolerance {
		return StatusVerified
	}
	return StatusMismatch
}

// NewRecord builds a record from normalized extraction output plus the
// optional QR cross-check amount. Extraction output is already mapped
// onto the closed sets, so only the status is decided here.
func NewRecord(date string, totalEUR float64, category, payment, notes, bulstat string, crossCheck *float64) *Record {
	return &Record{
		Date:          date,
		TotalEUR:      totalEUR,
		Category:      category,
		PaymentMethod: payment,
		Notes:         notes,
		Bulstat:       bulstat,
		Status:        CrossCheckStatus(totalEUR, crossCheck),
	}
}

// NewManualRecord builds a record from caller-supplied fields. Manual
// entries skip extraction and QR entirely and are always unchecked, but
// the closed-set and amount rules still apply. An empty date means today.
func NewManualRecord(date string, totalEUR float64, category, payment, notes string) (*Record, error) {
	if totalEUR <= 0 {
		return nil, NewValidationError("amount must be positive, got %.2f", totalEUR)
	}
	if !config.ValidCategory(category) {
		return nil, NewValidationError("unknown category %q", category)
	}
	if payment != "" && !config.ValidPaymentMethod(payment) {
		return nil, NewValidationError("unknown payment method %q", payment)
	}

	date = strings.TrimSpace(date)
	if date == "" {
		date = time.Now().Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, NewValidationError("date %q is not in DD.MM.YYYY format", date)
	}

	return &Record{
		Date:          date,
		TotalEUR:      totalEUR,
		Category:      category,
		PaymentMethod: payment,
		Notes:         notes,
		Status:        StatusUnchecked,
	}, nil
}

// Handle references the spreadsheet row a record landed in. It is
// returned by append and consumed by patch and delete. A handle stays
// valid until its row is deleted.
type Handle struct {
	Row int64 `json:"row"`
}
