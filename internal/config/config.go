package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/joho/godotenv"
)

// Version is reported by the /api/config endpoint so clients can detect
// a stale cached frontend.
const Version = "1.3"

// DefaultCategory is the catch-all category used when the model output
// cannot be mapped onto the configured set.
const DefaultCategory = "Разни"

// Categories is the closed set of expense categories. Values are opaque
// labels that must match the bookkeeping spreadsheet exactly.
var Categories = []string{
	"Храна",
	"Оборотни стоки",
	"Стоки за дома",
	"Забавления",
	"Козметика",
	"Гориво",
	"Дрехи и обувки",
	"Разходи квартира",
	"Балчик",
	"Варна",
	"Провадия",
	"Подаръци",
	"Техсол",
	"Абонаментни сметки",
	"Кредитни карти",
	"Здравни",
	"Лора",
	"Бебе",
	"Разни",
	"Разходи апартамент",
}

// PaymentMethods is the closed set of accepted payment method labels.
var PaymentMethods = []string{
	"ВиртуаленPOS",
	"Cash",
	"Diners",
	"ePay",
	"PayPal",
	"RaiCard",
	"Revolut",
	"FIB 0889",
	"Ваучери за храна",
	"ОББ",
	"Bulbank 4416",
}

// Config holds the process-wide settings. Loaded once at startup and
// never mutated afterwards, so it is safe to share across requests.
type Config struct {
	// AuthToken is the shared bearer secret. Empty disables the gate.
	AuthToken string

	// DefaultProvider selects the vision backend when the upload does
	// not name one.
	DefaultProvider string

	// Google Sheets target.
	SpreadsheetID      string
	Worksheet          string
	ServiceAccountFile string

	// ArchiveBucket enables GCS archival of original receipt images
	// when non-empty.
	ArchiveBucket string

	// Vision backend credentials.
	GeminiAPIKey    string
	AnthropicAPIKey string
	XAIAPIKey       string
}

// Load reads configuration from the environment. A .env file is applied
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AuthToken:          os.Getenv("AUTH_TOKEN"),
		DefaultProvider:    getEnv("VISION_PROVIDER", "claude"),
		SpreadsheetID:      os.Getenv("GOOGLE_SHEETS_ID"),
		Worksheet:          getEnv("GOOGLE_SHEETS_WORKSHEET", "Sheet1"),
		ServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", "service_account.json"),
		ArchiveBucket:      os.Getenv("GCS_BUCKET"),
		GeminiAPIKey:       os.Getenv("GOOGLE_API_KEY"),
		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		XAIAPIKey:          os.Getenv("XAI_API_KEY"),
	}

	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("config: GOOGLE_SHEETS_ID is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ValidCategory reports whether c is a member of the configured category set.
func ValidCategory(c string) bool {
	return slices.Contains(Categories, c)
}

// ValidPaymentMethod reports whether p is a member of the configured
// payment method set.
func ValidPaymentMethod(p string) bool {
	return slices.Contains(PaymentMethods, p)
}
