package vision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fireto/receit-processor/internal/config"
	"github.com/fireto/receit-processor/internal/domain"
)

// parseResponse turns raw model text into a normalized Extraction.
// All backends funnel through here so the normalization rules are
// identical regardless of provider.
func parseResponse(raw string) (*Extraction, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	return normalize(obj)
}

// extractJSON pulls a JSON object out of model output, tolerating
// Markdown fences and surrounding prose the model was told not to emit.
func extractJSON(raw string) (map[string]interface{}, error) {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Keep only from the first '{' to the last '}' in case the model
	// added text around the object anyway.
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in model response: %.200s", raw)
	}
	s = s[start : end+1]

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal model JSON: %w", err)
	}
	return obj, nil
}

// normalize maps the parsed JSON onto the Extraction shape. Missing
// date or total are fatal; category, payment method and notes degrade
// to deterministic defaults instead.
func normalize(obj map[string]interface{}) (*Extraction, error) {
	date := strings.TrimSpace(stringField(obj, "date"))
	if date == "" {
		return nil, fmt.Errorf("model response has no date")
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, fmt.Errorf("model returned date %q, want DD.MM.YYYY", date)
	}

	total, err := parseAmount(obj["total_eur"])
	if err != nil {
		return nil, fmt.Errorf("total_eur: %w", err)
	}
	if total <= 0 {
		return nil, fmt.Errorf("total_eur must be positive, got %v", total)
	}

	category := strings.TrimSpace(stringField(obj, "category"))
	if !config.ValidCategory(category) {
		category = config.DefaultCategory
	}

	payment := strings.TrimSpace(stringField(obj, "payment_method"))
	if !config.ValidPaymentMethod(payment) {
		payment = ""
	}

	return &Extraction{
		Date:          date,
		TotalEUR:      total,
		Category:      category,
		PaymentMethod: payment,
		Notes:         strings.TrimSpace(stringField(obj, "notes")),
		Bulstat:       digitsOnly(stringField(obj, "bulstat")),
	}, nil
}

// parseAmount accepts the total as a JSON number or as a string with
// comma or dot decimals, currency symbols and thousand separators.
func parseAmount(v interface{}) (float64, error) {
	switch val := v.(type) {
	case nil:
		return 0, fmt.Errorf("missing amount")
	case float64:
		return val, nil
	case string:
		s := strings.TrimSpace(val)
		// Strip everything except digits and separators.
		var b strings.Builder
		for _, r := range s {
			if r >= '0' && r <= '9' || r == '.' || r == ',' {
				b.WriteRune(r)
			}
		}
		s = b.String()
		if s == "" {
			return 0, fmt.Errorf("no digits in amount %q", val)
		}
		// With both separators present the last one is the decimal
		// mark and the other is a thousand separator.
		lastDot := strings.LastIndex(s, ".")
		lastComma := strings.LastIndex(s, ",")
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			last := strings.LastIndex(s, ",")
			s = strings.ReplaceAll(s[:last], ",", "") + "." + s[last+1:]
		} else if lastDot > lastComma {
			s = strings.ReplaceAll(s, ",", "")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("amount %q is not a number", val)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("amount has type %T, want number or string", v)
	}
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
