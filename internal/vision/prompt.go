package vision

import (
	"strings"

	"github.com/fireto/receit-processor/internal/config"
)

// buildPrompt assembles the shared extraction prompt. The closed sets
// are spelled out so backends choose only configured values.
func buildPrompt() string {
	basePrompt :=
		"You are a receipt parser for Bulgarian household expenses.\n" +
			"Given a photo of a receipt, extract the following information and return ONLY valid JSON (no markdown, no code fences):\n\n" +
			"{\n" +
			"  \"date\": \"DD.MM.YYYY\",\n" +
			"  \"total_eur\": 12.34,\n" +
			"  \"category\": \"one of the allowed categories\",\n" +
			"  \"payment_method\": \"one of the allowed payment methods or null\",\n" +
			"  \"notes\": \"brief description of main items in Bulgarian, 3-5 words\",\n" +
			"  \"bulstat\": \"company БУЛСТАТ/ЕИК number or null\"\n" +
			"}\n\n" +
			"Allowed categories: " + strings.Join(config.Categories, ", ") + "\n\n" +
			"Allowed payment methods: " + strings.Join(config.PaymentMethods, ", ") + "\n\n"

	rulesPrompt :=
		"Rules:\n" +
			"- Date format must be DD.MM.YYYY\n" +
			"- total_eur must be the final total as a number (EUR amount)\n" +
			"- category MUST be exactly one from the allowed list — pick the best match\n" +
			"- payment_method: pick from allowed list if visible on receipt, otherwise null\n" +
			"- notes: short Bulgarian summary of what was purchased\n" +
			"- bulstat: the seller's БУЛСТАТ or ЕИК number (usually 9-13 digits, often near the top of the receipt). Return null if not visible.\n" +
			"- If the receipt is unclear, make your best guess\n"

	return basePrompt + rulesPrompt
}
