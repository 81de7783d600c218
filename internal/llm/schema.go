package llm

// BuildReceiptJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is sent to the model as a formatting constraint and reused locally to validate the reply.
// A reply carrying only "error" is valid; the adapter turns it into a failure.
func BuildReceiptJSONSchema(allowedOperations []string) map[string]any {
	props := map[string]any{
		"date_time":      map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(:\d{2})?$`},
		"operation_type": map[string]any{"type": "string", "minLength": 1},
		"amount":         decimalProp(),
		"currency":       map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
		"card_number":    map[string]any{"type": "string", "pattern": `^\*\d{4}$`},
		"description":    map[string]any{"type": "string"},
		"balance":        decimalProp(),
		"operator":       map[string]any{"type": "string"},
		"error":          map[string]any{"type": "string", "minLength": 1},
	}

	if len(allowedOperations) > 0 {
		props["operation_type"] = map[string]any{
			"type": "string",
			"enum": allowedOperations,
		}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"anyOf": []any{
			map[string]any{"required": []string{"error"}},
			map[string]any{"required": []string{"date_time", "operation_type", "amount"}},
		},
	}
}

func decimalProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d+(\.\d{1,2})?$`,
	}
}
