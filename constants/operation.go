package constants

import (
	"strings"
)

// OperationType is the canonical transaction kind stored on a receipt.
type OperationType string

const (
	OperationPayment    OperationType = "payment"
	OperationRefill     OperationType = "refill"
	OperationConversion OperationType = "conversion"
	OperationCancel     OperationType = "cancel"
)

// allOperations is also the classification priority order.
var allOperations = []OperationType{
	OperationPayment,
	OperationRefill,
	OperationConversion,
	OperationCancel,
}

var operationKeywords = map[OperationType][]string{
	OperationPayment:    {"оплата", "oplata", "покупка", "pokupka", "списание", "платеж", "платёж", "payment", "purchase"},
	OperationRefill:     {"пополнение", "popolnenie", "зачисление", "поступление", "refill", "top up", "topup"},
	OperationConversion: {"конверсия", "konversiya", "обмен", "conversion"},
	OperationCancel:     {"отмена", "otmena", "возврат", "cancel", "reversal"},
}

// Operations returns the operation types in priority order.
func Operations() []OperationType {
	return append([]OperationType(nil), allOperations...)
}

// OperationStrings returns the operation types as plain strings.
func OperationStrings() []string {
	result := make([]string, len(allOperations))
	for i, op := range allOperations {
		result[i] = string(op)
	}
	return result
}

// OperationKeywords returns the lowercase keywords that mark op.
func OperationKeywords(op OperationType) []string {
	return operationKeywords[op]
}

// ClassifyOperation finds the first operation type, in priority order, whose keyword occurs in text.
func ClassifyOperation(text string) (OperationType, bool) {
	lowered := strings.ToLower(text)
	for _, op := range allOperations {
		for _, kw := range operationKeywords[op] {
			if strings.Contains(lowered, kw) {
				return op, true
			}
		}
	}
	return "", false
}

// CanonicalizeOperation maps a loosely written operation name onto the enum.
func CanonicalizeOperation(input string) (OperationType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}
	for _, op := range allOperations {
		if normalized == string(op) {
			return op, true
		}
	}
	return ClassifyOperation(normalized)
}
