package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/common"
)

func TestSchemaAcceptsReceiptAndErrorReplies(t *testing.T) {
	schema := BuildReceiptJSONSchema(constants.OperationStrings())

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"full receipt", `{"date_time":"2024-04-05 14:30:00","operation_type":"payment","amount":"120000","currency":"UZS","card_number":"*1234","operator":"UPAY P2P"}`, false},
		{"not a receipt", `{"error":"not a receipt"}`, false},
		{"missing amount", `{"date_time":"2024-04-05 14:30:00","operation_type":"payment"}`, true},
		{"unknown operation", `{"date_time":"2024-04-05 14:30:00","operation_type":"transfer","amount":"1"}`, true},
		{"numeric amount", `{"date_time":"2024-04-05 14:30:00","operation_type":"payment","amount":1}`, true},
		{"unknown key", `{"error":"x","merchant":"y"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSONAgainstSchema(schema, []byte(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateJSONAgainstSchema() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeAndSanitizeJSON(t *testing.T) {
	raw := `{"date":" 2024-04-05 14:30:00 ","type":"Оплата","amount":120000.5,"balance":"1 500,75",
		"currency":"сум","card":"8600 **** **** 4321","merchant":"UPAY P2P","confidence":0.9,"description":""}`

	out, changes, err := NormalizeAndSanitizeJSON([]byte(raw), nil)
	if err != nil {
		t.Fatalf("NormalizeAndSanitizeJSON() error = %v", err)
	}
	if len(changes) == 0 {
		t.Fatal("expected changes to be reported")
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"date_time":      "2024-04-05 14:30:00",
		"operation_type": "payment",
		"amount":         "120000.5",
		"balance":        "1500.75",
		"currency":       "UZS",
		"card_number":    "*4321",
		"operator":       "UPAY P2P",
	}
	if len(got) != len(want) {
		t.Fatalf("got keys %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}

	if err := ValidateJSONAgainstSchema(BuildReceiptJSONSchema(constants.OperationStrings()), out); err != nil {
		t.Fatalf("sanitized document should validate: %v", err)
	}
}

func TestNormalizeAndSanitizeJSONRejectsGarbage(t *testing.T) {
	if _, _, err := NormalizeAndSanitizeJSON([]byte("not json"), nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestToParsedReceipt(t *testing.T) {
	got, err := ToParsedReceipt(ReceiptFields{
		DateTime:      "2024-04-05 14:30:00",
		OperationType: "Refill",
		Amount:        "250000.00",
		Currency:      "uzs",
		CardNumber:    "*9876",
		Balance:       "1000",
		Operator:      " PAYME ",
	})
	if err != nil {
		t.Fatalf("ToParsedReceipt() error = %v", err)
	}
	if got.DateTime != "2024-04-05T14:30:00" {
		t.Errorf("DateTime = %q", got.DateTime)
	}
	if got.OperationType != constants.OperationRefill {
		t.Errorf("OperationType = %q", got.OperationType)
	}
	if got.Amount == nil || got.Amount.String() != "250000" {
		t.Errorf("Amount = %v", got.Amount)
	}
	if got.Balance == nil || got.Balance.String() != "1000" {
		t.Errorf("Balance = %v", got.Balance)
	}
	if got.Currency != "UZS" || got.CardNumber != "*9876" || got.Operator != "PAYME" {
		t.Errorf("unexpected receipt %+v", got)
	}
}

func TestToParsedReceiptErrors(t *testing.T) {
	_, err := ToParsedReceipt(ReceiptFields{Error: "greeting message"})
	if !errors.Is(err, ErrNotReceipt) || !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrNotReceipt", err)
	}

	_, err = ToParsedReceipt(ReceiptFields{DateTime: "2024-04-05 14:30:00", Amount: "lots"})
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
	if err.Error() != "amount: must be a number" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestToParsedReceiptKeepsUnknownValues(t *testing.T) {
	got, err := ToParsedReceipt(ReceiptFields{DateTime: "yesterday", OperationType: "transfer", Amount: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if got.DateTime != "yesterday" || got.OperationType != "transfer" {
		t.Errorf("got %+v", got)
	}
}

func TestBuildUserPromptTruncates(t *testing.T) {
	long := strings.Repeat("я", maxPromptText)
	prompt := BuildUserPrompt(ExtractRequest{Text: long})
	if !strings.HasSuffix(prompt, "(truncated)") {
		t.Fatal("expected truncation marker")
	}
	if !strings.Contains(BuildSystemPrompt(ExtractRequest{AllowedOperations: constants.OperationStrings()}), "payment, refill, conversion, cancel") {
		t.Error("system prompt should list operations")
	}
}
