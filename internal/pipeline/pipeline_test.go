package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/dictionary"
	"github.com/joseph-ayodele/tbcparser/internal/enrich"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
	"github.com/joseph-ayodele/tbcparser/internal/extract"
)

const humansDict = `{
  "version": 1,
  "operators": {
    "Humans": {
      "display_name": "Humans",
      "applications": ["Humans"],
      "description": "Humans fintech",
      "category": "digital_wallet",
      "country": "UZ",
      "tags": ["wallet", "telecom"]
    }
  },
  "applications": {
    "Humans": {"operator": "Humans", "platforms": ["ios", "android"], "tags": ["wallet", "p2p"]}
  },
  "aliases": [
    {"alias": "UZ", "operator": "Generic"},
    {"alias": "UPAY P2P, UZ", "operator": "Humans", "application": "Humans"}
  ]
}`

func newPipeline(t *testing.T, extractor extract.Extractor) *Pipeline {
	t.Helper()
	snap, err := dictionary.Parse([]byte(humansDict), ".json")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	dict := dictionary.NewFromSnapshot(snap, "", nil)
	if extractor == nil {
		extractor = extract.NewRules(nil)
	}
	return New(nil, extractor, enrich.NewMerger(dict, nil))
}

func TestParseDraftEndToEnd(t *testing.T) {
	p := newPipeline(t, nil)
	got, err := p.ParseDraft(context.Background(), "UPAY P2P, UZ\nСумма: 120 000 UZS\nБаланс: 45 000 UZS", nil)
	if err != nil {
		t.Fatalf("ParseDraft() error = %v", err)
	}

	checks := map[string][2]string{
		"operator":             {got.Operator, "UPAY P2P, UZ"},
		"operator_name":        {got.OperatorName, "Humans"},
		"operator_description": {got.OperatorDescription, "Humans fintech"},
		"operator_application": {got.OperatorApplication, "Humans"},
		"operator_normalized":  {got.OperatorNormalized, "UPAY P2P UZ"},
		"operator_category":    {got.OperatorCategory, "digital_wallet"},
		"operator_country":     {got.OperatorCountry, "UZ"},
		"currency":             {got.Currency, "UZS"},
		"operator_raw":         {got.OperatorRaw, ""},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", field, c[0], c[1])
		}
	}
	if got.Amount == nil || !got.Amount.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("amount = %v, want 120000", got.Amount)
	}
	if got.Balance == nil || !got.Balance.Equal(decimal.NewFromInt(45000)) {
		t.Errorf("balance = %v, want 45000", got.Balance)
	}
	if strings.Join(got.OperatorApplicationPlatforms, ",") != "ios,android" {
		t.Errorf("platforms = %v", got.OperatorApplicationPlatforms)
	}
}

func TestParseValid(t *testing.T) {
	p := newPipeline(t, nil)
	text := "UPAY P2P, UZ\n12.05.2024 08:45\nОплата\nСумма: 120 000 UZS\nКарта: *4455"
	records := []entity.OperatorRecord{{ID: 42, Name: "Upay", Description: "personal"}}

	got, err := p.Parse(context.Background(), text, records)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.OperationType != constants.OperationPayment || got.DateTime != "2024-05-12T08:45:00" {
		t.Errorf("unexpected core fields %+v", got)
	}
	if got.OperatorID == nil || *got.OperatorID != 42 || got.OperatorName != "Upay" {
		t.Errorf("record match missing: %+v", got)
	}
}

func TestParseValidationAggregates(t *testing.T) {
	p := newPipeline(t, nil)
	_, err := p.Parse(context.Background(), "UPAY P2P, UZ\nБаланс: 45 000 UZS", nil)
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("Parse() error = %v, want validation error", err)
	}
	var verr *common.ValidationErrors
	if !errors.As(err, &verr) {
		t.Fatalf("error is %T, want *common.ValidationErrors", err)
	}
	want := "date_time: field is required; operation_type: field is required; amount: field is required"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestValidate(t *testing.T) {
	amount := decimal.NewFromInt(100)
	zero := decimal.Zero
	negative := decimal.NewFromInt(-1)
	base := entity.ParsedReceipt{
		DateTime:      "2024-05-12T08:45:00",
		OperationType: constants.OperationRefill,
		Amount:        &amount,
	}

	tests := []struct {
		name    string
		mutate  func(r *entity.ParsedReceipt)
		wantErr string
	}{
		{"valid", func(r *entity.ParsedReceipt) {}, ""},
		{"bad operation", func(r *entity.ParsedReceipt) { r.OperationType = "gift" }, "operation_type: invalid value"},
		{"bad date", func(r *entity.ParsedReceipt) { r.DateTime = "12/05/2024" }, "date_time: invalid date format"},
		{"zone date accepted", func(r *entity.ParsedReceipt) { r.DateTime = "2024-05-12T08:45:00Z" }, ""},
		{"zero amount", func(r *entity.ParsedReceipt) { r.Amount = &zero }, "amount: must be greater than zero"},
		{"negative balance", func(r *entity.ParsedReceipt) { r.Balance = &negative }, "balance: must not be negative"},
		{"bad card", func(r *entity.ParsedReceipt) { r.CardNumber = "1234" }, "card_number: must look like *NNNN"},
		{"bad currency", func(r *entity.ParsedReceipt) { r.Currency = "sum" }, "currency: must be 3 uppercase letters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			err := Validate(r)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestBatch(t *testing.T) {
	p := newPipeline(t, nil)
	texts := []string{
		"UPAY P2P, UZ\n12.05.2024 08:45\nОплата\nСумма: 1 000 UZS",
		"garbage",
		"Пополнение\n2024-05-13 10:00\nСумма: 5 000 UZS",
	}
	results := p.Batch(context.Background(), texts, nil)
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results[%d].Index = %d", i, r.Index)
		}
	}
	if results[0].Err != nil || results[0].Receipt == nil {
		t.Errorf("item 0 failed: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, common.ErrValidation) {
		t.Errorf("item 1 error = %v, want validation", results[1].Err)
	}
	if results[2].Err != nil || results[2].Receipt.OperationType != constants.OperationRefill {
		t.Errorf("item 2 = %+v", results[2])
	}
}

func TestBatchCancelled(t *testing.T) {
	p := newPipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := p.Batch(ctx, []string{"a", "b"}, nil)
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("item %d error = %v, want context.Canceled", r.Index, r.Err)
		}
	}
}

func TestFallbackExtractor(t *testing.T) {
	failing := extract.ExtractorFunc(func(ctx context.Context, text string) (entity.ParsedReceipt, error) {
		return entity.ParsedReceipt{}, errors.New("backend unavailable")
	})
	p := newPipeline(t, extract.NewFallback(failing, extract.NewRules(nil), nil))
	got, err := p.Parse(context.Background(), "Оплата\n12.05.2024 08:45\nСумма: 10 UZS", nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Amount == nil || !got.Amount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("amount = %v", got.Amount)
	}
}
