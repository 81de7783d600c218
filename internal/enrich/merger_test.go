package enrich

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/joseph-ayodele/tbcparser/internal/dictionary"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

const testDict = `{
  "version": 1,
  "operators": {
    "Humans": {
      "display_name": "Humans",
      "applications": ["Humans"],
      "description": "Humans fintech",
      "category": "digital_wallet",
      "country": "UZ",
      "tags": ["wallet", "telecom"]
    },
    "Payme": {"description": "Payme payments", "applications": ["Payme App"]},
    "Click": {"category": "payments"}
  },
  "applications": {
    "Humans": {"operator": "Humans", "platforms": ["ios", "android"], "tags": ["wallet", "p2p"]},
    "Payme App": {"platforms": ["web"]},
    "Orphan App": {"brand": "Orphan Corp", "tags": ["misc"]}
  },
  "aliases": [
    {"alias": "UPAY P2P, UZ", "operator": "Humans", "application": "Humans"},
    {"alias": "PAYME", "operator": "Payme"},
    {"alias": "Tenge 24", "operator": "Tenge Bank"},
    {"alias": "ORPHAN PAY", "operator": "", "application": "Orphan App"}
  ]
}`

func newMerger(t *testing.T) *Merger {
	t.Helper()
	snap, err := dictionary.Parse([]byte(testDict), ".json")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return NewMerger(dictionary.NewFromSnapshot(snap, "", nil), nil)
}

func TestEnrichHumans(t *testing.T) {
	m := newMerger(t)
	got := m.Enrich(entity.ParsedReceipt{Operator: "UPAY P2P, UZ"}, nil)

	want := entity.ParsedReceipt{
		Operator:                     "UPAY P2P, UZ",
		OperatorNormalized:           "UPAY P2P UZ",
		OperatorName:                 "Humans",
		OperatorBrand:                "Humans",
		OperatorDescription:          "Humans fintech",
		OperatorCategory:             "digital_wallet",
		OperatorCountry:              "UZ",
		OperatorTags:                 []string{"wallet", "telecom"},
		OperatorApplication:          "Humans",
		OperatorApplicationTags:      []string{"wallet", "p2p"},
		OperatorApplicationPlatforms: []string{"ios", "android"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Enrich() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestEnrichWithHoldsOneGeneration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operators.json")
	if err := os.WriteFile(path, []byte(testDict), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := dictionary.New(path, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	m := NewMerger(d, nil)
	old := d.Snapshot()

	next := `{"operators": {"Humans": {"display_name": "Humans", "description": "Humans v2"}},
		"aliases": [{"alias": "UPAY P2P, UZ", "operator": "Humans"}]}`
	if err := os.WriteFile(path, []byte(next), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	draft := entity.ParsedReceipt{Operator: "UPAY P2P, UZ"}
	got := m.EnrichWith(old, draft, nil)
	if got.OperatorDescription != "Humans fintech" || got.OperatorCategory != "digital_wallet" ||
		got.OperatorApplication != "Humans" || !reflect.DeepEqual(got.OperatorApplicationPlatforms, []string{"ios", "android"}) {
		t.Errorf("EnrichWith(old) mixed generations: %+v", got)
	}

	got = m.Enrich(draft, nil)
	if got.OperatorName != "Humans" || got.OperatorDescription != "Humans v2" || got.OperatorCategory != "" {
		t.Errorf("Enrich() after reload = %+v", got)
	}
}

func TestEnrichNoOperatorIsNoop(t *testing.T) {
	m := newMerger(t)
	draft := entity.ParsedReceipt{Description: "coffee", Currency: "UZS"}
	got := m.Enrich(draft, []entity.OperatorRecord{{ID: 1, Name: "Anything"}})
	if !reflect.DeepEqual(got, draft) {
		t.Errorf("Enrich() = %+v, want unchanged draft", got)
	}
}

func TestEnrichKeepsRawCandidate(t *testing.T) {
	m := newMerger(t)
	got := m.Enrich(entity.ParsedReceipt{Operator: "upay p2p uz"}, nil)
	if got.Operator != "UPAY P2P, UZ" {
		t.Errorf("Operator = %q, want resolved alias", got.Operator)
	}
	if got.OperatorRaw != "upay p2p uz" {
		t.Errorf("OperatorRaw = %q, want the raw candidate", got.OperatorRaw)
	}
}

func TestEnrichApplicationFromOperatorMetadata(t *testing.T) {
	m := newMerger(t)
	got := m.Enrich(entity.ParsedReceipt{Operator: "PAYME P2P"}, nil)
	if got.OperatorName != "PAYME" {
		t.Errorf("OperatorName = %q, want alias when display_name missing", got.OperatorName)
	}
	if got.OperatorApplication != "Payme App" {
		t.Errorf("OperatorApplication = %q", got.OperatorApplication)
	}
	if !reflect.DeepEqual(got.OperatorApplicationPlatforms, []string{"web"}) {
		t.Errorf("OperatorApplicationPlatforms = %v", got.OperatorApplicationPlatforms)
	}
}

func TestEnrichBrandWithoutMetadata(t *testing.T) {
	m := newMerger(t)
	got := m.Enrich(entity.ParsedReceipt{Operator: "TENGE 24 P2P UZCARD HUMO, UZ"}, nil)
	if got.OperatorBrand != "Tenge Bank" || got.OperatorName != "Tenge Bank" {
		t.Errorf("brand/name = %q/%q", got.OperatorBrand, got.OperatorName)
	}
	if got.OperatorNormalized != "TENGE 24" {
		t.Errorf("OperatorNormalized = %q", got.OperatorNormalized)
	}
}

func TestEnrichUnknownOperator(t *testing.T) {
	m := newMerger(t)
	got := m.Enrich(entity.ParsedReceipt{Operator: "Unknown provider"}, nil)
	if got.Operator != "Unknown provider" || got.OperatorRaw != "" {
		t.Errorf("Operator/raw = %q/%q", got.Operator, got.OperatorRaw)
	}
	if got.OperatorNormalized != "UNKNOWN PROVIDER" {
		t.Errorf("OperatorNormalized = %q", got.OperatorNormalized)
	}
	if got.OperatorName != "" || got.OperatorBrand != "" {
		t.Errorf("unexpected metadata %+v", got)
	}
}

func TestEnrichRecordMatch(t *testing.T) {
	m := newMerger(t)
	tests := []struct {
		name     string
		records  []entity.OperatorRecord
		wantID   int64
		wantName string
		wantDesc string
	}{
		{
			name:     "record description wins",
			records:  []entity.OperatorRecord{{ID: 7, Name: "Upay", Description: "my wallet"}},
			wantID:   7,
			wantName: "Upay",
			wantDesc: "my wallet",
		},
		{
			name:     "empty record description keeps dictionary",
			records:  []entity.OperatorRecord{{ID: 8, Name: "UPAY P2P UZ"}},
			wantID:   8,
			wantName: "UPAY P2P UZ",
			wantDesc: "Humans fintech",
		},
		{
			name: "first match wins",
			records: []entity.OperatorRecord{
				{ID: 1, Name: "Beeline"},
				{ID: 2, Name: "P2P"},
				{ID: 3, Name: "UPAY P2P, UZ"},
			},
			wantID:   2,
			wantName: "P2P",
			wantDesc: "Humans fintech",
		},
		{
			name:    "blank names are ignored",
			records: []entity.OperatorRecord{{ID: 4, Name: "  "}, {ID: 5, Name: "Beeline"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Enrich(entity.ParsedReceipt{Operator: "UPAY P2P, UZ"}, tt.records)
			if tt.wantID == 0 {
				if got.OperatorID != nil {
					t.Fatalf("OperatorID = %d, want none", *got.OperatorID)
				}
				if got.OperatorName != "Humans" || got.OperatorDescription != "Humans fintech" {
					t.Errorf("dictionary defaults lost: %q/%q", got.OperatorName, got.OperatorDescription)
				}
				return
			}
			if got.OperatorID == nil || *got.OperatorID != tt.wantID {
				t.Fatalf("OperatorID = %v, want %d", got.OperatorID, tt.wantID)
			}
			if got.OperatorName != tt.wantName {
				t.Errorf("OperatorName = %q, want %q", got.OperatorName, tt.wantName)
			}
			if got.OperatorDescription != tt.wantDesc {
				t.Errorf("OperatorDescription = %q, want %q", got.OperatorDescription, tt.wantDesc)
			}
		})
	}
}

func TestEnrichBrandFallbackDescription(t *testing.T) {
	m := newMerger(t)
	got := m.Enrich(entity.ParsedReceipt{Operator: "Tenge 24"}, []entity.OperatorRecord{{ID: 9, Name: "Tenge"}})
	if got.OperatorDescription != "Tenge Bank" {
		t.Errorf("OperatorDescription = %q, want brand fallback", got.OperatorDescription)
	}
}
