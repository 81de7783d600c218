package schema

import (
	"errors"
	"testing"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"

	"github.com/joseph-ayodele/tbcparser/db/ent/schema/utils"
)

func descriptor(t *testing.T, fields []ent.Field, name string) *field.Descriptor {
	t.Helper()
	for _, f := range fields {
		d := f.Descriptor()
		if d.Name == name {
			if d.Err != nil {
				t.Fatalf("field %s: %v", name, d.Err)
			}
			return d
		}
	}
	t.Fatalf("field %s not found", name)
	return nil
}

func runStringValidators(d *field.Descriptor, v string) error {
	for _, fn := range d.Validators {
		if err := fn.(func(string) error)(v); err != nil {
			return err
		}
	}
	return nil
}

func TestTransactionFields(t *testing.T) {
	fields := Transaction{}.Fields()

	for _, name := range []string{"amount", "balance"} {
		d := descriptor(t, fields, name)
		if d.SchemaType["postgres"] != "numeric(18,2)" || d.SchemaType["sqlite3"] != "text" {
			t.Errorf("%s: unexpected schema types %v", name, d.SchemaType)
		}
	}
	if !descriptor(t, fields, "balance").Optional {
		t.Error("balance must be optional")
	}

	op := descriptor(t, fields, "operation_type")
	for _, v := range []string{"payment", "refill", "conversion", "cancel"} {
		if err := runStringValidators(op, v); err != nil {
			t.Errorf("operation %q rejected: %v", v, err)
		}
	}
	if err := runStringValidators(op, "transfer"); !errors.Is(err, utils.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	card := descriptor(t, fields, "card_number")
	tests := []struct {
		in string
		ok bool
	}{
		{"", true},
		{"*4455", true},
		{"4455", false},
		{"*44556", false},
	}
	for _, tt := range tests {
		if err := runStringValidators(card, tt.in); (err == nil) != tt.ok {
			t.Errorf("card %q: ok=%v, err=%v", tt.in, tt.ok, err)
		}
	}
}

func TestEdgesAndIndexes(t *testing.T) {
	if got := len(User{}.Edges()); got != 2 {
		t.Errorf("user edges: expected 2, got %d", got)
	}
	if got := len(Operator{}.Edges()); got != 2 {
		t.Errorf("operator edges: expected 2, got %d", got)
	}
	if got := len(Transaction{}.Indexes()); got != 1 {
		t.Errorf("transaction indexes: expected 1, got %d", got)
	}
	if d := descriptor(t, Operator{}.Fields(), "user_id"); !d.Optional || !d.Nillable {
		t.Error("operator owner must be optional")
	}
}
