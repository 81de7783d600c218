package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/tbcparser/constants"
	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/entity"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, common.DatabaseConfig{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "tbc.db") + "?_time_format=sqlite",
	}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	// idempotent
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), common.DatabaseConfig{Driver: "mysql", DSN: "x"}, nil)
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestHealthCheck(t *testing.T) {
	db := newTestDB(t)
	if err := db.HealthCheck(context.Background(), time.Second); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
}

func TestUserGetOrCreate(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(newTestDB(t), nil)

	if _, err := users.GetByTelegramID(ctx, 42); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("GetByTelegramID() error = %v, want ErrNotFound", err)
	}

	first, err := users.GetOrCreate(ctx, 42, "alice")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	second, err := users.GetOrCreate(ctx, 42, "ignored")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if first.ID != second.ID || second.Username != "alice" {
		t.Errorf("first = %+v, second = %+v", first, second)
	}
}

func TestOperatorListForUserShadowsGlobals(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db, nil)
	ops := NewOperatorRepository(db, nil)

	u, err := users.GetOrCreate(ctx, 7, "")
	if err != nil {
		t.Fatal(err)
	}
	other, err := users.GetOrCreate(ctx, 8, "")
	if err != nil {
		t.Fatal(err)
	}

	create := func(name, desc string, owner *int64) entity.Operator {
		t.Helper()
		op := entity.Operator{Name: name, Description: desc, UserID: owner}
		if err := ops.Create(ctx, &op); err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
		return op
	}
	create("UPAY", "upay app", nil)
	create("PAYME", "payme", nil)
	mine := create("UPAY", "my upay", &u.ID)
	create("CLICK", "click", &other.ID)

	got, err := ops.ListForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	var names []string
	for _, op := range got {
		names = append(names, op.Name)
	}
	if len(got) != 2 || got[0].ID != mine.ID || got[1].Name != "PAYME" {
		t.Fatalf("ListForUser() = %v", names)
	}

	if err := ops.Create(ctx, &entity.Operator{Name: "UPAY", UserID: &u.ID}); !errors.Is(err, common.ErrDuplicate) {
		t.Errorf("duplicate personal operator error = %v", err)
	}
	if err := ops.Create(ctx, &entity.Operator{Name: "  "}); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("blank name error = %v", err)
	}

	global, err := ops.ListGlobal(ctx)
	if err != nil || len(global) != 2 {
		t.Fatalf("ListGlobal() = %v, %v", global, err)
	}

	byID, err := ops.GetByID(ctx, mine.ID)
	if err != nil || byID.UserID == nil || *byID.UserID != u.ID {
		t.Fatalf("GetByID() = %+v, %v", byID, err)
	}
	if _, err := ops.GetByID(ctx, 9999); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v", err)
	}
}

func TestFindByDescription(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ops := NewOperatorRepository(db, nil)
	for _, op := range []entity.Operator{
		{Name: "Humans", Description: "mobile operator"},
		{Name: "Click", Description: "click evolution wallet"},
	} {
		if err := ops.Create(ctx, &op); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		text string
		want string
	}{
		{"Оплата HUMANS tariff", "Humans"},
		{"wallet top up", "Click"},
		{"nothing here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ops.FindByDescription(ctx, tt.text, nil)
			if tt.want == "" {
				if !errors.Is(err, common.ErrNotFound) {
					t.Fatalf("error = %v, want ErrNotFound", err)
				}
				return
			}
			if err != nil || got.Name != tt.want {
				t.Fatalf("FindByDescription() = %+v, %v, want %s", got, err, tt.want)
			}
		})
	}
}

func TestTransactionsCreateFindList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u, err := NewUserRepository(db, nil).GetOrCreate(ctx, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	op := entity.Operator{Name: "UPAY P2P"}
	if err := NewOperatorRepository(db, nil).Create(ctx, &op); err != nil {
		t.Fatal(err)
	}
	txs := NewTransactionRepository(db, nil)

	balance := decimal.RequireFromString("935000.4")
	first := entity.Transaction{
		UserID:        u.ID,
		OperatorID:    &op.ID,
		DateTime:      time.Date(2024, 4, 5, 14, 30, 0, 0, time.UTC),
		OperationType: constants.OperationPayment,
		Amount:        decimal.RequireFromString("6000000"),
		Currency:      "UZS",
		CardNumber:    "*6714",
		Balance:       &balance,
		RawText:       "UPAY P2P: Оплата 6000000 UZS, карта *6714, баланс 935000.4",
		ParsedBy:      "rules",
	}
	second := entity.Transaction{
		UserID:        u.ID,
		DateTime:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		OperationType: constants.OperationRefill,
		Amount:        decimal.RequireFromString("400000.50"),
		Currency:      "UZS",
		RawText:       "OQ P2P, UZ: Пополнение 400000,50 UZS",
		ParsedBy:      "rules",
	}
	for _, tx := range []*entity.Transaction{&second, &first} {
		if err := txs.Create(ctx, tx); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if tx.ID == 0 {
			t.Fatal("Create() should assign an id")
		}
	}

	found, err := txs.FindByRawText(ctx, u.ID, first.RawText)
	if err != nil {
		t.Fatalf("FindByRawText() error = %v", err)
	}
	if found.ID != first.ID || found.OperatorName != "UPAY P2P" || found.Balance == nil || !found.Balance.Equal(balance) {
		t.Errorf("found = %+v", found)
	}
	if _, err := txs.FindByRawText(ctx, u.ID+1, first.RawText); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("other user's text error = %v", err)
	}

	all, err := txs.List(ctx, u.ID, nil, nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 || all[0].ID != first.ID || all[1].ID != second.ID {
		t.Fatalf("List() = %+v", all)
	}
	if !all[1].Amount.Equal(decimal.RequireFromString("400000.5")) || all[1].Balance != nil || all[1].OperatorID != nil {
		t.Errorf("second = %+v", all[1])
	}
	if !all[0].DateTime.Equal(first.DateTime) {
		t.Errorf("DateTime = %v, want %v", all[0].DateTime, first.DateTime)
	}

	from := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	ranged, err := txs.List(ctx, u.ID, &from, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranged) != 1 || ranged[0].ID != second.ID {
		t.Fatalf("List(from) = %+v", ranged)
	}
}
