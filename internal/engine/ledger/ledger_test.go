package ledger

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)

	query := `
	CREATE TABLE companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		minutes_included INTEGER NOT NULL DEFAULT 0,
		minutes_used INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE usage_events (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		booking_id TEXT NOT NULL,
		specialist_id TEXT NOT NULL,
		rate_tier TEXT NOT NULL,
		multiplier REAL NOT NULL,
		duration_minutes INTEGER NOT NULL,
		minutes_charged INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	INSERT INTO companies (id, name, minutes_included, minutes_used) VALUES ('cmp_1', 'Acme', 1000, 0);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

func apply(t *testing.T, db *sql.DB, companyID string, minutes int) error {
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	defer tx.Rollback()

	if err := ApplyCompletionTx(tx, companyID, minutes); err != nil {
		return err
	}
	return tx.Commit()
}

func TestApplyCompletionTx_WriteFailureWrapped(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	// No schema: the UPDATE fails at the driver.

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	defer tx.Rollback()

	if err := ApplyCompletionTx(tx, "cmp_1", 60); !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("Expected ErrWriteFailed, got %v", err)
	}
}

func TestApplyCompletionTx_Increments(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := apply(t, db, "cmp_1", 96); err != nil {
		t.Fatalf("ApplyCompletionTx failed: %v", err)
	}
	if err := apply(t, db, "cmp_1", 60); err != nil {
		t.Fatalf("ApplyCompletionTx failed: %v", err)
	}

	balance, err := NewRepository(db).Balance("cmp_1")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance.MinutesUsed != 156 {
		t.Errorf("Expected 156 minutes used, got %d", balance.MinutesUsed)
	}
	if balance.MinutesRemaining != 844 {
		t.Errorf("Expected 844 minutes remaining, got %d", balance.MinutesRemaining)
	}
	if balance.Overage {
		t.Error("Overage should be false under the allotment")
	}
}

func TestApplyCompletionTx_UnknownCompany(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := apply(t, db, "cmp_missing", 60); err != ErrCompanyNotFound {
		t.Errorf("Expected ErrCompanyNotFound, got %v", err)
	}
}

func TestBalance_OverageAllowed(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := apply(t, db, "cmp_1", 1200); err != nil {
		t.Fatalf("ApplyCompletionTx failed: %v", err)
	}

	balance, err := NewRepository(db).Balance("cmp_1")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if !balance.Overage {
		t.Error("Overage should be true past the allotment")
	}
	if balance.MinutesRemaining != 0 {
		t.Errorf("Remaining clamps at zero, got %d", balance.MinutesRemaining)
	}
	if balance.MinutesUsed != 1200 {
		t.Errorf("Used is never clamped, got %d", balance.MinutesUsed)
	}
}

func TestBalance_MissingCompany(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := NewRepository(db).Balance("cmp_missing"); err != ErrCompanyNotFound {
		t.Errorf("Expected ErrCompanyNotFound, got %v", err)
	}
}

func TestListUsage(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	tx, _ := db.Begin()
	for i, ev := range []*UsageEvent{
		{ID: "use_1", CompanyID: "cmp_1", BookingID: "bkg_1", SpecialistID: "spc_1", RateTier: "master", Multiplier: 3.2, DurationMinutes: 60, MinutesCharged: 192, CreatedAt: 100},
		{ID: "use_2", CompanyID: "cmp_1", BookingID: "bkg_2", SpecialistID: "spc_1", RateTier: "standard", Multiplier: 1.0, DurationMinutes: 30, MinutesCharged: 30, CreatedAt: 200},
	} {
		if err := RecordUsageTx(tx, ev); err != nil {
			t.Fatalf("RecordUsageTx %d failed: %v", i, err)
		}
	}
	tx.Commit()

	events, err := NewRepository(db).ListUsage("cmp_1", 10, 0)
	if err != nil {
		t.Fatalf("ListUsage failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].ID != "use_2" {
		t.Errorf("Expected newest first, got %s", events[0].ID)
	}
}
