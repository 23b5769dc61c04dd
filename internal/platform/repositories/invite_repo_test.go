package repositories

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"wellspace/internal/platform/models"
)

func setupInviteTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// In-memory sqlite is per-connection; keep the pool at one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE invites (
			id TEXT PRIMARY KEY,
			code TEXT UNIQUE NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'specialist',
			invited_by TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			max_uses INTEGER NOT NULL DEFAULT 1,
			current_uses INTEGER NOT NULL DEFAULT 0,
			expires_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func seedInvite(t *testing.T, repo *InviteRepository, id string, maxUses int) *models.Invite {
	t.Helper()
	now := time.Now().Unix()
	inv := &models.Invite{
		ID:        id,
		Code:      "CODE" + id,
		Role:      "specialist",
		InvitedBy: "usr_admin",
		Status:    "pending",
		MaxUses:   maxUses,
		ExpiresAt: now + 3600,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(inv); err != nil {
		t.Fatalf("create invite: %v", err)
	}
	return inv
}

func incrementUses(t *testing.T, db *sql.DB, repo *InviteRepository, id string) error {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	if err := repo.IncrementUsesTx(tx, id); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return nil
}

func TestInviteRepository_IncrementStopsAtMaxUses(t *testing.T) {
	db := setupInviteTestDB(t)
	repo := NewInviteRepository(db)
	inv := seedInvite(t, repo, "inv_1", 2)

	for i := 0; i < inv.MaxUses; i++ {
		if err := incrementUses(t, db, repo, inv.ID); err != nil {
			t.Fatalf("use %d: %v", i+1, err)
		}
	}
	if err := incrementUses(t, db, repo, inv.ID); err != sql.ErrNoRows {
		t.Fatalf("expected ErrNoRows once uses are exhausted, got %v", err)
	}

	got, err := repo.GetByCode(inv.Code)
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if got.CurrentUses != inv.MaxUses {
		t.Fatalf("current_uses = %d, want %d", got.CurrentUses, inv.MaxUses)
	}
}

func TestInviteRepository_IncrementRejectsRevoked(t *testing.T) {
	db := setupInviteTestDB(t)
	repo := NewInviteRepository(db)
	inv := seedInvite(t, repo, "inv_1", 5)

	if err := repo.Revoke(inv.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := incrementUses(t, db, repo, inv.ID); err != sql.ErrNoRows {
		t.Fatalf("expected ErrNoRows for revoked invite, got %v", err)
	}
}

func TestInviteRepository_GetByCodeMissing(t *testing.T) {
	db := setupInviteTestDB(t)
	repo := NewInviteRepository(db)

	inv, err := repo.GetByCode("NOPE")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if inv != nil {
		t.Fatalf("expected nil for unknown code, got %+v", inv)
	}
}
