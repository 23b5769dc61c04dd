package ledger

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrCompanyNotFound = errors.New("company not found")

	// ErrWriteFailed wraps driver failures on ledger mutations; check it
	// with errors.Is, the wrapped error keeps the cause.
	ErrWriteFailed = errors.New("ledger write failed")
)

// Balance is the company's wellness-minutes position. MinutesUsed may
// exceed MinutesIncluded; overage is an alerting concern, not a hard cap.
type Balance struct {
	CompanyID        string `json:"company_id"`
	MinutesIncluded  int    `json:"minutes_included"`
	MinutesUsed      int    `json:"minutes_used"`
	MinutesRemaining int    `json:"minutes_remaining"`
	Overage          bool   `json:"overage"`
}

// UsageEvent records one completed booking's deduction, with the tier
// arithmetic that produced it.
type UsageEvent struct {
	ID              string  `json:"id"`
	CompanyID       string  `json:"company_id"`
	BookingID       string  `json:"booking_id"`
	SpecialistID    string  `json:"specialist_id"`
	RateTier        string  `json:"rate_tier"`
	Multiplier      float64 `json:"multiplier"`
	DurationMinutes int     `json:"duration_minutes"`
	MinutesCharged  int     `json:"minutes_charged"`
	CreatedAt       int64   `json:"created_at"`
}

// ApplyCompletionTx increments the company's minutes_used inside the
// caller's transaction. The increment happens in SQL, never as a
// read-modify-write from the client, so concurrent completions against the
// same company cannot lose updates.
func ApplyCompletionTx(tx *sql.Tx, companyID string, minutes int) error {
	res, err := tx.Exec(`
		UPDATE companies SET minutes_used = minutes_used + ?, updated_at = ?
		WHERE id = ?
	`, minutes, nowUnix(), companyID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if n == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// RecordUsageTx writes the completion metadata row in the same transaction
// as the balance increment and the booking status flip.
func RecordUsageTx(tx *sql.Tx, ev *UsageEvent) error {
	_, err := tx.Exec(`
		INSERT INTO usage_events (id, company_id, booking_id, specialist_id, rate_tier, multiplier, duration_minutes, minutes_charged, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.CompanyID, ev.BookingID, ev.SpecialistID, ev.RateTier, ev.Multiplier, ev.DurationMinutes, ev.MinutesCharged, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}
