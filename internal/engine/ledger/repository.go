package ledger

import (
	"database/sql"
	"time"
)

func nowUnix() int64 {
	return time.Now().Unix()
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Balance(companyID string) (*Balance, error) {
	var included, used int
	err := r.db.QueryRow(`
		SELECT minutes_included, minutes_used FROM companies WHERE id = ?
	`, companyID).Scan(&included, &used)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	remaining := included - used
	if remaining < 0 {
		remaining = 0
	}

	return &Balance{
		CompanyID:        companyID,
		MinutesIncluded:  included,
		MinutesUsed:      used,
		MinutesRemaining: remaining,
		Overage:          used > included,
	}, nil
}

func (r *Repository) ListUsage(companyID string, limit, offset int) ([]*UsageEvent, error) {
	rows, err := r.db.Query(`
		SELECT id, company_id, booking_id, specialist_id, rate_tier, multiplier, duration_minutes, minutes_charged, created_at
		FROM usage_events
		WHERE company_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*UsageEvent
	for rows.Next() {
		ev := &UsageEvent{}
		if err := rows.Scan(&ev.ID, &ev.CompanyID, &ev.BookingID, &ev.SpecialistID, &ev.RateTier, &ev.Multiplier, &ev.DurationMinutes, &ev.MinutesCharged, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
