package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"wellspace/internal/engine/ledger"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(b *Booking) error {
	_, err := r.db.Exec(`
		INSERT INTO bookings (
			id, company_id, employee_id, specialist_id, status,
			proposed_at, duration_minutes, session_type, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID,
		b.CompanyID,
		b.EmployeeID,
		b.SpecialistID,
		b.Status,
		b.ProposedAt,
		b.DurationMinutes,
		b.SessionType,
		b.Notes,
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}

func (r *Repository) GetByID(id string) (*Booking, error) {
	row := r.db.QueryRow(selectBooking+` WHERE id = ?`, id)
	return scanBooking(row)
}

func (r *Repository) ListByEmployee(employeeID string, limit, offset int) ([]*Booking, error) {
	rows, err := r.db.Query(selectBooking+`
		WHERE employee_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *Repository) ListBySpecialist(specialistID string, limit, offset int) ([]*Booking, error) {
	rows, err := r.db.Query(selectBooking+`
		WHERE specialist_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, specialistID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// Accept flips pending -> approved. The WHERE clause carries the expected
// prior status: if another actor got there first, zero rows match and the
// caller gets ErrInvalidTransition. Stateless API instances race through
// the store, not through in-process locks.
func (r *Repository) Accept(id string, confirmedAt int64, meetingLink string) error {
	res, err := r.db.Exec(`
		UPDATE bookings
		SET status = ?, confirmed_at = ?, meeting_link = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, StatusApproved, confirmedAt, meetingLink, time.Now().Unix(), id, StatusPending)
	return oneRowOrInvalid(res, err)
}

// ExistsByMeetingLink backs room-code collision checks during provisioning.
func (r *Repository) ExistsByMeetingLink(link string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM bookings WHERE meeting_link = ?)`, link).Scan(&exists)
	return exists, err
}

func (r *Repository) Decline(id string) error {
	res, err := r.db.Exec(`
		UPDATE bookings
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, StatusDeclined, time.Now().Unix(), id, StatusPending)
	return oneRowOrInvalid(res, err)
}

// Cancel requires the prior status observed by the caller, so a cancel that
// races a complete (or another cancel) fails instead of silently winning.
func (r *Repository) Cancel(id string, from Status, cancelledBy string) error {
	res, err := r.db.Exec(`
		UPDATE bookings
		SET status = ?, cancelled_by = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, StatusCancelled, cancelledBy, time.Now().Unix(), id, from)
	return oneRowOrInvalid(res, err)
}

// Complete is the one place minutes leave a company's plan. The status
// flip, the ledger increment and the usage-event row commit as a single
// transaction: either all three happen or none do. The conditional flip
// doubles as the idempotency guard; a second complete matches zero rows
// and the deduction never re-applies.
func (r *Repository) Complete(b *Booking, tier RateTier, multiplier float64, minutes int, completedAt int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE bookings
		SET status = ?, completed_at = ?, rate_tier = ?, multiplier = ?, minutes_charged = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, StatusCompleted, completedAt, string(tier), multiplier, minutes, time.Now().Unix(), b.ID, StatusApproved)
	if err := oneRowOrInvalid(res, err); err != nil {
		return err
	}

	if err := ledger.ApplyCompletionTx(tx, b.CompanyID, minutes); err != nil {
		return err
	}

	if err := ledger.RecordUsageTx(tx, &ledger.UsageEvent{
		ID:              "use_" + uuid.NewString(),
		CompanyID:       b.CompanyID,
		BookingID:       b.ID,
		SpecialistID:    b.SpecialistID,
		RateTier:        string(tier),
		Multiplier:      multiplier,
		DurationMinutes: b.DurationMinutes,
		MinutesCharged:  minutes,
		CreatedAt:       completedAt,
	}); err != nil {
		return err
	}

	return tx.Commit()
}

// ExpirePending cancels pending bookings whose proposed time passed the
// cutoff. Same conditional shape as Cancel, in bulk.
func (r *Repository) ExpirePending(cutoff int64) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE bookings
		SET status = ?, cancelled_by = 'system', updated_at = ?
		WHERE status = ? AND created_at < ?
	`, StatusCancelled, time.Now().Unix(), StatusPending, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func oneRowOrInvalid(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidTransition
	}
	return nil
}

const selectBooking = `
	SELECT id, company_id, employee_id, specialist_id, status,
	       proposed_at, confirmed_at, duration_minutes, session_type, notes,
	       meeting_link, cancelled_by, completed_at,
	       rate_tier, multiplier, minutes_charged,
	       created_at, updated_at
	FROM bookings`

func scanBooking(s interface {
	Scan(dest ...interface{}) error
}) (*Booking, error) {
	var b Booking
	var confirmedAt, completedAt sql.NullInt64
	var notes, meetingLink, cancelledBy, rateTier sql.NullString
	var multiplier sql.NullFloat64
	var minutesCharged sql.NullInt64

	err := s.Scan(
		&b.ID,
		&b.CompanyID,
		&b.EmployeeID,
		&b.SpecialistID,
		&b.Status,
		&b.ProposedAt,
		&confirmedAt,
		&b.DurationMinutes,
		&b.SessionType,
		&notes,
		&meetingLink,
		&cancelledBy,
		&completedAt,
		&rateTier,
		&multiplier,
		&minutesCharged,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if confirmedAt.Valid {
		val := confirmedAt.Int64
		b.ConfirmedAt = &val
	}
	if completedAt.Valid {
		val := completedAt.Int64
		b.CompletedAt = &val
	}
	b.Notes = notes.String
	b.MeetingLink = meetingLink.String
	b.CancelledBy = cancelledBy.String
	b.RateTier = rateTier.String
	b.Multiplier = multiplier.Float64
	b.MinutesCharged = int(minutesCharged.Int64)

	return &b, nil
}

func collectBookings(rows *sql.Rows) ([]*Booking, error) {
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
