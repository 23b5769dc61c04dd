package messaging

import "database/sql"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert enforces the per-party cap. The count and the insert run in one
// transaction so two racing sends from the same party cannot both squeeze
// under the cap; the store serializes them, not the process.
func (r *Repository) Insert(msg *Message, cap int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM booking_messages WHERE booking_id = ? AND sender_type = ?
	`, msg.BookingID, msg.SenderType).Scan(&count)
	if err != nil {
		return err
	}

	if count >= cap {
		return ErrCapExceeded
	}

	_, err = tx.Exec(`
		INSERT INTO booking_messages (id, booking_id, sender_type, sender_id, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.BookingID, msg.SenderType, msg.SenderID, msg.Body, msg.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) ListByBooking(bookingID string) ([]*Message, error) {
	rows, err := r.db.Query(`
		SELECT id, booking_id, sender_type, sender_id, body, created_at
		FROM booking_messages
		WHERE booking_id = ?
		ORDER BY created_at ASC, id ASC
	`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg := &Message{}
		if err := rows.Scan(&msg.ID, &msg.BookingID, &msg.SenderType, &msg.SenderID, &msg.Body, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *Repository) CountBySender(bookingID, senderType string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM booking_messages WHERE booking_id = ? AND sender_type = ?
	`, bookingID, senderType).Scan(&count)
	return count, err
}
