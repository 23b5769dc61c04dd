package messaging

import "errors"

const (
	SenderEmployee   = "employee"
	SenderSpecialist = "specialist"

	// DefaultCap is the per-party message budget on one booking thread.
	DefaultCap = 10
)

var (
	ErrCapExceeded   = errors.New("message cap reached for this booking")
	ErrEmptyBody     = errors.New("message body is required")
	ErrInvalidSender = errors.New("sender_type must be employee or specialist")
	ErrNotFound      = errors.New("booking not found")
	ErrUnauthorized  = errors.New("sender is not a party to this booking")
)

// Message is one entry in a booking's conversation thread. Messages are
// never edited or deleted.
type Message struct {
	ID         string `json:"id"`
	BookingID  string `json:"booking_id"`
	SenderType string `json:"sender_type"`
	SenderID   string `json:"sender_id"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"created_at"`
}
