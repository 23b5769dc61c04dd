package messaging

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"wellspace/internal/engine/booking"
)

// BookingSource resolves the booking a message is attached to.
// Satisfied by booking.Repository.
type BookingSource interface {
	GetByID(id string) (*booking.Booking, error)
}

type Notifier interface {
	Dispatch(eventType, companyID string, data interface{})
}

type Service struct {
	repo     *Repository
	bookings BookingSource
	notifier Notifier
	cap      int
}

func NewService(repo *Repository, bookings BookingSource, notifier Notifier, cap int) *Service {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Service{
		repo:     repo,
		bookings: bookings,
		notifier: notifier,
		cap:      cap,
	}
}

// Send appends a message to the booking thread. The cap is per party: the
// employee and the specialist each get their own budget on the same
// booking. senderID is the employee user id or the specialist id,
// depending on senderType.
func (s *Service) Send(bookingID, senderType, senderID, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if senderType != SenderEmployee && senderType != SenderSpecialist {
		return nil, ErrInvalidSender
	}

	b, err := s.loadForParty(bookingID, senderType, senderID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ID:         "msg_" + uuid.NewString(),
		BookingID:  bookingID,
		SenderType: senderType,
		SenderID:   senderID,
		Body:       body,
		CreatedAt:  time.Now().Unix(),
	}

	if err := s.repo.Insert(msg, s.cap); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Dispatch("message.created", b.CompanyID, msg)
	}

	return msg, nil
}

// ListFor returns the thread, visible only to the booking's two parties.
func (s *Service) ListFor(bookingID, requesterType, requesterID string) ([]*Message, error) {
	if _, err := s.loadForParty(bookingID, requesterType, requesterID); err != nil {
		return nil, err
	}
	return s.repo.ListByBooking(bookingID)
}

func (s *Service) loadForParty(bookingID, senderType, senderID string) (*booking.Booking, error) {
	b, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}

	switch senderType {
	case SenderEmployee:
		if b.EmployeeID != senderID {
			return nil, ErrUnauthorized
		}
	case SenderSpecialist:
		if b.SpecialistID != senderID {
			return nil, ErrUnauthorized
		}
	default:
		return nil, ErrInvalidSender
	}
	return b, nil
}
