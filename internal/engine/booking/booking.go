package booking

import "errors"

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

type Event string

const (
	EventAccept   Event = "accept"
	EventDecline  Event = "decline"
	EventCancel   Event = "cancel"
	EventComplete Event = "complete"
)

const (
	SessionTypeFirst    = "first_session"
	SessionTypeFollowUp = "follow_up"
)

var (
	ErrInvalidTransition = errors.New("invalid booking transition")
	ErrUnauthorized      = errors.New("actor is not a party to this booking")
	ErrNotFound          = errors.New("booking not found")
	ErrInvalidDuration   = errors.New("session duration must be 30 or 60 minutes")
)

type Booking struct {
	ID              string  `json:"id"`
	CompanyID       string  `json:"company_id"`
	EmployeeID      string  `json:"employee_id"`
	SpecialistID    string  `json:"specialist_id"`
	Status          Status  `json:"status"`
	ProposedAt      int64   `json:"proposed_at"`
	ConfirmedAt     *int64  `json:"confirmed_at,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	SessionType     string  `json:"session_type"`
	Notes           string  `json:"notes,omitempty"`
	MeetingLink     string  `json:"meeting_link,omitempty"`
	CancelledBy     string  `json:"cancelled_by,omitempty"` // employee or specialist
	CompletedAt     *int64  `json:"completed_at,omitempty"`
	RateTier        string  `json:"rate_tier,omitempty"` // completion metadata
	Multiplier      float64 `json:"multiplier,omitempty"`
	MinutesCharged  int     `json:"minutes_charged,omitempty"`
	CreatedAt       int64   `json:"created_at"`
	UpdatedAt       int64   `json:"updated_at"`
}

// nextStatus is the single source of truth for legal transitions.
// Terminal statuses (declined, cancelled, completed) accept no event.
func nextStatus(from Status, event Event) (Status, error) {
	switch from {
	case StatusPending:
		switch event {
		case EventAccept:
			return StatusApproved, nil
		case EventDecline:
			return StatusDeclined, nil
		case EventCancel:
			return StatusCancelled, nil
		}
	case StatusApproved:
		switch event {
		case EventCancel:
			return StatusCancelled, nil
		case EventComplete:
			return StatusCompleted, nil
		}
	}
	return "", ErrInvalidTransition
}

// CanTransition reports whether the event is legal from the given status.
func CanTransition(from Status, event Event) bool {
	_, err := nextStatus(from, event)
	return err == nil
}
