package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"wellspace/internal/platform/models"
)

const (
	RoleEmployee   = "employee"
	RoleAdmin      = "admin"
	RoleSpecialist = "specialist"
)

// Actor is the authenticated identity performing a mutation. It is passed
// explicitly into every service call; the service never reads ambient
// session state.
type Actor struct {
	UserID string
	Role   string
}

// Notifier dispatches booking lifecycle events. Best effort: the service
// calls it after a successful transition and never inspects the outcome.
type Notifier interface {
	Dispatch(eventType, companyID string, data interface{})
}

// RoomProvisioner allocates a meeting link on approval. The link is an
// opaque string as far as the booking core is concerned.
type RoomProvisioner interface {
	Provision(bookingID string) (string, error)
}

// SpecialistSource resolves specialists for validation and tier lookup.
// Satisfied by repositories.SpecialistRepository.
type SpecialistSource interface {
	GetByID(id string) (*models.Specialist, error)
	GetByUserID(userID string) (*models.Specialist, error)
}

type Service struct {
	repo            *Repository
	specialists     SpecialistSource
	rooms           RoomProvisioner
	notifier        Notifier
	defaultDuration int
}

func NewService(repo *Repository, specialists SpecialistSource, rooms RoomProvisioner, notifier Notifier, defaultDuration int) *Service {
	if defaultDuration <= 0 {
		defaultDuration = 60
	}
	return &Service{
		repo:            repo,
		specialists:     specialists,
		rooms:           rooms,
		notifier:        notifier,
		defaultDuration: defaultDuration,
	}
}

type CreateRequest struct {
	CompanyID       string
	SpecialistID    string
	ProposedAt      int64
	DurationMinutes int
	SessionType     string
	Notes           string
}

// Request creates a booking in pending state on behalf of an employee.
func (s *Service) Request(actor Actor, req CreateRequest) (*Booking, error) {
	if actor.Role != RoleEmployee && actor.Role != RoleAdmin {
		return nil, ErrUnauthorized
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = s.defaultDuration
	}
	if duration != 30 && duration != 60 {
		return nil, ErrInvalidDuration
	}

	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = SessionTypeFirst
	}

	spec, err := s.specialists.GetByID(req.SpecialistID)
	if err != nil {
		return nil, err
	}
	if spec == nil || !spec.IsActive {
		return nil, ErrNotFound
	}

	now := time.Now().Unix()
	b := &Booking{
		ID:              "bkg_" + uuid.NewString(),
		CompanyID:       req.CompanyID,
		EmployeeID:      actor.UserID,
		SpecialistID:    spec.ID,
		Status:          StatusPending,
		ProposedAt:      req.ProposedAt,
		DurationMinutes: duration,
		SessionType:     sessionType,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(b); err != nil {
		return nil, err
	}

	s.dispatch("booking.requested", b)
	return b, nil
}

// Accept confirms a pending booking: the proposed time becomes the
// confirmed time and a meeting room is allocated before the status flips.
func (s *Service) Accept(actor Actor, bookingID string) (*Booking, error) {
	b, err := s.loadForSpecialist(actor, bookingID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, EventAccept) {
		return nil, ErrInvalidTransition
	}

	link, err := s.rooms.Provision(b.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Accept(b.ID, b.ProposedAt, link); err != nil {
		return nil, err
	}

	b.Status = StatusApproved
	confirmed := b.ProposedAt
	b.ConfirmedAt = &confirmed
	b.MeetingLink = link

	s.dispatch("booking.approved", b)
	return b, nil
}

func (s *Service) Decline(actor Actor, bookingID string) (*Booking, error) {
	b, err := s.loadForSpecialist(actor, bookingID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, EventDecline) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.Decline(b.ID); err != nil {
		return nil, err
	}

	b.Status = StatusDeclined
	s.dispatch("booking.declined", b)
	return b, nil
}

// Cancel is open to either party while the booking is not terminal. The
// counterpart is only notified when a confirmed session is being called
// off; nobody is waiting on a cancelled pending request.
func (s *Service) Cancel(actor Actor, bookingID string) (*Booking, error) {
	b, err := s.repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}

	cancelledBy, err := s.partyOf(actor, b)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, EventCancel) {
		return nil, ErrInvalidTransition
	}

	wasApproved := b.Status == StatusApproved
	if err := s.repo.Cancel(b.ID, b.Status, cancelledBy); err != nil {
		return nil, err
	}

	b.Status = StatusCancelled
	b.CancelledBy = cancelledBy

	if wasApproved {
		s.dispatch("booking.cancelled", b)
	}
	return b, nil
}

// Complete closes out a delivered session. Minutes are computed from the
// specialist's tier at completion time and applied to the company ledger
// in the same transaction that flips the status, so a retry can never
// deduct twice.
func (s *Service) Complete(actor Actor, bookingID string) (*Booking, error) {
	b, err := s.loadForSpecialist(actor, bookingID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, EventComplete) {
		return nil, ErrInvalidTransition
	}

	spec, err := s.specialists.GetByID(b.SpecialistID)
	if err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, ErrNotFound
	}

	tier := RateTier(spec.RateTier)
	if _, ok := tiers[tier]; !ok {
		tier = TierStandard
	}
	info := TierInfo(tier)
	minutes := MinutesToDeduct(b.DurationMinutes, tier)
	completedAt := time.Now().Unix()

	if err := s.repo.Complete(b, tier, info.Multiplier, minutes, completedAt); err != nil {
		return nil, err
	}

	b.Status = StatusCompleted
	b.CompletedAt = &completedAt
	b.RateTier = string(tier)
	b.Multiplier = info.Multiplier
	b.MinutesCharged = minutes

	s.dispatch("booking.completed", b)
	return b, nil
}

func (s *Service) Get(actor Actor, bookingID string) (*Booking, error) {
	b, err := s.repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	if _, err := s.partyOf(actor, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListFor(actor Actor, limit, offset int) ([]*Booking, error) {
	if actor.Role == RoleSpecialist {
		spec, err := s.specialists.GetByUserID(actor.UserID)
		if err != nil {
			return nil, err
		}
		if spec == nil {
			return nil, ErrUnauthorized
		}
		return s.repo.ListBySpecialist(spec.ID, limit, offset)
	}
	return s.repo.ListByEmployee(actor.UserID, limit, offset)
}

// loadForSpecialist fetches the booking and verifies the actor is the
// specialist it is addressed to.
func (s *Service) loadForSpecialist(actor Actor, bookingID string) (*Booking, error) {
	if actor.Role != RoleSpecialist {
		return nil, ErrUnauthorized
	}

	b, err := s.repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}

	spec, err := s.specialists.GetByUserID(actor.UserID)
	if err != nil {
		return nil, err
	}
	if spec == nil || spec.ID != b.SpecialistID {
		return nil, ErrUnauthorized
	}
	return b, nil
}

// partyOf names the side of the booking the actor belongs to.
func (s *Service) partyOf(actor Actor, b *Booking) (string, error) {
	switch actor.Role {
	case RoleEmployee, RoleAdmin:
		if b.EmployeeID != actor.UserID {
			return "", ErrUnauthorized
		}
		return "employee", nil
	case RoleSpecialist:
		spec, err := s.specialists.GetByUserID(actor.UserID)
		if err != nil {
			return "", err
		}
		if spec == nil || spec.ID != b.SpecialistID {
			return "", ErrUnauthorized
		}
		return "specialist", nil
	}
	return "", ErrUnauthorized
}

func (s *Service) dispatch(eventType string, b *Booking) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("event", eventType).Msg("notifier panicked")
		}
	}()
	s.notifier.Dispatch(eventType, b.CompanyID, b)
}
