package booking

import (
	"sync"
	"testing"
	"time"

	"wellspace/internal/platform/models"
)

type fakeSpecialists struct {
	byID     map[string]*models.Specialist
	byUserID map[string]*models.Specialist
}

func newFakeSpecialists(specs ...*models.Specialist) *fakeSpecialists {
	f := &fakeSpecialists{
		byID:     make(map[string]*models.Specialist),
		byUserID: make(map[string]*models.Specialist),
	}
	for _, s := range specs {
		f.byID[s.ID] = s
		f.byUserID[s.UserID] = s
	}
	return f
}

func (f *fakeSpecialists) GetByID(id string) (*models.Specialist, error) {
	return f.byID[id], nil
}

func (f *fakeSpecialists) GetByUserID(userID string) (*models.Specialist, error) {
	return f.byUserID[userID], nil
}

type fakeRooms struct{}

func (fakeRooms) Provision(bookingID string) (string, error) {
	return "https://meet.example/" + bookingID, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Dispatch(eventType, companyID string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

func (n *recordingNotifier) has(eventType string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == eventType {
			return true
		}
	}
	return false
}

func setupService(t *testing.T, specs ...*models.Specialist) (*Service, *Repository, *recordingNotifier, func()) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	notifier := &recordingNotifier{}
	svc := NewService(repo, newFakeSpecialists(specs...), fakeRooms{}, notifier, 60)
	return svc, repo, notifier, func() { db.Close() }
}

func masterSpecialist() *models.Specialist {
	return &models.Specialist{
		ID:       "spc_1",
		UserID:   "usr_spec",
		RateTier: "master",
		IsActive: true,
	}
}

var (
	employee   = Actor{UserID: "usr_emp", Role: RoleEmployee}
	specialist = Actor{UserID: "usr_spec", Role: RoleSpecialist}
)

func request(t *testing.T, svc *Service, duration int) *Booking {
	b, err := svc.Request(employee, CreateRequest{
		CompanyID:       "cmp_1",
		SpecialistID:    "spc_1",
		ProposedAt:      time.Now().Add(time.Hour).Unix(),
		DurationMinutes: duration,
	})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return b
}

func TestService_FullLifecycleMasterTier(t *testing.T) {
	svc, _, notifier, cleanup := setupService(t, masterSpecialist())
	defer cleanup()

	b := request(t, svc, 60)
	if b.Status != StatusPending {
		t.Fatalf("Expected pending, got %s", b.Status)
	}

	accepted, err := svc.Accept(specialist, b.ID)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if accepted.Status != StatusApproved {
		t.Errorf("Expected approved, got %s", accepted.Status)
	}
	if accepted.MeetingLink == "" {
		t.Error("Meeting link should be set on approval")
	}
	if accepted.ConfirmedAt == nil || *accepted.ConfirmedAt != b.ProposedAt {
		t.Error("Confirmed time should equal proposed time")
	}

	completed, err := svc.Complete(specialist, b.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completed.MinutesCharged != 192 {
		t.Errorf("Expected 192 minutes charged for master tier, got %d", completed.MinutesCharged)
	}

	if !notifier.has("booking.requested") || !notifier.has("booking.approved") || !notifier.has("booking.completed") {
		t.Errorf("Missing lifecycle notifications, got %v", notifier.events)
	}
}

func TestService_DeclineThenAcceptFails(t *testing.T) {
	svc, _, _, cleanup := setupService(t, masterSpecialist())
	defer cleanup()

	b := request(t, svc, 60)

	declined, err := svc.Decline(specialist, b.ID)
	if err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	if declined.Status != StatusDeclined {
		t.Errorf("Expected declined, got %s", declined.Status)
	}

	if _, err := svc.Accept(specialist, b.ID); err != ErrInvalidTransition {
		t.Errorf("Accept after decline should fail with ErrInvalidTransition, got %v", err)
	}
}

func TestService_CancelPendingThenCompleteFails(t *testing.T) {
	svc, _, notifier, cleanup := setupService(t, masterSpecialist())
	defer cleanup()

	b := request(t, svc, 60)

	cancelled, err := svc.Cancel(employee, b.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("Expected cancelled, got %s", cancelled.Status)
	}
	if cancelled.CancelledBy != "employee" {
		t.Errorf("Expected cancelled_by employee, got %s", cancelled.CancelledBy)
	}

	// Nobody was waiting on a pending request.
	if notifier.has("booking.cancelled") {
		t.Error("Cancelling a pending booking should not notify anyone")
	}

	if _, err := svc.Complete(specialist, b.ID); err != ErrInvalidTransition {
		t.Errorf("Complete after cancel should fail with ErrInvalidTransition, got %v", err)
	}
}

func TestService_CancelApprovedNotifies(t *testing.T) {
	svc, _, notifier, cleanup := setupService(t, masterSpecialist())
	defer cleanup()

	b := request(t, svc, 60)
	if _, err := svc.Accept(specialist, b.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if _, err := svc.Cancel(employee, b.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if !notifier.has("booking.cancelled") {
		t.Error("Cancelling an approved booking should notify the counterpart")
	}
}

func TestService_UnsetTierChargesStandard(t *testing.T) {
	spec := masterSpecialist()
	spec.RateTier = ""
	svc, _, _, cleanup := setupService(t, spec)
	defer cleanup()

	b := request(t, svc, 60)
	if _, err := svc.Accept(specialist, b.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	completed, err := svc.Complete(specialist, b.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completed.MinutesCharged != 60 {
		t.Errorf("Unset tier should charge standard rate: got %d, want 60", completed.MinutesCharged)
	}
	if completed.RateTier != "standard" {
		t.Errorf("Completion metadata should record standard, got %q", completed.RateTier)
	}
}

func TestService_AuthorizationRejections(t *testing.T) {
	svc, _, _, cleanup := setupService(t, masterSpecialist())
	defer cleanup()

	b := request(t, svc, 60)

	otherSpecialist := Actor{UserID: "usr_other_spec", Role: RoleSpecialist}
	if _, err := svc.Accept(otherSpecialist, b.ID); err != ErrUnauthorized {
		t.Errorf("Foreign specialist accept should fail with ErrUnauthorized, got %v", err)
	}

	if _, err := svc.Accept(employee, b.ID); err != ErrUnauthorized {
		t.Errorf("Employee accept should fail with ErrUnauthorized, got %v", err)
	}

	otherEmployee := Actor{UserID: "usr_other", Role: RoleEmployee}
	if _, err := svc.Cancel(otherEmployee, b.ID); err != ErrUnauthorized {
		t.Errorf("Foreign employee cancel should fail with ErrUnauthorized, got %v", err)
	}

	if _, err := svc.Complete(employee, b.ID); err != ErrUnauthorized {
		t.Errorf("Employee complete should fail with ErrUnauthorized, got %v", err)
	}

	// All rejections happen before any write.
	fetched, err := svc.Get(employee, b.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.Status != StatusPending {
		t.Errorf("Booking should still be pending, got %s", fetched.Status)
	}
}

func TestService_InvalidDuration(t *testing.T) {
	svc, _, _, cleanup := setupService(t, masterSpecialist())
	defer cleanup()

	_, err := svc.Request(employee, CreateRequest{
		CompanyID:       "cmp_1",
		SpecialistID:    "spc_1",
		ProposedAt:      time.Now().Add(time.Hour).Unix(),
		DurationMinutes: 45,
	})
	if err != ErrInvalidDuration {
		t.Errorf("45-minute session should fail with ErrInvalidDuration, got %v", err)
	}
}

func TestService_DefaultDuration(t *testing.T) {
	svc, _, _, cleanup := setupService(t, masterSpecialist())
	defer cleanup()

	b := request(t, svc, 0)
	if b.DurationMinutes != 60 {
		t.Errorf("Expected default duration 60, got %d", b.DurationMinutes)
	}
}

func TestService_InactiveSpecialistNotBookable(t *testing.T) {
	spec := masterSpecialist()
	spec.IsActive = false
	svc, _, _, cleanup := setupService(t, spec)
	defer cleanup()

	_, err := svc.Request(employee, CreateRequest{
		CompanyID:    "cmp_1",
		SpecialistID: "spc_1",
		ProposedAt:   time.Now().Add(time.Hour).Unix(),
	})
	if err != ErrNotFound {
		t.Errorf("Booking an inactive specialist should fail with ErrNotFound, got %v", err)
	}
}

func TestService_SpecialistCannotRequest(t *testing.T) {
	svc, _, _, cleanup := setupService(t, masterSpecialist())
	defer cleanup()

	_, err := svc.Request(specialist, CreateRequest{
		CompanyID:    "cmp_1",
		SpecialistID: "spc_1",
		ProposedAt:   time.Now().Add(time.Hour).Unix(),
	})
	if err != ErrUnauthorized {
		t.Errorf("Specialists should not create bookings, got %v", err)
	}
}
