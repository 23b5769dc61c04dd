package messaging

import (
	"testing"

	"wellspace/internal/engine/booking"
)

type fakeBookings struct {
	bookings map[string]*booking.Booking
}

func (f *fakeBookings) GetByID(id string) (*booking.Booking, error) {
	return f.bookings[id], nil
}

func setupService(t *testing.T, cap int) (*Service, func()) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	bookings := &fakeBookings{bookings: map[string]*booking.Booking{
		"bkg_1": {
			ID:           "bkg_1",
			CompanyID:    "cmp_1",
			EmployeeID:   "usr_emp",
			SpecialistID: "spc_1",
			Status:       booking.StatusApproved,
		},
	}}
	return NewService(repo, bookings, nil, cap), func() { db.Close() }
}

func TestService_SendAndList(t *testing.T) {
	svc, cleanup := setupService(t, DefaultCap)
	defer cleanup()

	msg, err := svc.Send("bkg_1", SenderEmployee, "usr_emp", "  hello  ")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if msg.Body != "hello" {
		t.Errorf("Body should be trimmed, got %q", msg.Body)
	}

	msgs, err := svc.ListFor("bkg_1", SenderSpecialist, "spc_1")
	if err != nil {
		t.Fatalf("ListFor failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Errorf("Expected 1 message, got %d", len(msgs))
	}
}

func TestService_RejectsNonParty(t *testing.T) {
	svc, cleanup := setupService(t, DefaultCap)
	defer cleanup()

	if _, err := svc.Send("bkg_1", SenderEmployee, "usr_stranger", "hi"); err != ErrUnauthorized {
		t.Errorf("Stranger send should fail with ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Send("bkg_1", SenderSpecialist, "spc_other", "hi"); err != ErrUnauthorized {
		t.Errorf("Foreign specialist send should fail with ErrUnauthorized, got %v", err)
	}
	if _, err := svc.ListFor("bkg_1", SenderEmployee, "usr_stranger"); err != ErrUnauthorized {
		t.Errorf("Stranger list should fail with ErrUnauthorized, got %v", err)
	}
}

func TestService_RejectsEmptyBody(t *testing.T) {
	svc, cleanup := setupService(t, DefaultCap)
	defer cleanup()

	if _, err := svc.Send("bkg_1", SenderEmployee, "usr_emp", "   "); err != ErrEmptyBody {
		t.Errorf("Whitespace-only body should fail with ErrEmptyBody, got %v", err)
	}
}

func TestService_RejectsUnknownSenderType(t *testing.T) {
	svc, cleanup := setupService(t, DefaultCap)
	defer cleanup()

	if _, err := svc.Send("bkg_1", "admin", "usr_emp", "hi"); err != ErrInvalidSender {
		t.Errorf("Unknown sender type should fail with ErrInvalidSender, got %v", err)
	}
}

func TestService_MissingBooking(t *testing.T) {
	svc, cleanup := setupService(t, DefaultCap)
	defer cleanup()

	if _, err := svc.Send("bkg_missing", SenderEmployee, "usr_emp", "hi"); err != ErrNotFound {
		t.Errorf("Missing booking should fail with ErrNotFound, got %v", err)
	}
}

func TestService_CapSurfacesThroughSend(t *testing.T) {
	svc, cleanup := setupService(t, 2)
	defer cleanup()

	for i := 0; i < 2; i++ {
		if _, err := svc.Send("bkg_1", SenderEmployee, "usr_emp", "msg"); err != nil {
			t.Fatalf("Send %d failed: %v", i, err)
		}
	}
	if _, err := svc.Send("bkg_1", SenderEmployee, "usr_emp", "msg"); err != ErrCapExceeded {
		t.Errorf("Expected ErrCapExceeded, got %v", err)
	}
}
