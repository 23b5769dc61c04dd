package booking

import "testing"

func TestCanTransition_LegalMoves(t *testing.T) {
	legal := []struct {
		from  Status
		event Event
	}{
		{StatusPending, EventAccept},
		{StatusPending, EventDecline},
		{StatusPending, EventCancel},
		{StatusApproved, EventCancel},
		{StatusApproved, EventComplete},
	}

	for _, tt := range legal {
		if !CanTransition(tt.from, tt.event) {
			t.Errorf("expected %s + %s to be legal", tt.from, tt.event)
		}
	}
}

func TestCanTransition_IllegalMoves(t *testing.T) {
	illegal := []struct {
		from  Status
		event Event
	}{
		{StatusPending, EventComplete}, // no direct jump to completed
		{StatusApproved, EventAccept},
		{StatusApproved, EventDecline},
		{StatusDeclined, EventAccept},
		{StatusDeclined, EventComplete},
		{StatusDeclined, EventCancel},
		{StatusCancelled, EventAccept},
		{StatusCancelled, EventComplete},
		{StatusCompleted, EventCancel},
		{StatusCompleted, EventComplete},
		{StatusCompleted, EventAccept},
	}

	for _, tt := range illegal {
		if CanTransition(tt.from, tt.event) {
			t.Errorf("expected %s + %s to be illegal", tt.from, tt.event)
		}
	}
}

func TestNextStatus_TerminalStatesAcceptNothing(t *testing.T) {
	terminals := []Status{StatusDeclined, StatusCancelled, StatusCompleted}
	events := []Event{EventAccept, EventDecline, EventCancel, EventComplete}

	for _, from := range terminals {
		for _, event := range events {
			if _, err := nextStatus(from, event); err != ErrInvalidTransition {
				t.Errorf("nextStatus(%s, %s) should fail with ErrInvalidTransition, got %v", from, event, err)
			}
		}
	}
}
