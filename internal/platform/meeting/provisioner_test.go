package meeting

import (
	"strings"
	"testing"

	"wellspace/internal/platform/config"
)

// fakeChecker reports a collision for the first `collisions` lookups, then
// reports every link free. It records the links it was asked about.
type fakeChecker struct {
	collisions int
	calls      []string
}

func (c *fakeChecker) ExistsByMeetingLink(link string) (bool, error) {
	c.calls = append(c.calls, link)
	if len(c.calls) <= c.collisions {
		return true, nil
	}
	return false, nil
}

func TestProvision(t *testing.T) {
	p := NewProvisioner(config.MeetingConfig{BaseURL: "https://meet.wellspace.io/"}, &fakeChecker{})

	link, err := p.Provision("bkg_test")
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	if !strings.HasPrefix(link, "https://meet.wellspace.io/") {
		t.Errorf("Expected link under base URL, got %s", link)
	}

	code := strings.TrimPrefix(link, "https://meet.wellspace.io/")
	if len(code) != roomCodeLength {
		t.Errorf("Expected room code length %d, got %d", roomCodeLength, len(code))
	}
	for _, c := range code {
		if !strings.ContainsRune(roomCodeChars, c) {
			t.Errorf("Unexpected character %q in room code", c)
		}
	}
}

func TestProvisionRetriesOnCollision(t *testing.T) {
	checker := &fakeChecker{collisions: 2}
	p := NewProvisioner(config.MeetingConfig{BaseURL: "https://meet.wellspace.io"}, checker)

	link, err := p.Provision("bkg_test")
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	if len(checker.calls) != 3 {
		t.Errorf("Expected 3 availability checks, got %d", len(checker.calls))
	}
	if checker.calls[len(checker.calls)-1] != link {
		t.Errorf("Returned link %s was never checked for availability", link)
	}
}

func TestProvisionFallsBackToLongerCode(t *testing.T) {
	checker := &fakeChecker{collisions: 5}
	p := NewProvisioner(config.MeetingConfig{BaseURL: "https://meet.wellspace.io"}, checker)

	link, err := p.Provision("bkg_test")
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	code := strings.TrimPrefix(link, "https://meet.wellspace.io/")
	if len(code) != roomCodeLength+1 {
		t.Errorf("Expected fallback code length %d, got %d", roomCodeLength+1, len(code))
	}
}

func TestProvisionGivesUpWhenCodesExhausted(t *testing.T) {
	checker := &fakeChecker{collisions: 6}
	p := NewProvisioner(config.MeetingConfig{BaseURL: "https://meet.wellspace.io"}, checker)

	if _, err := p.Provision("bkg_test"); err == nil {
		t.Error("Expected error when every candidate code is taken")
	}
}

func TestProvisionLinksDiffer(t *testing.T) {
	p := NewProvisioner(config.MeetingConfig{BaseURL: "https://meet.wellspace.io"}, &fakeChecker{})

	a, _ := p.Provision("bkg_a")
	b, _ := p.Provision("bkg_b")
	if a == b {
		t.Error("Expected distinct room links for distinct provisions")
	}
}
