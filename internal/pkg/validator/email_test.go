package validator

import "testing"

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		email   string
		domain  string
		wantErr bool
	}{
		{"alice@acme.com", "acme.com", false},
		{"bob@ACME.COM", "acme.com", false},
		{"no-at-sign", "", true},
		{"@acme.com", "", true},
		{"alice@", "", true},
	}

	for _, tt := range tests {
		domain, err := EmailDomain(tt.email)
		if tt.wantErr {
			if err == nil {
				t.Errorf("EmailDomain(%q) expected error", tt.email)
			}
			continue
		}
		if err != nil {
			t.Errorf("EmailDomain(%q) unexpected error: %v", tt.email, err)
		}
		if domain != tt.domain {
			t.Errorf("EmailDomain(%q) = %q, want %q", tt.email, domain, tt.domain)
		}
	}
}

func TestIsCorporateEmail(t *testing.T) {
	if err := IsCorporateEmail("alice@acme.com"); err != nil {
		t.Errorf("Corporate email rejected: %v", err)
	}
	if err := IsCorporateEmail("alice@gmail.com"); err == nil {
		t.Error("Consumer email should be rejected")
	}
	if err := IsCorporateEmail("alice@Outlook.com"); err == nil {
		t.Error("Consumer email should be rejected case-insensitively")
	}
}
