package validator

import (
	"errors"
	"strings"
)

var blockedDomains = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
	"aol.com", "icloud.com", "protonmail.com", "mail.com",
	"zoho.com", "yandex.com", "gmx.com", "live.com",
}

// EmailDomain extracts the lowercased domain part of an address.
func EmailDomain(email string) (string, error) {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", errors.New("invalid email format")
	}
	return strings.ToLower(parts[1]), nil
}

// IsCorporateEmail rejects consumer mail providers. Companies auto-join
// employees by email domain, so a shared provider domain would let
// strangers into each other's companies.
func IsCorporateEmail(email string) error {
	domain, err := EmailDomain(email)
	if err != nil {
		return err
	}

	for _, blocked := range blockedDomains {
		if domain == blocked {
			return errors.New("consumer email domains not allowed")
		}
	}

	return nil
}
