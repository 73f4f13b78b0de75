package domain

import (
	"errors"
	"testing"
)

func TestParseEmail_Valid(t *testing.T) {
	cases := []string{
		"user@example.com",
		"dev.ted.kim@gmail.com",
		"first.last+tag@sub.example.org",
		"a@b.io",
	}
	for _, raw := range cases {
		email, err := ParseEmail(raw)
		if err != nil {
			t.Fatalf("expected %q to parse, got %v", raw, err)
		}
		if email.String() != raw {
			t.Fatalf("expected round-trip %q, got %q", raw, email.String())
		}
	}
}

func TestParseEmail_Invalid(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"plainaddress",
		"@example.com",
		"user@",
		"user.example.com",
		"user@@example.com",
		" user@example.com",
		"user@example.com ",
	}
	for _, raw := range cases {
		if _, err := ParseEmail(raw); !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("expected ErrInvalidEmail for %q, got %v", raw, err)
		}
	}
}
