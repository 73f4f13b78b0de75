package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParsePassword_LengthBoundary(t *testing.T) {
	for n := 0; n <= 32; n++ {
		raw := strings.Repeat("x", n)
		p, err := ParsePassword(raw)
		if n < MinPasswordLength {
			if !errors.Is(err, ErrInvalidPassword) {
				t.Fatalf("len %d: expected ErrInvalidPassword, got %v", n, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("len %d: expected success, got %v", n, err)
		}
		if p.Reveal() != raw {
			t.Fatalf("len %d: unexpected value", n)
		}
	}
}

func TestPassword_StringIsMasked(t *testing.T) {
	p, err := ParsePassword("password123")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if strings.Contains(p.String(), "password123") {
		t.Fatalf("expected masked string, got %q", p.String())
	}
}
