// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestSign(t *testing.T) {
	a := Sign("nonce", "salt")
	if a != Sign("nonce", "salt") {
		t.Error("Sign() is not deterministic")
	}
	if a == Sign("nonce", "other-salt") {
		t.Error("Sign() ignores the salt")
	}
	if strings.ContainsAny(a, "=+/") {
		t.Errorf("Sign() = %q, want URL-safe without padding", a)
	}
}

func TestValidateState(t *testing.T) {
	const salt = "secret-salt"
	state, err := GenerateState(salt)
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	nonce, _, _ := strings.Cut(state, ".")

	tests := []struct {
		name    string
		state   string
		salt    string
		wantErr bool
	}{
		{"valid", state, salt, false},
		{"wrong salt", state, "other", true},
		{"tampered nonce", "x" + state, salt, true},
		{"tampered signature", state + "x", salt, true},
		{"no separator", nonce, salt, true},
		{"empty nonce", "." + Sign("", salt), salt, true},
		{"empty", "", salt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateState(tt.state, tt.salt)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidState) {
					t.Errorf("ValidateState() error = %v, want ErrInvalidState", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateState() unexpected error = %v", err)
			}
		})
	}
}

func TestGenerateState_Unique(t *testing.T) {
	s1, _ := GenerateState("salt")
	s2, _ := GenerateState("salt")
	if s1 == s2 {
		t.Error("GenerateState() produced duplicate states")
	}
}
