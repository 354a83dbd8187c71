// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidState    = errors.New("invalid oauth state")
	ErrSessionNotFound = errors.New("session not found")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Sign returns the HMAC-SHA256 of value keyed with salt.
// Deterministic, so it can be verified without storage.
func Sign(value, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(value))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// GenerateState creates an OAuth state value: a random nonce and its
// signature, joined by a dot.
func GenerateState(salt string) (string, error) {
	nonce, err := GenerateID(16)
	if err != nil {
		return "", err
	}
	return nonce + "." + Sign(nonce, salt), nil
}

// ValidateState checks that state was produced by GenerateState with salt
func ValidateState(state, salt string) error {
	nonce, sig, ok := strings.Cut(state, ".")
	if !ok || nonce == "" {
		return ErrInvalidState
	}
	if !hmac.Equal([]byte(sig), []byte(Sign(nonce, salt))) {
		return ErrInvalidState
	}
	return nil
}
