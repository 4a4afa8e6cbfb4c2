// Copyright (c) 2026 mostafamaarof.
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

	"github.com/google/uuid"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidToken    = errors.New("invalid token format")
)

// inviteTokenBytes is the entropy of an invite token (192 bits).
const inviteTokenBytes = 24

// NewID returns a random UUID for database rows and wizard sessions.
func NewID() string {
	return uuid.NewString()
}

// GenerateAdminKey creates an HMAC-based admin key for a survey
// This is deterministic and verifiable
func GenerateAdminKey(surveyID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(surveyID))
	sum := h.Sum(nil)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the survey
func ValidateAdminKey(surveyID, adminKey, salt string) error {
	expected := GenerateAdminKey(surveyID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateInviteToken creates a random single-use invite token
func GenerateInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// ValidateTokenFormat rejects strings that cannot be an invite token before
// they reach the database.
func ValidateTokenFormat(token string) error {
	if token == "" || len(token) > 128 {
		return ErrInvalidToken
	}
	for _, c := range token {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_') {
			return ErrInvalidToken
		}
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// 64 bits is enough to spot repeat submissions
	return hex.EncodeToString(sum[:8])
}
