// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin keys, invite tokens, IDs and IP hashing.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(surveyID, salt)
	err := auth.ValidateAdminKey(surveyID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same survey ID and salt always produce the same key, so it is never
stored. Operators hand it out of band; it authorizes issuing invite tokens.

# Invite Tokens

Invite tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateInviteToken()

Each token is tied to one survey and accepted for a single submission.
ValidateTokenFormat rejects malformed input early.

# IDs

	id := auth.NewID() // UUID string

# IP Hashing

Respondent IPs are kept only as a salted hash:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
