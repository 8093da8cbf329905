// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and signing utilities.

# Session Tokens

Session tokens are random 32-byte (256-bit) secrets:

	token, err := auth.GenerateSessionToken()

The token goes to the browser in an HttpOnly cookie. The server stores
only its HMAC-SHA256:

	hash, err := auth.HashSessionToken(token, secret)

Tokens that are too short or contain cookie separators are rejected with
ErrInvalidToken before hashing.

# OAuth State

The login redirect carries a state value bound to a cookie:

	state, err := auth.SignState(secret)    // nonce.mac
	err := auth.VerifyState(queryState, cookieState, secret)

The callback accepts the state only if it equals the cookie and its MAC
verifies, which rejects forged and cross-site callbacks.

# ID Generation

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
