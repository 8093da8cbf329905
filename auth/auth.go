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
	ErrInvalidState = errors.New("invalid oauth state")
	ErrInvalidToken = errors.New("invalid token format")
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

// GenerateSessionToken creates a random secure token for a session cookie.
// Only its hash is stored server-side.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32) // 32 bytes = 256 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// HashSessionToken derives the storage key for a session token.
// A leaked session table cannot be replayed without the secret.
func HashSessionToken(token, secret string) (string, error) {
	if len(token) < 16 || strings.ContainsAny(token, " ;,") {
		return "", ErrInvalidToken
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SignState creates the OAuth state value: a random nonce plus its HMAC.
// The same value is stored in a cookie and sent to the provider.
func SignState(secret string) (string, error) {
	nonce, err := GenerateID(16)
	if err != nil {
		return "", err
	}
	return nonce + "." + stateMAC(nonce, secret), nil
}

// VerifyState checks that state was produced by SignState with secret and
// matches the value kept in the browser's cookie.
func VerifyState(state, cookie, secret string) error {
	if state == "" || !hmac.Equal([]byte(state), []byte(cookie)) {
		return ErrInvalidState
	}
	nonce, mac, ok := strings.Cut(state, ".")
	if !ok || nonce == "" {
		return ErrInvalidState
	}
	if !hmac.Equal([]byte(mac), []byte(stateMAC(nonce, secret))) {
		return ErrInvalidState
	}
	return nil
}

func stateMAC(nonce, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte("oauth-state:" + nonce))
	// Use URL-safe base64 and trim padding for cleaner values
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}
