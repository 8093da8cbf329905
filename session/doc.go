// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session gates the API behind a single allow-listed Google identity.

# States

	Unauthenticated ──login (allowed email)──▶ Authenticated
	Authenticated ──TTL elapses without a check──▶ Expired
	Authenticated ──logout──▶ Revoked

Sessions live in the database, keyed by the HMAC of the cookie token, so
they survive restarts and can be shared by several server processes.

# Sliding Expiry

Every successful Refresh (and so every guarded API call) moves the expiry
to now + TTL and re-issues the cookie. A session already past its expiry
is deleted and never revived; the browser must sign in again.

# Login Flow

	GET /auth/google            → redirect to Google with a signed state cookie
	GET /auth/google/callback   → exchange code, read verified email
	                              allowed  → session + ?auth=success
	                              other    → ?error=access_denied

GoogleProvider performs the exchange with golang.org/x/oauth2 and reads the
identity with the oauth2/v2 userinfo API.

# Sweeping

Sweep runs in the background and removes expired sessions periodically,
logging how many remain.
*/
package session
