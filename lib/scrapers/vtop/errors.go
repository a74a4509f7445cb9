package vtop

import "errors"

// failure taxonomy surfaced to callers. fetchers wrap these with
// fmt.Errorf("...: %w", ...) so errors.Is classification survives.
var (
	// no credentials stored, nothing to authenticate with
	ErrMissingCredentials = errors.New("no stored credentials")
	// the captcha/csrf handshake was exhausted; the portal will not
	// log this user in
	ErrInvalidCredentials = errors.New("login failed")
	// the portal answered not-found on an authenticated-looking
	// request, meaning the session died under us
	ErrSessionExpired = errors.New("session expired")
	// network or http-layer failure, the session is left untouched
	ErrTransport = errors.New("transport failure")
)
