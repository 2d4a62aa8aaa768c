package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already registered for this device")

	// Log errors
	ErrLogNotFound = errors.New("log not found")

	// Completion errors (user-recoverable — surfaced as rejected requests)
	ErrAlreadyCompleted  = errors.New("action already completed")
	ErrCompletionExpired = errors.New("action expired (must complete within 30 mins)")

	// Input errors — the caller layer rejects these before the core runs
	ErrMissingDeviceID  = errors.New("missing required field: deviceId")
	ErrInvalidIntensity = errors.New("intensity must be between 1 and 5")
	ErrInvalidSteps     = errors.New("steps must not be negative")
	ErrInvalidSleep     = errors.New("sleep hours must not be negative")
)
