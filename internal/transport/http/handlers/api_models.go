package handlers

import "time"

// ErrorResponse is the uniform error body returned by the API.
type ErrorResponse struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

// TokenRequest carries the raw token for revocation operations.
type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// RevokeResponse reports whether the token was written to the blacklist.
// Revoked is false when the token's own expiry already passed.
type RevokeResponse struct {
	Revoked bool `json:"revoked"`
}

// RestoreResponse reports whether a blacklist entry existed and was removed.
type RestoreResponse struct {
	Removed bool `json:"removed"`
}

// IntrospectResponse reports the token's current revocation state.
type IntrospectResponse struct {
	Blacklisted bool `json:"blacklisted"`
}

// StatsResponse reports the number of stored blacklist entries.
type StatsResponse struct {
	Entries int `json:"entries"`
}

// CleanupResponse reports the entries removed by a manual cleanup run.
type CleanupResponse struct {
	Removed int `json:"removed"`
}

// HealthResponse reports liveness information.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
