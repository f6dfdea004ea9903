package model

import "log/slog"

// Credential pairs a provider account identifier (VEID) with its API key.
// Duplicate VEIDs are allowed; each pair is queried independently.
type Credential struct {
	VEID   string
	APIKey string
}

// LogValue implements slog.LogValuer so the API key never reaches log output.
func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.VEID)
}
