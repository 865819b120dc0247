// Package credentials persists the session credential across restarts,
// keyed by device. Stores return sentinel errors; the session manager
// decides what a missing or unreadable credential means.
package credentials

import (
	"context"
	"time"
)

// Credential is the persisted session token plus bookkeeping.
type Credential struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// Store is the persistence contract for session credentials.
type Store interface {
	Save(ctx context.Context, deviceID string, cred Credential) error
	// Load returns sentinel.ErrNotFound when no credential is persisted.
	Load(ctx context.Context, deviceID string) (Credential, error)
	Delete(ctx context.Context, deviceID string) error
}
