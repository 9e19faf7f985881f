package domain

import (
	"time"

	"github.com/fieldops/salesreport/pkg/idx"
)

// RefreshToken is the stored record for an issued refresh token. Only the
// SHA-256 fingerprint is persisted; the token itself exists client-side
// only. Rotation marks the old record revoked and inserts the replacement
// in one transaction, so a stolen token dies at first legitimate reuse.
type RefreshToken struct {
	ID          idx.ID    `json:"id"`
	UserID      int64     `json:"user_id"`
	Fingerprint string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
	Revoked     bool      `json:"revoked"`
	CreatedAt   time.Time `json:"created_at"`
}
