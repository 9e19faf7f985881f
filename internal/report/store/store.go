// Package store defines the data access boundary. Concrete drivers live
// under drivers/; everything above this interface is storage-agnostic.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/fieldops/salesreport/internal/report/domain"
	"github.com/fieldops/salesreport/pkg/idx"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface, exposing sub-repositories per
// aggregate to keep concerns tidy and testable.
type Store interface {
	Users() Users
	Customers() Customers
	Reports() Reports
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// WithTx executes fn within a transaction, rolling back when fn errors
	// and committing otherwise. Use it for multi-step operations that must
	// be atomic (refresh-token rotation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error

	Close() error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Users() Users
	Customers() Customers
	Reports() Reports
	RefreshTokens() RefreshTokens
}

// Users is the credential and account repository. FindByEmail is the
// identity-verification boundary the security pipeline depends on: lookups
// happen by email only and return the stored hash, never a plaintext secret.
type Users interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	Create(ctx context.Context, u domain.User) (int64, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	Count(ctx context.Context) (int64, error)
}

type Customers interface {
	GetByID(ctx context.Context, id idx.ID) (domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Create(ctx context.Context, c domain.Customer) error
	Update(ctx context.Context, c domain.Customer) error
	Delete(ctx context.Context, id idx.ID) error
}

type Reports interface {
	GetByID(ctx context.Context, id idx.ID) (domain.Report, error)

	// List returns all reports, newest visit first. Manager view.
	List(ctx context.Context) ([]domain.Report, error)

	// ListByUser returns one sales person's reports, newest visit first.
	ListByUser(ctx context.Context, userID int64) ([]domain.Report, error)

	Create(ctx context.Context, r domain.Report) error
	Update(ctx context.Context, r domain.Report) error
	Delete(ctx context.Context, id idx.ID) error
}

type RefreshTokens interface {
	Create(ctx context.Context, t domain.RefreshToken) error

	// GetByFingerprint looks a token up by its SHA-256 fingerprint.
	GetByFingerprint(ctx context.Context, fp string) (domain.RefreshToken, error)

	Revoke(ctx context.Context, id idx.ID) error
	RevokeAllForUser(ctx context.Context, userID int64) error

	// DeleteExpired removes tokens whose expiry is before the cutoff and
	// returns how many went away. Called by housekeeping.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
