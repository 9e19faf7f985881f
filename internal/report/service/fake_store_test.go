package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/fieldops/salesreport/internal/report/domain"
	"github.com/fieldops/salesreport/internal/report/store"
	"github.com/fieldops/salesreport/pkg/idx"
)

// fakeStore is an in-memory store.Store for service tests. Everything is
// guarded by one mutex; WithTx just runs fn against the same state, which is
// enough to exercise the services' transactional call patterns.
type fakeStore struct {
	mu            sync.Mutex
	users         map[int64]domain.User
	customers     map[idx.ID]domain.Customer
	reports       map[idx.ID]domain.Report
	refreshTokens map[idx.ID]domain.RefreshToken
	nextUserID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[int64]domain.User),
		customers:     make(map[idx.ID]domain.Customer),
		reports:       make(map[idx.ID]domain.Report),
		refreshTokens: make(map[idx.ID]domain.RefreshToken),
		nextUserID:    1,
	}
}

func (f *fakeStore) Users() store.Users                 { return (*fakeUsers)(f) }
func (f *fakeStore) Customers() store.Customers         { return (*fakeCustomers)(f) }
func (f *fakeStore) Reports() store.Reports             { return (*fakeReports)(f) }
func (f *fakeStore) RefreshTokens() store.RefreshTokens { return (*fakeRefreshTokens)(f) }

func (f *fakeStore) ApplyMigrations() error         { return nil }
func (f *fakeStore) Ping(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                   { return nil }

func (f *fakeStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return fn(f)
}

// addUser seeds an account and returns its id.
func (f *fakeStore) addUser(u domain.User) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = f.nextUserID
	f.nextUserID++
	f.users[u.ID] = u
	return u.ID
}

func (f *fakeStore) addCustomer(c domain.Customer) idx.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = idx.New()
	}
	f.customers[c.ID] = c
	return c.ID
}

// tokenByFingerprint returns the stored refresh token record, if any.
func (f *fakeStore) tokenByFingerprint(fp string) (domain.RefreshToken, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.refreshTokens {
		if t.Fingerprint == fp {
			return t, true
		}
	}
	return domain.RefreshToken{}, false
}

func (f *fakeStore) liveTokenCount(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.refreshTokens {
		if t.UserID == userID && !t.Revoked {
			n++
		}
	}
	return n
}

type fakeUsers fakeStore

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(ctx context.Context, u domain.User) (int64, error) {
	return (*fakeStore)(f).addUser(u), nil
}

func (f *fakeUsers) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	f.users[id] = u
	return nil
}

func (f *fakeUsers) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

type fakeCustomers fakeStore

func (f *fakeCustomers) GetByID(ctx context.Context, id idx.ID) (domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return domain.Customer{}, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeCustomers) List(ctx context.Context) ([]domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Customer, 0, len(f.customers))
	for _, c := range f.customers {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCustomers) Create(ctx context.Context, c domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers[c.ID] = c
	return nil
}

func (f *fakeCustomers) Update(ctx context.Context, c domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.customers[c.ID]; !ok {
		return store.ErrNotFound
	}
	f.customers[c.ID] = c
	return nil
}

func (f *fakeCustomers) Delete(ctx context.Context, id idx.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.customers[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.customers, id)
	return nil
}

type fakeReports fakeStore

func (f *fakeReports) GetByID(ctx context.Context, id idx.ID) (domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return domain.Report{}, store.ErrNotFound
	}
	return r, nil
}

func (f *fakeReports) List(ctx context.Context) ([]domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Report, 0, len(f.reports))
	for _, r := range f.reports {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReports) ListByUser(ctx context.Context, userID int64) ([]domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Report
	for _, r := range f.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReports) Create(ctx context.Context, r domain.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports[r.ID] = r
	return nil
}

func (f *fakeReports) Update(ctx context.Context, r domain.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reports[r.ID]; !ok {
		return store.ErrNotFound
	}
	f.reports[r.ID] = r
	return nil
}

func (f *fakeReports) Delete(ctx context.Context, id idx.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reports[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.reports, id)
	return nil
}

type fakeRefreshTokens fakeStore

func (f *fakeRefreshTokens) Create(ctx context.Context, t domain.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.CreatedAt = time.Now().UTC()
	f.refreshTokens[t.ID] = t
	return nil
}

func (f *fakeRefreshTokens) GetByFingerprint(ctx context.Context, fp string) (domain.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.refreshTokens {
		if t.Fingerprint == fp {
			return t, nil
		}
	}
	return domain.RefreshToken{}, store.ErrNotFound
}

func (f *fakeRefreshTokens) Revoke(ctx context.Context, id idx.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.refreshTokens[id]
	if !ok {
		return store.ErrNotFound
	}
	t.Revoked = true
	f.refreshTokens[id] = t
	return nil
}

func (f *fakeRefreshTokens) RevokeAllForUser(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, t := range f.refreshTokens {
		if t.UserID == userID {
			t.Revoked = true
			f.refreshTokens[id] = t
		}
	}
	return nil
}

func (f *fakeRefreshTokens) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, t := range f.refreshTokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(f.refreshTokens, id)
			n++
		}
	}
	return n, nil
}
