package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fieldops/salesreport/internal/report/domain"
	"github.com/fieldops/salesreport/internal/report/store"
	"github.com/fieldops/salesreport/pkg/idx"
	"github.com/fieldops/salesreport/pkg/jwtx"
	"github.com/fieldops/salesreport/pkg/sanitize"
)

var (
	// ErrForbidden reports an ownership violation: a non-manager touching
	// someone else's report.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation carries field-level input problems.
	ErrValidation = errors.New("validation")
)

// ValidationError lists what was wrong with the caller's input.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string { return "validation: " + strings.Join(e.Fields, "; ") }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ReportInput is the write shape for a daily report.
type ReportInput struct {
	CustomerID string    `json:"customer_id"`
	VisitedAt  time.Time `json:"visited_at"`
	Summary    string    `json:"summary"`
	NextAction string    `json:"next_action"`
}

const maxSummaryLen = 4000

func (in *ReportInput) validate() error {
	var fields []string
	if _, err := idx.Parse(in.CustomerID); err != nil {
		fields = append(fields, "customer_id must be a valid id")
	}
	if in.VisitedAt.IsZero() {
		fields = append(fields, "visited_at is required")
	}
	if strings.TrimSpace(in.Summary) == "" {
		fields = append(fields, "summary is required")
	}
	if len(in.Summary) > maxSummaryLen {
		fields = append(fields, "summary is too long")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ReportService implements daily-report CRUD with ownership checks and
// input sanitization at the write boundary.
type ReportService struct {
	Store store.Store
}

// Create stores a new report owned by the caller.
func (s *ReportService) Create(ctx context.Context, who jwtx.Identity, in ReportInput) (domain.Report, error) {
	if err := in.validate(); err != nil {
		return domain.Report{}, err
	}

	customerID, _ := idx.Parse(in.CustomerID)
	if _, err := s.Store.Customers().GetByID(ctx, customerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Report{}, &ValidationError{Fields: []string{"customer_id does not exist"}}
		}
		return domain.Report{}, err
	}

	rep := domain.Report{
		ID:         idx.New(),
		UserID:     who.UserID,
		CustomerID: customerID,
		VisitedAt:  in.VisitedAt.UTC(),
		Summary:    sanitize.Clean(in.Summary),
		NextAction: sanitize.Clean(in.NextAction),
	}
	if err := s.Store.Reports().Create(ctx, rep); err != nil {
		return domain.Report{}, err
	}
	return rep, nil
}

// Get returns one report; non-managers only see their own.
func (s *ReportService) Get(ctx context.Context, who jwtx.Identity, id idx.ID) (domain.Report, error) {
	rep, err := s.Store.Reports().GetByID(ctx, id)
	if err != nil {
		return domain.Report{}, err
	}
	if !who.IsManager && rep.UserID != who.UserID {
		return domain.Report{}, ErrForbidden
	}
	return rep, nil
}

// List returns the caller's reports, or every report for a manager.
func (s *ReportService) List(ctx context.Context, who jwtx.Identity) ([]domain.Report, error) {
	if who.IsManager {
		return s.Store.Reports().List(ctx)
	}
	return s.Store.Reports().ListByUser(ctx, who.UserID)
}

// Update rewrites a report. Managers may edit anyone's; sales people only
// their own.
func (s *ReportService) Update(ctx context.Context, who jwtx.Identity, id idx.ID, in ReportInput) (domain.Report, error) {
	if err := in.validate(); err != nil {
		return domain.Report{}, err
	}

	rep, err := s.Store.Reports().GetByID(ctx, id)
	if err != nil {
		return domain.Report{}, err
	}
	if !who.IsManager && rep.UserID != who.UserID {
		return domain.Report{}, ErrForbidden
	}

	customerID, _ := idx.Parse(in.CustomerID)
	rep.CustomerID = customerID
	rep.VisitedAt = in.VisitedAt.UTC()
	rep.Summary = sanitize.Clean(in.Summary)
	rep.NextAction = sanitize.Clean(in.NextAction)

	if err := s.Store.Reports().Update(ctx, rep); err != nil {
		return domain.Report{}, err
	}
	return rep, nil
}

// Delete removes a report under the same ownership rule as Update.
func (s *ReportService) Delete(ctx context.Context, who jwtx.Identity, id idx.ID) error {
	rep, err := s.Store.Reports().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !who.IsManager && rep.UserID != who.UserID {
		return ErrForbidden
	}
	return s.Store.Reports().Delete(ctx, id)
}
