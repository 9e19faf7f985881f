package sqlite

import (
	"context"

	"github.com/fieldops/salesreport/internal/report/domain"
	"github.com/fieldops/salesreport/pkg/idx"
)

type reportsRepo struct {
	q dbtx
}

const reportColumns = `id, user_id, customer_id, visited_at, summary, next_action, created_at, updated_at`

func (r *reportsRepo) GetByID(ctx context.Context, id idx.ID) (domain.Report, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = ?`, id.String())
	return scanReport(row)
}

func (r *reportsRepo) List(ctx context.Context) ([]domain.Report, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY visited_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReports(rows)
}

func (r *reportsRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Report, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE user_id = ? ORDER BY visited_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReports(rows)
}

func (r *reportsRepo) Create(ctx context.Context, rep domain.Report) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO reports (id, user_id, customer_id, visited_at, summary, next_action)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rep.ID.String(), rep.UserID, rep.CustomerID.String(),
		rep.VisitedAt, rep.Summary, rep.NextAction)
	return err
}

func (r *reportsRepo) Update(ctx context.Context, rep domain.Report) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE reports
		 SET customer_id = ?, visited_at = ?, summary = ?, next_action = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		rep.CustomerID.String(), rep.VisitedAt, rep.Summary, rep.NextAction,
		rep.ID.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *reportsRepo) Delete(ctx context.Context, id idx.ID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanReport(row rowScanner) (domain.Report, error) {
	var rep domain.Report
	var id, customerID string
	err := row.Scan(
		&id, &rep.UserID, &customerID, &rep.VisitedAt,
		&rep.Summary, &rep.NextAction, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return domain.Report{}, mapNotFound(err)
	}
	rep.ID = idx.ID(id)
	rep.CustomerID = idx.ID(customerID)
	return rep, nil
}

func collectReports(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]domain.Report, error) {
	var reports []domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
