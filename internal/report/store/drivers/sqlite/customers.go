package sqlite

import (
	"context"

	"github.com/fieldops/salesreport/internal/report/domain"
	"github.com/fieldops/salesreport/pkg/idx"
)

type customersRepo struct {
	q dbtx
}

const customerColumns = `id, name, contact, address, created_by, created_at, updated_at`

func (r *customersRepo) GetByID(ctx context.Context, id idx.ID) (domain.Customer, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id.String())
	return scanCustomer(row)
}

func (r *customersRepo) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customersRepo) Create(ctx context.Context, c domain.Customer) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO customers (id, name, contact, address, created_by)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID.String(), c.Name, c.Contact, c.Address, c.CreatedBy)
	return err
}

func (r *customersRepo) Update(ctx context.Context, c domain.Customer) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE customers
		 SET name = ?, contact = ?, address = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		c.Name, c.Contact, c.Address, c.ID.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *customersRepo) Delete(ctx context.Context, id idx.ID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanCustomer(row rowScanner) (domain.Customer, error) {
	var c domain.Customer
	var id string
	err := row.Scan(&id, &c.Name, &c.Contact, &c.Address, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Customer{}, mapNotFound(err)
	}
	c.ID = idx.ID(id)
	return c, nil
}
