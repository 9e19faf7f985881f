package domain

import (
	"time"

	"github.com/fieldops/salesreport/pkg/idx"
)

// Customer is an account a sales person visits and reports on.
type Customer struct {
	ID        idx.ID    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Address   string    `json:"address"`
	CreatedBy int64     `json:"created_by"` // user id
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Report is one daily sales report entry.
type Report struct {
	ID         idx.ID    `json:"id"`
	UserID     int64     `json:"user_id"`
	CustomerID idx.ID    `json:"customer_id"`
	VisitedAt  time.Time `json:"visited_at"`
	Summary    string    `json:"summary"`
	NextAction string    `json:"next_action"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
