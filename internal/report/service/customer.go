package service

import (
	"context"
	"strings"

	"github.com/fieldops/salesreport/internal/report/domain"
	"github.com/fieldops/salesreport/internal/report/store"
	"github.com/fieldops/salesreport/pkg/idx"
	"github.com/fieldops/salesreport/pkg/jwtx"
	"github.com/fieldops/salesreport/pkg/sanitize"
)

// CustomerInput is the write shape for a customer account.
type CustomerInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Address string `json:"address"`
}

func (in *CustomerInput) validate() error {
	var fields []string
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, "name is required")
	}
	if len(in.Name) > 200 {
		fields = append(fields, "name is too long")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CustomerService implements customer CRUD. Mutation is manager-only,
// enforced at the route layer; reads are open to any authenticated user.
type CustomerService struct {
	Store store.Store
}

func (s *CustomerService) Create(ctx context.Context, who jwtx.Identity, in CustomerInput) (domain.Customer, error) {
	if err := in.validate(); err != nil {
		return domain.Customer{}, err
	}
	c := domain.Customer{
		ID:        idx.New(),
		Name:      sanitize.Clean(in.Name),
		Contact:   sanitize.Clean(in.Contact),
		Address:   sanitize.Clean(in.Address),
		CreatedBy: who.UserID,
	}
	if err := s.Store.Customers().Create(ctx, c); err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, id idx.ID) (domain.Customer, error) {
	return s.Store.Customers().GetByID(ctx, id)
}

func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.Store.Customers().List(ctx)
}

func (s *CustomerService) Update(ctx context.Context, id idx.ID, in CustomerInput) (domain.Customer, error) {
	if err := in.validate(); err != nil {
		return domain.Customer{}, err
	}
	c, err := s.Store.Customers().GetByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	c.Name = sanitize.Clean(in.Name)
	c.Contact = sanitize.Clean(in.Contact)
	c.Address = sanitize.Clean(in.Address)

	if err := s.Store.Customers().Update(ctx, c); err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}

func (s *CustomerService) Delete(ctx context.Context, id idx.ID) error {
	return s.Store.Customers().Delete(ctx, id)
}
