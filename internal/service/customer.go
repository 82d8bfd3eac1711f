package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"customer-registry/internal/cache"
	apperrors "customer-registry/internal/errors"
	"customer-registry/internal/model"
	"customer-registry/internal/repository"
)

// CustomerService handles customer commands. Create treats the payload
// collections as all-insert, Update reconciles each child collection of
// the persisted aggregate against the desired state independently.
type CustomerService interface {
	Create(context.Context, *model.Customer) (*model.Customer, error)
	Update(context.Context, *model.Customer) (*model.Customer, error)
	FindByName(context.Context, string) (*model.Customer, error)
	FindAll(context.Context) ([]*model.Customer, error)
	DeleteByName(context.Context, string) error
}

type customerService struct {
	customerRps   repository.CustomerRepository
	customerCache cache.CustomerCache
}

// NewCustomerService builds customer service
func NewCustomerService(customerRps repository.CustomerRepository, customerCache cache.CustomerCache) CustomerService {
	return &customerService{customerRps: customerRps, customerCache: customerCache}
}

func (s *customerService) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	existing, err := s.customerRps.FindByName(ctx, c.Name)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, apperrors.NewConflictErr(fmt.Sprintf("customer %s already exists", c.Name))
	}

	// all-insert reconciliation against an empty aggregate collapses
	// duplicate identity keys the same way update does
	diff := c.DiffChildren(&model.Customer{})
	c.Emails, c.Phones, c.Addresses = nil, nil, nil
	identifyInserts(&diff)
	c.ApplyDiff(diff)

	c.ID = uuid.NewString()
	if err := s.customerRps.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	existing, err := s.customerRps.FindByName(ctx, c.Name)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return nil, apperrors.NewNotFoundErr(fmt.Sprintf("customer %s does not exist", c.Name))
	}

	diff := c.DiffChildren(existing)
	identifyInserts(&diff)
	existing.ApplyDiff(diff)

	if err := s.customerRps.Update(ctx, existing, &diff); err != nil {
		return nil, err
	}

	if err := s.customerCache.EvictByName(ctx, existing.Name); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *customerService) FindByName(ctx context.Context, name string) (*model.Customer, error) {
	c, err := s.customerCache.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if c != nil {
		return c, nil
	}

	c, err = s.customerRps.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if c == nil {
		return nil, nil
	}

	if err := s.customerCache.Cache(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) FindAll(ctx context.Context) ([]*model.Customer, error) {
	customers, err := s.customerRps.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *customerService) DeleteByName(ctx context.Context, name string) error {
	if err := s.customerCache.EvictByName(ctx, name); err != nil {
		return err
	}
	return s.customerRps.DeleteByName(ctx, name)
}

// identifyInserts assigns ids to records entering the store, records
// carried by update/delete actions keep the ids they were loaded with.
func identifyInserts(diff *model.CustomerDiff) {
	for i := range diff.Emails.Insert {
		diff.Emails.Insert[i].ID = uuid.NewString()
	}
	for i := range diff.Phones.Insert {
		diff.Phones.Insert[i].ID = uuid.NewString()
	}
	for i := range diff.Addresses.Insert {
		diff.Addresses.Insert[i].ID = uuid.NewString()
	}
}
