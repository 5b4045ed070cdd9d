package services

import (
	"context"
	"errors"
	"strings"

	"shopwave/models"
	"shopwave/repositories"
)

var ErrCustomerNotFound = errors.New("customer not found")

type CustomerStore interface {
	List(ctx context.Context, search string, limit, offset int) ([]models.Customer, int, error)
	FindByUserID(ctx context.Context, userID string) (*models.Customer, error)
}

type CustomerService struct {
	store CustomerStore
}

func NewCustomerService(store CustomerStore) *CustomerService {
	return &CustomerService{store: store}
}

func (s *CustomerService) List(ctx context.Context, search string, limit, offset int) ([]models.Customer, int, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, strings.TrimSpace(search), limit, offset)
}

func (s *CustomerService) Get(ctx context.Context, userID string) (*models.Customer, error) {
	c, err := s.store.FindByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCustomerNotFound
	}
	return c, err
}
