package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shopwave/models"
	"shopwave/repositories"
)

const maxUserDataBytes = 256 << 10

var ErrUnknownDataType = errors.New("unknown user data type")

type UserDataStore interface {
	Get(ctx context.Context, userID, dataType string) (*models.UserData, error)
	Put(ctx context.Context, userID, dataType string, data json.RawMessage) error
}

// UserDataService serves the client-owned blobs kept next to the cart.
type UserDataService struct {
	store UserDataStore
}

func NewUserDataService(store UserDataStore) *UserDataService {
	return &UserDataService{store: store}
}

func checkUserDataType(userID, dataType string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	if !models.IsClientUserDataType(dataType) {
		return fmt.Errorf("%w: %q", ErrUnknownDataType, dataType)
	}
	return nil
}

// Get returns an empty list when nothing has been stored yet.
func (s *UserDataService) Get(ctx context.Context, userID, dataType string) (*models.UserData, error) {
	if err := checkUserDataType(userID, dataType); err != nil {
		return nil, err
	}
	data, err := s.store.Get(ctx, userID, dataType)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.UserData{UserID: userID, Type: dataType, Data: json.RawMessage("[]")}, nil
	}
	return data, err
}

func (s *UserDataService) Put(ctx context.Context, userID, dataType string, data json.RawMessage) error {
	if err := checkUserDataType(userID, dataType); err != nil {
		return err
	}
	if len(data) > maxUserDataBytes {
		return fmt.Errorf("%w: data exceeds %d bytes", repositories.ErrInvalidData, maxUserDataBytes)
	}
	if !json.Valid(data) {
		return fmt.Errorf("%w: malformed JSON", repositories.ErrInvalidData)
	}
	return s.store.Put(ctx, userID, dataType, data)
}
