package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"shopwave/models"
	"shopwave/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUserData map[string]json.RawMessage

func (m memoryUserData) Get(_ context.Context, userID, dataType string) (*models.UserData, error) {
	data, ok := m[userID+"/"+dataType]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &models.UserData{UserID: userID, Type: dataType, Data: data}, nil
}

func (m memoryUserData) Put(_ context.Context, userID, dataType string, data json.RawMessage) error {
	m[userID+"/"+dataType] = data
	return nil
}

func TestUserDataService_DefaultsToEmptyList(t *testing.T) {
	svc := NewUserDataService(memoryUserData{})

	got, err := svc.Get(context.Background(), "u1", models.UserDataWishlist)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(got.Data))
}

func TestUserDataService_PutThenGet(t *testing.T) {
	svc := NewUserDataService(memoryUserData{})

	require.NoError(t, svc.Put(context.Background(), "u1", models.UserDataNotifications, json.RawMessage(`[{"id":"n1","read":false}]`)))
	got, err := svc.Get(context.Background(), "u1", models.UserDataNotifications)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"n1","read":false}]`, string(got.Data))
}

func TestUserDataService_RejectsCartAndUnknownTypes(t *testing.T) {
	svc := NewUserDataService(memoryUserData{})

	_, err := svc.Get(context.Background(), "u1", models.UserDataCart)
	assert.ErrorIs(t, err, ErrUnknownDataType)
	assert.ErrorIs(t, svc.Put(context.Background(), "u1", "secrets", json.RawMessage(`{}`)), ErrUnknownDataType)
	assert.ErrorIs(t, svc.Put(context.Background(), "", models.UserDataWishlist, json.RawMessage(`{}`)), ErrInvalidArgument)
}

func TestUserDataService_RejectsBadPayloads(t *testing.T) {
	svc := NewUserDataService(memoryUserData{})

	err := svc.Put(context.Background(), "u1", models.UserDataWishlist, json.RawMessage(`{"a":`))
	assert.ErrorIs(t, err, repositories.ErrInvalidData)

	big := json.RawMessage(`"` + strings.Repeat("x", maxUserDataBytes) + `"`)
	assert.ErrorIs(t, svc.Put(context.Background(), "u1", models.UserDataWishlist, big), repositories.ErrInvalidData)
}

type memoryCustomers []models.Customer

func (m memoryCustomers) List(_ context.Context, search string, limit, offset int) ([]models.Customer, int, error) {
	out := []models.Customer{}
	for _, c := range m {
		if search == "" || strings.Contains(c.Email, search) {
			out = append(out, c)
		}
	}
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (m memoryCustomers) FindByUserID(_ context.Context, userID string) (*models.Customer, error) {
	for _, c := range m {
		if c.UserID == userID {
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func TestCustomerService(t *testing.T) {
	svc := NewCustomerService(memoryCustomers{
		{UserID: "u1", Email: "asha@example.com"},
		{UserID: "u2", Email: "ravi@example.com"},
	})

	list, total, err := svc.List(context.Background(), " asha ", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "u1", list[0].UserID)

	_, err = svc.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
