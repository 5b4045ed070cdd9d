package repositories

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func rawField(t *testing.T, doc bson.M, key string) bson.RawValue {
	t.Helper()
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	return bson.Raw(raw).Lookup(key)
}

func TestDecodeCartItems_Array(t *testing.T) {
	v := rawField(t, bson.M{"data": bson.A{
		bson.M{"id": "p1", "name": "Neem Oil", "image": "neem.png", "qty": 2, "price": 249.5},
		bson.M{"id": "p2", "name": "Lamp", "image": "", "qty": int64(1), "price": "1200"},
	}}, "data")

	items, err := decodeCartItems(v)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("249.5")))
	assert.True(t, items[1].UnitPrice.Equal(decimal.NewFromInt(1200)))
}

func TestDecodeCartItems_JSONString(t *testing.T) {
	v := rawField(t, bson.M{"data": `[{"id":"p1","name":"Lamp","image":"","qty":3,"price":99.9}]`}, "data")

	items, err := decodeCartItems(v)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("99.9")))
}

func TestDecodeCartItems_MissingIsEmpty(t *testing.T) {
	items, err := decodeCartItems(bson.RawValue{})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = decodeCartItems(rawField(t, bson.M{"data": 5}, "data"))
	assert.Error(t, err)
}

func TestCartItemDoc_WritesDecimalPrice(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"data": []cartItemDoc{{ID: "p1", Qty: 1, Price: newMoney(decimal.RequireFromString("10.25"))}}})
	require.NoError(t, err)

	items, err := decodeCartItems(bson.Raw(raw).Lookup("data"))
	require.NoError(t, err)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("10.25")))
}

func TestUserDataJSONRoundTrip(t *testing.T) {
	in := json.RawMessage(`[{"id":"p1","addedAt":"2024-01-01"},{"id":"p2","tags":["a","b"],"n":3}]`)

	v, err := jsonToRawValue(in)
	require.NoError(t, err)

	out, err := rawValueToJSON(v)
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))
}

func TestUserDataJSON_Invalid(t *testing.T) {
	_, err := jsonToRawValue(json.RawMessage(`{"broken"`))
	assert.ErrorIs(t, err, ErrInvalidData)
}
