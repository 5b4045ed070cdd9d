package repositories

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type priced struct {
	Price money `bson:"price"`
}

func TestMoney_WritesDecimal128(t *testing.T) {
	raw, err := bson.Marshal(priced{Price: newMoney(decimal.RequireFromString("1299.50"))})
	require.NoError(t, err)

	v := bson.Raw(raw).Lookup("price")
	assert.Equal(t, bsontype.Decimal128, v.Type)

	var back priced
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.True(t, back.Price.Equal(decimal.RequireFromString("1299.5")))
}

func TestMoney_ReadsLegacyShapes(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"double", 499.99, "499.99"},
		{"int32", int32(250), "250"},
		{"int64", int64(1200), "1200"},
		{"string", "89.90", "89.9"},
		{"null", nil, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"price": tt.value})
			require.NoError(t, err)

			var got priced
			require.NoError(t, bson.Unmarshal(raw, &got))
			assert.True(t, got.Price.Equal(decimal.RequireFromString(tt.want)), got.Price.String())
		})
	}
}

func TestMoney_RejectsNonNumeric(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"price": bson.M{"amount": 1}})
	require.NoError(t, err)

	var got priced
	assert.Error(t, bson.Unmarshal(raw, &got))
}

func TestParseNumeric(t *testing.T) {
	d, err := parseNumeric("1582.00")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(1582)))

	d, err = parseNumeric("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = parseNumeric("abc")
	assert.Error(t, err)
}
