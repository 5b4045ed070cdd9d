package repositories

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// money stores amounts as Decimal128 and reads every numeric shape older
// documents used: doubles, integers, Decimal128 and numeric strings.
type money struct {
	decimal.Decimal
}

func newMoney(d decimal.Decimal) money {
	return money{Decimal: d}
}

func (m money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.Decimal.String())
	if err != nil {
		return 0, nil, fmt.Errorf("encode amount %s: %w", m.Decimal, err)
	}
	return bson.MarshalValue(d128)
}

func (m *money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	d, err := decimalFromBSON(bson.RawValue{Type: t, Value: data})
	if err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

func decimalFromBSON(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case bsontype.Decimal128:
		d128, ok := v.Decimal128OK()
		if !ok {
			return decimal.Zero, fmt.Errorf("malformed decimal128 amount")
		}
		return decimal.NewFromString(d128.String())
	case bsontype.Double:
		return decimal.NewFromFloat(v.Double()), nil
	case bsontype.Int32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bsontype.Int64:
		return decimal.NewFromInt(v.Int64()), nil
	case bsontype.String:
		return decimal.NewFromString(v.StringValue())
	case bsontype.Null, bsontype.Undefined, 0:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %s", v.Type)
	}
}

// parseNumeric converts a Postgres NUMERIC selected as text.
func parseNumeric(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse numeric %q: %w", s, err)
	}
	return d, nil
}
