package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopwave/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userDataCollection = "user_data"

var ErrInvalidData = errors.New("invalid data")

type userDataDoc struct {
	UserID    string        `bson:"userId"`
	Type      string        `bson:"type"`
	Data      bson.RawValue `bson:"data"`
	Version   int64         `bson:"version"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

type cartItemDoc struct {
	ID    string `bson:"id"`
	Name  string `bson:"name"`
	Image string `bson:"image"`
	Qty   int    `bson:"qty"`
	Price money  `bson:"price"`
}

// UserDataRepository keeps per-user blobs keyed by (userId, type): the cart
// plus client-owned blobs such as the wishlist.
type UserDataRepository struct {
	coll *mongo.Collection
}

func NewUserDataRepository(db *mongo.Database) *UserDataRepository {
	return &UserDataRepository{coll: db.Collection(userDataCollection)}
}

// EnsureIndexes must succeed before versioned cart saves are safe: the
// unique key turns a stale upsert into a duplicate key error instead of a
// second document.
func (r *UserDataRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func userDataFilter(userID, dataType string) bson.M {
	return bson.M{"userId": userID, "type": dataType}
}

func (r *UserDataRepository) LoadCart(ctx context.Context, userID string) (*models.Cart, error) {
	var doc userDataDoc
	err := r.coll.FindOne(ctx, userDataFilter(userID, models.UserDataCart)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	items, err := decodeCartItems(doc.Data)
	if err != nil {
		return nil, err
	}
	return &models.Cart{UserID: userID, Items: items, Version: doc.Version}, nil
}

// CartVersion reads only the version of the stored cart, 0 when there is none.
func (r *UserDataRepository) CartVersion(ctx context.Context, userID string) (int64, error) {
	var doc struct {
		Version int64 `bson:"version"`
	}
	opts := options.FindOne().SetProjection(bson.M{"version": 1, "_id": 0})
	err := r.coll.FindOne(ctx, userDataFilter(userID, models.UserDataCart), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cart version: %w", err)
	}
	return doc.Version, nil
}

// decodeCartItems reads the item array, or a JSON string holding it as some
// older clients wrote.
func decodeCartItems(raw bson.RawValue) ([]models.LineItem, error) {
	items := []models.LineItem{}
	switch raw.Type {
	case bsontype.Array:
		var docs []cartItemDoc
		if err := raw.Unmarshal(&docs); err != nil {
			return nil, fmt.Errorf("decode cart items: %w", err)
		}
		for _, d := range docs {
			items = append(items, models.LineItem{
				ProductID: d.ID,
				Name:      d.Name,
				Image:     d.Image,
				Quantity:  d.Qty,
				UnitPrice: d.Price.Decimal,
			})
		}
	case bsontype.String:
		if err := json.Unmarshal([]byte(raw.StringValue()), &items); err != nil {
			return nil, fmt.Errorf("decode cart items: %w", err)
		}
	case bsontype.Null, bsontype.Undefined, 0:
	default:
		return nil, fmt.Errorf("decode cart items: unexpected %s", raw.Type)
	}
	return items, nil
}

// SaveCart writes the items only when version is newer than the stored
// one. A stale write is dropped silently.
func (r *UserDataRepository) SaveCart(ctx context.Context, userID string, items []models.LineItem, version int64) error {
	docs := make([]cartItemDoc, 0, len(items))
	for _, it := range items {
		docs = append(docs, cartItemDoc{
			ID:    it.ProductID,
			Name:  it.Name,
			Image: it.Image,
			Qty:   it.Quantity,
			Price: newMoney(it.UnitPrice),
		})
	}

	filter := userDataFilter(userID, models.UserDataCart)
	filter["$or"] = bson.A{
		bson.M{"version": bson.M{"$lt": version}},
		bson.M{"version": bson.M{"$exists": false}},
	}
	update := bson.M{"$set": bson.M{
		"data":      docs,
		"version":   version,
		"updatedAt": time.Now().UTC(),
	}}

	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Get returns the blob as JSON, or ErrNotFound.
func (r *UserDataRepository) Get(ctx context.Context, userID, dataType string) (*models.UserData, error) {
	var doc userDataDoc
	err := r.coll.FindOne(ctx, userDataFilter(userID, dataType)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dataType, err)
	}

	data, err := rawValueToJSON(doc.Data)
	if err != nil {
		return nil, err
	}
	return &models.UserData{UserID: userID, Type: dataType, Data: data, UpdatedAt: doc.UpdatedAt}, nil
}

func (r *UserDataRepository) Put(ctx context.Context, userID, dataType string, data json.RawMessage) error {
	value, err := jsonToRawValue(data)
	if err != nil {
		return err
	}
	_, err = r.coll.UpdateOne(ctx,
		userDataFilter(userID, dataType),
		bson.M{"$set": bson.M{"data": value, "updatedAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", dataType, err)
	}
	return nil
}

func jsonToRawValue(data json.RawMessage) (bson.RawValue, error) {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	wrapped := append(append([]byte(`{"data":`), data...), '}')

	var doc bson.Raw
	if err := bson.UnmarshalExtJSON(wrapped, false, &doc); err != nil {
		return bson.RawValue{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return doc.Lookup("data"), nil
}

func rawValueToJSON(v bson.RawValue) (json.RawMessage, error) {
	if v.Type == 0 {
		return json.RawMessage("null"), nil
	}
	out, err := bson.MarshalExtJSON(bson.D{{Key: "data", Value: v}}, false, false)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(out, &wrapper); err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	return wrapper.Data, nil
}
