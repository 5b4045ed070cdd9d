package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"shopwave/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

const productsCollection = "products"

type priceDoc struct {
	Original   money  `bson:"original"`
	Discounted *money `bson:"discounted,omitempty"`
	Currency   string `bson:"currency,omitempty"`
}

type ratingsDoc struct {
	Average float64 `bson:"average"`
	Count   int     `bson:"count"`
}

// productDoc accepts both the nested price document and the older flat
// shape where price is the selling price and originalPrice sits beside it.
type productDoc struct {
	ID            interface{}   `bson:"_id,omitempty"`
	Name          string        `bson:"name"`
	Slug          string        `bson:"slug,omitempty"`
	Description   string        `bson:"description"`
	Price         bson.RawValue `bson:"price"`
	OriginalPrice *money        `bson:"originalPrice,omitempty"`
	Category      string        `bson:"category"`
	Subcategory   string        `bson:"subcategory"`
	Image         string        `bson:"image"`
	ImagePublicID string        `bson:"imagePublicId,omitempty"`
	ExtraImages   []string      `bson:"extraImages"`
	Features      []string      `bson:"features"`
	Brand         string        `bson:"brand"`
	Quantity      int           `bson:"quantity"`
	Weight        int           `bson:"weight,omitempty"`
	Ratings       ratingsDoc    `bson:"ratings"`
	CreatedAt     time.Time     `bson:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt"`
}

func (d productDoc) toModel() (models.Product, error) {
	price, err := decodePrice(d.Price, d.OriginalPrice)
	if err != nil {
		return models.Product{}, fmt.Errorf("product %v: %w", d.ID, err)
	}
	extra := d.ExtraImages
	if extra == nil {
		extra = []string{}
	}
	features := d.Features
	if features == nil {
		features = []string{}
	}
	return models.Product{
		ID:            idString(d.ID),
		Name:          d.Name,
		Slug:          d.Slug,
		Description:   d.Description,
		Price:         price,
		Category:      d.Category,
		Subcategory:   d.Subcategory,
		Image:         d.Image,
		ImagePublicID: d.ImagePublicID,
		ExtraImages:   extra,
		Features:      features,
		Brand:         d.Brand,
		Quantity:      d.Quantity,
		WeightGrams:   d.Weight,
		Ratings:       models.Ratings{Average: d.Ratings.Average, Count: d.Ratings.Count},
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

func productToDoc(p *models.Product) (productDoc, error) {
	pd := priceDoc{Original: newMoney(p.Price.Original), Currency: p.Price.Currency}
	if p.Price.Discounted != nil {
		m := newMoney(*p.Price.Discounted)
		pd.Discounted = &m
	}
	t, data, err := bson.MarshalValue(pd)
	if err != nil {
		return productDoc{}, fmt.Errorf("encode price: %w", err)
	}
	return productDoc{
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         bson.RawValue{Type: t, Value: data},
		Category:      p.Category,
		Subcategory:   p.Subcategory,
		Image:         p.Image,
		ImagePublicID: p.ImagePublicID,
		ExtraImages:   p.ExtraImages,
		Features:      p.Features,
		Brand:         p.Brand,
		Quantity:      p.Quantity,
		Weight:        p.WeightGrams,
		Ratings:       ratingsDoc{Average: p.Ratings.Average, Count: p.Ratings.Count},
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

func decodePrice(raw bson.RawValue, legacyOriginal *money) (models.Price, error) {
	price := models.Price{Currency: "INR"}

	if raw.Type == bsontype.EmbeddedDocument {
		var pd priceDoc
		if err := raw.Unmarshal(&pd); err != nil {
			return price, fmt.Errorf("decode price: %w", err)
		}
		price.Original = pd.Original.Decimal
		if pd.Discounted != nil {
			d := pd.Discounted.Decimal
			price.Discounted = &d
		}
		if pd.Currency != "" {
			price.Currency = pd.Currency
		}
		return price, nil
	}

	current, err := decimalFromBSON(raw)
	if err != nil {
		return price, fmt.Errorf("decode price: %w", err)
	}
	price.Original = current
	if legacyOriginal != nil && legacyOriginal.GreaterThan(current) {
		price.Original = legacyOriginal.Decimal
		price.Discounted = &current
	}
	return price, nil
}

func idString(id interface{}) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// idFilterValues matches both ObjectID and legacy string ids.
func idFilterValues(ids ...string) bson.A {
	values := bson.A{}
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			values = append(values, oid)
		}
		values = append(values, id)
	}
	return values
}

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(productsCollection)}
}

func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

func productQuery(filter models.ProductFilter) bson.M {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = bson.M{"$regex": "^" + regexp.QuoteMeta(filter.Category) + "$", "$options": "i"}
	}
	if filter.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
			bson.M{"brand": pattern},
			bson.M{"category": pattern},
			bson.M{"subcategory": pattern},
		}
	}
	return query
}

func (r *ProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	query := productQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		opts.SetLimit(int64(filter.Limit)).SetSkip(int64((page - 1) * filter.Limit))
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	products, err := decodeProducts(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var doc productDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": bson.M{"$in": idFilterValues(id)}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", id, err)
	}
	p, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": idFilterValues(ids...)}})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return decodeProducts(ctx, cur)
}

func (r *ProductRepository) SlugExists(ctx context.Context, slug, exceptID string) (bool, error) {
	query := bson.M{"slug": slug}
	if exceptID != "" {
		query["_id"] = bson.M{"$nin": idFilterValues(exceptID)}
	}
	n, err := r.coll.CountDocuments(ctx, query, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return n > 0, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	doc, err := productToDoc(p)
	if err != nil {
		return err
	}
	oid := primitive.NewObjectID()
	doc.ID = oid

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = oid.Hex()
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()

	doc, err := productToDoc(p)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": bson.M{"$in": idFilterValues(p.ID)}},
		bson.M{"$set": doc, "$unset": bson.M{"originalPrice": ""}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": bson.M{"$in": idFilterValues(id)}})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats counts the catalog for the admin dashboard.
func (r *ProductRepository) Stats(ctx context.Context, since time.Time, lowStock int) (models.CatalogStats, error) {
	var stats models.CatalogStats
	var err error

	if stats.TotalProducts, err = r.coll.CountDocuments(ctx, bson.M{}); err != nil {
		return stats, fmt.Errorf("count products: %w", err)
	}
	if stats.NewProducts, err = r.coll.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}}); err != nil {
		return stats, fmt.Errorf("count new products: %w", err)
	}
	if stats.LowStock, err = r.coll.CountDocuments(ctx, bson.M{"quantity": bson.M{"$lt": lowStock}}); err != nil {
		return stats, fmt.Errorf("count low stock: %w", err)
	}
	return stats, nil
}

func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func decodeProducts(ctx context.Context, cur *mongo.Cursor) ([]models.Product, error) {
	defer cur.Close(ctx)

	products := []models.Product{}
	for cur.Next(ctx) {
		var doc productDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		p, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}
