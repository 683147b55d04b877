package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/fjod/ecomart/pkg/mongodb"
	"github.com/fjod/ecomart/product-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productDocument struct {
	ID             primitive.ObjectID    `bson:"_id,omitempty"`
	Slug           string                `bson:"slug"`
	Name           string                `bson:"name"`
	Description    string                `bson:"description,omitempty"`
	Price          primitive.Decimal128  `bson:"price"`
	CompareAtPrice *primitive.Decimal128 `bson:"compare_at_price,omitempty"`
	Image          string                `bson:"image,omitempty"`
	Category       string                `bson:"category,omitempty"`
	CategoryName   string                `bson:"category_name,omitempty"`
	InStock        bool                  `bson:"in_stock"`
	StockQuantity  int                   `bson:"stock_quantity"`
	Featured       bool                  `bson:"featured"`
	Rating         float64               `bson:"rating"`
	ReviewCount    int                   `bson:"review_count"`
	Tags           []string              `bson:"tags,omitempty"`
	CreatedAt      time.Time             `bson:"created_at"`
	UpdatedAt      time.Time             `bson:"updated_at"`
}

var sortColumns = map[domain.SortField]string{
	domain.SortCreatedAt: "created_at",
	domain.SortPrice:     "price",
	domain.SortName:      "name",
	domain.SortRating:    "rating",
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("products")}
}

func (m *MongoRepository) List(ctx context.Context, f domain.ListFilter) ([]domain.Product, int64, error) {
	filter, err := buildFilter(f)
	if err != nil {
		return nil, 0, err
	}

	total, err := m.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	order := 1
	if f.Desc {
		order = -1
	}
	sortKey, ok := sortColumns[f.Sort]
	if !ok {
		sortKey = "created_at"
	}
	opts := options.Find().
		SetSort(bson.D{{Key: sortKey, Value: order}, {Key: "_id", Value: 1}}).
		SetSkip(f.Skip()).
		SetLimit(int64(f.Limit))

	products, err := m.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (m *MongoRepository) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	return m.find(ctx, bson.M{"featured": true}, opts)
}

func (m *MongoRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return m.findOne(ctx, bson.M{"_id": oid})
}

func (m *MongoRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return m.findOne(ctx, bson.M{"slug": slug})
}

func (m *MongoRepository) SetStock(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	update := bson.M{
		"$set": bson.M{
			"stock_quantity": quantity,
			"in_stock":       quantity > 0,
			"updated_at":     time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err = m.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	return toDomain(doc)
}

func (m *MongoRepository) Insert(ctx context.Context, p *domain.Product) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.InStock = p.StockQuantity > 0

	doc, err := toDocument(p)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}

	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "featured", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]domain.Product, error) {
	cur, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cur.Close(ctx)

	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := toDomain(doc)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

func (m *MongoRepository) findOne(ctx context.Context, filter any) (*domain.Product, error) {
	var doc productDocument
	if err := m.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return toDomain(doc)
}

func buildFilter(f domain.ListFilter) (bson.M, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Featured != nil {
		filter["featured"] = *f.Featured
	}
	if f.InStock != nil {
		filter["in_stock"] = *f.InStock
	}

	price := bson.M{}
	if f.MinPrice != nil {
		v, err := mongodb.ToDecimal128(*f.MinPrice)
		if err != nil {
			return nil, err
		}
		price["$gte"] = v
	}
	if f.MaxPrice != nil {
		v, err := mongodb.ToDecimal128(*f.MaxPrice)
		if err != nil {
			return nil, err
		}
		price["$lte"] = v
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"category_name": re},
			bson.M{"description": re},
			bson.M{"tags": re},
		}
	}
	return filter, nil
}

func toDocument(p *domain.Product) (productDocument, error) {
	price, err := mongodb.ToDecimal128(p.Price)
	if err != nil {
		return productDocument{}, err
	}
	doc := productDocument{
		Slug:          p.Slug,
		Name:          p.Name,
		Description:   p.Description,
		Price:         price,
		Image:         p.Image,
		Category:      p.Category,
		CategoryName:  p.CategoryName,
		InStock:       p.InStock,
		StockQuantity: p.StockQuantity,
		Featured:      p.Featured,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		Tags:          p.Tags,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.CompareAtPrice != nil {
		cmp, err := mongodb.ToDecimal128(*p.CompareAtPrice)
		if err != nil {
			return productDocument{}, err
		}
		doc.CompareAtPrice = &cmp
	}
	if p.ID != "" {
		oid, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			return productDocument{}, ErrInvalidID
		}
		doc.ID = oid
	}
	return doc, nil
}

func toDomain(doc productDocument) (*domain.Product, error) {
	price, err := mongodb.FromDecimal128(doc.Price)
	if err != nil {
		return nil, err
	}
	p := &domain.Product{
		ID:            doc.ID.Hex(),
		Slug:          doc.Slug,
		Name:          doc.Name,
		Description:   doc.Description,
		Price:         price,
		Image:         doc.Image,
		Category:      doc.Category,
		CategoryName:  doc.CategoryName,
		InStock:       doc.InStock,
		StockQuantity: doc.StockQuantity,
		Featured:      doc.Featured,
		Rating:        doc.Rating,
		ReviewCount:   doc.ReviewCount,
		Tags:          doc.Tags,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	if doc.CompareAtPrice != nil {
		cmp, err := mongodb.FromDecimal128(*doc.CompareAtPrice)
		if err != nil {
			return nil, err
		}
		p.CompareAtPrice = &cmp
	}
	return p, nil
}
