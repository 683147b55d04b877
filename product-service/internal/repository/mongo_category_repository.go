package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/ecomart/product-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type categoryDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Slug         string             `bson:"slug"`
	Image        string             `bson:"image"`
	Description  string             `bson:"description"`
	Featured     bool               `bson:"featured"`
	ProductCount int                `bson:"product_count"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type MongoCategoryRepository struct {
	collection *mongo.Collection
}

func NewMongoCategoryRepository(db *mongo.Database) *MongoCategoryRepository {
	return &MongoCategoryRepository{collection: db.Collection("categories")}
}

func (m *MongoCategoryRepository) List(ctx context.Context, featured *bool) ([]domain.Category, error) {
	filter := bson.M{}
	if featured != nil {
		filter["featured"] = *featured
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})

	cur, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer cur.Close(ctx)

	var docs []categoryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	categories := make([]domain.Category, len(docs))
	for i, doc := range docs {
		categories[i] = categoryToDomain(doc)
	}
	return categories, nil
}

func (m *MongoCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidCategoryID
	}

	var doc categoryDocument
	if err := m.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	c := categoryToDomain(doc)
	return &c, nil
}

func (m *MongoCategoryRepository) Insert(ctx context.Context, c *domain.Category) error {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	doc := categoryDocument{
		Name:         c.Name,
		Slug:         c.Slug,
		Image:        c.Image,
		Description:  c.Description,
		Featured:     c.Featured,
		ProductCount: c.ProductCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.ID != "" {
		oid, err := primitive.ObjectIDFromHex(c.ID)
		if err != nil {
			return ErrInvalidCategoryID
		}
		doc.ID = oid
	} else {
		doc.ID = primitive.NewObjectID()
	}

	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	c.ID = doc.ID.Hex()
	return nil
}

func (m *MongoCategoryRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "featured", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create category indexes: %w", err)
	}
	return nil
}

func categoryToDomain(doc categoryDocument) domain.Category {
	return domain.Category{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Slug:         doc.Slug,
		Image:        doc.Image,
		Description:  doc.Description,
		Featured:     doc.Featured,
		ProductCount: doc.ProductCount,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
