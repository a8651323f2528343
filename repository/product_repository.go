package repository

import (
	"context"
	"errors"

	"github.com/craftora/marketplace-api/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrProductNotFound is returned when a product id does not match any document.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the read + stock-decrement access this service is
// allowed on the catalog. All other product writes belong to the catalog
// subsystem.
type ProductRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int64) error
}

// MongoProductRepository implements ProductRepository on a Mongo collection.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock atomically decrements stock by qty via $inc. Concurrent
// purchases of the same product cannot lose updates to each other; stock may
// go negative under overselling, which this subsystem does not prevent.
func (r *MongoProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int64) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}
