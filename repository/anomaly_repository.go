package repository

import (
	"context"

	"github.com/craftora/marketplace-api/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// AnomalyRepository records unreconcilable paid line items for manual review.
type AnomalyRepository interface {
	Record(ctx context.Context, anomaly *models.PaymentAnomaly) error
}

// MongoAnomalyRepository implements AnomalyRepository on a Mongo collection.
type MongoAnomalyRepository struct {
	collection *mongo.Collection
}

// NewMongoAnomalyRepository creates a new MongoAnomalyRepository.
func NewMongoAnomalyRepository(db *mongo.Database) *MongoAnomalyRepository {
	return &MongoAnomalyRepository{collection: db.Collection("payment_anomalies")}
}

func (r *MongoAnomalyRepository) Record(ctx context.Context, anomaly *models.PaymentAnomaly) error {
	_, err := r.collection.InsertOne(ctx, anomaly)
	return err
}
