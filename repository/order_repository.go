package repository

import (
	"context"
	"errors"
	"time"

	"github.com/craftora/marketplace-api/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateSession is returned when an insert collides with the unique
// (paymentSessionId, supplierId) index, meaning another caller already
// materialized the session.
var ErrDuplicateSession = errors.New("orders already exist for payment session")

// ErrOrderNotFound is returned when an order id does not match any document.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	EnsureIndexes(ctx context.Context) error
	ExistsBySessionID(ctx context.Context, sessionID string) (bool, error)
	CreateMany(ctx context.Context, orders []models.Order) error
	FindBySupplier(ctx context.Context, supplierID primitive.ObjectID) ([]models.Order, error)
	FindByBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]models.Order, error)
	FindByEmail(ctx context.Context, email string) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MongoOrderRepository implements OrderRepository on a Mongo collection.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a new MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

// EnsureIndexes creates the compound unique index that backstops the
// idempotency gate. A session may legitimately produce one order per
// supplier, so uniqueness is on the pair, not the session alone.
func (r *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "paymentSessionId", Value: 1},
			{Key: "supplierId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoOrderRepository) ExistsBySessionID(ctx context.Context, sessionID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"paymentSessionId": sessionID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoOrderRepository) CreateMany(ctx context.Context, orders []models.Order) error {
	docs := make([]interface{}, 0, len(orders))
	for i := range orders {
		docs = append(docs, orders[i])
	}
	_, err := r.collection.InsertMany(ctx, docs)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateSession
	}
	return err
}

func (r *MongoOrderRepository) FindBySupplier(ctx context.Context, supplierID primitive.ObjectID) ([]models.Order, error) {
	return r.find(ctx, bson.M{"supplierId": supplierID})
}

func (r *MongoOrderRepository) FindByBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]models.Order, error) {
	return r.find(ctx, bson.M{"buyerId": buyerID})
}

func (r *MongoOrderRepository) FindByEmail(ctx context.Context, email string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"customer.email": email})
}

func (r *MongoOrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Delete performs a hard delete (admin only path).
func (r *MongoOrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}
