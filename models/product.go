package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product is the catalog entity owned by the product subsystem. This service
// only reads it and decrements Stock during order materialization.
type Product struct {
	ID         primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Price      float64            `json:"price" bson:"price"`
	Stock      int64              `json:"stock" bson:"stock"`
	SupplierID primitive.ObjectID `json:"userRef" bson:"userRef"`
}
