package model

import "time"

type Favorite struct {
	ID         string    `bson:"_id" json:"id"`
	CustomerID string    `bson:"customer_id" json:"customer_id"`
	ProductID  string    `bson:"product_id" json:"product_id"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
