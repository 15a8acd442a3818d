package model

import "time"

// 1顧客×1商品につきレビューは1件（再投稿は上書き）。
type Review struct {
	ID         string    `bson:"_id" json:"id"`
	ProductID  string    `bson:"product_id" json:"product_id"`
	CustomerID string    `bson:"customer_id" json:"customer_id"`
	Rating     int       `bson:"rating" json:"rating"` // 1..5
	Comment    string    `bson:"comment" json:"comment"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}
