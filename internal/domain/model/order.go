package model

import "time"

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusShipped  OrderStatus = "SHIPPED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

type Order struct {
	ID          string      `bson:"_id" json:"id"`
	CustomerID  string      `bson:"customer_id" json:"customer_id"`
	Status      OrderStatus `bson:"status" json:"status"`
	TotalAmount float64     `bson:"total_amount" json:"total_amount"`
	Items       []OrderItem `bson:"items" json:"items"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `bson:"updated_at" json:"updated_at"`
}

// 注文時点の商品名・価格を必ずスナップショットする。
type OrderItem struct {
	ProductID         string  `bson:"product_id" json:"product_id"`
	ArtisanID         string  `bson:"artisan_id" json:"artisan_id"`
	NameSnapshot      string  `bson:"name_snapshot" json:"name"`
	UnitPriceSnapshot float64 `bson:"unit_price_snapshot" json:"price"`
	Quantity          int64   `bson:"quantity" json:"quantity"`
}
