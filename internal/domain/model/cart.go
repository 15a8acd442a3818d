package model

import "time"

// 1顧客につきカートは1つ。
// TotalAmountは常に sum(quantity * 現在価格) と一致させる。
type Cart struct {
	ID          string     `bson:"_id" json:"id"`
	CustomerID  string     `bson:"customer_id" json:"customer_id"`
	Items       []LineItem `bson:"items" json:"items"`
	TotalAmount float64    `bson:"total_amount" json:"total_amount"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// カートの明細。同じproduct_idは1行にまとめる（数量加算）。
// unit_price_at_addは追加時点の価格スナップショット。
type LineItem struct {
	ProductID      string    `bson:"product_id" json:"product_id"`
	Quantity       int64     `bson:"quantity" json:"quantity"`
	UnitPriceAtAdd float64   `bson:"unit_price_at_add" json:"unit_price_at_add"`
	AddedAt        time.Time `bson:"added_at" json:"added_at"`
}
