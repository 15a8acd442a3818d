package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page       int
	Limit      int
	Status     string
	CustomerID string
	From       *time.Time
	To         *time.Time
}

// 集計結果（管理者用）
type OrderStats struct {
	TotalOrders int64            `json:"total_orders"`
	Revenue     float64          `json:"revenue"`
	ByStatus    map[string]int64 `json:"by_status"`
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	ListByCustomerID(ctx context.Context, customerID string, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) error
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
	//件数・売上・ステータス別件数の集計
	Stats(ctx context.Context) (OrderStats, error)
}
