package repository

import (
	"context"

	"app/internal/domain/model"
)

type ReviewRepository interface {
	// 同じ顧客×商品は上書き
	Upsert(ctx context.Context, review model.Review) error
	FindByID(ctx context.Context, reviewID string) (model.Review, error)
	ListByProductID(ctx context.Context, productID string) ([]model.Review, error)
	DeleteByID(ctx context.Context, reviewID string) error
	//平均評価と件数
	AverageRating(ctx context.Context, productID string) (float64, int64, error)
}
