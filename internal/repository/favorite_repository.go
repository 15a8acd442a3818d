package repository

import (
	"context"

	"app/internal/domain/model"
)

type FavoriteRepository interface {
	// 既にあれば何もしない
	Add(ctx context.Context, fav model.Favorite) error
	Remove(ctx context.Context, customerID string, productID string) error
	ListByCustomerID(ctx context.Context, customerID string) ([]model.Favorite, error)
	CountByProductID(ctx context.Context, productID string) (int64, error)
}
