package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page      int
	Limit     int
	Q         string
	Category  string
	ArtisanID string
	MinPrice  *float64
	MaxPrice  *float64
	Sort      string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	ListByArtisan(ctx context.Context, artisanID string) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) error
	Update(ctx context.Context, p model.Product) error
	SetImagePath(ctx context.Context, id string, path string) error
	SoftDelete(ctx context.Context, id string) error
}
