package repository

import (
	"context"

	"app/internal/domain/model"
)

// カートはドキュメント単位で読み書きする。
// Saveは1ドキュメントのupsertで、永続層側で原子的に行われる約束。
type CartRepository interface {
	FindByCustomerID(ctx context.Context, customerID string) (model.Cart, error)
	FindByID(ctx context.Context, cartID string) (model.Cart, error)
	ListAll(ctx context.Context) ([]model.Cart, error)
	Save(ctx context.Context, cart model.Cart) error
}
