package cache

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrCacheMiss = errors.New("cache miss")

// カートドキュメントの読み取りキャッシュ。
// 失敗してもDB読みにフォールバックするだけなので、呼び出し側はエラーを致命扱いしない。
type CartCache interface {
	Get(ctx context.Context, customerID string) (*model.Cart, error)
	Set(ctx context.Context, customerID string, cart *model.Cart) error
	Delete(ctx context.Context, customerID string) error
}
