package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrTokenNotFound = errors.New("verification token not found")

// メール認証トークンの保存・消費
type VerificationTokenRepository interface {
	Create(ctx context.Context, token model.VerificationToken) error
	// 取得と削除を一度に行う（再利用防止）
	Consume(ctx context.Context, token string) (model.VerificationToken, error)
}
