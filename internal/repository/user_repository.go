package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// email一意制約に当たった
var ErrEmailTaken = errors.New("email already taken")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID string) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新=>アクティブかどうか・認証済みフラグ・最後のログイン更新など
	Update(ctx context.Context, user *model.User) error
	//管理者用の一覧
	List(ctx context.Context, page int, limit int) ([]model.User, int64, error)
}
