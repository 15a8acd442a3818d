package auth

import (
	"context"
	"errors"

	"app/internal/repository"
)

// トークンが無い・期限切れ
var ErrTokenInvalid = errors.New("verification token invalid")

// VerifyEmailUsecaseは認証リンクの処理。
// トークンは一度しか使えない。
type VerifyEmailUsecase struct {
	tokenRepo repository.VerificationTokenRepository
	userRepo  repository.UserRepository
	clock     Clock
}

func NewVerifyEmailUsecase(
	tokenRepo repository.VerificationTokenRepository,
	userRepo repository.UserRepository,
	clock Clock,
) *VerifyEmailUsecase {
	return &VerifyEmailUsecase{
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
		clock:     clock,
	}
}

func (u *VerifyEmailUsecase) Execute(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenInvalid
	}

	//取得と同時に削除される
	vt, err := u.tokenRepo.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrTokenInvalid
		}
		return err
	}

	//期限切れ（TTLインデックスの削除が遅れても弾けるように）
	if u.clock.Now().After(vt.ExpiresAt) {
		return ErrTokenInvalid
	}

	user, err := u.userRepo.FindByID(ctx, vt.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrTokenInvalid
		}
		return err
	}

	user.EmailVerified = true
	return u.userRepo.Update(ctx, user)
}
