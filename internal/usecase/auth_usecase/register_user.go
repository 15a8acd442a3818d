package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
)

// 会員登録の入力
type RegisterUserInput struct {
	Email    string
	Password string
	Name     string
	Role     string // CUSTOMER または ARTISAN
}

// 会員登録の出力
type RegisterUserOutput struct {
	User model.User
}

var (
	// 入力が不正
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidName        = errors.New("invalid name")

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 認証メールを送る約束
type VerificationMailer interface {
	SendVerificationMail(ctx context.Context, name string, email string, verificationURL string) error
}

// 入力検証はvalidatorパッケージに委ねる
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterUserInput) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

// トークンの有効期限
const verificationTTL = 24 * time.Hour

// RegisterUserUsecaseは会員登録の処理。
// 登録後に認証トークンを保存して認証メールを送る。
type RegisterUserUsecase struct {
	userRepo  repository.UserRepository
	tokenRepo repository.VerificationTokenRepository
	validator AuthValidator
	hasher    PasswordHasher
	mailer    VerificationMailer
	idGen     IDGenerator
	clock     Clock
	apiURL    string // 認証リンクの先頭
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.VerificationTokenRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	mailer VerificationMailer,
	idGen IDGenerator,
	clock Clock,
	apiURL string,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		validator: validator,
		hasher:    hasher,
		mailer:    mailer,
		idGen:     idGen,
		clock:     clock,
		apiURL:    apiURL,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	// 入力と email 重複をまとめて検証
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return out, err
	}

	name := strings.TrimSpace(in.Name)

	// 未指定はCUSTOMER扱い
	role := model.Role(strings.ToUpper(strings.TrimSpace(in.Role)))
	if role == "" {
		role = model.RoleCustomer
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()
	user := model.User{
		ID:            u.idGen.NewID(),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:  hashed,
		Name:          name,
		Role:          role,
		IsActive:      true,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := u.userRepo.Create(ctx, &user); err != nil {
		//事前チェック後に同じemailが先に入った場合
		if errors.Is(err, repository.ErrEmailTaken) {
			return out, ErrEmailAlreadyExists
		}
		return out, err
	}

	// 認証トークンを発行してメール送信
	token := model.VerificationToken{
		Token:     u.idGen.NewID(),
		UserID:    user.ID,
		ExpiresAt: now.Add(verificationTTL),
		CreatedAt: now,
	}
	if err := u.tokenRepo.Create(ctx, token); err != nil {
		return out, err
	}

	verifyURL := u.apiURL + "/auth/verify/" + token.Token
	if err := u.mailer.SendVerificationMail(ctx, user.Name, user.Email, verifyURL); err != nil {
		// 登録自体は成立させて、送信失敗はログに残すだけ
		slog.Warn("verification mail failed", "user_id", user.ID, "err", err)
	}

	out.User = user
	return out, nil
}
