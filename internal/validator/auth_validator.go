package validator

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"app/internal/repository"
	auth "app/internal/usecase/auth_usecase"
)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) auth.AuthValidator {
	return &authValidator{users: users}
}

// 会員登録の入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, in auth.RegisterUserInput) error {
	// email形式
	if !isEmailLike(in.Email) {
		return auth.ErrInvalidEmailFormat
	}

	// パスワード最低文字数（12）
	if len(in.Password) < 12 {
		return auth.ErrPasswordTooShort
	}

	// よくある弱いパスワードの拒否
	if isWeakPassword(in.Password) {
		return auth.ErrWeakPassword
	}

	// 名前の必須・長さチェック
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 100 {
		return auth.ErrInvalidName
	}

	// ADMINは自己登録できない
	role := strings.ToUpper(strings.TrimSpace(in.Role))
	if role != "" && role != "CUSTOMER" && role != "ARTISAN" {
		return auth.ErrInvalidRole
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	if u != nil {
		return auth.ErrEmailAlreadyExists
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	// 必須チェック
	if strings.TrimSpace(email) == "" || password == "" {
		return auth.ErrInvalidCredentials
	}

	// 形式不正も資格情報エラー扱い
	if !isEmailLike(email) {
		return auth.ErrInvalidCredentials
	}

	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

// 明らかに弱いパスワードを弾く
func isWeakPassword(p string) bool {
	lowered := strings.ToLower(p)
	weak := []string{
		"password", "123456789012", "qwertyuiop12",
	}
	for _, w := range weak {
		if lowered == w {
			return true
		}
	}
	return false
}
