package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type UserUsecase struct {
	userRepo repo.UserRepository
}

func NewUserUsecase(userRepo repo.UserRepository) *UserUsecase {
	return &UserUsecase{userRepo: userRepo}
}

type UpdateProfileInput struct {
	Name string
	Bio  string
}

type UserListOutput struct {
	Items []model.User `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func (u *UserUsecase) GetMe(ctx context.Context, userID string) (model.User, error) {
	if userID == "" {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err == repo.ErrUserNotFound {
		return model.User{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return *user, nil
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (model.User, error) {
	if userID == "" {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 100 {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if len(in.Bio) > 1000 {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "bio too long")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err == repo.ErrUserNotFound {
		return model.User{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user.Name = name
	user.Bio = strings.TrimSpace(in.Bio)

	if err := u.userRepo.Update(ctx, user); err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return *user, nil
}

func (u *UserUsecase) AdminListUsers(ctx context.Context, page int, limit int) (UserListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	users, total, err := u.userRepo.List(ctx, page, limit)
	if err != nil {
		return UserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return UserListOutput{Items: users, Total: total, Page: page, Limit: limit}, nil
}

// アカウントの有効・無効を切り替える（管理者用）
func (u *UserUsecase) AdminSetActive(ctx context.Context, targetUserID string, isActive bool) (model.User, error) {
	if targetUserID == "" {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	user, err := u.userRepo.FindByID(ctx, targetUserID)
	if err == repo.ErrUserNotFound {
		return model.User{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user.IsActive = isActive
	if err := u.userRepo.Update(ctx, user); err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return *user, nil
}
