package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/infra/upload"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 職人向けの商品管理API
type ArtisanProductHandler struct {
	uc     *usecase.ProductUsecase
	images *upload.LocalImageStore
}

// DI
func NewArtisanProductHandler(uc *usecase.ProductUsecase, images *upload.LocalImageStore) *ArtisanProductHandler {
	return &ArtisanProductHandler{uc: uc, images: images}
}

type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int64   `json:"stock"`
	IsActive    bool    `json:"is_active"`
}

// 認可つき商品ルートを登録。ARTISANとADMINだけ。
func (h *ArtisanProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/products")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.ArtisanRoleGuard())

	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
	g.POST("/:id/image", h.uploadImage)
}

func (h *ArtisanProductHandler) create(c echo.Context) error {
	artisanID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), artisanID, usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *ArtisanProductHandler) update(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.UpdateProduct(
		c.Request().Context(),
		actorID,
		getUserRoleFromContext(c),
		c.Param("id"),
		usecase.UpdateProductInput{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Price:       req.Price,
			Stock:       req.Stock,
			IsActive:    req.IsActive,
		},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ArtisanProductHandler) remove(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.DeleteProduct(
		c.Request().Context(),
		actorID,
		getUserRoleFromContext(c),
		c.Param("id"),
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// multipartの"image"フィールドを保存してパスを商品に記録する
func (h *ArtisanProductHandler) uploadImage(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image file required"})
	}

	path, err := h.images.Save(file)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	if err := h.uc.SetProductImage(
		c.Request().Context(),
		actorID,
		getUserRoleFromContext(c),
		c.Param("id"),
		path,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"image_url": path})
}

//middleware.AuthJWT が c.Set("user_id", string) した値を取り出す

func getUserIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return "", false
	}

	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}

// roleは無ければ空文字のまま返す
func getUserRoleFromContext(c echo.Context) model.Role {
	v := c.Get(middleware.CtxUserRoleKey)
	if v == nil {
		return ""
	}

	role, ok := v.(string)
	if !ok {
		return ""
	}

	return model.Role(role)
}
