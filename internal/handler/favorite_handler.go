package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /favorites のHTTP
type FavoriteHandler struct {
	uc *usecase.FavoriteUsecase
}

// DI
func NewFavoriteHandler(uc *usecase.FavoriteUsecase) *FavoriteHandler {
	return &FavoriteHandler{uc: uc}
}

// /favorites 配下を登録。件数だけ公開。
func (h *FavoriteHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.GET("/favorites/count/:productId", h.countForProduct)

	g := e.Group("/favorites")
	g.Use(middleware.AuthJWT(cfg))
	g.GET("", h.list)
	g.POST("/:productId", h.add)
	g.DELETE("/:productId", h.remove)
}

func (h *FavoriteHandler) add(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AddFavorite(c.Request().Context(), customerID, c.Param("productId")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{Message: "added"})
}

func (h *FavoriteHandler) remove(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.RemoveFavorite(c.Request().Context(), customerID, c.Param("productId")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "removed"})
}

func (h *FavoriteHandler) list(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	items, err := h.uc.ListFavorites(c.Request().Context(), customerID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, items)
}

func (h *FavoriteHandler) countForProduct(c echo.Context) error {
	count, err := h.uc.CountForProduct(c.Request().Context(), c.Param("productId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}
