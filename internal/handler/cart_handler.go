package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// POST /cart の1明細
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// POST /cart のボディ。totalAmountは受けるが総額は常にサーバー側で計算する。
type CreateCartRequest struct {
	CustomerID  string            `json:"customerId"`
	Items       []CartItemRequest `json:"items"`
	TotalAmount float64           `json:"totalAmount"`
}

// PUT /cart/:id のボディ
type ReplaceCartRequest struct {
	Items       []CartItemRequest `json:"items"`
	TotalAmount float64           `json:"totalAmount"`
}

// PATCH のボディ
type SetQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// /cart 配下を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.listCarts, middleware.AdminRoleGuard())
	g.GET("/user/:customerId", h.getByCustomer)
	g.GET("/count/:customerId", h.countItems)
	g.GET("/:id", h.getByID)
	g.POST("", h.createOrMerge)
	g.PUT("/:id", h.replace)
	g.PATCH("/:cartId/product/:productId", h.setQuantity)
	g.DELETE("/:cartId/product/:productId", h.removeItem)
}

func (h *CartHandler) getByCustomer(c echo.Context) error {
	out, err := h.uc.GetCart(c.Request().Context(), c.Param("customerId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) listCarts(c echo.Context) error {
	out, err := h.uc.ListCarts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) getByID(c echo.Context) error {
	out, err := h.uc.GetCartByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) createOrMerge(c echo.Context) error {
	var req CreateCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.AddItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.AddItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	out, err := h.uc.AddOrMerge(c.Request().Context(), req.CustomerID, items)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *CartHandler) replace(c echo.Context) error {
	var req ReplaceCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.AddItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.AddItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	out, err := h.uc.ReplaceCart(c.Request().Context(), c.Param("id"), items)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) setQuantity(c echo.Context) error {
	var req SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SetQuantity(
		c.Request().Context(),
		c.Param("cartId"),
		c.Param("productId"),
		req.Quantity,
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	out, err := h.uc.RemoveItem(
		c.Request().Context(),
		c.Param("cartId"),
		c.Param("productId"),
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) countItems(c echo.Context) error {
	count, err := h.uc.CountItems(c.Request().Context(), c.Param("customerId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]int{"count": count})
}
