package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /orders のHTTP
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

var (
	errInvalidPage  = errors.New("invalid page")
	errInvalidLimit = errors.New("invalid limit")
)

// /orders 配下を登録
func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.place)
	g.GET("/my", h.listMine)

	// 管理者だけ
	g.GET("", h.adminList, middleware.AdminRoleGuard())
	g.GET("/stats", h.adminStats, middleware.AdminRoleGuard())
	g.PATCH("/:id/status", h.adminUpdateStatus, middleware.AdminRoleGuard())

	g.GET("/:id", h.detail)
}

func (h *OrderHandler) place(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	order, err := h.uc.PlaceOrder(c.Request().Context(), customerID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	customerID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, limit, err := pageAndLimit(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), customerID, page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	order, err := h.uc.GetOrderDetail(
		c.Request().Context(),
		actorID,
		getUserRoleFromContext(c),
		c.Param("id"),
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) adminList(c echo.Context) error {
	page, limit, err := pageAndLimit(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	in := usecase.AdminListOrdersInput{
		Page:       page,
		Limit:      limit,
		Status:     c.QueryParam("status"),
		CustomerID: c.QueryParam("customer_id"),
	}

	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		in.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		in.To = &t
	}

	out, err := h.uc.AdminListOrders(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) adminUpdateStatus(c echo.Context) error {
	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	order, err := h.uc.AdminUpdateStatus(
		c.Request().Context(),
		c.Param("id"),
		model.OrderStatus(req.Status),
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) adminStats(c echo.Context) error {
	stats, err := h.uc.AdminStats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, stats)
}

// page/limitクエリの共通パース
func pageAndLimit(c echo.Context) (int, int, error) {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, errInvalidPage
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, errInvalidLimit
		}
		limit = l
	}

	return page, limit, nil
}
