package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /messages のHTTP
type MessageHandler struct {
	uc *usecase.MessageUsecase
}

// DI
func NewMessageHandler(uc *usecase.MessageUsecase) *MessageHandler {
	return &MessageHandler{uc: uc}
}

type SendMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Body        string `json:"body"`
}

// /messages 配下を登録
func (h *MessageHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/messages")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.send)
	g.GET("/conversations", h.listConversations)
	g.GET("/conversation/:id", h.getConversation)
}

func (h *MessageHandler) send(c echo.Context) error {
	senderID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	msg, err := h.uc.SendMessage(
		c.Request().Context(),
		senderID,
		getUserRoleFromContext(c),
		usecase.SendMessageInput{
			RecipientID: req.RecipientID,
			Body:        req.Body,
		},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) listConversations(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	items, err := h.uc.ListMyConversations(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, items)
}

func (h *MessageHandler) getConversation(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetConversation(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
