package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

type MessageUsecase struct {
	messageRepo repo.MessageRepository
	userRepo    repo.UserRepository
}

func NewMessageUsecase(messageRepo repo.MessageRepository, userRepo repo.UserRepository) *MessageUsecase {
	return &MessageUsecase{messageRepo: messageRepo, userRepo: userRepo}
}

type SendMessageInput struct {
	RecipientID string
	Body        string
}

type ConversationOutput struct {
	Conversation model.Conversation `json:"conversation"`
	Messages     []model.Message    `json:"messages"`
}

// 送信。会話が無ければ作る。顧客⇔職人の間だけ。
func (u *MessageUsecase) SendMessage(ctx context.Context, senderID string, senderRole model.Role, in SendMessageInput) (model.Message, error) {
	if senderID == "" {
		return model.Message{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.RecipientID == "" || in.RecipientID == senderID {
		return model.Message{}, NewHTTPError(http.StatusBadRequest, "invalid recipient")
	}
	body := strings.TrimSpace(in.Body)
	if body == "" || len(body) > 4000 {
		return model.Message{}, NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	recipient, err := u.userRepo.FindByID(ctx, in.RecipientID)
	if err == repo.ErrUserNotFound {
		return model.Message{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Message{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//会話は顧客×職人の組に正規化する
	var customerID, artisanID string
	switch {
	case senderRole == model.RoleCustomer && recipient.Role == model.RoleArtisan:
		customerID, artisanID = senderID, in.RecipientID
	case senderRole == model.RoleArtisan && recipient.Role == model.RoleCustomer:
		customerID, artisanID = in.RecipientID, senderID
	default:
		return model.Message{}, NewHTTPError(http.StatusBadRequest, "invalid recipient")
	}

	conv, err := u.messageRepo.GetOrCreateConversation(ctx, model.Conversation{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		ArtisanID:  artisanID,
	})
	if err != nil {
		return model.Message{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	msg := model.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	if err := u.messageRepo.AppendMessage(ctx, msg); err != nil {
		return model.Message{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return msg, nil
}

func (u *MessageUsecase) ListMyConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	if userID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	convs, err := u.messageRepo.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return convs, nil
}

// 参加者だけが読める。部外者には存在しない扱い。
func (u *MessageUsecase) GetConversation(ctx context.Context, userID string, conversationID string) (ConversationOutput, error) {
	if userID == "" {
		return ConversationOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if conversationID == "" {
		return ConversationOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	conv, err := u.messageRepo.FindConversationByID(ctx, conversationID)
	if err == repo.ErrNotFound {
		return ConversationOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ConversationOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if conv.CustomerID != userID && conv.ArtisanID != userID {
		return ConversationOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	msgs, err := u.messageRepo.ListMessages(ctx, conversationID)
	if err != nil {
		return ConversationOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ConversationOutput{Conversation: conv, Messages: msgs}, nil
}
