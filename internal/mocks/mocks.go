package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"market-service/internal/models"
	"market-service/internal/repositories"
)

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) CreateOrGetChat(ctx context.Context, buyerID, sellerUserID int, productID *int, chatType string) (models.Chat, error) {
	args := m.Called(ctx, buyerID, sellerUserID, productID, chatType)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) IsParticipant(ctx context.Context, chatID, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ChatRepositoryMock) OtherParticipants(ctx context.Context, chatID, userID int) ([]int, error) {
	args := m.Called(ctx, chatID, userID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *ChatRepositoryMock) ListChatsForUser(ctx context.Context, userID int) ([]models.ChatSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.ChatSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ChatSummary)
	}
	return list, args.Error(1)
}

func (m *ChatRepositoryMock) TouchLastMessage(ctx context.Context, chatID int) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateChatMessage(ctx context.Context, chatID int, senderID *int, content, messageType string, metadata models.Metadata) (models.Message, error) {
	args := m.Called(ctx, chatID, senderID, content, messageType, metadata)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetChatHistory(ctx context.Context, chatID int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, chatID)
	var msgs []models.ChatMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ChatMessage)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetChatMessagesAfter(ctx context.Context, chatID, afterID int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, chatID, afterID)
	var msgs []models.ChatMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ChatMessage)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) MarkChatMessagesRead(ctx context.Context, chatID, readerID int) error {
	args := m.Called(ctx, chatID, readerID)
	return args.Error(0)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) CreateForRecipients(ctx context.Context, recipientIDs []int, chatID, messageID int) error {
	args := m.Called(ctx, recipientIDs, chatID, messageID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) MarkNotificationsRead(ctx context.Context, recipientID, chatID int) error {
	args := m.Called(ctx, recipientID, chatID)
	return args.Error(0)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type ProductRepositoryMock struct {
	mock.Mock
}

func (m *ProductRepositoryMock) GetProduct(ctx context.Context, productID int) (models.Product, error) {
	args := m.Called(ctx, productID)
	var product models.Product
	if val := args.Get(0); val != nil {
		product = val.(models.Product)
	}
	return product, args.Error(1)
}

func (m *ProductRepositoryMock) GetSeller(ctx context.Context, sellerID int) (models.Seller, error) {
	args := m.Called(ctx, sellerID)
	var seller models.Seller
	if val := args.Get(0); val != nil {
		seller = val.(models.Seller)
	}
	return seller, args.Error(1)
}

func (m *ProductRepositoryMock) ListProducts(ctx context.Context, category, search string) ([]models.ProductListing, error) {
	args := m.Called(ctx, category, search)
	var listings []models.ProductListing
	if val := args.Get(0); val != nil {
		listings = val.([]models.ProductListing)
	}
	return listings, args.Error(1)
}

type FavoriteRepositoryMock struct {
	mock.Mock
}

func (m *FavoriteRepositoryMock) ListFavorites(ctx context.Context, userID int) ([]models.ProductListing, error) {
	args := m.Called(ctx, userID)
	var listings []models.ProductListing
	if val := args.Get(0); val != nil {
		listings = val.([]models.ProductListing)
	}
	return listings, args.Error(1)
}

func (m *FavoriteRepositoryMock) AddFavorite(ctx context.Context, userID, productID int) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *FavoriteRepositoryMock) RemoveFavorite(ctx context.Context, userID, productID int) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.ProductRepository = (*ProductRepositoryMock)(nil)
var _ repositories.FavoriteRepository = (*FavoriteRepositoryMock)(nil)
