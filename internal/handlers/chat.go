package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"market-service/internal/models"
	"market-service/internal/repositories"
	"market-service/internal/telemetry"
)

// ChatHandler manages the chat HTTP endpoints: inbox, chat creation and
// message history. Live messaging happens over the websocket handlers.
type ChatHandler struct {
	chatRepo    repositories.ChatRepository
	messageRepo repositories.MessageRepository
	productRepo repositories.ProductRepository
	emitter     *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chatRepo repositories.ChatRepository, messageRepo repositories.MessageRepository, productRepo repositories.ProductRepository, emitter *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		productRepo: productRepo,
		emitter:     emitter,
	}
}

// ListChats returns the authenticated user's inbox.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetInt("userID")

	chats, err := h.chatRepo.ListChatsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// StartChat creates or returns the chat between the buyer and a seller about
// a product.
func (h *ChatHandler) StartChat(c *gin.Context) {
	var req struct {
		SellerID  int    `json:"seller_id" binding:"required"`
		ProductID int    `json:"product_id" binding:"required"`
		ChatType  string `json:"chat_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ChatType == "" {
		req.ChatType = models.ChatTypeGeneral
	}
	if !models.ValidChatType(req.ChatType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown chat type"})
		return
	}

	seller, err := h.productRepo.GetSeller(c.Request.Context(), req.SellerID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrSellerNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "seller not found"})
		return
	}

	product, err := h.productRepo.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProductNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "product not found"})
		return
	}
	if product.SellerID != seller.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product does not belong to seller"})
		return
	}

	userID := c.GetInt("userID")
	if userID == seller.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}

	chat, err := h.chatRepo.CreateOrGetChat(c.Request.Context(), userID, seller.UserID, &product.ID, req.ChatType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create chat"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("chat %d started about product %d", chat.ID, product.ID),
		requestIDFromContext(c), userIDFromContext(c))

	c.JSON(http.StatusOK, gin.H{"chat_id": chat.ID})
}

// GetChatMessages returns messages for a chat the caller participates in.
// An after_id query parameter limits the result to newer messages, which the
// client uses as a polling fallback when the socket is down.
func (h *ChatHandler) GetChatMessages(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	afterID, err := strconv.Atoi(c.DefaultQuery("after_id", "0"))
	if err != nil || afterID < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid after_id"})
		return
	}

	userID := c.GetInt("userID")
	member, err := h.chatRepo.IsParticipant(c.Request.Context(), chatID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat member"})
		return
	}

	msgs, err := h.messageRepo.GetChatMessagesAfter(c.Request.Context(), chatID, afterID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
