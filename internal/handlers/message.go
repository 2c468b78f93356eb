package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/services"
)

type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	BookingID  *uint  `json:"booking_id"`
	Content    string `json:"content"`
}

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) Send(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req SendMessageRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "receiver_id is required")
		return
	}

	message, err := h.messages.Send(ctx.Request.Context(), actor, services.SendMessageInput{
		ReceiverID: req.ReceiverID,
		BookingID:  req.BookingID,
		Content:    req.Content,
	})

	if err != nil {
		respondError(ctx, "message_send", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "Message sent", "data": message})
}

func (h *MessageHandler) Inbox(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	conversations, err := h.messages.Inbox(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "message_inbox", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(conversations), "conversations": conversations})
}

// Conversation returns the thread with one user and marks their messages as read.
func (h *MessageHandler) Conversation(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	otherID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}

	messages, err := h.messages.Conversation(ctx.Request.Context(), actor.ID, otherID)

	if err != nil {
		respondError(ctx, "message_conversation", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(messages), "messages": messages})
}

func (h *MessageHandler) UnreadCount(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	count, err := h.messages.UnreadCount(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "message_unread_count", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}
