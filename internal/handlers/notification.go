package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	unreadOnly := ctx.Query("unread") == "true"

	notifications, err := h.notifications.ListMine(ctx.Request.Context(), actor.ID, unreadOnly)

	if err != nil {
		respondError(ctx, "notification_list", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(notifications), "notifications": notifications})
}

func (h *NotificationHandler) UnreadCount(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	count, err := h.notifications.UnreadCount(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "notification_unread_count", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

func (h *NotificationHandler) MarkRead(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	notification, err := h.notifications.MarkRead(ctx.Request.Context(), actor, id)

	if err != nil {
		respondError(ctx, "notification_read", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "notification": notification})
}

func (h *NotificationHandler) MarkAllRead(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	updated, err := h.notifications.MarkAllRead(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "notification_read_all", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "All notifications marked as read", "updated": updated})
}

func (h *NotificationHandler) Delete(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := h.notifications.Delete(ctx.Request.Context(), actor, id); err != nil {
		respondError(ctx, "notification_delete", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification deleted"})
}
