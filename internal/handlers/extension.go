package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/policy"
	"github.com/drivelane/drivelane/internal/services"
)

type ExtensionRequestBody struct {
	ExtraDays int `json:"extra_days"`
}

type ExtensionHandler struct {
	extensions *services.ExtensionService
}

func NewExtensionHandler(extensions *services.ExtensionService) *ExtensionHandler {
	return &ExtensionHandler{extensions: extensions}
}

func (h *ExtensionHandler) Request(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	bookingID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req ExtensionRequestBody

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request")
		return
	}

	ext, notification, err := h.extensions.Request(ctx.Request.Context(), actor, bookingID, req.ExtraDays)

	if err != nil {
		respondError(ctx, "extension_request", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      "Extension request sent to the owner",
		"extension":    ext,
		"notification": notification,
	})
}

func (h *ExtensionHandler) ListForBooking(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	bookingID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	extensions, err := h.extensions.ListForBooking(ctx.Request.Context(), actor, bookingID)

	if err != nil {
		respondError(ctx, "extension_list", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(extensions), "extensions": extensions})
}

func (h *ExtensionHandler) ListPendingForOwner(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	extensions, err := h.extensions.ListPendingForOwner(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "extension_list_owner", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(extensions), "extensions": extensions})
}

type extensionAction func(context.Context, policy.Actor, uint) (*services.ExtensionDecision, error)

func (h *ExtensionHandler) decide(action, message string, fn extensionAction) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor, ok := currentActor(ctx)
		if !ok {
			return
		}

		id, ok := pathID(ctx, "id")
		if !ok {
			return
		}

		decision, err := fn(ctx.Request.Context(), actor, id)

		if err != nil {
			respondError(ctx, action, err)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   message,
			"extension": decision.Extension,
			"booking":   decision.Booking,
		})
	}
}

func (h *ExtensionHandler) Approve() gin.HandlerFunc {
	return h.decide("extension_approve", "Extension approved", h.extensions.Approve)
}

func (h *ExtensionHandler) Reject() gin.HandlerFunc {
	return h.decide("extension_reject", "Extension rejected", h.extensions.Reject)
}

func (h *ExtensionHandler) ApproveByNotification() gin.HandlerFunc {
	return h.decide("extension_approve", "Extension approved", h.extensions.ApproveByNotification)
}

func (h *ExtensionHandler) RejectByNotification() gin.HandlerFunc {
	return h.decide("extension_reject", "Extension rejected", h.extensions.RejectByNotification)
}
