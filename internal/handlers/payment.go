package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/services"
)

type PaymentRequest struct {
	BookingID     uint   `json:"booking_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) Pay(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req PaymentRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "booking_id and payment_method are required")
		return
	}

	payment, err := h.payments.Pay(ctx.Request.Context(), actor, req.BookingID, models.PaymentMethod(req.PaymentMethod))

	if err != nil {
		respondError(ctx, "payment_create", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "Payment successful", "payment": payment})
}

func (h *PaymentHandler) ListMine(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	payments, err := h.payments.ListForCustomer(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "payment_list_mine", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(payments), "payments": payments})
}

func (h *PaymentHandler) ListForOwner(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	payments, err := h.payments.ListForOwner(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "payment_list_owner", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(payments), "payments": payments})
}

func (h *PaymentHandler) ListAll(ctx *gin.Context) {
	payments, err := h.payments.ListAll(ctx.Request.Context(), ctx.Query("method"))

	if err != nil {
		respondError(ctx, "payment_list_all", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(payments), "payments": payments})
}
