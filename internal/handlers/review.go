package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/services"
)

type CreateReviewRequest struct {
	BookingID uint   `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) Create(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req CreateReviewRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "booking_id and rating are required")
		return
	}

	review, err := h.reviews.Create(ctx.Request.Context(), actor, req.BookingID, req.Rating, req.Comment)

	if err != nil {
		respondError(ctx, "review_create", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "Review submitted", "review": review})
}

func (h *ReviewHandler) Delete(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := h.reviews.Delete(ctx.Request.Context(), actor, id); err != nil {
		respondError(ctx, "review_delete", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Review deleted"})
}
