package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/policy"
	"github.com/drivelane/drivelane/internal/services"
	"github.com/drivelane/drivelane/internal/utils"
)

type CreateBookingRequest struct {
	CarID          uint   `json:"car_id" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
	PickupLocation string `json:"pickup_location"`
	Notes          string `json:"notes"`
}

type BookingHandler struct {
	bookings *services.BookingService
}

func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

func (h *BookingHandler) Create(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req CreateBookingRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "car_id, start_date and end_date are required")
		return
	}

	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		badRequest(ctx, err.Error())
		return
	}

	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		badRequest(ctx, err.Error())
		return
	}

	booking, err := h.bookings.Create(ctx.Request.Context(), actor, services.CreateBookingInput{
		CarID:          req.CarID,
		StartDate:      start,
		EndDate:        end,
		PickupLocation: req.PickupLocation,
		Notes:          req.Notes,
	})

	if err != nil {
		respondError(ctx, "booking_create", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "Booking created", "booking": booking})
}

func (h *BookingHandler) ListMine(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListForCustomer(ctx.Request.Context(), actor.ID, services.BookingFilter{Status: ctx.Query("status")})

	if err != nil {
		respondError(ctx, "booking_list_mine", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(bookings), "bookings": bookings})
}

func (h *BookingHandler) ListForOwner(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	bookings, err := h.bookings.ListForOwner(ctx.Request.Context(), actor.ID, services.BookingFilter{Status: ctx.Query("status")})

	if err != nil {
		respondError(ctx, "booking_list_owner", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(bookings), "bookings": bookings})
}

func (h *BookingHandler) ListAll(ctx *gin.Context) {
	bookings, err := h.bookings.ListAll(ctx.Request.Context(), services.BookingFilter{Status: ctx.Query("status")})

	if err != nil {
		respondError(ctx, "booking_list_all", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(bookings), "bookings": bookings})
}

func (h *BookingHandler) Get(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	booking, err := h.bookings.Get(ctx.Request.Context(), actor, id)

	if err != nil {
		respondError(ctx, "booking_get", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

type bookingAction func(context.Context, policy.Actor, uint) (*models.Booking, error)

// transition adapts a booking status change to a PATCH handler.
func (h *BookingHandler) transition(action string, message string, fn bookingAction) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor, ok := currentActor(ctx)
		if !ok {
			return
		}

		id, ok := pathID(ctx, "id")
		if !ok {
			return
		}

		booking, err := fn(ctx.Request.Context(), actor, id)

		if err != nil {
			respondError(ctx, action, err)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"success": true, "message": message, "booking": booking})
	}
}

func (h *BookingHandler) Approve() gin.HandlerFunc {
	return h.transition("booking_approve", "Booking approved", h.bookings.Approve)
}

func (h *BookingHandler) Reject() gin.HandlerFunc {
	return h.transition("booking_reject", "Booking rejected", h.bookings.Reject)
}

func (h *BookingHandler) Cancel() gin.HandlerFunc {
	return h.transition("booking_cancel", "Booking cancelled", h.bookings.Cancel)
}

func (h *BookingHandler) Confirm() gin.HandlerFunc {
	return h.transition("booking_confirm", "Booking confirmed", h.bookings.Confirm)
}

func (h *BookingHandler) Complete() gin.HandlerFunc {
	return h.transition("booking_complete", "Booking completed", h.bookings.Complete)
}

func (h *BookingHandler) Delete(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := h.bookings.Delete(ctx.Request.Context(), actor, id); err != nil {
		respondError(ctx, "booking_delete", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking deleted"})
}
