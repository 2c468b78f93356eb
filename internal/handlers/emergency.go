package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/services"
)

type RaiseEmergencyRequest struct {
	BookingID   uint     `json:"booking_id" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type EmergencyStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type EmergencyHandler struct {
	emergencies *services.EmergencyService
}

func NewEmergencyHandler(emergencies *services.EmergencyService) *EmergencyHandler {
	return &EmergencyHandler{emergencies: emergencies}
}

func (h *EmergencyHandler) Raise(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req RaiseEmergencyRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "booking_id and type are required")
		return
	}

	emergency, err := h.emergencies.Raise(ctx.Request.Context(), actor, services.EmergencyInput{
		BookingID:   req.BookingID,
		Type:        models.EmergencyType(req.Type),
		Description: req.Description,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})

	if err != nil {
		respondError(ctx, "emergency_raise", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "Emergency reported, help is on the way", "emergency": emergency})
}

func (h *EmergencyHandler) ListMine(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	emergencies, err := h.emergencies.ListForReporter(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "emergency_list_mine", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(emergencies), "emergencies": emergencies})
}

func (h *EmergencyHandler) ListForOwner(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	emergencies, err := h.emergencies.ListForOwner(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "emergency_list_owner", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(emergencies), "emergencies": emergencies})
}

func (h *EmergencyHandler) ListAll(ctx *gin.Context) {
	emergencies, err := h.emergencies.ListAll(ctx.Request.Context(), ctx.Query("status"))

	if err != nil {
		respondError(ctx, "emergency_list_all", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(emergencies), "emergencies": emergencies})
}

func (h *EmergencyHandler) UpdateStatus(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req EmergencyStatusRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "status is required")
		return
	}

	emergency, err := h.emergencies.UpdateStatus(ctx.Request.Context(), actor, id, models.EmergencyStatus(req.Status))

	if err != nil {
		respondError(ctx, "emergency_status", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Emergency updated", "emergency": emergency})
}
