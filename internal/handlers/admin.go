package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/services"
)

type ActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type ApprovalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// AdminHandler serves the moderation endpoints that have no owner or customer counterpart.
type AdminHandler struct {
	users *services.UserService
	cars  *services.CarService
}

func NewAdminHandler(users *services.UserService, cars *services.CarService) *AdminHandler {
	return &AdminHandler{users: users, cars: cars}
}

func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	users, err := h.users.List(ctx.Request.Context(), ctx.Query("role"))

	if err != nil {
		respondError(ctx, "admin_list_users", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(users), "users": users})
}

func (h *AdminHandler) SetUserActive(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req ActiveRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "active is required")
		return
	}

	user, err := h.users.SetActive(ctx.Request.Context(), actor, id, *req.Active)

	if err != nil {
		respondError(ctx, "admin_user_active", err)
		return
	}

	message := "User deactivated"
	if user.Active {
		message = "User activated"
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": message, "user": user})
}

func (h *AdminHandler) PendingCars(ctx *gin.Context) {
	cars, err := h.cars.ListPending(ctx.Request.Context())

	if err != nil {
		respondError(ctx, "admin_pending_cars", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(cars), "cars": cars})
}

func (h *AdminHandler) SetCarApproval(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req ApprovalRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "approved is required")
		return
	}

	car, err := h.cars.SetApproval(ctx.Request.Context(), actor, id, *req.Approved)

	if err != nil {
		respondError(ctx, "admin_car_approval", err)
		return
	}

	message := "Car rejected"
	if car.Approved {
		message = "Car approved"
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": message, "car": car})
}
