package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/services"
)

type AddFavoriteRequest struct {
	CarID uint `json:"car_id" binding:"required"`
}

type FavoriteHandler struct {
	favorites *services.FavoriteService
}

func NewFavoriteHandler(favorites *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

func (h *FavoriteHandler) List(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	favorites, err := h.favorites.List(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "favorite_list", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(favorites), "favorites": favorites})
}

func (h *FavoriteHandler) Add(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req AddFavoriteRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "car_id is required")
		return
	}

	favorite, err := h.favorites.Add(ctx.Request.Context(), actor.ID, req.CarID)

	if err != nil {
		respondError(ctx, "favorite_add", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "Added to favorites", "favorite": favorite})
}

func (h *FavoriteHandler) Remove(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	carID, ok := pathID(ctx, "carId")
	if !ok {
		return
	}

	if err := h.favorites.Remove(ctx.Request.Context(), actor.ID, carID); err != nil {
		respondError(ctx, "favorite_remove", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Removed from favorites"})
}
