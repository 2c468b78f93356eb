package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/services"
	"github.com/drivelane/drivelane/internal/utils"
)

type AvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

type CarHandler struct {
	cars    *services.CarService
	reviews *services.ReviewService
}

func NewCarHandler(cars *services.CarService, reviews *services.ReviewService) *CarHandler {
	return &CarHandler{cars: cars, reviews: reviews}
}

func (h *CarHandler) List(ctx *gin.Context) {
	minPrice, err := utils.QueryFloat(ctx, "minPrice")
	if err != nil {
		badRequest(ctx, err.Error())
		return
	}

	maxPrice, err := utils.QueryFloat(ctx, "maxPrice")
	if err != nil {
		badRequest(ctx, err.Error())
		return
	}

	available, err := utils.QueryBool(ctx, "available")
	if err != nil {
		badRequest(ctx, err.Error())
		return
	}

	cars, err := h.cars.List(ctx.Request.Context(), services.CarFilter{
		Brand:     ctx.Query("brand"),
		Location:  ctx.Query("location"),
		Category:  ctx.Query("category"),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		Available: available,
	})

	if err != nil {
		respondError(ctx, "car_list", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(cars), "cars": cars})
}

// Get is public; a signed-in owner or admin may also see unapproved cars.
func (h *CarHandler) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	actor, _ := utils.GetActor(ctx)

	car, err := h.cars.Get(ctx.Request.Context(), actor, id)

	if err != nil {
		respondError(ctx, "car_get", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "car": car})
}

func (h *CarHandler) Reviews(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	reviews, err := h.reviews.ListForCar(ctx.Request.Context(), id)

	if err != nil {
		respondError(ctx, "car_reviews", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(reviews), "reviews": reviews})
}

func (h *CarHandler) ListMine(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	cars, err := h.cars.ListMine(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "car_list_mine", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(cars), "cars": cars})
}

func (h *CarHandler) Create(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req services.CarInput

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request")
		return
	}

	car, err := h.cars.Create(ctx.Request.Context(), actor, req)

	if err != nil {
		respondError(ctx, "car_create", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "Car submitted for approval", "car": car})
}

func (h *CarHandler) Update(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req services.CarInput

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request")
		return
	}

	car, err := h.cars.Update(ctx.Request.Context(), actor, id, req)

	if err != nil {
		respondError(ctx, "car_update", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Car updated", "car": car})
}

func (h *CarHandler) SetAvailability(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req AvailabilityRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "available is required")
		return
	}

	car, err := h.cars.SetAvailability(ctx.Request.Context(), actor, id, *req.Available)

	if err != nil {
		respondError(ctx, "car_availability", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Availability updated", "car": car})
}

func (h *CarHandler) Delete(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := h.cars.Delete(ctx.Request.Context(), actor, id); err != nil {
		respondError(ctx, "car_delete", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Car deleted"})
}
