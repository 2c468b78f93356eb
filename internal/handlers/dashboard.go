package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/services"
)

type DashboardHandler struct {
	dashboards *services.DashboardService
}

func NewDashboardHandler(dashboards *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

func (h *DashboardHandler) Owner(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	dashboard, err := h.dashboards.Owner(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "dashboard_owner", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "dashboard": dashboard})
}

func (h *DashboardHandler) OwnerEarnings(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	earnings, err := h.dashboards.OwnerEarnings(ctx.Request.Context(), actor.ID)

	if err != nil {
		respondError(ctx, "dashboard_earnings", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "earnings": earnings})
}

func (h *DashboardHandler) Admin(ctx *gin.Context) {
	dashboard, err := h.dashboards.Admin(ctx.Request.Context())

	if err != nil {
		respondError(ctx, "dashboard_admin", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "dashboard": dashboard})
}
