package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/apperrors"
	"github.com/drivelane/drivelane/internal/logger"
	"github.com/drivelane/drivelane/internal/policy"
	"github.com/drivelane/drivelane/internal/utils"
)

// respondError is the single place service errors become HTTP responses.
func respondError(ctx *gin.Context, action string, err error) {
	status := apperrors.Status(err)

	if status >= http.StatusInternalServerError {
		logger.Error(action, "request failed", err, "request_id", logger.RequestID(ctx))
		_ = ctx.Error(err)
	}

	ctx.JSON(status, gin.H{"success": false, "message": err.Error()})
}

func badRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

// currentActor writes a 401 and returns false when the request is unauthenticated.
func currentActor(ctx *gin.Context) (policy.Actor, bool) {
	actor, err := utils.GetActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
		return policy.Actor{}, false
	}

	return actor, true
}

// pathID parses a numeric path parameter, writing a 400 on failure.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := utils.ParseID(ctx, name)

	if err != nil {
		badRequest(ctx, err.Error())
		return 0, false
	}

	return id, true
}
