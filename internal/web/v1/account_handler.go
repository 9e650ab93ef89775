package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/gurbetbiz/account-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const msgProfileInternal = "Sunucu hatası oluştu."

var registerMessages = messages{}

// Register handles POST /api/v1/users
func (h *Handler) Register(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, bindErrorBody(err))
		return
	}

	user, err := h.accounts.Register(ctx, req)
	if err != nil {
		respondError(c, span, logger, registerMessages, msgProfileInternal, err)
		return
	}

	logger.Info("Account registered", zap.String("user_id", user.ID))
	c.JSON(http.StatusCreated, user)
}

// GetProfile handles GET /api/v1/user/profile
func (h *Handler) GetProfile(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	user, err := h.accounts.Profile(ctx, middleware.IdentityFromContext(ctx))
	if err != nil {
		respondError(c, span, logger, profileMessages, msgProfileInternal, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/user/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	id := middleware.IdentityFromContext(ctx)
	if id == nil {
		respondError(c, span, logger, profileMessages, msgProfileInternal, domain.ErrNotAuthenticated)
		return
	}

	var req domain.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, bindErrorBody(err))
		return
	}

	user, err := h.accounts.UpdateProfile(ctx, id, req)
	if err != nil {
		respondError(c, span, logger, profileMessages, msgProfileInternal, err)
		return
	}

	logger.Info("Profile updated", zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, user)
}
