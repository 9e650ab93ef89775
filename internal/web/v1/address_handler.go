package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/gurbetbiz/account-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	msgAddressInternal = "Sunucu hatası"
	msgAddressDeleted  = "Adres silindi"
)

// ListAddresses handles GET /api/v1/addresses
func (h *Handler) ListAddresses(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	addresses, err := h.addresses.List(ctx, middleware.IdentityFromContext(ctx))
	if err != nil {
		respondError(c, span, logger, addressMessages, msgAddressInternal, err)
		return
	}

	c.JSON(http.StatusOK, addresses)
}

// GetAddress handles GET /api/v1/addresses/:id
func (h *Handler) GetAddress(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	a, err := h.addresses.Get(ctx, middleware.IdentityFromContext(ctx), c.Param("id"))
	if err != nil {
		respondError(c, span, logger, addressMessages, msgAddressInternal, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

// CreateAddress handles POST /api/v1/addresses
func (h *Handler) CreateAddress(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	id := middleware.IdentityFromContext(ctx)
	if id == nil {
		respondError(c, span, logger, addressMessages, msgAddressInternal, domain.ErrNotAuthenticated)
		return
	}

	var req domain.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, bindErrorBody(err))
		return
	}

	a, err := h.addresses.Create(ctx, id, req)
	if err != nil {
		respondError(c, span, logger, addressMessages, msgAddressInternal, err)
		return
	}

	logger.Info("Address created", zap.String("address_id", a.ID), zap.String("type", string(a.Type)))
	c.JSON(http.StatusCreated, a)
}

// UpdateAddress handles PUT /api/v1/addresses/:id
func (h *Handler) UpdateAddress(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	id := middleware.IdentityFromContext(ctx)
	if id == nil {
		respondError(c, span, logger, addressMessages, msgAddressInternal, domain.ErrNotAuthenticated)
		return
	}

	var req domain.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, bindErrorBody(err))
		return
	}

	a, err := h.addresses.Update(ctx, id, c.Param("id"), req)
	if err != nil {
		respondError(c, span, logger, addressMessages, msgAddressInternal, err)
		return
	}

	logger.Info("Address updated", zap.String("address_id", a.ID))
	c.JSON(http.StatusOK, a)
}

// DeleteAddress handles DELETE /api/v1/addresses/:id
func (h *Handler) DeleteAddress(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	addressID := c.Param("id")
	if err := h.addresses.Delete(ctx, middleware.IdentityFromContext(ctx), addressID); err != nil {
		respondError(c, span, logger, addressMessages, msgAddressInternal, err)
		return
	}

	logger.Info("Address deleted", zap.String("address_id", addressID))
	c.JSON(http.StatusOK, gin.H{"message": msgAddressDeleted})
}
