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
	msgPassengerListFailed   = "Yolcu listesi alınırken bir hata oluştu"
	msgPassengerGetFailed    = "Yolcu bilgileri alınırken bir hata oluştu"
	msgPassengerCreateFailed = "Yolcu eklenirken bir hata oluştu"
	msgPassengerUpdateFailed = "Yolcu güncellenirken bir hata oluştu"
	msgPassengerDeleteFailed = "Yolcu silinirken bir hata oluştu"
	msgPassengerDeleted      = "Yolcu silindi"
)

// ListPassengers handles GET /api/v1/passengers
func (h *Handler) ListPassengers(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	passengers, err := h.passengers.List(ctx, middleware.IdentityFromContext(ctx))
	if err != nil {
		respondError(c, span, logger, passengerMessages, msgPassengerListFailed, err)
		return
	}

	c.JSON(http.StatusOK, passengers)
}

// GetPassenger handles GET /api/v1/passengers/:id
func (h *Handler) GetPassenger(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	p, err := h.passengers.Get(ctx, middleware.IdentityFromContext(ctx), c.Param("id"))
	if err != nil {
		respondError(c, span, logger, passengerMessages, msgPassengerGetFailed, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// CreatePassenger handles POST /api/v1/passengers
func (h *Handler) CreatePassenger(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	id := middleware.IdentityFromContext(ctx)
	if id == nil {
		respondError(c, span, logger, passengerMessages, msgPassengerCreateFailed, domain.ErrNotAuthenticated)
		return
	}

	var req domain.PassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, bindErrorBody(err))
		return
	}

	p, err := h.passengers.Create(ctx, id, req)
	if err != nil {
		respondError(c, span, logger, passengerMessages, msgPassengerCreateFailed, err)
		return
	}

	logger.Info("Passenger created", zap.String("passenger_id", p.ID))
	c.JSON(http.StatusOK, p)
}

// UpdatePassenger handles PUT /api/v1/passengers/:id
func (h *Handler) UpdatePassenger(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	id := middleware.IdentityFromContext(ctx)
	if id == nil {
		respondError(c, span, logger, passengerMessages, msgPassengerUpdateFailed, domain.ErrNotAuthenticated)
		return
	}

	var req domain.PassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, bindErrorBody(err))
		return
	}

	p, err := h.passengers.Update(ctx, id, c.Param("id"), req)
	if err != nil {
		respondError(c, span, logger, passengerMessages, msgPassengerUpdateFailed, err)
		return
	}

	logger.Info("Passenger updated", zap.String("passenger_id", p.ID))
	c.JSON(http.StatusOK, p)
}

// DeletePassenger handles DELETE /api/v1/passengers/:id
func (h *Handler) DeletePassenger(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	logger := middleware.GetLoggerFromGinContext(c)

	passengerID := c.Param("id")
	if err := h.passengers.Delete(ctx, middleware.IdentityFromContext(ctx), passengerID); err != nil {
		respondError(c, span, logger, passengerMessages, msgPassengerDeleteFailed, err)
		return
	}

	logger.Info("Passenger deactivated", zap.String("passenger_id", passengerID))
	c.JSON(http.StatusOK, gin.H{"message": msgPassengerDeleted})
}
