package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gurbetbiz/account-service/internal/core/domain"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// messages are the client-facing texts of one resource family.
type messages struct {
	unauthenticated string
	recordNotFound  string
}

var (
	passengerMessages = messages{
		unauthenticated: "Oturum açmanız gerekiyor",
		recordNotFound:  "Yolcu bulunamadı",
	}
	addressMessages = messages{
		unauthenticated: "Oturum gerekli",
		recordNotFound:  "Adres bulunamadı",
	}
	profileMessages = messages{
		unauthenticated: "Yetkisiz erişim.",
	}
)

const (
	msgAccountNotFound      = "Kullanıcı bulunamadı"
	msgEmailTaken           = "Bu e-posta adresi zaten kayıtlı"
	msgOwnerPassengerLocked = "Hesap sahibi yolcu profil üzerinden güncellenir"
)

// respondError maps a service error to the response. internal is the generic
// message for unexpected failures; the error text itself never reaches the
// client.
func respondError(c *gin.Context, span trace.Span, logger *zap.Logger, msgs messages, internal string, err error) {
	var verr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgs.unauthenticated})
	case errors.Is(err, domain.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgAccountNotFound})
	case errors.Is(err, domain.ErrPassengerNotFound), errors.Is(err, domain.ErrAddressNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgs.recordNotFound})
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Message}
		if len(verr.Details) > 0 {
			body["details"] = verr.Details
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, domain.ErrOwnerPassengerLocked):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgOwnerPassengerLocked})
	case errors.Is(err, domain.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": msgEmailTaken})
	default:
		span.RecordError(err)
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internal})
		return
	}

	logger.Info("Request rejected", zap.String("path", c.FullPath()), zap.Error(err))
}
