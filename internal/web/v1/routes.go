package v1

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the account API under r. guards run before every
// route (identity resolution, rate limiting).
func RegisterRoutes(r gin.IRouter, h *Handler, guards ...gin.HandlerFunc) {
	api := r.Group("/api/v1", guards...)

	api.POST("/users", h.Register)

	profile := api.Group("/user")
	{
		profile.GET("/profile", h.GetProfile)
		profile.PUT("/profile", h.UpdateProfile)
	}

	passengers := api.Group("/passengers")
	{
		passengers.GET("", h.ListPassengers)
		passengers.POST("", h.CreatePassenger)
		passengers.GET("/:id", h.GetPassenger)
		passengers.PUT("/:id", h.UpdatePassenger)
		passengers.DELETE("/:id", h.DeletePassenger)
	}

	addresses := api.Group("/addresses")
	{
		addresses.GET("", h.ListAddresses)
		addresses.POST("", h.CreateAddress)
		addresses.GET("/:id", h.GetAddress)
		addresses.PUT("/:id", h.UpdateAddress)
		addresses.DELETE("/:id", h.DeleteAddress)
	}
}
