package routes

import (
	"net/http"

	"doctor-appointment-server/internal/handlers"
	"doctor-appointment-server/internal/middleware"
	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/realtime"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Appointments  *handlers.AppointmentHandler
	Notifications *handlers.NotificationHandler
	Realtime      *realtime.Handler
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, h Handlers, jwtSecret string) {
	auth := middleware.AuthMiddleware(jwtSecret)
	api := router.Group("/api")

	userRoutes := api.Group("/user")
	{
		userRoutes.POST("/register", h.Auth.Register)
		userRoutes.POST("/login", h.Auth.Login)
		userRoutes.GET("/profile", auth, h.Auth.GetProfile)
	}

	api.GET("/doctor/getalldoctors", auth, h.Users.GetDoctors)

	appointmentRoutes := api.Group("/appointment", auth)
	{
		appointmentRoutes.GET("/getallappointments", h.Appointments.GetAllAppointments)
		appointmentRoutes.POST("/bookappointment", h.Appointments.BookAppointment)
		appointmentRoutes.PUT("/confirmappointment", h.Appointments.ConfirmAppointment)
		appointmentRoutes.PUT("/completed", h.Appointments.CompleteAppointment)
		appointmentRoutes.PUT("/rejected", h.Appointments.RejectAppointment)
	}

	// The websocket handshake authenticates itself from the token query parameter.
	api.GET("/notification/ws", h.Realtime.Connect)

	notificationRoutes := api.Group("/notification", auth)
	{
		notificationRoutes.GET("/getallnotifs", h.Notifications.GetAllNotifications)
		notificationRoutes.GET("/unreadcount", h.Notifications.UnreadCount)
		notificationRoutes.PUT("/markread", h.Notifications.MarkRead)
		notificationRoutes.PUT("/markallread", h.Notifications.MarkAllRead)
		notificationRoutes.DELETE("/deleteall", h.Notifications.DeleteAll)
		notificationRoutes.DELETE("/:id", h.Notifications.Delete)
	}

	api.GET("/stats/public", h.Appointments.PublicStats)
	api.GET("/admin/realtime", auth, middleware.RoleAuthMiddleware(models.RoleAdmin), h.Realtime.Status)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
