package handlers

import (
	"doctor-appointment-server/internal/middleware"
	"doctor-appointment-server/internal/services"
	"doctor-appointment-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// respondError turns a service failure into the matching 4xx envelope.
// Anything unclassified is logged in full and answered with a generic 500.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	switch services.KindOf(err) {
	case services.KindNotFound:
		utils.NotFound(c, err.Error())
	case services.KindForbidden:
		utils.Forbidden(c, err.Error())
	case services.KindInvalidState, services.KindValidation:
		utils.BadRequest(c, err.Error())
	case services.KindUnauthenticated:
		utils.Unauthorized(c, err.Error())
	default:
		_ = c.Error(err)
		log.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		utils.InternalServerError(c, "Something went wrong, please try again later")
	}
}

// callerFrom reads the identity set by the auth middleware.
func callerFrom(c *gin.Context) (services.Caller, bool) {
	id, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return services.Caller{}, false
	}
	role, _ := middleware.GetUserRoleFromContext(c)
	return services.Caller{ID: id, Role: role}, true
}
