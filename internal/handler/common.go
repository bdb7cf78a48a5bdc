package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dogmatus07/lynkevo-insights/internal/service"
	"github.com/dogmatus07/lynkevo-insights/pkg/jwtutil"
	"github.com/dogmatus07/lynkevo-insights/prometheus"
	"github.com/labstack/echo/v4"
)

// currentUser returns the authenticated caller's claims from the context
// (set by AuthMiddleware)
func currentUser(c echo.Context) (*jwtutil.UserClaims, bool) {
	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	return claims, ok
}

// identityOf builds the service-layer identity from the caller's claims
func identityOf(claims *jwtutil.UserClaims) service.Identity {
	return service.Identity{
		UserID: claims.UserID,
		Staff:  claims.IsStaffOrSuperuser(),
	}
}

// serviceError maps service-layer errors onto the HTTP response: validation
// failures become 400 with per-field messages, not-found and out-of-scope
// resources become an identical 404, everything else is a 500.
func serviceError(c echo.Context, resource string, err error) error {
	if ve, ok := service.AsValidationError(err); ok {
		prometheus.RecordValidationError(resource)
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
	}
	if errors.Is(err, service.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	if errors.Is(err, service.ErrClientNotVisible) {
		// Indistinguishable from a nonexistent client, so tenant existence
		// never leaks to callers outside the scope.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// parseDate parses a YYYY-MM-DD request value
func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
