package middleware

import (
	"net/http"
	"strings"

	"github.com/dogmatus07/lynkevo-insights/pkg/jwtutil"
	"github.com/dogmatus07/lynkevo-insights/pkg/logger"
	"github.com/dogmatus07/lynkevo-insights/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token from the Authorization header and
// stores the caller's claims in the context
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store the claims in the context for later use
		c.Set("user", claims)
		log.Debug("Request authenticated",
			zap.Uint("user_id", claims.UserID),
			zap.String("email", claims.Email),
			zap.Bool("is_staff", claims.IsStaff))

		return next(c)
	}
}

// RequireStaff rejects callers without the staff or superuser capability.
// Failing the check is an explicit 403, never a silently empty result.
func RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		claims, ok := c.Get("user").(*jwtutil.UserClaims)
		if !ok {
			log.Error("Failed to get user claims from context")
			prometheus.RecordAuthError("missing_claims")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		if !claims.IsStaffOrSuperuser() {
			log.Warn("Non-staff user attempted a staff operation",
				zap.Uint("user_id", claims.UserID),
				zap.String("path", c.Request().URL.Path))
			prometheus.RecordAuthError("staff_required")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "staff access required"})
		}

		return next(c)
	}
}
