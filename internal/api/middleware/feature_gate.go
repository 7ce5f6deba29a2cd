package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neuradash/account-system/internal/core/ports"
)

// FeatureGate blocks requests from accounts whose plan does not include the
// given feature. Auth must run first so an account is loadable.
func FeatureGate(svc ports.AccountService, feature string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rec := svc.GetUserData(c.Request().Context(), false); rec == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "no account loaded")
			}
			if !svc.HasAccess(feature) {
				return echo.NewHTTPError(http.StatusForbidden, "plan does not include "+feature)
			}
			return next(c)
		}
	}
}
