package middlewares

import (
	"net/http"

	"ClinicDesk/services"
	"ClinicDesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const principalKey = "principal"

// SessionAuthMiddleware resolves the session cookie into a principal and
// stores it on the context. Requests without a usable session continue
// anonymously; a cookie that cannot be opened is cleared. A cookie past half
// its lifetime is sealed again so active sessions keep sliding.
func SessionAuthMiddleware(users services.UserService, sealer *utils.SessionSealer, secure bool, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := utils.SessionCookie(c)
		if token == "" {
			c.Next()
			return
		}
		claims, err := sealer.Open(token)
		if err != nil {
			log.Debug().Err(err).Msg("discarding session cookie")
			utils.ClearSessionCookie(c, secure)
			c.Next()
			return
		}
		principal, err := users.Resolve(c.Request.Context(), claims.SID)
		if err != nil {
			HTTPError(c, err)
			c.Abort()
			return
		}
		if principal == nil {
			utils.ClearSessionCookie(c, secure)
			c.Next()
			return
		}
		if ttl := users.SessionTTL(); sealer.Stale(claims, ttl) {
			refreshed, err := sealer.Seal(principal.SID, ttl)
			if err != nil {
				log.Warn().Err(err).Msg("failed to refresh session cookie")
			} else {
				utils.SetSessionCookie(c, refreshed, ttl, secure)
			}
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// CurrentPrincipal returns the principal of the request, nil when anonymous.
func CurrentPrincipal(c *gin.Context) *services.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*services.Principal)
	return p
}

// RequireRoles rejects anonymous requests with 401 and principals whose role
// is not listed with 403.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil {
			AbortWithError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !lo.Contains(roles, p.Role) {
			AbortWithError(c, http.StatusForbidden, "forbidden: insufficient privileges")
			return
		}
		c.Next()
	}
}
