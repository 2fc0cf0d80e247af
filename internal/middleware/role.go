package middleware

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// Role is the organisational role carried in the token.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleHOD     Role = "hod"
	RoleStaff   Role = "staff"
	RoleFinance Role = "finance"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHOD, RoleStaff, RoleFinance:
		return true
	}
	return false
}

// RequireRole aborts with 403 unless the authenticated role is one of allowed.
func RequireRole(allowed ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRoleFromContext(c)
		if !ok || !slices.Contains(allowed, role) {
			GetLoggerFromCtx(c.Request.Context()).Warn("Role not permitted",
				slog.String("role", string(role)),
				slog.String("route", c.FullPath()),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
			return
		}
		c.Next()
	}
}
