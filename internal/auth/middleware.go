package auth

import (
	"strings"

	"github.com/bayworx/event-management-system-sub001/internal/dto"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/gin-gonic/gin"
)

const claimsKey = "auth.claims"

const bearerSchema = "Bearer "

func (m *TokenManager) authenticate(c *gin.Context) (*Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		dto.UnauthorizedError(c, "Authorization header is required")
		return nil, false
	}
	if !strings.HasPrefix(header, bearerSchema) {
		dto.UnauthorizedError(c, "Authorization header must start with Bearer")
		return nil, false
	}

	claims, err := m.Parse(strings.TrimSpace(header[len(bearerSchema):]))
	if err != nil {
		dto.UnauthorizedError(c, "Invalid or expired token")
		return nil, false
	}
	return claims, true
}

func (m *TokenManager) require(allow func(*Claims) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.authenticate(c)
		if !ok {
			return
		}
		if !allow(claims) {
			dto.ForbiddenError(c)
			return
		}
		if claims.Kind == KindAdmin && m.adminActive != nil {
			active, err := m.adminActive(c.Request.Context(), claims.SubID)
			if err != nil {
				dto.InternalServerError(c)
				return
			}
			if !active {
				dto.UnauthorizedError(c, "Administrator is inactive")
				return
			}
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func (m *TokenManager) RequireAdmin() gin.HandlerFunc {
	return m.require(func(cl *Claims) bool { return cl.Kind == KindAdmin })
}

func (m *TokenManager) RequireSuperAdmin() gin.HandlerFunc {
	return m.require(func(cl *Claims) bool {
		return cl.Kind == KindAdmin && cl.HasRole(model.RoleSuperAdmin)
	})
}

func (m *TokenManager) RequireAttendee() gin.HandlerFunc {
	return m.require(func(cl *Claims) bool { return cl.Kind == KindAttendee })
}

// Subject returns the claims stored by one of the Require middlewares.
func Subject(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// WithSubject stores claims on the context the way the middlewares do.
func WithSubject(c *gin.Context, claims *Claims) {
	c.Set(claimsKey, claims)
}
