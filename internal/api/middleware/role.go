package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/careerexpo/exhibition-api/internal/api/handler/v1/response"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

// RequireRoles lets the request through only when VerifyJWT stored one of roles.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := domain.Role(ctx.GetString(ContextRole))
		for _, r := range roles {
			if r == role {
				ctx.Next()
				return
			}
		}

		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("role %q is not allowed here", role)))
		ctx.Abort()
	}
}
