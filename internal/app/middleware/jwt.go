package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"resident-directory-service/internal/domain/models"
	"resident-directory-service/internal/domain/policy"
	"resident-directory-service/internal/domain/services"
	"resident-directory-service/internal/domain/services/container"
	"resident-directory-service/internal/error/code"
	"resident-directory-service/internal/error/response"
	"resident-directory-service/pkg/logger"
)

// 上下文中保存的认证信息
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

// extractToken 从授权头中提取 Bearer token
func extractToken(authHeader string) (string, bool) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Authenticate 解析请求方身份
// 没有 Authorization 头时为匿名；令牌无效、过期或用户已被删除/禁用时返回 401
func Authenticate(c *container.ServiceContainer) gin.HandlerFunc {
	jwtService := c.GetService("jwt").(services.InterfaceJWTService)
	userService := c.GetService("user").(services.InterfaceUserService)

	return func(ctx *gin.Context) {
		ctx.Set(ContextRoleKey, policy.Anonymous)

		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			ctx.Next()
			return
		}

		tokenString, ok := extractToken(authHeader)
		if !ok {
			response.FailWithMessage(ctx, code.ErrTokenInvalid, "Authorization header format must be Bearer {token}", nil)
			return
		}

		claims, err := jwtService.ParseToken(tokenString, services.TokenTypeAccess)
		if err != nil {
			response.Unauthorized(ctx, code.ErrTokenInvalid)
			return
		}

		user, err := userService.GetUserByID(ctx.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				response.Unauthorized(ctx, code.ErrUserNotFound)
				return
			}
			logger.Error("加载用户 %d 失败: %v", claims.UserID, err)
			response.ServerError(ctx)
			return
		}
		if !user.IsActive {
			response.Unauthorized(ctx, code.ErrUserInactive)
			return
		}

		role := policy.Authenticated
		if user.IsStaff {
			role = policy.Staff
		}
		ctx.Set(ContextUserKey, user)
		ctx.Set(ContextUserIDKey, user.ID)
		ctx.Set(ContextRoleKey, role)
		ctx.Next()
	}
}

// Authorize 在控制器执行前按策略表检查权限
func Authorize(action policy.Action) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		switch policy.Evaluate(CurrentRole(ctx), action) {
		case policy.Allow:
			ctx.Next()
		case policy.Unauthenticated:
			response.Unauthorized(ctx, code.ErrNotAuthenticated)
		default:
			response.Forbidden(ctx)
		}
	}
}

// CurrentRole 返回当前请求方的角色，未经过认证中间件时视为匿名
func CurrentRole(ctx *gin.Context) policy.Role {
	if v, ok := ctx.Get(ContextRoleKey); ok {
		if role, ok := v.(policy.Role); ok {
			return role
		}
	}
	return policy.Anonymous
}

// CurrentUser 返回当前登录用户
func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	v, ok := ctx.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
