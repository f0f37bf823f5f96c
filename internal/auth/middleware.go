package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"metaverse-backend/internal/model"
)

// bearerToken Authorization 헤더에서 Bearer 토큰 추출
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// UserMiddleware JWT 인증 미들웨어. 검증된 userId를 컨텍스트에 저장한다.
func UserMiddleware(jwtManager *JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "No token provided",
			})
		}

		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Not an user",
			})
		}

		c.Locals("userId", claims.UserID)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// AdminMiddleware 관리자 전용 미들웨어
func AdminMiddleware(jwtManager *JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "No token provided",
			})
		}

		claims, err := jwtManager.ValidateToken(token)
		if err != nil || claims.Role != model.RoleAdmin.String() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Not an admin",
			})
		}

		c.Locals("userId", claims.UserID)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// UserIDFromContext 미들웨어가 저장한 userId 조회
func UserIDFromContext(c *fiber.Ctx) string {
	if v, ok := c.Locals("userId").(string); ok {
		return v
	}
	return ""
}
