// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/mzwakhe/izaziso/app/dto"
	"github.com/mzwakhe/izaziso/app/services"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

func unauthorized(c fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: code,
		},
	})
}

func (m *AuthMiddleware) extractToken(c fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", unauthorized(c, "MISSING_AUTHORIZATION_HEADER", "Authorization header is required")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", unauthorized(c, "INVALID_AUTHORIZATION_FORMAT", "Invalid authorization header format. Expected 'Bearer <token>'")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", unauthorized(c, "MISSING_ACCESS_TOKEN", "Access token is required")
	}

	return token, nil
}

func (m *AuthMiddleware) validate(c fiber.Ctx, token string) (*services.TokenClaims, error) {
	claims, err := m.tokenService.ValidateToken(token)
	if err != nil {
		var errorCode string
		var message string

		if errors.Is(err, services.ErrTokenExpired) {
			errorCode = "TOKEN_EXPIRED"
			message = "Access token has expired"
		} else if errors.Is(err, services.ErrTokenInvalid) {
			errorCode = "TOKEN_INVALID"
			message = "Invalid access token"
		} else if errors.Is(err, services.ErrTokenRevoked) {
			errorCode = "TOKEN_REVOKED"
			message = "Access token has been revoked"
		} else {
			errorCode = "TOKEN_VALIDATION_FAILED"
			message = "Token validation failed"
		}

		return nil, unauthorized(c, errorCode, message)
	}

	return claims, nil
}

// Authenticate is the middleware function that validates JWT tokens
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := m.extractToken(c)
		if err != nil {
			return err
		}

		// Validate the token (this already checks for revocation)
		claims, err := m.validate(c, token)
		if err != nil {
			return err
		}

		// Store account information in context for downstream handlers
		c.Locals("account_id", claims.AccountID)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		// Store RequestID for audit logging
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// AdminAuthenticate validates JWT tokens and requires the admin claim
func (m *AuthMiddleware) AdminAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := m.extractToken(c)
		if err != nil {
			return err
		}

		claims, err := m.validate(c, token)
		if err != nil {
			return err
		}

		if !claims.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Admin access required",
				Error:   dto.ErrorDetail{Code: "ADMIN_ACCESS_REQUIRED"},
			})
		}

		c.Locals("account_id", claims.AccountID)
		c.Locals("admin_id", claims.AccountID)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// OptionalAuth is a middleware that validates JWT tokens if present, but doesn't require them
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Next()
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Next()
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			// Token is invalid, but this is optional auth, so continue
			return c.Next()
		}

		c.Locals("account_id", claims.AccountID)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// GetAccountIDFromContext extracts the account ID from the request context
func GetAccountIDFromContext(c fiber.Ctx) (uint, bool) {
	accountID, ok := c.Locals("account_id").(uint)
	return accountID, ok
}

// GetAdminIDFromContext extracts the admin account ID from the request context
func GetAdminIDFromContext(c fiber.Ctx) (uint, bool) {
	adminID, ok := c.Locals("admin_id").(uint)
	return adminID, ok
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals("token_claims").(*services.TokenClaims)
	return claims, ok
}
