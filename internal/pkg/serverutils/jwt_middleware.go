package serverutils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const SessionIDLocal = "session_id"

var ErrInvalidToken = errors.New("invalid session token")

// IssueSessionToken signs a token naming the session as subject.
func IssueSessionToken(secret, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    "storyspark",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// ParseSessionToken validates a token and returns its session ID.
func ParseSessionToken(secret, tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer("storyspark"))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// TokenFromRequest reads the session token from the Authorization header,
// falling back to the "token" query parameter for browser clients (img tags,
// WebSocket handshakes).
func TokenFromRequest(ctx *fiber.Ctx) string {
	if authHeader := ctx.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ctx.Query("token")
}

// SessionMiddleware requires a session token and stores the session ID in
// ctx.Locals(SessionIDLocal).
func SessionMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := TokenFromRequest(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		sessionID, err := ParseSessionToken(secret, tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		ctx.Locals(SessionIDLocal, sessionID)
		return ctx.Next()
	}
}

// SessionID reads the ID set by SessionMiddleware.
func SessionID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(SessionIDLocal).(string)
	return id
}
