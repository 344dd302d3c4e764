package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/configs"
)

// ReviewerKey is the gin context key holding the authenticated reviewer's
// identity for admin requests.
const ReviewerKey = "reviewer"

type Manager struct {
	conf   *configs.Config
	logger *zap.Logger
}

func NewManager(conf *configs.Config, logger *zap.Logger) *Manager {
	return &Manager{conf: conf, logger: logger}
}

// Middleware guards the admin review endpoints with an HMAC bearer token.
func (a *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := a.extractBearerToken(c.Request.Header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

			return
		}

		reviewer, err := a.parseToken(token)
		if err != nil {
			a.logger.Warn("rejected admin token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})

			return
		}

		c.Set(ReviewerKey, reviewer)
		c.Next()
	}
}

func (a *Manager) parseToken(tokenString string) (string, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(a.conf.Auth.SecretKey), nil
	}

	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, keyFunc)
	if err != nil {
		return "", err
	}

	claims, found := token.Claims.(jwt.MapClaims)
	if !found || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	if a.conf.Auth.Audience != "" {
		if !claims.VerifyAudience(a.conf.Auth.Audience, true) {
			return "", fmt.Errorf("invalid audience")
		}
	}

	reviewer, found := claims["email"].(string)
	if !found || reviewer == "" {
		return "", fmt.Errorf("token has no reviewer identity")
	}

	return reviewer, nil
}

func (a *Manager) extractBearerToken(header http.Header) (string, error) {
	authorization := header.Get("Authorization")
	if authorization == "" {
		return "", fmt.Errorf("authorization header required")
	}

	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("invalid authorization header format")
	}

	return parts[1], nil
}

// Reviewer returns the authenticated reviewer identity set by Middleware.
func Reviewer(c *gin.Context) string {
	reviewer, _ := c.Get(ReviewerKey)
	if name, ok := reviewer.(string); ok {
		return name
	}

	return ""
}
