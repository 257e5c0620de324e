package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ninja813/aml-manager-backend/internal/logger"
)

var (
	ErrMissingToken      = errors.New("missing bearer token")
	ErrInvalidToken      = errors.New("invalid bearer token")
	ErrUnexpectedSigning = errors.New("unexpected token signing method")
)

// RequireOperatorToken guards the treasury-operator endpoints with an HS256
// bearer token. The public permit endpoints stay unauthenticated; only the
// routes that move funds or clear state sit behind this.
func RequireOperatorToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := parseBearerToken(c.GetHeader("Authorization"), secret)
		if err != nil {
			logger.Warn("Rejected operator request",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}

		if subject, err := token.Claims.GetSubject(); err == nil && subject != "" {
			c.Set("operator", subject)
		}

		c.Next()
	}
}

func parseBearerToken(header, secret string) (*jwt.Token, error) {
	if header == "" {
		return nil, ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, ErrMissingToken
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnexpectedSigning
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return token, nil
}
