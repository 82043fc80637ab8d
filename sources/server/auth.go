package server

import (
	"errors"
	"fmt"
	"strings"

	"fitcoach/sources/configuration"
	"fitcoach/sources/platform"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "userID"

var (
	errMissingBearer  = errors.New("bearer token required")
	errInvalidBearer  = errors.New("invalid bearer token")
	errMissingSubject = errors.New("token subject missing")
)

// Authenticator verifies HS256 bearer tokens issued by the identity provider.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthenticator(config *configuration.Config) *Authenticator {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if config.Auth.Issuer != "" {
		options = append(options, jwt.WithIssuer(config.Auth.Issuer))
	}
	if config.Auth.Audience != "" {
		options = append(options, jwt.WithAudience(config.Auth.Audience))
	}

	return &Authenticator{
		secret: []byte(config.Auth.JWTSecret),
		parser: jwt.NewParser(options...),
	}
}

// Subject returns the verified user id carried by the Authorization header.
func (x *Authenticator) Subject(header string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", errMissingBearer
	}
	raw := strings.TrimSpace(header[len("Bearer "):])
	if raw == "" {
		return "", errMissingBearer
	}

	var claims jwt.RegisteredClaims
	if _, err := x.parser.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return x.secret, nil
	}); err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidBearer, err)
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", errMissingSubject
	}
	return subject, nil
}

func (x *Authenticator) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := x.Subject(c.GetHeader("Authorization"))
		if err != nil {
			respondError(c, fmt.Errorf("%w: %w", platform.ErrUnauthenticated, err))
			return
		}
		c.Set(userIDKey, subject)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
