package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"shopwave/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims carried by the identity provider's session
// token.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	// Secret verifies HS256 tokens.
	Secret string
	// PublicKeyPEM verifies RS256 tokens and takes precedence over Secret.
	PublicKeyPEM string
	CookieName   string
	AdminEmails  []string
}

type Authenticator struct {
	key         interface{}
	method      string
	cookieName  string
	adminEmails map[string]bool
}

func NewAuthenticator(cfg AuthConfig) (*Authenticator, error) {
	a := &Authenticator{cookieName: cfg.CookieName, adminEmails: map[string]bool{}}
	for _, email := range cfg.AdminEmails {
		a.adminEmails[strings.ToLower(strings.TrimSpace(email))] = true
	}

	switch {
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(strings.ReplaceAll(cfg.PublicKeyPEM, `\n`, "\n")))
		if err != nil {
			return nil, fmt.Errorf("parse auth public key: %w", err)
		}
		a.key = key
		a.method = jwt.SigningMethodRS256.Alg()
	case cfg.Secret != "":
		a.key = []byte(cfg.Secret)
		a.method = jwt.SigningMethodHS256.Alg()
	default:
		return nil, errors.New("no auth secret or public key configured")
	}
	return a, nil
}

func (a *Authenticator) tokenFromRequest(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", errors.New("invalid authorization header format")
		}
		return parts[1], nil
	}
	if a.cookieName != "" {
		if cookie, err := c.Cookie(a.cookieName); err == nil && cookie != "" {
			return cookie, nil
		}
	}
	return "", errors.New("authorization required")
}

// ValidateToken checks the signature and expiry and returns the claims.
func (a *Authenticator) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.key, nil
	}, jwt.WithValidMethods([]string{a.method}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

func (a *Authenticator) IsAdmin(identity models.Identity) bool {
	return identity.Role == "admin" || (identity.Email != "" && a.adminEmails[strings.ToLower(identity.Email)])
}

func (a *Authenticator) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := a.tokenFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Authorization required",
				Error:   err.Error(),
			})
			return
		}

		claims, err := a.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Invalid or expired token",
				Error:   err.Error(),
			})
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("user_email", claims.Email)
		c.Set("user_name", claims.Name)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func (a *Authenticator) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := models.Identity{
			UserID: c.GetString("user_id"),
			Email:  c.GetString("user_email"),
			Role:   c.GetString("user_role"),
		}
		if identity.UserID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Success: false,
				Message: "User role not found",
			})
			return
		}
		if !a.IsAdmin(identity) {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Success: false,
				Message: "Access denied. Admin role required",
			})
			return
		}
		c.Next()
	}
}
