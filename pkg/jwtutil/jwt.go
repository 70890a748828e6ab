package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"mission-service/pkg/config"
)

var (
	secret     = []byte("mission-service-dev-key")
	expiration = time.Hour * 24
)

// Initialize configures the signing key and token lifetime.
func Initialize(cfg *config.JWTConfig) {
	if cfg.SigningKey != "" {
		secret = []byte(cfg.SigningKey)
	}
	if cfg.ExpirationHours > 0 {
		expiration = time.Duration(cfg.ExpirationHours) * time.Hour
	}
}

// UserClaims represents the JWT claims for an authenticated session.
// TenantID, ProfileID and Role identify the caller's position within a
// tenant; tokens without them cannot access tenant-scoped resources.
type UserClaims struct {
	Email     string `json:"email"`
	UserID    uint   `json:"user_id"`
	TenantID  *uint  `json:"tenant_id,omitempty"`
	ProfileID *uint  `json:"profile_id,omitempty"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token for a user with tenant context.
func GenerateToken(email string, userID uint, tenantID, profileID *uint, role string) (string, error) {
	claims := UserClaims{
		Email:     email,
		UserID:    userID,
		TenantID:  tenantID,
		ProfileID: profileID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
