package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/piresc/ridertrack/internal/pkg/models"
)

// Claim names carried by rider session tokens
const (
	ClaimUserID   = "user_id"
	ClaimDeviceID = "device_id"
	ClaimRole     = "role"
)

var ErrInvalidToken = errors.New("invalid token")

// ErrEmptySecret is returned when signing or verifying without a secret. An
// empty HMAC key would verify any token signed with an empty key.
var ErrEmptySecret = errors.New("jwt secret is empty")

// GenerateToken signs a session token for the rider on deviceID. Sessions are
// issued by the auth provider in production; this serves local tooling.
func GenerateToken(userID uuid.UUID, deviceID, role string, cfg models.JWTConfig) (string, int64, error) {
	if cfg.Secret == "" {
		return "", 0, ErrEmptySecret
	}
	expiresAt := time.Now().Add(time.Duration(cfg.Expiration) * time.Minute).Unix()

	claims := jwt.MapClaims{
		ClaimUserID: userID.String(),
		ClaimRole:   role,
		"exp":       expiresAt,
		"iss":       cfg.Issuer,
	}
	if deviceID != "" {
		claims[ClaimDeviceID] = deviceID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken verifies an HS256 token and returns its claims
func ValidateToken(tokenString string, secret string) (*jwt.MapClaims, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, ErrEmptySecret)
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// PrincipalFromClaims extracts the rider principal. user_id must be a UUID;
// device_id is optional.
func PrincipalFromClaims(claims jwt.MapClaims) (models.Principal, error) {
	rawUserID, ok := claims[ClaimUserID].(string)
	if !ok || rawUserID == "" {
		return models.Principal{}, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: user_id is not a valid UUID", ErrInvalidToken)
	}

	p := models.Principal{UserID: userID.String()}
	if deviceID, ok := claims[ClaimDeviceID].(string); ok {
		p.DeviceID = deviceID
	}
	if role, ok := claims[ClaimRole].(string); ok {
		p.Role = role
	}
	return p, nil
}
