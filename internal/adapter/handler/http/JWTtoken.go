package http

import (
	"errors"
	"fmt"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JWTTokenService struct {
	secretKey []byte
	logger    ports.LoggerPort
}

func NewJWTTokenService(secretKey string, logger ports.LoggerPort) *JWTTokenService {
	return &JWTTokenService{
		secretKey: []byte(secretKey),
		logger:    logger,
	}
}

func (j *JWTTokenService) VerifyToken(token string) (*domain.TokenPayload, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		j.logger.Error("Failed to parse jwt", map[string]interface{}{
			"error":  err.Error(),
			"method": "VerifyToken",
		})
		return nil, err
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, errors.New("failed to verify token claims")
	}

	id, err := claimUUID(claims, "id")
	if err != nil {
		return nil, err
	}
	userID, err := claimUUID(claims, "user_id")
	if err != nil {
		return nil, err
	}

	roleClaimed, ok := claims["role"].(string)
	if !ok {
		return nil, errors.New("missing role claim")
	}
	role := domain.UserRole(roleClaimed)
	if role != domain.Admin && role != domain.AppUser {
		j.logger.Warn("Invalid role in token", map[string]interface{}{
			"role":   roleClaimed,
			"method": "VerifyToken",
		})
		return nil, errors.New("invalid role value")
	}

	return &domain.TokenPayload{
		ID:     id,
		UserID: userID,
		Role:   role,
	}, nil
}

func claimUUID(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, ok := claims[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing %s claim", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s claim: %w", key, err)
	}
	return id, nil
}
