package ports

import "github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"

type TokenService interface {
	VerifyToken(token string) (*domain.TokenPayload, error)
}
