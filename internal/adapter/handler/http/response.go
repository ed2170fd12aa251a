package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/ports"

	"github.com/gin-gonic/gin"
)

const authorizationPayloadKey = "authorization_payload"

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Message string `json:"message"`
}

func newErrorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: message})
}

func getAuthPayload(c *gin.Context, key string) (*domain.TokenPayload, bool) {
	value, exists := c.Get(key)
	if !exists {
		return nil, false
	}
	payload, ok := value.(*domain.TokenPayload)
	return payload, ok
}

func AuthMiddleware(tokenService ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			newErrorResponse(c, http.StatusUnauthorized, "Authorization header missing")
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			newErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		payload, err := tokenService.VerifyToken(token)
		if err != nil {
			newErrorResponse(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(authorizationPayloadKey, payload)
		c.Next()
	}
}

// domainErrorStatus maps engine errors to HTTP codes. Unrecognized
// errors fall through to 500.
func domainErrorStatus(err error) int {
	var rateLimited *domain.RateLimitedError
	switch {
	case errors.Is(err, domain.ErrInvalidRecurrence),
		errors.Is(err, domain.ErrFutureCompletionDate):
		return http.StatusUnprocessableEntity
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrScheduleNotFound),
		errors.Is(err, domain.ErrTemplateNotFound),
		errors.Is(err, domain.ErrVehicleNotFound),
		errors.Is(err, domain.ErrEquipmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTemplateInUse):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
