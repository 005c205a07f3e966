package httpserver

import (
	"errors"
	"net/http"

	"chaeen-storefront/internal/domain"
	"chaeen-storefront/internal/service/inventory"
)

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	var (
		authErr    *domain.AuthenticationError
		dataErr    *domain.DataAccessError
		storageErr *domain.StorageError
		validErr   *inventory.ValidationError
	)
	switch {
	case errors.As(err, &validErr),
		errors.Is(err, inventory.ErrInvalidFile),
		errors.Is(err, inventory.ErrFileTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, inventory.ErrNothingPending),
		errors.Is(err, inventory.ErrUploadInFlight):
		return http.StatusConflict
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &dataErr), errors.As(err, &storageErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
