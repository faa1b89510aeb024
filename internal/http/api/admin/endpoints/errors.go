package endpoints

import (
	"errors"
	"net/http"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/http/api"
)

// storeError maps store sentinel errors to admin-facing status codes. The
// admin caller is trusted, so precise validation/conflict detail is fine
// here, unlike the device surfaces.
func storeError(err error, fallback string) *api.APIError {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return &api.APIError{Code: http.StatusNotFound, Message: "not found"}
	case errors.Is(err, db.ErrConflict):
		return &api.APIError{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, db.ErrInvalid):
		return &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	default:
		return &api.APIError{Code: http.StatusInternalServerError, Message: fallback}
	}
}
