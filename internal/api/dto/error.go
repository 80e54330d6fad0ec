package dto

import (
	"net/http"

	"github.com/kingrain94/clinic-access-core/internal/apperror"
)

// Error represents a standard error response
type Error struct {
	Error string `json:"error" example:"quota exhausted for the current period"`
	Kind  string `json:"kind,omitempty" example:"QUOTA_EXCEEDED"`
}

// ErrorFrom renders err for a client. Errors outside the apperror taxonomy
// become an opaque 500 so causes never leak.
func ErrorFrom(err error) (int, Error) {
	appErr, ok := apperror.As(err)
	if !ok {
		return http.StatusInternalServerError, Error{Error: "internal server error"}
	}
	return apperror.HTTPStatus(appErr.Kind), Error{Error: appErr.Reason, Kind: string(appErr.Kind)}
}
