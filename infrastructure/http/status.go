package http

import (
	goerrors "errors"
	"net/http"

	"github.com/daviderandino/ruggine/errors"
)

// statusCode maps core error taxonomy to HTTP statuses:
// authorization -> 403, absence (or not-owned) -> 404, uniqueness -> 409,
// bad input -> 400, auth -> 401, anything else -> 500.
func statusCode(err error) int {
	switch {
	case goerrors.Is(err, errors.ErrNotMember):
		return http.StatusForbidden
	case goerrors.Is(err, errors.ErrUserNotFound),
		goerrors.Is(err, errors.ErrGroupNotFound),
		goerrors.Is(err, errors.ErrInvitationNotFound):
		return http.StatusNotFound
	case goerrors.Is(err, errors.ErrUsernameExists),
		goerrors.Is(err, errors.ErrGroupNameExists),
		goerrors.Is(err, errors.ErrAlreadyMember),
		goerrors.Is(err, errors.ErrInvitationExists):
		return http.StatusConflict
	case goerrors.Is(err, errors.ErrCannotInviteSelf),
		goerrors.Is(err, errors.ErrInvalidPassword),
		goerrors.Is(err, errors.ErrInvalidUsername),
		goerrors.Is(err, errors.ErrEmptyContent),
		goerrors.Is(err, errors.ErrContentTooLong):
		return http.StatusBadRequest
	case goerrors.Is(err, errors.ErrInvalidCredentials),
		goerrors.Is(err, errors.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
