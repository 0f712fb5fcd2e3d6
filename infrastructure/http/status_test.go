package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daviderandino/ruggine/errors"
)

func Test_Status_Code_Mapping(t *testing.T) {
	req := require.New(t)

	req.Equal(http.StatusForbidden, statusCode(errors.ErrNotMember))
	req.Equal(http.StatusNotFound, statusCode(errors.ErrUserNotFound))
	req.Equal(http.StatusNotFound, statusCode(errors.ErrGroupNotFound))
	req.Equal(http.StatusNotFound, statusCode(errors.ErrInvitationNotFound))
	req.Equal(http.StatusConflict, statusCode(errors.ErrUsernameExists))
	req.Equal(http.StatusConflict, statusCode(errors.ErrGroupNameExists))
	req.Equal(http.StatusConflict, statusCode(errors.ErrAlreadyMember))
	req.Equal(http.StatusConflict, statusCode(errors.ErrInvitationExists))
	req.Equal(http.StatusBadRequest, statusCode(errors.ErrCannotInviteSelf))
	req.Equal(http.StatusBadRequest, statusCode(errors.ErrEmptyContent))
	req.Equal(http.StatusBadRequest, statusCode(errors.ErrContentTooLong))
	req.Equal(http.StatusUnauthorized, statusCode(errors.ErrInvalidCredentials))
	req.Equal(http.StatusUnauthorized, statusCode(errors.ErrInvalidToken))
	req.Equal(http.StatusInternalServerError, statusCode(fmt.Errorf("anything else")))

	// Wrapped errors keep their mapping.
	req.Equal(http.StatusForbidden, statusCode(fmt.Errorf("check: %w", errors.ErrNotMember)))
}
