package domain

import "github.com/smallbiznis/referralhub/pkg/apperror"

var (
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid_credentials", "invalid email or password")
	ErrInvalidToken       = apperror.New(apperror.KindUnauthorized, "invalid_token", "invalid or expired token")
	ErrMissingCredential  = apperror.New(apperror.KindUnauthorized, "missing_credential", "authentication required")
	ErrForbidden          = apperror.New(apperror.KindForbidden, "forbidden", "insufficient privileges")
	ErrUserNotFound       = apperror.New(apperror.KindNotFound, "user_not_found", "user not found")
	ErrUserExists         = apperror.New(apperror.KindConflict, "user_exists", "a user with this email already exists")
	ErrInvalidID          = apperror.New(apperror.KindValidation, "invalid_id", "invalid id")
)
