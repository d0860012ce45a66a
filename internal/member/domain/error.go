package domain

import "github.com/smallbiznis/referralhub/pkg/apperror"

var (
	ErrInvalidID      = apperror.New(apperror.KindValidation, "invalid_id", "invalid member id")
	ErrInvalidStatus  = apperror.New(apperror.KindValidation, "invalid_status", "unknown member status")
	ErrInvalidName    = apperror.New(apperror.KindValidation, "invalid_name", "full name cannot be empty")
	ErrInvalidPhone   = apperror.New(apperror.KindValidation, "invalid_phone", "phone cannot be empty")
	ErrInvalidCompany = apperror.New(apperror.KindValidation, "invalid_company", "company cannot be empty")
	ErrEmptyUpdate    = apperror.New(apperror.KindValidation, "empty_update", "no fields to update")
	ErrNotFound       = apperror.New(apperror.KindNotFound, "member_not_found", "member not found")
	ErrAlreadyExists  = apperror.New(apperror.KindConflict, "member_exists", "member already exists for this user")
)
