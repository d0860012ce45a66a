package domain

import "github.com/smallbiznis/referralhub/pkg/apperror"

var (
	ErrInvalidID          = apperror.New(apperror.KindValidation, "invalid_id", "invalid intention id")
	ErrInvalidName        = apperror.New(apperror.KindValidation, "invalid_name", "name is required")
	ErrInvalidEmail       = apperror.New(apperror.KindValidation, "invalid_email", "a valid email is required")
	ErrInvalidPhone       = apperror.New(apperror.KindValidation, "invalid_phone", "phone is required")
	ErrInvalidCompany     = apperror.New(apperror.KindValidation, "invalid_company", "company is required")
	ErrInvalidStatus      = apperror.New(apperror.KindValidation, "invalid_status", "unknown intention status")
	ErrApproverRequired   = apperror.New(apperror.KindValidation, "approver_required", "approver identity is required")
	ErrReasonRequired     = apperror.New(apperror.KindValidation, "reason_required", "rejection reason is required")
	ErrNotFound           = apperror.New(apperror.KindNotFound, "intention_not_found", "intention not found")
	ErrTokenNotFound      = apperror.New(apperror.KindNotFound, "invalid_token", "invitation token not found or already used")
	ErrEmailTaken         = apperror.New(apperror.KindConflict, "email_taken", "an intention with this email already exists")
	ErrAlreadyDecided     = apperror.New(apperror.KindInvalidState, "intention_already_decided", "intention has already been decided")
	ErrTokenNotRedeemable = apperror.New(apperror.KindInvalidState, "intention_not_approved", "intention is not approved")
)
