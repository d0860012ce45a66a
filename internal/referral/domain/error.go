package domain

import "github.com/smallbiznis/referralhub/pkg/apperror"

var (
	ErrInvalidID           = apperror.New(apperror.KindValidation, "invalid_id", "invalid id")
	ErrInvalidStatus       = apperror.New(apperror.KindValidation, "invalid_status", "unknown indication status")
	ErrInvalidTitle        = apperror.New(apperror.KindValidation, "invalid_title", "title is required")
	ErrInvalidDescription  = apperror.New(apperror.KindValidation, "invalid_description", "description is required")
	ErrInvalidClient       = apperror.New(apperror.KindValidation, "invalid_client", "client name is required")
	ErrInvalidValue        = apperror.New(apperror.KindValidation, "invalid_value", "values cannot be negative")
	ErrClosedValueRequired = apperror.New(apperror.KindValidation, "closed_value_required", "closing an indication requires the closed value")
	ErrInvalidMessage      = apperror.New(apperror.KindValidation, "invalid_message", "message is required")
	ErrIndicationNotFound  = apperror.New(apperror.KindNotFound, "indication_not_found", "indication not found")
	ErrReferrerNotFound    = apperror.New(apperror.KindNotFound, "referrer_not_found", "referring member not found")
	ErrReferredNotFound    = apperror.New(apperror.KindNotFound, "referred_not_found", "referred member not found")
	ErrSenderNotFound      = apperror.New(apperror.KindNotFound, "sender_not_found", "sending member not found")
	ErrRecipientNotFound   = apperror.New(apperror.KindNotFound, "recipient_not_found", "receiving member not found")
)
