package domain

import "github.com/smallbiznis/referralhub/pkg/apperror"

var ErrInvalidAction = apperror.New(apperror.KindValidation, "invalid_action", "audit action is required")
