package domain

import (
	"context"

	authdomain "github.com/smallbiznis/referralhub/internal/auth/domain"
	memberdomain "github.com/smallbiznis/referralhub/internal/member/domain"
	"github.com/smallbiznis/referralhub/pkg/apperror"
)

// RedeemRequest carries the invitation token plus the profile fields the new
// member supplies. Empty phone, role title and area fall back to the
// intention's values.
type RedeemRequest struct {
	Token     string
	Password  string
	Phone     string
	RoleTitle string
	Area      string
	LinkedIn  string
	Bio       string
	PhotoURL  string
}

type Result struct {
	User   *authdomain.User     `json:"usuario"`
	Member *memberdomain.Member `json:"membro"`
}

type Service interface {
	Redeem(ctx context.Context, req RedeemRequest) (*Result, error)
}

var (
	ErrWeakPassword = apperror.New(apperror.KindValidation, "weak_password", "password must have at least 8 characters with upper case, lower case and a digit")
	ErrEmailClaimed = apperror.New(apperror.KindConflict, "email_claimed", "a user with this email already exists")
)
