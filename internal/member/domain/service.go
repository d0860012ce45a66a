package domain

import (
	"context"

	"github.com/smallbiznis/referralhub/pkg/db/pagination"
)

type ListRequest struct {
	Status string
	Search string
	pagination.Pagination
}

type ListResponse struct {
	Items    []Member            `json:"items"`
	PageInfo pagination.PageInfo `json:"pagination"`
}

// UpdateRequest is a partial update. Nil fields are left untouched; email
// and user are identity and cannot change.
type UpdateRequest struct {
	ID        string
	ActorID   string
	FullName  *string
	Phone     *string
	Company   *string
	RoleTitle *string
	Area      *string
	LinkedIn  *string
	Bio       *string
	PhotoURL  *string
	Status    *string
}

type Service interface {
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByUserID(ctx context.Context, userID string) (*Member, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	CountByStatus(ctx context.Context) (StatusCounts, error)
	Update(ctx context.Context, req UpdateRequest) (*Member, error)
}
