package domain

import (
	"context"

	"github.com/smallbiznis/referralhub/pkg/db/pagination"
)

type SubmitRequest struct {
	Name      string
	Email     string
	Phone     string
	Company   string
	RoleTitle string
	Area      string
	Message   string
}

type ApproveRequest struct {
	ID         string
	ApproverID string
}

type RejectRequest struct {
	ID         string
	ApproverID string
	Reason     string
}

type ApproveResult struct {
	Intention  *Intention `json:"intencao"`
	Token      string     `json:"tokenConvite"`
	InviteLink string     `json:"linkConvite"`
}

type ListRequest struct {
	Status string
	Search string
	pagination.Pagination
}

type ListResponse struct {
	Items    []Intention         `json:"items"`
	PageInfo pagination.PageInfo `json:"pagination"`
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Intention, error)
	Approve(ctx context.Context, req ApproveRequest) (*ApproveResult, error)
	Reject(ctx context.Context, req RejectRequest) (*Intention, error)
	LookupByToken(ctx context.Context, token string) (*PublicIntention, error)
	CountByStatus(ctx context.Context) (StatusCounts, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	GetByID(ctx context.Context, id string) (*Intention, error)
}
