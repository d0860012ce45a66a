package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/referralhub/pkg/db/pagination"
)

type CreateIndicationRequest struct {
	ReferrerID     string
	ReferredID     string
	Title          string
	Description    string
	ClientName     string
	ClientContact  string
	EstimatedValue float64
}

// TransitionRequest sets a new status. ClosedValue is required for CLOSED;
// ClosedAt defaults to now for CLOSED and LOST.
type TransitionRequest struct {
	ID          string
	Status      string
	ClosedValue *float64
	ClosedAt    *time.Time
	// ActorType is the acting role ("admin" or "member") recorded in the audit trail.
	ActorType string
	ActorID   string
}

type ListIndicationsRequest struct {
	Status   string
	MemberID string
	pagination.Pagination
}

type ListIndicationsResponse struct {
	Items    []Indication        `json:"items"`
	PageInfo pagination.PageInfo `json:"pagination"`
}

type RecordThanksRequest struct {
	SenderID     string
	RecipientID  string
	IndicationID string
	Message      string
}

type ListThanksRequest struct {
	MemberID string
	pagination.Pagination
}

type ListThanksResponse struct {
	Items    []Thanks            `json:"items"`
	PageInfo pagination.PageInfo `json:"pagination"`
}

type Service interface {
	CreateIndication(ctx context.Context, req CreateIndicationRequest) (*Indication, error)
	Transition(ctx context.Context, req TransitionRequest) (*Indication, error)
	GetIndication(ctx context.Context, id string) (*Indication, error)
	ListIndications(ctx context.Context, req ListIndicationsRequest) (ListIndicationsResponse, error)
	RecordThanks(ctx context.Context, req RecordThanksRequest) (*Thanks, error)
	ListThanks(ctx context.Context, req ListThanksRequest) (ListThanksResponse, error)
}
