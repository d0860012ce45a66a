package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Intention is an application submitted by a prospective member. It is
// decided exactly once. The invitation token is cleared when redeemed.
type Intention struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"type:varchar(255);not null" json:"nome"`
	Email           string       `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone           string       `gorm:"type:varchar(32);not null" json:"telefone"`
	Company         string       `gorm:"type:varchar(255);not null" json:"empresa"`
	RoleTitle       string       `gorm:"type:varchar(255)" json:"cargo,omitempty"`
	Area            string       `gorm:"type:varchar(255)" json:"areaAtuacao,omitempty"`
	Message         string       `gorm:"type:text" json:"mensagem,omitempty"`
	Status          Status       `gorm:"type:varchar(16);not null;index" json:"status"`
	ApprovedBy      *string      `gorm:"type:varchar(128)" json:"aprovadoPor"`
	DecidedAt       *time.Time   `json:"dataAvaliacao"`
	RejectionReason *string      `gorm:"type:text" json:"motivoRejeicao"`
	InvitationToken *string      `gorm:"type:varchar(36);uniqueIndex" json:"-"`
	SubmittedAt     time.Time    `gorm:"not null" json:"dataIntencao"`
	CreatedAt       time.Time    `gorm:"not null;index" json:"criadoEm"`
	UpdatedAt       time.Time    `gorm:"not null" json:"atualizadoEm"`
}

func (Intention) TableName() string { return "intentions" }

// PublicIntention is the projection shown to the holder of an invitation
// token.
type PublicIntention struct {
	Name      string `json:"nome"`
	Email     string `json:"email"`
	Company   string `json:"empresa"`
	RoleTitle string `json:"cargo,omitempty"`
	Area      string `json:"areaAtuacao,omitempty"`
}

func (i *Intention) Public() *PublicIntention {
	return &PublicIntention{
		Name:      i.Name,
		Email:     i.Email,
		Company:   i.Company,
		RoleTitle: i.RoleTitle,
		Area:      i.Area,
	}
}

// Decision is the single write that moves an intention out of PENDING.
type Decision struct {
	ID         snowflake.ID
	Status     Status
	ApproverID string
	DecidedAt  time.Time
	Reason     *string
	Token      *string
}

type StatusCounts struct {
	Pending  int64 `json:"pendentes"`
	Approved int64 `json:"aprovadas"`
	Rejected int64 `json:"rejeitadas"`
	Total    int64 `json:"total"`
}
