package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusClosed     Status = "CLOSED"
	StatusLost       Status = "LOST"
)

// Statuses lists every indication status in display order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusClosed, StatusLost}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed, StatusLost:
		return true
	}
	return false
}

// Indication is a referral from one member to another. ClosedValue is set
// only while the status is CLOSED.
type Indication struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ReferrerID     snowflake.ID `gorm:"not null;index" json:"membroIndicadorId"`
	ReferredID     snowflake.ID `gorm:"not null;index" json:"membroIndicadoId"`
	Title          string       `gorm:"type:varchar(255);not null" json:"titulo"`
	Description    string       `gorm:"type:text;not null" json:"descricao"`
	ClientName     string       `gorm:"type:varchar(255);not null" json:"nomeCliente"`
	ClientContact  string       `gorm:"type:varchar(255)" json:"contatoCliente,omitempty"`
	EstimatedValue float64      `gorm:"type:numeric(14,2);not null" json:"valorEstimado"`
	Status         Status       `gorm:"type:varchar(16);not null;index" json:"status"`
	ClosedValue    *float64     `gorm:"type:numeric(14,2)" json:"valorFechado"`
	ReferredAt     time.Time    `gorm:"not null;index" json:"dataIndicacao"`
	ClosedAt       *time.Time   `json:"dataFechamento"`
	CreatedAt      time.Time    `gorm:"not null" json:"criadoEm"`
	UpdatedAt      time.Time    `gorm:"not null" json:"atualizadoEm"`
}

func (Indication) TableName() string { return "indications" }

func (i *Indication) Involves(memberID snowflake.ID) bool {
	return i.ReferrerID == memberID || i.ReferredID == memberID
}

// Thanks is an immutable acknowledgment between members, optionally scoped
// to an indication.
type Thanks struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	SenderID     snowflake.ID  `gorm:"not null;index" json:"remetenteId"`
	RecipientID  snowflake.ID  `gorm:"not null;index" json:"destinatarioId"`
	IndicationID *snowflake.ID `gorm:"index" json:"indicacaoId"`
	Message      string        `gorm:"type:text;not null" json:"mensagem"`
	ThankedAt    time.Time     `gorm:"not null;index" json:"dataObrigado"`
	CreatedAt    time.Time     `gorm:"not null" json:"criadoEm"`
}

func (Thanks) TableName() string { return "thanks" }

// StatusChange is the full set of columns written by a transition.
type StatusChange struct {
	Status      Status
	ClosedValue *float64
	ClosedAt    *time.Time
	UpdatedAt   time.Time
}
