package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusPending   Status = "PENDING"
	StatusSuspended Status = "SUSPENDED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending, StatusSuspended:
		return true
	}
	return false
}

// Member is the professional profile owned 1:1 by a user. It is created only
// by admission.
type Member struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;uniqueIndex" json:"usuarioId"`
	FullName  string       `gorm:"type:varchar(255);not null" json:"nomeCompleto"`
	Email     string       `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone     string       `gorm:"type:varchar(32);not null" json:"telefone"`
	Company   string       `gorm:"type:varchar(255);not null" json:"empresa"`
	RoleTitle string       `gorm:"type:varchar(255)" json:"cargo"`
	Area      string       `gorm:"type:varchar(255)" json:"areaAtuacao"`
	LinkedIn  string       `gorm:"column:linkedin;type:varchar(512)" json:"linkedin,omitempty"`
	Bio       string       `gorm:"type:text" json:"bio,omitempty"`
	PhotoURL  string       `gorm:"type:varchar(512)" json:"fotoUrl,omitempty"`
	Status    Status       `gorm:"type:varchar(16);not null;index" json:"status"`
	JoinedAt  time.Time    `gorm:"not null" json:"dataEntrada"`
	CreatedAt time.Time    `gorm:"not null;index" json:"criadoEm"`
	UpdatedAt time.Time    `gorm:"not null" json:"atualizadoEm"`
}

func (Member) TableName() string { return "members" }

// Summary is the lightweight projection used in rankings.
type Summary struct {
	ID       snowflake.ID `json:"id"`
	FullName string       `json:"nomeCompleto"`
	Company  string       `json:"empresa"`
	PhotoURL string       `json:"fotoUrl,omitempty"`
}

func (m *Member) Summary() Summary {
	return Summary{ID: m.ID, FullName: m.FullName, Company: m.Company, PhotoURL: m.PhotoURL}
}

type StatusCounts struct {
	Active    int64 `json:"ativos"`
	Inactive  int64 `json:"inativos"`
	Pending   int64 `json:"pendentes"`
	Suspended int64 `json:"suspensos"`
	Total     int64 `json:"total"`
}
