// Package domain contains core types for authentication and user identity.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User is the identity anchor of a member or administrator. Users are never
// deleted.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;type:text;not null" json:"-"`
	Name         string       `gorm:"type:varchar(255);not null" json:"nome"`
	Role         Role         `gorm:"type:varchar(16);not null;index" json:"tipo"`
	Active       bool         `gorm:"not null" json:"ativo"`
	CreatedAt    time.Time    `gorm:"not null" json:"criadoEm"`
	UpdatedAt    time.Time    `gorm:"not null" json:"atualizadoEm"`
}

func (User) TableName() string { return "users" }

const (
	MethodBearer   = "bearer"
	MethodAdminKey = "admin_key"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	// Subject identifies the caller in audit trails and approval records.
	Subject string
	UserID  snowflake.ID
	Email   string
	Role    Role
	Method  string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
