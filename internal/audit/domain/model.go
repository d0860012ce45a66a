package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionIntentionApprove = "intention.approve"
	ActionIntentionReject  = "intention.reject"
	ActionMemberAdmit      = "member.admit"
	ActionMemberUpdate     = "member.update"
	ActionIndicationStatus = "indication.status"
	ActionAccessDenied     = "authorization.denied"
)

// AuditLog is an append-only record of a privileged action.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorType  string            `gorm:"type:varchar(32);not null" json:"actorType"`
	ActorID    string            `gorm:"type:varchar(128);not null;index" json:"actorId"`
	Action     string            `gorm:"type:varchar(64);not null;index" json:"action"`
	TargetType string            `gorm:"type:varchar(64);not null" json:"targetType"`
	TargetID   string            `gorm:"type:varchar(128)" json:"targetId"`
	Metadata   datatypes.JSONMap `json:"metadata"`
	RequestID  string            `gorm:"type:varchar(64)" json:"requestId"`
	CreatedAt  time.Time         `gorm:"not null;index" json:"createdAt"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type Entry struct {
	ActorType  string
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	ListByTarget(ctx context.Context, db *gorm.DB, targetType, targetID string) ([]AuditLog, error)
}

type Service interface {
	// Record writes an audit entry. Failures are logged and returned but
	// callers treat the audit trail as best effort.
	Record(ctx context.Context, entry Entry) error
}
