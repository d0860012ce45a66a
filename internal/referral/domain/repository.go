package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referralhub/pkg/db/pagination"
	"gorm.io/gorm"
)

// IndicationFilter matches indications where MemberID is either party.
type IndicationFilter struct {
	Status   Status
	MemberID snowflake.ID
	pagination.Pagination
}

// ThanksFilter matches thanks where MemberID is sender or recipient.
type ThanksFilter struct {
	MemberID snowflake.ID
	pagination.Pagination
}

// Repository lookups return nil, nil when no row matches.
type Repository interface {
	InsertIndication(ctx context.Context, db *gorm.DB, indication *Indication) error
	FindIndication(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Indication, error)
	ListIndications(ctx context.Context, db *gorm.DB, filter IndicationFilter) ([]Indication, int64, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, change StatusChange) (bool, error)

	InsertThanks(ctx context.Context, db *gorm.DB, thanks *Thanks) error
	ListThanks(ctx context.Context, db *gorm.DB, filter ThanksFilter) ([]Thanks, int64, error)
}
