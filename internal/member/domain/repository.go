package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referralhub/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListFilter enumerates the recognized list options. Search matches full
// name, email and company case-insensitively.
type ListFilter struct {
	Status Status
	Search string
	pagination.Pagination
}

// Repository lookups return nil, nil when no row matches.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, member *Member) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Member, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Member, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Member, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Member, int64, error)
	CountByStatus(ctx context.Context, db *gorm.DB, status Status) (int64, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) (bool, error)
}
