package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referralhub/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListFilter enumerates the recognized list options. Search matches name,
// email and company case-insensitively.
type ListFilter struct {
	Status Status
	Search string
	pagination.Pagination
}

// Repository lookups return nil, nil when no row matches.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, intention *Intention) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Intention, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Intention, error)
	FindByToken(ctx context.Context, db *gorm.DB, token string) (*Intention, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Intention, int64, error)
	CountByStatus(ctx context.Context, db *gorm.DB, status Status) (int64, error)
	// Decide applies the decision only while the row is still PENDING and
	// reports whether it did.
	Decide(ctx context.Context, db *gorm.DB, decision Decision) (bool, error)
	// ClearToken nulls the token only if it still holds the given value.
	ClearToken(ctx context.Context, db *gorm.DB, id snowflake.ID, token string, at time.Time) (bool, error)
}
