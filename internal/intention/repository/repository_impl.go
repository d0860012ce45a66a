package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referralhub/internal/intention/domain"
	"github.com/smallbiznis/referralhub/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, intention *domain.Intention) error {
	return db.WithContext(ctx).Create(intention).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Intention, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Intention, error) {
	return r.findOne(ctx, db, "email = ?", email)
}

func (r *repo) FindByToken(ctx context.Context, db *gorm.DB, token string) (*domain.Intention, error) {
	return r.findOne(ctx, db, "invitation_token = ?", token)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*domain.Intention, error) {
	var items []domain.Intention
	err := db.WithContext(ctx).
		Where(query, arg).
		Limit(1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Intention, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Intention{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplySearch(filter.Search, "name", "email", "company").Apply(stmt)
	stmt = stmt.Session(&gorm.Session{})

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]domain.Intention, 0)
	if total == 0 {
		return items, 0, nil
	}
	err := option.ApplyPagination(filter.Pagination).Apply(stmt).
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, status domain.Status) (int64, error) {
	var count int64
	stmt := db.WithContext(ctx).Model(&domain.Intention{})
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if err := stmt.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) Decide(ctx context.Context, db *gorm.DB, d domain.Decision) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Intention{}).
		Where("id = ? AND status = ?", d.ID, domain.StatusPending).
		Updates(map[string]any{
			"status":           d.Status,
			"approved_by":      d.ApproverID,
			"decided_at":       d.DecidedAt,
			"rejection_reason": d.Reason,
			"invitation_token": d.Token,
			"updated_at":       d.DecidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) ClearToken(ctx context.Context, db *gorm.DB, id snowflake.ID, token string, at time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Intention{}).
		Where("id = ? AND invitation_token = ?", id, token).
		Updates(map[string]any{
			"invitation_token": nil,
			"updated_at":       at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
