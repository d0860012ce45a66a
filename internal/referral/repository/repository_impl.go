package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referralhub/internal/referral/domain"
	"github.com/smallbiznis/referralhub/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertIndication(ctx context.Context, db *gorm.DB, indication *domain.Indication) error {
	return db.WithContext(ctx).Create(indication).Error
}

func (r *repo) FindIndication(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Indication, error) {
	var items []domain.Indication
	err := db.WithContext(ctx).
		Where("id = ?", id).
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

func (r *repo) ListIndications(ctx context.Context, db *gorm.DB, filter domain.IndicationFilter) ([]domain.Indication, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Indication{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.MemberID != 0 {
		stmt = stmt.Where("(referrer_id = ? OR referred_id = ?)", filter.MemberID, filter.MemberID)
	}
	stmt = stmt.Session(&gorm.Session{})

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	items := make([]domain.Indication, 0)
	if total == 0 {
		return items, 0, nil
	}
	err := option.ApplyPagination(filter.Pagination).Apply(stmt).
		Order("referred_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, change domain.StatusChange) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Indication{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       change.Status,
			"closed_value": change.ClosedValue,
			"closed_at":    change.ClosedAt,
			"updated_at":   change.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) InsertThanks(ctx context.Context, db *gorm.DB, thanks *domain.Thanks) error {
	return db.WithContext(ctx).Create(thanks).Error
}

func (r *repo) ListThanks(ctx context.Context, db *gorm.DB, filter domain.ThanksFilter) ([]domain.Thanks, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Thanks{})
	if filter.MemberID != 0 {
		stmt = stmt.Where("(sender_id = ? OR recipient_id = ?)", filter.MemberID, filter.MemberID)
	}
	stmt = stmt.Session(&gorm.Session{})

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	items := make([]domain.Thanks, 0)
	if total == 0 {
		return items, 0, nil
	}
	err := option.ApplyPagination(filter.Pagination).Apply(stmt).
		Order("thanked_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
