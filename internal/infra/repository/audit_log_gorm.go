package repository

import (
	"context"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

// 絞り込み条件が指定されているときだけ "column = value" を足す
func whereSet[T any](q *gorm.DB, column string, v *T) *gorm.DB {
	if v == nil {
		return q
	}
	return q.Where(column+" = ?", *v)
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&model.AuditLog{})
	q = whereSet(q, "actor_user_id", f.ActorUserID)
	q = whereSet(q, "action", f.Action)
	q = whereSet(q, "resource_type", f.ResourceType)
	q = whereSet(q, "resource_id", f.ResourceID)
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}

	limit := f.Limit
	if limit <= 0 || limit > maxAuditPageSize {
		limit = defaultAuditPageSize
	}

	logs := []model.AuditLog{}
	err := q.Order("id DESC").Limit(limit).Offset(max(f.Offset, 0)).Find(&logs).Error
	return logs, err
}
