package repository

import (
	"context"

	"doctor-appointment-server/internal/models"

	"gorm.io/gorm"
)

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *GormNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]models.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ?", recipientID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Notification
	err := q.Order("created_at desc").Limit(limit).Offset(offset).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormNotificationRepository) ListUnread(ctx context.Context, recipientID string) ([]models.Notification, error) {
	var items []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", recipientID, false).
		Order("created_at desc").
		Find(&items).Error
	return items, err
}

func (r *GormNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", recipientID, false).
		Count(&n).Error
	return n, err
}

func (r *GormNotificationRepository) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return false, res.Error
	}
	// MySQL reports zero affected rows when the value is unchanged, so confirm ownership.
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", id, recipientID).Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}
	return true, nil
}

func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *GormNotificationRepository) Delete(ctx context.Context, id, recipientID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, recipientID).Delete(&models.Notification{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormNotificationRepository) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", recipientID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
