package order

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/izsecurity/shop/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Get(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).Preload("Items").First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).Preload("Items").Order("id DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Transition applies a status change as a single guarded UPDATE keyed on
// the current status. When two advance calls race on the same order the
// second one matches zero rows and is rejected instead of overwriting the
// winner's write (and its OTP).
func (r *GormRepo) Transition(ctx context.Context, id uint, from, to Status, extra map[string]any) error {
	updates := map[string]any{"order_status": to.String()}
	for k, v := range extra {
		updates[k] = v
	}

	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND order_status = ?", id, from.String()).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var current models.Order
		if err := r.DB.WithContext(ctx).First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return ErrIllegalTransition
	}
	return nil
}
