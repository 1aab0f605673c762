package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/ambition_store/internal/models"
)

type OrderFilter struct {
	StatusID *uint
	From     *time.Time
	Until    *time.Time
}

func (r *GormRepo) preloadOrder(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Preload("Status").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product")
}

// CreateOrder inserts the order together with its items. Items must carry
// ProductID only; a populated Product would be upserted as well.
func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Omit("Status").Create(o).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.preloadOrder(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) QueryOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := r.preloadOrder(ctx).Model(&models.Order{})
	if f.StatusID != nil {
		q = q.Where("status_id = ?", *f.StatusID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.Until != nil {
		q = q.Where("created_at < ?", *f.Until)
	}

	var orders []models.Order
	if err := q.Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id, statusID uint, now time.Time) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status_id": statusID, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
