package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/ambition_store/internal/models"
)

// UpsertEmailValidation replaces the code and timestamp of an existing row.
func (r *GormRepo) UpsertEmailValidation(ctx context.Context, ev *models.EmailValidation) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "created_at"}),
		}).
		Create(ev).Error
}

func (r *GormRepo) GetEmailValidation(ctx context.Context, email string) (*models.EmailValidation, error) {
	var ev models.EmailValidation
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// ConsumeEmailValidation deletes the row only when email, code and freshness
// all match, so two concurrent signups cannot both spend one code.
func (r *GormRepo) ConsumeEmailValidation(ctx context.Context, email, code string, notBefore time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("email = ? AND code = ? AND created_at >= ?", email, code, notBefore).
		Delete(&models.EmailValidation{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) PurgeEmailValidations(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("created_at < ?", before).Delete(&models.EmailValidation{})
	return res.RowsAffected, res.Error
}
