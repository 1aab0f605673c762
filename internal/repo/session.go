package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/ambition_store/internal/models"
)

func (r *GormRepo) RevokeSession(ctx context.Context, s *models.RevokedSession) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(s).Error
}

func (r *GormRepo) SessionRevoked(ctx context.Context, jti string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedSession{}).Where("jti = ?", jti).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) PurgeRevokedSessions(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at < ?", before).Delete(&models.RevokedSession{})
	return res.RowsAffected, res.Error
}
