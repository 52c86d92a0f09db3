package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	domainRepo "github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := conn(ctx, r.db).
		Where(&entity.IdempotencyKey{Key: key, UserID: userID}).
		First(&ikey).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ikey, nil
}

// Reserve claims the key with a pending row. The unique (key, user_id) index
// decides between concurrent callers.
func (r *idempotencyRepository) Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	db := conn(ctx, r.db)
	err := db.Where(&entity.IdempotencyKey{Key: ikey.Key, UserID: ikey.UserID}).
		Where("expires_at < ?", time.Now()).
		Delete(&entity.IdempotencyKey{}).Error
	if err != nil {
		return false, err
	}

	ikey.ResponseCode = entity.IdempotencyPending
	ikey.ResponseBody = ""
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(ikey)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return conn(ctx, r.db).Model(&entity.IdempotencyKey{}).
		Where(&entity.IdempotencyKey{Key: ikey.Key, UserID: ikey.UserID}).
		Updates(map[string]interface{}{
			"response_code": ikey.ResponseCode,
			"response_body": ikey.ResponseBody,
			"expires_at":    ikey.ExpiresAt,
		}).Error
}

func (r *idempotencyRepository) Release(ctx context.Context, key string, userID uuid.UUID) error {
	return conn(ctx, r.db).
		Where(&entity.IdempotencyKey{Key: key, UserID: userID}).
		Where("response_code = ?", entity.IdempotencyPending).
		Delete(&entity.IdempotencyKey{}).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	return conn(ctx, r.db).
		Where("expires_at < ?", time.Now()).
		Delete(&entity.IdempotencyKey{}).Error
}
