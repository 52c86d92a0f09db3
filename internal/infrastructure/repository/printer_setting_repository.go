package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	domainRepo "github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"gorm.io/gorm"
)

type printerSettingRepository struct {
	db *gorm.DB
}

// NewPrinterSettingRepository creates a new printer setting repository
func NewPrinterSettingRepository(db *gorm.DB) domainRepo.PrinterSettingRepository {
	return &printerSettingRepository{db: db}
}

func (r *printerSettingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.PrinterSetting, error) {
	var setting entity.PrinterSetting
	err := conn(ctx, r.db).First(&setting, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *printerSettingRepository) ListEnabled(ctx context.Context, outletID uuid.UUID, purpose enum.PrinterPurpose) ([]entity.PrinterSetting, error) {
	var settings []entity.PrinterSetting
	err := conn(ctx, r.db).
		Where("outlet_id = ? AND purpose = ? AND enabled = ?", outletID, purpose, true).
		Order("created_at ASC").
		Find(&settings).Error
	return settings, err
}
