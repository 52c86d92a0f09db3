package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
)

// PrinterSettingRepository looks up printers for ticket routing
type PrinterSettingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PrinterSetting, error)
	ListEnabled(ctx context.Context, outletID uuid.UUID, purpose enum.PrinterPurpose) ([]entity.PrinterSetting, error)
}
