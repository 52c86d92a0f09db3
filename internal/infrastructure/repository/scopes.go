package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

const (
	// OutletIDKey is the context key for the caller's outlet
	OutletIDKey ctxKey = "outlet_id"
	// SkipOutletScopeKey is the context key for skipping outlet scope (admins)
	SkipOutletScopeKey ctxKey = "skip_outlet_scope"
)

// OutletScope returns a GORM scope that filters by the caller's outlet.
// If SkipOutletScopeKey is set (admins) all rows are returned.
func OutletScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return OutletScopeOn(ctx, "outlet_id")
}

// OutletScopeOn is OutletScope for a qualified column, e.g. "bills.outlet_id"
func OutletScopeOn(ctx context.Context, column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if skip, ok := ctx.Value(SkipOutletScopeKey).(bool); ok && skip {
			return db
		}

		outletID, ok := ctx.Value(OutletIDKey).(uuid.UUID)
		if !ok {
			// No outlet bound to the caller: return nothing
			return db.Where("1 = 0")
		}
		return db.Where(column+" = ?", outletID)
	}
}

// WithSkipOutletScope adds skip outlet scope flag to context
func WithSkipOutletScope(ctx context.Context, skip bool) context.Context {
	return context.WithValue(ctx, SkipOutletScopeKey, skip)
}

// WithOutlet adds outlet ID to context
func WithOutlet(ctx context.Context, outletID uuid.UUID) context.Context {
	return context.WithValue(ctx, OutletIDKey, outletID)
}

// GetOutletID extracts outlet ID from context
func GetOutletID(ctx context.Context) (uuid.UUID, bool) {
	outletID, ok := ctx.Value(OutletIDKey).(uuid.UUID)
	return outletID, ok
}

// CanAccessOutlet reports whether the caller may act on rows of outletID
func CanAccessOutlet(ctx context.Context, outletID uuid.UUID) bool {
	if skip, ok := ctx.Value(SkipOutletScopeKey).(bool); ok && skip {
		return true
	}
	bound, ok := GetOutletID(ctx)
	return ok && bound == outletID
}

// SkipsOutletScope reports whether the caller sees every outlet
func SkipsOutletScope(ctx context.Context) bool {
	skip, ok := ctx.Value(SkipOutletScopeKey).(bool)
	return ok && skip
}
