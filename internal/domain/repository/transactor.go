package repository

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned when an optimistic version check fails
var ErrVersionConflict = errors.New("version conflict")

// Transactor runs fn inside one database transaction. Repositories called with
// the ctx passed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
