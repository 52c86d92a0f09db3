package database

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLoggerSkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(log.New(&buf, "", 0), logger.Error)
	query := func() (string, int64) { return "SELECT * FROM bills WHERE id = 1", 0 }

	l.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), query, errors.New("no such table: bills"))
	assert.Contains(t, buf.String(), "no such table: bills")
}

func TestOpenSQLiteMigrates(t *testing.T) {
	db, err := OpenSQLite("file::memory:", false)
	if !assert.NoError(t, err) {
		return
	}
	assert.NoError(t, AutoMigrate(db))
	assert.True(t, db.Migrator().HasTable("bills"))
	assert.True(t, db.Migrator().HasIndex("bills", "idx_bills_active_table"))
}
