package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type stockRow struct {
	ID       int
	SKU      string
	Quantity int
}

func newSQLiteClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(context.Background(), config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:client_" + uuid.NewString() + "?mode=memory&cache=shared",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.DB().AutoMigrate(&stockRow{}))
	return client
}

func countRows(t *testing.T, client *Client) int64 {
	t.Helper()
	var n int64
	require.NoError(t, client.DB().Model(&stockRow{}).Count(&n).Error)
	return n
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	client := newSQLiteClient(t)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&stockRow{SKU: "TSHIRT-M", Quantity: 4}).Error
	}))
	assert.EqualValues(t, 1, countRows(t, client))

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&stockRow{SKU: "TSHIRT-L", Quantity: 1}).Error; err != nil {
			return err
		}
		return errors.New("stock check failed")
	})
	assert.EqualError(t, err, "stock check failed")
	assert.EqualValues(t, 1, countRows(t, client))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	client := newSQLiteClient(t)

	assert.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&stockRow{SKU: "JEANS-32", Quantity: 2})
			panic("boom")
		})
	})
	assert.EqualValues(t, 0, countRows(t, client))
}

func TestNewOpensSQLite(t *testing.T) {
	client := newSQLiteClient(t)

	assert.True(t, client.IsSQLite())
	require.NoError(t, client.Ping(context.Background()))
	require.NoError(t, client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return SetLockTimeout(tx, time.Second)
	}), "lock timeout is a no-op on sqlite")
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, nil)
	assert.Error(t, err)
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, config.DriverSQLite, driverName(config.DBConfig{DSN: "file:dev.db"}))
	assert.Equal(t, config.DriverSQLite, driverName(config.DBConfig{Driver: "SQLITE", DSN: "dev.db"}))
	assert.Equal(t, config.DriverPostgres, driverName(config.DBConfig{DSN: "postgres://localhost/shop"}))
}

func TestSlowQueryWriterLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	w := slowQueryWriter{logg: logger.New(logger.Options{ServiceName: "test", Output: &buf})}
	w.Printf("%s [%.3fms] %s", "orders.go:10", 812.5, "SELECT 1")

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "db.query orders.go:10")
	assert.Equal(t, gormlogger.Discard, queryLogger(nil, time.Second))
}
