package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type swatch struct {
	ID    uint
	Color string
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:repo_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&swatch{}))
	return conn
}

func TestDBBindsContext(t *testing.T) {
	conn := openDB(t)
	base := NewBase(conn)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	assert.Equal(t, ctx, base.DB(ctx).Statement.Context)

	//nolint:staticcheck // a nil context returns the raw handle
	assert.Same(t, conn, base.DB(nil))
}

func TestWithTxWritesThroughTransaction(t *testing.T) {
	conn := openDB(t)
	base := NewBase(conn)

	assert.Same(t, conn, base.WithTx(nil).conn)

	err := conn.Transaction(func(tx *gorm.DB) error {
		scoped := base.WithTx(tx)
		require.NoError(t, scoped.DB(context.Background()).Create(&swatch{Color: "navy"}).Error)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var n int64
	require.NoError(t, conn.Model(&swatch{}).Count(&n).Error)
	assert.Zero(t, n, "rolled back write must not be visible")
	assert.Same(t, conn, base.conn, "WithTx must not mutate the receiver")
}
