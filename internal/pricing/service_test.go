package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestGetEffectivePriceUsesCategoryDiscount(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	item := dbtest.CreateItem(t, conn, dbtest.ItemOptions{BasePrice: "100", CategoryPercent: "20"})

	quote, err := svc.GetEffectivePrice(context.Background(), item.Catalog.ID)
	require.NoError(t, err)
	assert.Equal(t, "80.00", quote.Price.StringFixed(2))
	assert.Equal(t, 20, quote.DiscountPercent)

	again, err := svc.GetEffectivePrice(context.Background(), item.Catalog.ID)
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(again.Price))
}

func TestGetEffectivePriceDirectOverridesCategory(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	item := dbtest.CreateItem(t, conn, dbtest.ItemOptions{BasePrice: "50", DiscountPercent: "10", CategoryPercent: "40"})

	quote, err := svc.GetEffectivePrice(context.Background(), item.Catalog.ID)
	require.NoError(t, err)
	assert.Equal(t, "45.00", quote.Price.StringFixed(2))
	assert.Equal(t, 10, quote.DiscountPercent)
}

func TestGetEffectivePriceUsesFirstCategoryDiscount(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	item := dbtest.CreateItem(t, conn, dbtest.ItemOptions{BasePrice: "100", CategoryPercent: "20"})
	later := models.CategoryDiscount{
		CategoryID: item.Category.ID,
		Percent:    decimal.NewFromInt(50),
		CreatedAt:  time.Now().Add(time.Hour),
	}
	require.NoError(t, conn.Create(&later).Error)

	quote, err := svc.GetEffectivePrice(context.Background(), item.Catalog.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, quote.DiscountPercent)
}

func TestGetEffectivePriceNotFound(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	_, err = svc.GetEffectivePrice(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestResolveInsideTransaction(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	a := dbtest.CreateItem(t, conn, dbtest.ItemOptions{BasePrice: "100", CategoryPercent: "20"})
	b := dbtest.CreateItem(t, conn, dbtest.ItemOptions{BasePrice: "50", DiscountPercent: "10"})

	tx := conn.Begin()
	defer tx.Rollback()

	quotes, err := svc.Resolve(context.Background(), tx, []uuid.UUID{a.Catalog.ID, b.Catalog.ID, a.Catalog.ID})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "80.00", quotes[a.Catalog.ID].Price.StringFixed(2))
	assert.Equal(t, "45.00", quotes[b.Catalog.ID].Price.StringFixed(2))

	_, err = svc.Resolve(context.Background(), tx, []uuid.UUID{uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
