// Package dbtest opens throwaway sqlite databases with the storefront schema and
// seeds the rows most tests need.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

// Open returns an isolated in-memory database migrated from the models.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_busy_timeout=5000", name, uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// keep one connection so the shared memory database lives until cleanup
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.AutoMigrateModels(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// ItemOptions describes a catalog item with one variant.
type ItemOptions struct {
	Name            string
	BasePrice       string
	DiscountPercent string
	CategoryPercent string
	PointsPerUnit   int
	Stock           int
	ImagePath       string
}

// Item bundles the rows created by CreateItem.
type Item struct {
	Category *models.Category
	Catalog  models.CatalogItem
	Variant  models.Variant
}

// CreateItem inserts a catalog item, an optional discounted category, and one variant.
func CreateItem(t testing.TB, conn *gorm.DB, opts ItemOptions) Item {
	t.Helper()

	if opts.Name == "" {
		opts.Name = "Item " + uuid.NewString()[:8]
	}
	if opts.BasePrice == "" {
		opts.BasePrice = "100"
	}

	var out Item
	item := models.CatalogItem{
		Name:          opts.Name,
		BasePrice:     decimal.RequireFromString(opts.BasePrice),
		PointsPerUnit: opts.PointsPerUnit,
		IsActive:      true,
	}
	if opts.DiscountPercent != "" {
		pct := decimal.RequireFromString(opts.DiscountPercent)
		item.DiscountPercent = &pct
	}
	if opts.ImagePath != "" {
		path := opts.ImagePath
		item.ImagePath = &path
	}
	if opts.CategoryPercent != "" {
		category := models.Category{Name: "Category " + uuid.NewString()[:8]}
		mustCreate(t, conn, &category)
		mustCreate(t, conn, &models.CategoryDiscount{
			CategoryID: category.ID,
			Percent:    decimal.RequireFromString(opts.CategoryPercent),
		})
		item.CategoryID = &category.ID
		out.Category = &category
	}
	mustCreate(t, conn, &item)

	variant := models.Variant{
		CatalogItemID:  item.ID,
		AttributeName:  "talle",
		AttributeValue: "M",
		Stock:          opts.Stock,
	}
	mustCreate(t, conn, &variant)

	out.Catalog = item
	out.Variant = variant
	return out
}

// CreateUser inserts an active user and, when withProfile is set, its loyalty profile.
func CreateUser(t testing.TB, conn *gorm.DB, role enums.UserRole, withProfile bool) (models.User, *models.LoyaltyProfile) {
	t.Helper()

	user := models.User{
		Email:        fmt.Sprintf("user_%s@example.com", uuid.NewString()[:8]),
		PasswordHash: "hash",
		FirstName:    "Ana",
		LastName:     "Paz",
		Role:         role,
		IsActive:     true,
	}
	mustCreate(t, conn, &user)
	if !withProfile {
		return user, nil
	}

	address := "Calle 1 234"
	profile := models.LoyaltyProfile{
		UserID:     user.ID,
		FullName:   user.FirstName + " " + user.LastName,
		NationalID: uuid.NewString()[:12],
		Address:    &address,
	}
	mustCreate(t, conn, &profile)
	return user, &profile
}

// SetLoyaltyActive flips the singleton loyalty flag.
func SetLoyaltyActive(t testing.TB, conn *gorm.DB, active bool) {
	t.Helper()
	if err := conn.Model(&models.StoreSetting{}).
		Where("id = ?", models.StoreSettingsID).
		Update("loyalty_active", active).Error; err != nil {
		t.Fatalf("update loyalty flag: %v", err)
	}
}

// ReloadVariant reads the current stock and sold counters of a variant.
func ReloadVariant(t testing.TB, conn *gorm.DB, id uuid.UUID) models.Variant {
	t.Helper()
	var variant models.Variant
	if err := conn.First(&variant, "id = ?", id).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	return variant
}

func mustCreate(t testing.TB, conn *gorm.DB, value any) {
	t.Helper()
	if err := conn.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

// TxRunner adapts a bare connection to the WithTx surface services expect.
type TxRunner struct {
	DB *gorm.DB
}

func (r TxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(fn)
}

// CreateOrder inserts an empty order in the pendiente status.
func CreateOrder(t testing.TB, conn *gorm.DB, buyerID *uuid.UUID) models.Order {
	t.Helper()
	var status models.OrderStatus
	if err := conn.Where("name = ?", enums.OrderStatusPending).First(&status).Error; err != nil {
		t.Fatalf("load status: %v", err)
	}
	order := models.Order{
		BuyerUserID: buyerID,
		TotalPrice:  decimal.Zero,
		StatusID:    status.ID,
	}
	if err := conn.Omit("Status", "Lines").Create(&order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}
