package models

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestAllMigratesAndAssignsIDs(t *testing.T) {
	dsn := "file:models_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	user := User{Email: "ana@example.com", PasswordHash: "x", FirstName: "Ana", LastName: "Paz"}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatalf("expected id to be assigned")
	}
	if user.Role != "customer" {
		t.Fatalf("expected default role customer, got %q", user.Role)
	}

	preset := uuid.New()
	category := Category{ID: preset, Name: "Remeras"}
	if err := conn.Create(&category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	if category.ID != preset {
		t.Fatalf("expected preset id to be kept")
	}
}

func TestVariantStockCheckConstraint(t *testing.T) {
	dsn := "file:models_check_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&Variant{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	variant := Variant{CatalogItemID: uuid.New(), AttributeName: "talle", AttributeValue: "M", Stock: 1}
	if err := conn.Create(&variant).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	err = conn.Model(&Variant{}).Where("id = ?", variant.ID).Update("stock", -1).Error
	if err == nil {
		t.Fatalf("expected check constraint to reject negative stock")
	}
}
