package migrate

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

func TestAutoMigrateModelsSeedsIdempotently(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:autorun_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := AutoMigrateModels(context.Background(), conn); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	var statuses []models.OrderStatus
	if err := conn.Order("sort_order ASC").Find(&statuses).Error; err != nil {
		t.Fatalf("load statuses: %v", err)
	}
	if len(statuses) != len(enums.SeededOrderStatuses) {
		t.Fatalf("expected %d statuses, got %d", len(enums.SeededOrderStatuses), len(statuses))
	}
	if statuses[0].Name != enums.OrderStatusPending {
		t.Fatalf("expected first status %q, got %q", enums.OrderStatusPending, statuses[0].Name)
	}

	var settings []models.StoreSetting
	if err := conn.Find(&settings).Error; err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if len(settings) != 1 || settings[0].LoyaltyActive {
		t.Fatalf("expected one inactive settings row, got %+v", settings)
	}
}
