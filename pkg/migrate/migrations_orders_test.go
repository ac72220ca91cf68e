package migrate_test

import (
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

func TestOrdersMigrationSeedsStatusesAndCascades(t *testing.T) {
	content := readMigration(t, "create_orders")

	for _, status := range enums.SeededOrderStatuses {
		if !strings.Contains(content, "('"+status+"',") {
			t.Errorf("missing seeded status %q", status)
		}
	}

	checks := []string{
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"quantity integer NOT NULL CHECK (quantity > 0)",
		"points_earned integer CHECK (points_earned >= 0)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCartMigrationEnforcesUniqueLine(t *testing.T) {
	content := readMigration(t, "create_carts")
	if !strings.Contains(content, "CONSTRAINT ux_cart_lines_cart_variant UNIQUE (cart_id, variant_id)") {
		t.Fatalf("expected unique (cart_id, variant_id) constraint")
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}
