package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in dev mode and
// the feature flag is enabled. sqlite databases are built from the models instead of goose.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if client.IsSQLite() {
		logg.Info(ctx, "auto-migrating sqlite schema from models")
		if err := AutoMigrateModels(ctx, client.DB()); err != nil {
			return err
		}
		logg.Info(ctx, "sqlite schema ready")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrateModels creates the schema from the GORM models and installs the
// rows the SQL migrations seed.
func AutoMigrateModels(ctx context.Context, conn *gorm.DB) error {
	conn = conn.WithContext(ctx)
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("automigrate models: %w", err)
	}
	return Seed(conn)
}

// Seed inserts the order statuses and the store settings singleton when missing.
func Seed(conn *gorm.DB) error {
	for i, name := range enums.SeededOrderStatuses {
		status := models.OrderStatus{Name: name, SortOrder: i + 1}
		if err := conn.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&status).Error; err != nil {
			return fmt.Errorf("seed order status %q: %w", name, err)
		}
	}
	settings := models.StoreSetting{ID: models.StoreSettingsID}
	if err := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error; err != nil {
		return fmt.Errorf("seed store settings: %w", err)
	}
	return nil
}
