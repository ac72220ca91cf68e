package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|seed|create|validate")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate only touch the filesystem.
	switch *cmd {
	case "create":
		if *name == "" {
			exitf("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			exitf("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			exitf("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    *cmd,
		"dir":    *dir,
		"driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	logg.Info(ctx, "migrate ready")

	// sqlite is a local convenience: the schema comes from the models and
	// goose history is not tracked.
	if dbClient.IsSQLite() {
		switch *cmd {
		case "up":
			if err := migrate.AutoMigrateModels(ctx, dbClient.DB()); err != nil {
				exitf("sqlite automigrate failed: %v", err)
			}
		case "seed":
			if err := migrate.Seed(dbClient.DB().WithContext(ctx)); err != nil {
				exitf("seed failed: %v", err)
			}
		default:
			exitf("-cmd=%s is not supported on sqlite", *cmd)
		}
		logg.Info(ctx, "migrate finished")
		return
	}

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	if err := runGoose(ctx, sqlDB, dbClient, *cmd, *dir, *version); err != nil {
		exitf("%v", err)
	}
	logg.Info(ctx, "migrate finished")
}

func runGoose(ctx context.Context, sqlDB *sql.DB, dbClient *db.Client, cmd, dir, version string) error {
	switch cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, dir, cmd); err != nil {
			return fmt.Errorf("goose %s failed: %w", cmd, err)
		}
	case "version":
		if version == "" {
			return fmt.Errorf("missing -version for version command")
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, dir, version); err != nil {
			return fmt.Errorf("goose version migrate failed: %w", err)
		}
	case "seed":
		if err := migrate.Seed(dbClient.DB().WithContext(ctx)); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown -cmd value: %s", cmd)
	}
	return nil
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
