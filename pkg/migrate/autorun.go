package migrate

import (
	"context"
	"fmt"

	"github.com/localmarket-hq/localmarket-backend/pkg/config"
	"github.com/localmarket-hq/localmarket-backend/pkg/db"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations at boot. Guarded twice: the app must
// be in dev mode and LOCALMARKET_AUTO_MIGRATE must be set, so a misconfigured
// production pod can never migrate its own schema.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() {
		return nil
	}
	if !cfg.FeatureFlags.AutoMigrate {
		logg.Info(ctx, "dev auto-migrate disabled, skipping")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "applying migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "migrations up to date")
	return nil
}
