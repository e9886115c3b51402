package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/opspulse-backend/pkg/config"
	"github.com/angelmondragon/opspulse-backend/pkg/db"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
)

// MaybeRun applies the embedded migrations on boot when AUTO_MIGRATE is set.
// The audit table is the only schema, so this is safe outside dev too.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})
	logg.Info(ctx, "migrate.autorun.start")

	if err := Run(ctx, sqlDB, Source{Dialect: client.Dialect()}, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "migrate.autorun.done")
	return nil
}
