package app

import (
	"context"
	"fmt"

	dapr "github.com/dapr/go-sdk/client"

	"newsletter-go/internal/config"
	"newsletter-go/internal/database"
	"newsletter-go/internal/logging"
	"newsletter-go/internal/repository"
)

// OpenRepository establishes the shared persistence handle for the configured
// provider and returns the repository built on it together with a function
// that releases it. SQL providers are migrated when migrate is set. Any error
// here should abort startup.
func OpenRepository(ctx context.Context, settings config.DatabaseSettings, migrate bool, logger *logging.ContextLogger) (repository.SubscriptionRepository, func() error, error) {
	switch settings.Provider {
	case config.ProviderDapr:
		client, err := dapr.NewClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to dapr sidecar: %w", err)
		}
		closeFn := func() error {
			client.Close()
			return nil
		}
		return repository.NewDaprSubscriptionRepository(client, settings.DaprStoreName), closeFn, nil

	default:
		db, err := database.Open(ctx, settings, logger)
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			if err := database.Migrate(ctx, db, settings.Provider, logger); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		return repository.NewBunSubscriptionRepository(db, settings.QueryTimeout), db.Close, nil
	}
}
