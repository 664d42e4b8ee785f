package app

import (
	"context"
	"fmt"
	"log"

	"kontak/internal/config"
	"kontak/internal/database"
	"kontak/internal/repositories"
)

// OpenStore opens the repository selected by cfg.StoreDriver. SQL stores are
// migrated before use.
func OpenStore(ctx context.Context, cfg *config.Config) (repositories.SubmissionRepository, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Println("Running in demo mode: submissions are kept in memory only.")
		return repositories.NewMemorySubmissionRepository(), nil

	case config.StoreSQLite, config.StorePostgres:
		db, err := database.OpenGORM(cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		migrateCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		if err := database.Migrate(migrateCtx, db, cfg.StoreDriver); err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
		return repositories.NewGORMSubmissionRepository(db, cfg.StoreTimeout), nil

	case config.StoreMongo:
		client, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.StoreTimeout)
		if err != nil {
			return nil, err
		}
		repo, err := repositories.NewMongoSubmissionRepository(ctx, client, cfg.MongoDatabase, cfg.MongoCollection, cfg.StoreTimeout)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return repo, nil

	case config.StoreBadger:
		db, err := database.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		repo, err := repositories.NewBadgerSubmissionRepository(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return repo, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
