package bootstrap

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Sam231221/dkn-governance/internal/config"
	"github.com/Sam231221/dkn-governance/internal/database"
	"github.com/Sam231221/dkn-governance/internal/logger"
)

// DatabaseComponents holds the connection pool and repositories.
type DatabaseComponents struct {
	DB          *sqlx.DB
	ItemsRepo   *database.ItemsRepository
	RulesRepo   *database.ComplianceRulesRepository
	HistoryRepo *database.ReviewHistoryRepository
}

// SetupDatabase connects to PostgreSQL and builds the repositories.
func SetupDatabase(cfg *config.Config, log logger.Logger) (*DatabaseComponents, error) {
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	log.Info("database connected",
		logger.String("host", cfg.Database.Host),
		logger.String("database", cfg.Database.Database),
	)

	return &DatabaseComponents{
		DB:          db,
		ItemsRepo:   database.NewItemsRepository(db),
		RulesRepo:   database.NewComplianceRulesRepository(db),
		HistoryRepo: database.NewReviewHistoryRepository(db),
	}, nil
}
