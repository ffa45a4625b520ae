// Package dependency provides dependency injection for the application.
package dependency

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/concilia/backend/config"
	"github.com/concilia/backend/internal/application/usecase/reconciliation"
	"github.com/concilia/backend/internal/application/usecase/statement"
	"github.com/concilia/backend/internal/infra/server/router"
	"github.com/concilia/backend/internal/integration/adapters"
	"github.com/concilia/backend/internal/integration/entrypoint/controller"
	"github.com/concilia/backend/internal/integration/entrypoint/middleware"
	"github.com/concilia/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config *config.Config
	DB     *gorm.DB
	Router *router.Router
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *slog.Logger) *Injector {
	// Create repositories
	bankTxnRepo := persistence.NewBankTransactionRepository(db)
	ledgerRepo := persistence.NewLedgerEntryRepository(db)
	matchRepo := persistence.NewMatchRepository(db)
	statementRepo := persistence.NewStatementRepository(db)
	sessionRepo := persistence.NewSessionRepository(db)
	ruleRepo := persistence.NewRuleRepository(db)
	accountRepo := persistence.NewBankAccountRepository(db)

	// Create adapters/services
	tokenService := adapters.NewTokenService(cfg.JWT.Secret)
	transactionLock := adapters.NewRedisTransactionLock(redisClient, logger)

	// Create reconciliation use cases
	processMatchingUseCase := reconciliation.NewProcessMatchingUseCase(
		bankTxnRepo, ledgerRepo, matchRepo, ruleRepo, sessionRepo, transactionLock, logger,
	)
	listSuggestionsUseCase := reconciliation.NewListSuggestionsUseCase(matchRepo, bankTxnRepo)
	createMatchUseCase := reconciliation.NewCreateMatchUseCase(
		bankTxnRepo, ledgerRepo, matchRepo, transactionLock, logger,
	)
	reviewMatchUseCase := reconciliation.NewReviewMatchUseCase(matchRepo, bankTxnRepo, transactionLock, logger)
	getMatchGroupUseCase := reconciliation.NewGetMatchGroupUseCase(matchRepo)
	unlinkUseCase := reconciliation.NewUnlinkUseCase(matchRepo, transactionLock, logger)
	integrityUseCase := reconciliation.NewIntegrityUseCase(bankTxnRepo)

	// Create statement use cases
	uploadStatementUseCase := statement.NewUploadStatementUseCase(
		statementRepo, accountRepo, processMatchingUseCase, logger,
	)
	listStatementsUseCase := statement.NewListStatementsUseCase(statementRepo)

	// Create controllers
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	})
	statementController := controller.NewStatementController(uploadStatementUseCase, listStatementsUseCase)
	reconciliationController := controller.NewReconciliationController(
		listSuggestionsUseCase,
		createMatchUseCase,
		reviewMatchUseCase,
		getMatchGroupUseCase,
		unlinkUseCase,
		integrityUseCase,
	)

	// Create middleware
	uploadRateLimiter := middleware.NewRateLimiterWithConfig(
		cfg.Reconciliation.UploadRateLimit,
		cfg.Reconciliation.UploadRateWindow,
	)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Create router
	r := router.NewRouter(
		healthController,
		statementController,
		reconciliationController,
		uploadRateLimiter,
		authMiddleware,
	)

	return &Injector{
		Config: cfg,
		DB:     db,
		Router: r,
	}
}
