package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/application/service"
	"github.com/sangkips/salon-api/internal/config"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/events"
	"github.com/sangkips/salon-api/internal/infrastructure/database"
	"github.com/sangkips/salon-api/internal/infrastructure/lock"
	"github.com/sangkips/salon-api/internal/infrastructure/memory"
	"github.com/sangkips/salon-api/internal/infrastructure/repository"
	"github.com/sangkips/salon-api/internal/presentation/http/handler"
	"github.com/sangkips/salon-api/internal/presentation/http/routes"
	"github.com/sangkips/salon-api/pkg/logger"
	"github.com/sangkips/salon-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

const idempotencySweepInterval = time.Hour

// stores is the repository set of the selected driver
type stores struct {
	bills       domainRepo.BillRepository
	chairs      domainRepo.ChairRepository
	packages    domainRepo.PackageRepository
	cash        domainRepo.CashRepository
	idempotency domainRepo.IdempotencyRepository
	tx          domainRepo.Transactor
	ping        func() error
	close       func()
}

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	st, err := openStores(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open storage")
	}
	defer st.close()

	if seed := cfg.Billing.SeedBranchID; seed != "" && cfg.Database.Seed {
		branchID, err := uuid.Parse(seed)
		if err != nil {
			log.WithError(err).Warn("Invalid BILLING_SEED_BRANCH_ID, skipping seed")
		} else {
			ctx := repository.WithBranch(sigCtx, branchID)
			if err := database.SeedBranch(ctx, branchID, st.chairs, st.packages, log); err != nil {
				log.WithError(err).Warn("Failed to seed default data")
			}
		}
	}

	// Settlement lock: Redis when configured, otherwise the version check alone arbitrates
	var locker service.Locker = lock.NoopLocker{}
	if cfg.Redis.Enabled {
		rdb, err := database.NewRedisClient(sigCtx, &cfg.Redis)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL, log)
		log.WithField("address", cfg.Redis.Address).Info("Using redis settlement locks")
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiryHours)
	bus := events.NewEventBus()
	location := cfg.Billing.Location()

	// Initialize services
	billingService := service.NewBillingService(st.bills, st.chairs, st.tx, locker, bus, log, service.BillingOptions{
		BillPrefix: cfg.Billing.BillPrefix,
		TaxRateBps: cfg.Billing.TaxRateBps,
		Location:   location,
	})
	chairService := service.NewChairService(st.chairs, st.bills, st.tx, locker, bus, log)
	packageService := service.NewPackageService(st.packages, log)
	cashService := service.NewCashService(st.cash, st.bills, st.tx, bus, log, location, time.Now)

	// Initialize handlers
	handlers := &routes.Handlers{
		Bill:    handler.NewBillHandler(billingService),
		Chair:   handler.NewChairHandler(chairService),
		Package: handler.NewPackageHandler(packageService),
		Cash:    handler.NewCashHandler(cashService),
		Event:   handler.NewEventHandler(bus, log),
	}

	rateLimiter := routes.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: st.idempotency,
		RateLimiter:     rateLimiter,
		Logger:          log,
		Ping:            st.ping,
	})

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepIdempotencyKeys(sweepCtx, st.idempotency, log)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	log.WithFields(logrus.Fields{
		"port":   port,
		"env":    cfg.App.Env,
		"driver": cfg.Database.Driver,
	}).Infof("Starting %s server", cfg.App.Name)

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server stopped unexpectedly")
		}
	}

	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.Info("Server stopped")
}

func openStores(cfg *config.Config, log logrus.FieldLogger) (*stores, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn("Using in-memory storage; data is lost on restart")
		s := memory.NewStore()
		return &stores{
			bills:       memory.NewBillRepository(s),
			chairs:      memory.NewChairRepository(s),
			packages:    memory.NewPackageRepository(s),
			cash:        memory.NewCashRepository(s),
			idempotency: memory.NewIdempotencyRepository(s),
			tx:          memory.NewTransactor(s),
			close:       func() {},
		}, nil
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, log); err != nil {
		return nil, err
	}
	return &stores{
		bills:       repository.NewBillRepository(db),
		chairs:      repository.NewChairRepository(db),
		packages:    repository.NewPackageRepository(db),
		cash:        repository.NewCashRepository(db),
		idempotency: repository.NewIdempotencyRepository(db),
		tx:          repository.NewTransactor(db),
		ping:        func() error { return database.Ping(db) },
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

// sweepIdempotencyKeys deletes expired replay entries until ctx is done
func sweepIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log logrus.FieldLogger) {
	ticker := time.NewTicker(idempotencySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.DeleteExpired(ctx, now)
			if err != nil {
				logger.LogError(log, "main", "sweepIdempotencyKeys", "Error deleting expired keys", nil, err)
				continue
			}
			if n > 0 {
				log.WithField("deleted", n).Debug("Expired idempotency keys removed")
			}
		}
	}
}
