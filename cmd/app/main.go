package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-loyalty-bot/internal/application"
	"telegram-loyalty-bot/internal/config"
	"telegram-loyalty-bot/internal/domain/model"
	pg "telegram-loyalty-bot/internal/infra/db/postgres"
	"telegram-loyalty-bot/internal/infra/logging"
	"telegram-loyalty-bot/internal/infra/qr"
	red "telegram-loyalty-bot/internal/infra/redis"
	"telegram-loyalty-bot/internal/infra/scheduler"
	tele "telegram-loyalty-bot/internal/infra/telegram"
	"telegram-loyalty-bot/internal/infra/web"
	"telegram-loyalty-bot/internal/infra/worker"
	"telegram-loyalty-bot/internal/session"
	"telegram-loyalty-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	txManager := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	baristaRepo := pg.NewPostgresBaristaRepo(pool)
	promoRepo := pg.NewPostgresPromotionRepo(pool)
	maintRepo := pg.NewPostgresMaintenanceRepo(cfg.Database.URL, cfg.Backup.Dir)

	// ---- Workers ----
	workerPool := worker.NewPool(cfg.Bot.Workers, logger)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	// ---- Telegram ----
	bot, err := tele.NewBot(cfg.Bot.Token, cfg.Bot.Workers, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}

	// ---- Use cases ----
	admins := model.NewAdminSet(cfg.Bot.AdminIDs)
	userUC := usecase.NewUserUseCase(userRepo, txManager, logger)
	roleUC := usecase.NewRoleUseCase(admins, baristaRepo, logger)
	loyaltyUC := usecase.NewLoyaltyUseCase(userRepo, promoRepo, txManager, locker, logger)
	promoUC := usecase.NewPromotionUseCase(promoRepo, logger)
	baristaUC := usecase.NewBaristaUseCase(baristaRepo, logger)
	broadcastUC := usecase.NewBroadcastUseCase(userRepo, bot, workerPool, logger)
	backupUC := usecase.NewBackupUseCase(maintRepo, bot, cfg.Bot.AdminIDs, cfg.Backup.Keep, logger)

	// ---- Conversation engine ----
	engine := application.NewEngine(application.Deps{
		Bot:           bot,
		QR:            qr.NewCodec(cfg.Loyalty.QRNamespace, 0),
		Users:         userUC,
		Roles:         roleUC,
		Loyalty:       loyaltyUC,
		Promos:        promoUC,
		Baristas:      baristaUC,
		Broadcast:     broadcastUC,
		Backup:        backupUC,
		Sessions:      session.NewStore(),
		Pool:          workerPool,
		Limiter:       rateLimiter,
		RewardSticker: cfg.Loyalty.RewardSticker,
		Logger:        logger,
	})
	bot.AttachEngine(engine)

	go func() {
		if err := bot.StartPolling(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("polling stopped")
		}
	}()

	// ---- Daily backup ----
	sched := scheduler.NewScheduler(cfg.Backup.At, logger, scheduler.Job{
		Name: "database-backup",
		Run: func(ctx context.Context) error {
			_, err := backupUC.Run(ctx)
			return err
		},
	})
	sched.Start(ctx)
	defer sched.Stop()

	// ---- Ops HTTP server ----
	ops := web.NewServer(cfg.Ops.Port, logger)
	ops.Start()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	bot.StopPolling()
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := ops.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("ops server shutdown")
	}
}
