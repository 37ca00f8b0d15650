package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vtcland/config"
	"vtcland/cron"
	"vtcland/database"
	reservationRepo "vtcland/database/repository/reservation"
	"vtcland/handlers"
	"vtcland/middleware"
	"vtcland/routes"
	"vtcland/services/dialogue"
	"vtcland/services/maps"
	"vtcland/services/notification"
	"vtcland/services/reservation"
	"vtcland/services/session"
	"vtcland/services/verification"
	"vtcland/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	script, err := config.LoadScript(cfg.ScriptPath)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load dialogue script: %v", err)
	}
	loc := config.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database.InitDB()
	repo, err := reservationRepo.NewMongoReservationRepo(database.Database())
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize reservation repository: %v", err)
	}
	otpCache := utils.GetOTPCacheClient()

	// Notification channels. A channel without configuration stays nil and
	// its notifications fail fast in the worker.
	smsSender := notification.NewSMSSender(cfg.SMSGatewayURL, cfg.SMSAccountSID, cfg.SMSAuthToken, cfg.SMSFrom)
	var (
		push  notification.PushChannel
		sms   notification.SMSChannel
		email notification.EmailChannel
	)
	if err := utils.FirebaseInit(ctx); err != nil {
		logger.Warn("Push notifications disabled", zap.Error(err))
	} else {
		push = notification.NewPushSender(utils.FCMClient, cfg.AdminTopic)
	}
	if cfg.SMSAccountSID != "" {
		sms = smsSender
	} else {
		logger.Warn("SMS gateway is not configured")
	}
	if cfg.SMTPHost != "" {
		email = notification.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	}
	router := notification.NewRouter(push, sms, email, logger)

	queue := asynq.NewClient(utils.QueueRedisOpt())
	defer queue.Close()
	worker := cron.InitNotificationWorker(router, logger)

	var guard verification.Guard = verification.NewRecaptchaGuard(cfg.RecaptchaSecret)
	if cfg.RecaptchaSecret == "" {
		logger.Warn("RECAPTCHA_SECRET is not set; accepting any guard token")
		guard = verification.StaticGuard{}
	}

	mapsClient := maps.NewClient(cfg.GoogleAPIKey, cfg.MapsRegion)
	if cfg.GoogleAPIKey == "" {
		logger.Warn("GOOGLE_API_KEY is not set; direct fares will be unavailable")
	}

	submitter := reservation.NewSubmitter(repo, notification.NewQueueDispatcher(queue), script, reservation.Options{
		AdminPhone:   cfg.AdminPhone,
		AdminEmail:   cfg.AdminEmail,
		SlotCapacity: cfg.SlotCapacity,
		Location:     loc,
	}, logger)

	engine := dialogue.NewEngine(dialogue.Deps{
		Script:    script,
		Location:  loc,
		Routing:   mapsClient,
		Addresses: mapsClient,
		Provider:  verification.NewRedisProvider(otpCache, smsSender, logger),
		Guard:     guard,
		Submitter: submitter,
		Logger:    logger,
		Timeout:   cfg.ProviderTimeout,
	})

	sessions := session.NewManager(engine, cfg.SessionTTL, logger)
	go sessions.Run(ctx, time.Minute)
	utils.StartHealthMonitor(ctx, 60*time.Second, []*redis.Client{otpCache}, database.MongoClient)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(utils.ErrorHandler())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, logger))

	bundle := handlers.NewHandlerBundle(
		handlers.NewChatHandler(sessions, engine, logger),
		handlers.NewHealthHandler(utils.GetHealthStatus, sessions),
	)
	routes.RegisterRoutes(r, bundle, cfg.CORSOrigins)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: r,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	if err := database.Close(shutdownCtx); err != nil {
		logger.Warn("MongoDB disconnect failed", zap.Error(err))
	}
	_ = otpCache.Close()

	logger.Sugar().Info("main: server stopped gracefully")
}
