package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SauravMrzan/dating-app-web-backend/internal/config"
	"github.com/SauravMrzan/dating-app-web-backend/internal/infra/mailer"
	s3infra "github.com/SauravMrzan/dating-app-web-backend/internal/infra/s3"
	"github.com/SauravMrzan/dating-app-web-backend/internal/jobs/cleanup"
	pgrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/postgres"
	redrepo "github.com/SauravMrzan/dating-app-web-backend/internal/repo/redis"
	authsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/auth"
	chatsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/chat"
	discoverysvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/discovery"
	matchessvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/matches"
	mediasvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/media"
	moderationsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/moderation"
	notifsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/notifications"
	ratesvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/rate"
	swipesvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/swipes"
	userssvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/users"
	"github.com/SauravMrzan/dating-app-web-backend/internal/transport/ws"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)

	userRepo := pgrepo.NewUserRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	chatRepo := pgrepo.NewChatRepo(pool)
	reportRepo := pgrepo.NewReportRepo(pool)
	notificationRepo := pgrepo.NewNotificationRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}
	photoStorage := mediasvc.NewPhotoStorage(s3Client, cfg.S3.Bucket)

	var emailSender notifsvc.EmailSender
	if sender, err := mailer.NewSMTPSender(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}); err != nil {
		log.Warn("smtp init failed, match emails disabled", zap.Error(err))
	} else {
		emailSender = sender
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(authsvc.Dependencies{
		JWT:      jwtManager,
		Sessions: sessionRepo,
		Users:    userRepo,
	}, cfg.Auth.RefreshTTL)

	notificationService := notifsvc.NewService(notifsvc.Dependencies{
		Store:  notificationRepo,
		Users:  userRepo,
		Email:  emailSender,
		Logger: log,
	})

	rateLimiter := ratesvc.NewLimiter(
		rateRepo,
		cfg.Limits.SwipesPerMinute,
		cfg.Limits.SwipesPer10Seconds,
	)
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:        pool,
		SwipeStore:  swipeRepo,
		UserStore:   userRepo,
		RateLimiter: rateLimiter,
		Notifier:    notificationService,
		Logger:      log,
	})

	discoveryService := discoverysvc.NewService(userRepo, photoStorage, discoverysvc.Config{
		PageSize: cfg.Discovery.PageSize,
	})
	matchService := matchessvc.NewService(swipeRepo, photoStorage)

	hub := ws.NewHub(log)
	go hub.Run()

	chatService := chatsvc.NewService(chatsvc.Dependencies{
		Matches:     swipeRepo,
		Messages:    chatRepo,
		Broadcaster: hub,
	})

	moderationService := moderationsvc.NewService(moderationsvc.Dependencies{
		Pool:          pool,
		Reports:       reportRepo,
		Matches:       swipeRepo,
		Users:         userRepo,
		Notifications: notificationRepo,
		Logger:        log,
	})

	mediaService := mediasvc.NewService(photoStorage, userRepo)
	userService := userssvc.NewService(userRepo, photoStorage)

	cleanupJob := cleanup.NewNotificationCleanupJob(
		notificationRepo,
		cfg.Jobs.NotificationRetention,
		cfg.Jobs.CleanupInterval,
		log,
	)
	go func() {
		if err := cleanupJob.Start(ctx); err != nil {
			log.Warn("notification cleanup job stopped", zap.Error(err))
		}
	}()

	RegisterRoutes(r, Dependencies{
		AuthService:         authService,
		ChatService:         chatService,
		DiscoveryService:    discoveryService,
		MatchService:        matchService,
		MediaService:        mediaService,
		ModerationService:   moderationService,
		NotificationService: notificationService,
		SwipeService:        swipeService,
		UserService:         userService,
		Hub:                 hub,
		Logger:              log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
