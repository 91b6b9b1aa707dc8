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
	"github.com/joho/godotenv"

	"github.com/yoockh/jobbo/config"
	"github.com/yoockh/jobbo/internal/api/handlers"
	"github.com/yoockh/jobbo/internal/api/middleware"
	"github.com/yoockh/jobbo/internal/api/routes"
	"github.com/yoockh/jobbo/internal/cache"
	"github.com/yoockh/jobbo/internal/live"
	"github.com/yoockh/jobbo/internal/logger"
	"github.com/yoockh/jobbo/internal/providers/identity"
	"github.com/yoockh/jobbo/internal/providers/listings"
	mongorepo "github.com/yoockh/jobbo/internal/repositories/mongo"
	pgrepo "github.com/yoockh/jobbo/internal/repositories/postgres"
	"github.com/yoockh/jobbo/internal/security"
	"github.com/yoockh/jobbo/internal/services"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	cfg, err := config.LoadApp()
	if err != nil {
		log.WithError(err).Fatal("config")
	}

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("MongoDB indexes")
	}
	log.Info("MongoDB connected")

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL init")
	}
	if err := config.MigratePostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL migrate")
	}
	log.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init")
	}
	log.Info("Redis connected")

	hub := live.NewHub(config.RedisClient, log)
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	var mailer services.Mailer = services.LogMailer{Logger: log}
	if cfg.GmailCredentialsFile != "" {
		gsvc, err := services.NewGmailService(context.Background(), cfg.GmailCredentialsFile, cfg.GmailTokenFile)
		if err != nil {
			log.WithError(err).Fatal("Gmail init")
		}
		mailer = services.NewGmailMailer(gsvc, cfg.MailFrom)
		log.Info("Gmail mailer enabled")
	}

	savedSvc := services.NewSavedJobService(mongorepo.NewSavedJobRepo(config.MongoDatabase()), hub)
	profileSvc := services.NewProfileService(pgrepo.NewProfileRepo(config.PostgresDB), hub)
	authSvc := services.NewAuthService(
		pgrepo.NewUserRepo(config.PostgresDB),
		tokens,
		identity.NewGoogleVerifier(cfg.GoogleClientID),
		cache.NewRedisCache(config.RedisClient, "jobbo:"),
		mailer,
		hub,
		services.AuthConfig{ResetTTL: cfg.PasswordResetTTL, ResetLinkURL: cfg.ResetLinkURL},
	)

	provider := listings.NewAdzuna(listings.AdzunaConfig{
		BaseURL: cfg.AdzunaBaseURL,
		Country: cfg.AdzunaCountry,
		AppID:   cfg.AdzunaAppID,
		AppKey:  cfg.AdzunaAppKey,
	}, nil, log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Log:         log,
		Tokens:      tokens,
		Revocations: authSvc,
		Limiter:     middleware.NewRedisLimiter(config.RedisClient),
		CORSOrigins: cfg.CORSOrigins,
		Jobs:        handlers.NewJobsHandler(provider),
		Auth:        handlers.NewAuthHandler(authSvc),
		SavedJob:    handlers.NewSavedJobHandler(savedSvc),
		Profile:     handlers.NewProfileHandler(profileSvc),
		WS:          handlers.NewWSHandler(hub, savedSvc, profileSvc, authSvc, log, nil),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("shutdown")
	}
	_ = config.RedisClient.Close()
	_ = config.MongoClient.Disconnect(ctx)
}
