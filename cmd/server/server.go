package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/thereayou/slack-lite/internal/config"
	"github.com/thereayou/slack-lite/internal/database"
	"github.com/thereayou/slack-lite/internal/email"
	"github.com/thereayou/slack-lite/internal/presence"
	"github.com/thereayou/slack-lite/internal/services"
	"github.com/thereayou/slack-lite/internal/session"
	"github.com/thereayou/slack-lite/internal/storage"
	ws "github.com/thereayou/slack-lite/internal/websocket"
	"github.com/thereayou/slack-lite/pkg/auth"
)

type Server struct {
	HTTP     *http.Server
	DB       *database.Database
	Redis    *redis.Client
	Hub      *ws.Hub
	Services *services.Services
}

// NewServer connects every backing store and assembles the HTTP server.
func NewServer(ctx context.Context, cfg config.Config) (*Server, error) {
	db, err := database.Connect(ctx, database.Config{
		DSN:          cfg.DB.DSN,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	slog.InfoContext(ctx, "redis connected")

	objects, err := storage.NewMinioStore(storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
		URLExpiry: cfg.Storage.URLExpiry,
	})
	if err != nil {
		db.Close()
		rdb.Close()
		return nil, err
	}
	if !cfg.Storage.Enabled() {
		slog.WarnContext(ctx, "object storage credentials missing, presigned urls will not be signed")
	} else if err := objects.EnsureBucket(ctx); err != nil {
		slog.WarnContext(ctx, "failed to ensure upload bucket", "error", err, "bucket", cfg.Storage.Bucket)
	}

	mailer := email.NewService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	if !mailer.IsConfigured() {
		slog.WarnContext(ctx, "smtp not configured, workspace invites will fail")
	}

	hub := ws.NewHub()
	go hub.Run()

	svcs := services.New(services.Config{
		DB:                db,
		JWT:               auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL),
		Revoker:           session.NewBlacklist(rdb),
		Presence:          presence.NewStore(rdb),
		Objects:           objects,
		Mailer:            mailer,
		Publisher:         hub,
		AppURL:            cfg.AppURL,
		PresenceWindow:    cfg.Presence.Window,
		HeartbeatInterval: cfg.Presence.HeartbeatInterval,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, svcs, hub, healthChecks{
		"database": db.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})

	return &Server{
		HTTP: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		DB:       db,
		Redis:    rdb,
		Hub:      hub,
		Services: svcs,
	}, nil
}

func (s *Server) Run() error {
	slog.Info("http server starting", "addr", s.HTTP.Addr)
	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, closes open sockets and releases the
// backing stores.
func (s *Server) Shutdown(ctx context.Context) {
	if err := s.HTTP.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "http server shutdown error", "error", err)
	}
	s.Hub.Stop()
	if err := s.Redis.Close(); err != nil {
		slog.ErrorContext(ctx, "redis close error", "error", err)
	}
	if err := s.DB.Close(); err != nil {
		slog.ErrorContext(ctx, "database close error", "error", err)
	}
}
