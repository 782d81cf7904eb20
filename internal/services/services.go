package services

import (
	"time"

	"github.com/thereayou/slack-lite/internal/database"
	"github.com/thereayou/slack-lite/pkg/auth"
)

type Services struct {
	Auth           AuthService
	Workspaces     WorkspaceService
	Channels       ChannelService
	Messages       MessageService
	DirectMessages DirectMessageService
	Presence       PresenceService
	Uploads        UploadService
	Realtime       RealtimeService
}

type Config struct {
	DB        *database.Database
	JWT       *auth.JWTManager
	Revoker   TokenRevoker
	Presence  PresenceStore
	Objects   ObjectStore
	Mailer    Mailer
	Publisher Publisher
	AppURL    string

	PresenceWindow    time.Duration
	HeartbeatInterval time.Duration
}

func New(cfg Config) *Services {
	return &Services{
		Auth:           NewAuthService(cfg.DB, cfg.JWT, cfg.Revoker),
		Workspaces:     NewWorkspaceService(cfg.DB, cfg.Mailer, cfg.Publisher, cfg.AppURL),
		Channels:       NewChannelService(cfg.DB, cfg.Publisher),
		Messages:       NewMessageService(cfg.DB, cfg.Objects, cfg.Publisher),
		DirectMessages: NewDirectMessageService(cfg.DB, cfg.Publisher),
		Presence:       NewPresenceService(cfg.DB, cfg.Presence, cfg.PresenceWindow, cfg.HeartbeatInterval),
		Uploads:        NewUploadService(cfg.Objects),
		Realtime:       NewRealtimeService(cfg.DB),
	}
}
