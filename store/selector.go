package store

import (
	"context"
	"fmt"
	"os"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-redis/redis/v8"
	"github.com/hasibdev/portfeed/model"
	Logger "github.com/hasibdev/portfeed/utils/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Backend identifies which store is authoritative for the session.
type Backend int

const (
	BackendLocal Backend = iota
	BackendRemote
)

func (b Backend) String() string {
	if b == BackendRemote {
		return "remote"
	}
	return "local"
}

// RemoteConfig carries the connection credentials for the shared document
// store. A nil config keeps the session in local-only mode permanently.
type RemoteConfig struct {
	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisHost string
	RedisPort string
	RedisPass string
}

// RemoteConfigFromEnv reads the remote credentials from the environment.
// Returns nil when no DB host is configured, which is the signal to stay
// local-only.
func RemoteConfigFromEnv() *RemoteConfig {
	if os.Getenv("DB_HOST") == "" {
		return nil
	}
	return &RemoteConfig{
		DBHost:    os.Getenv("DB_HOST"),
		DBPort:    os.Getenv("DB_PORT"),
		DBUser:    os.Getenv("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"),
		DBName:    os.Getenv("DB_NAME"),
		RedisHost: os.Getenv("REDIS_HOST"),
		RedisPort: os.Getenv("REDIS_PORT"),
		RedisPass: os.Getenv("REDIS_PASSWD"),
	}
}

// Selection is the backend decision made once at bootstrap and passed into
// every component that reads or writes posts. It never changes for the
// session's lifetime: remote activation happens at most once, at startup, and
// never reverses.
type Selection struct {
	Backend Backend
	Local   *LocalStore

	// Remote is non-nil iff Backend == BackendRemote.
	Remote DocumentStore

	remote *RemoteStore
}

// StartSubscription opens the session's live subscription to remote changes.
// No-op on a local-only session.
func (s *Selection) StartSubscription(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}
	return s.remote.Subscribe(ctx)
}

// Select decides the session's authoritative backend. The remote backend is
// chosen only when a config was supplied AND both the document collection and
// the change channel initialize successfully; any failure logs
// ErrBackendUnavailable and leaves the session on the local backend for good.
func Select(ctx context.Context, cfg *RemoteConfig, local *LocalStore, bus *gochannel.GoChannel) *Selection {
	sel := &Selection{Backend: BackendLocal, Local: local}
	if cfg == nil {
		Logger.Log.Info("no remote store configured, staying local-only")
		return sel
	}

	db, err := openCollection(cfg)
	if err != nil {
		Logger.Log.Warnf("%v: %v, staying local-only", ErrBackendUnavailable, err)
		return sel
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPass,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		Logger.Log.Warnf("%v: change channel unreachable: %v, staying local-only", ErrBackendUnavailable, err)
		return sel
	}

	remote := NewRemoteStore(db, rdb, bus)
	sel.Backend = BackendRemote
	sel.Remote = remote
	sel.remote = remote
	Logger.Log.Info("remote store activated for this session")
	return sel
}

func openCollection(cfg *RemoteConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBPort)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.Post{}); err != nil {
		return nil, err
	}
	return db, nil
}
