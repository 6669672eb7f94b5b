package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/wordbattle/internal/api"
	"github.com/mcoot/wordbattle/internal/config"
	"github.com/mcoot/wordbattle/internal/dependencies/clock"
	"github.com/mcoot/wordbattle/internal/dependencies/random"
	"github.com/mcoot/wordbattle/internal/model"
	"github.com/mcoot/wordbattle/internal/services/dictionary"
	"github.com/mcoot/wordbattle/internal/services/game"
	"github.com/mcoot/wordbattle/internal/services/room"
	"github.com/mcoot/wordbattle/internal/storage"
	"github.com/mcoot/wordbattle/internal/storage/memory"
	redisstorage "github.com/mcoot/wordbattle/internal/storage/redis"
	"github.com/mcoot/wordbattle/internal/web/ws"
)

// Dictionary storage type constants
const (
	StorageTypeMemory = config.DictionaryStorageMemory
	StorageTypeRedis  = config.DictionaryStorageRedis
)

// Room lifetime defaults
const (
	DefaultRoomMaxAge    = time.Hour
	DefaultSweepInterval = 5 * time.Minute
)

// App contains all wired application components
type App struct {
	// Storage
	Storage           *memory.Storage
	DictionaryStorage storage.DictionaryStorage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	DictionaryService *dictionary.Service
	Engine            *game.Engine
	RoomController    *room.Controller
	Sweeper           *room.Sweeper

	// Realtime delivery
	HubManager  *ws.HubManager
	Broadcaster *ws.Broadcaster
	Gateway     *ws.Gateway

	logger         *slog.Logger
	dictionaryPath string
	redisStore     *redisstorage.Storage
}

// Config holds configuration for the application factory
type Config struct {
	// DictionaryPath is the path to the dictionary file (optional)
	// If empty, LoadDictionary falls back to the cached or built-in list
	DictionaryPath string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects where the word list is cached ("memory" or "redis")
	// If empty, defaults to "memory". Rooms always live in memory.
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// RoomMaxAge is how long after creation a room is swept
	RoomMaxAge time.Duration
	// SweepInterval is how often the sweeper runs
	SweepInterval time.Duration
	// AllowedOrigins restricts websocket upgrades; empty allows any origin
	AllowedOrigins []string
}

// ConfigFrom builds a factory config from the environment config
func ConfigFrom(cfg config.Config, logger *slog.Logger) Config {
	fc := Config{
		DictionaryPath: cfg.DictionaryPath,
		Logger:         logger,
		StorageType:    cfg.DictionaryStorage,
		RoomMaxAge:     cfg.RoomMaxAge,
		SweepInterval:  cfg.RoomSweepInterval,
		AllowedOrigins: cfg.WSAllowedOrigins,
	}
	if cfg.DictionaryStorage == config.DictionaryStorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		fc.RedisConfig = &redisCfg
	}
	return fc
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store := memory.New()

	// Pick where the word list is cached
	var dictStore storage.DictionaryStorage
	var redisStore *redisstorage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		dictStore = store
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		rs, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		dictStore = rs
		redisStore = rs
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	app := newWithDependencies(store, dictStore, clk, rnd, cfg, logger)
	app.redisStore = redisStore
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store *memory.Storage,
	dictStore storage.DictionaryStorage,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *App {
	maxAge := cfg.RoomMaxAge
	if maxAge <= 0 {
		maxAge = DefaultRoomMaxAge
	}
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	// Create services
	dictService := dictionary.New(dictStore, rnd, logger)
	engine := game.NewEngine(dictService, clk, logger)
	hubManager := ws.NewHubManager(logger)
	broadcaster := ws.NewBroadcaster(hubManager, logger)
	roomController := room.NewController(store, engine, clk, rnd, broadcaster, logger)
	sweeper := room.NewSweeper(roomController, clk, interval, maxAge, logger)
	gateway := ws.NewGateway(roomController, hubManager, ws.GatewayConfig{
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger)

	return &App{
		Storage:           store,
		DictionaryStorage: dictStore,
		Clock:             clk,
		Random:            rnd,
		DictionaryService: dictService,
		Engine:            engine,
		RoomController:    roomController,
		Sweeper:           sweeper,
		HubManager:        hubManager,
		Broadcaster:       broadcaster,
		Gateway:           gateway,
		logger:            logger,
		dictionaryPath:    cfg.DictionaryPath,
	}
}

// Handler returns the HTTP handler serving the API and the websocket gateway
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:         a.logger,
		RoomController: a.RoomController,
		Dictionary:     a.DictionaryService,
		Gateway:        a.Gateway,
	})
}

// LoadDictionary loads the word list. A configured file wins; otherwise a
// list already cached in storage is reused, then the built-in list.
func (a *App) LoadDictionary(ctx context.Context) error {
	if a.dictionaryPath != "" {
		return a.DictionaryService.LoadFromFile(ctx, a.dictionaryPath)
	}

	err := a.DictionaryService.LoadFromStorage(ctx)
	if err == nil && a.DictionaryService.IsLoaded() {
		return nil
	}
	if err != nil && !errors.Is(err, model.ErrDictionaryNotLoaded) {
		return err
	}
	return a.DictionaryService.LoadDefault(ctx)
}

// Close stops background work and releases connections
func (a *App) Close() error {
	a.Sweeper.Stop()
	a.HubManager.CloseAll()
	if a.redisStore != nil {
		return a.redisStore.Close()
	}
	return nil
}
