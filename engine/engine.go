package engine

import (
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/Konlor08/PigOnTime/board"
	"github.com/Konlor08/PigOnTime/config"
	"github.com/Konlor08/PigOnTime/livepos"
	"github.com/Konlor08/PigOnTime/store"
	"github.com/Konlor08/PigOnTime/tracking"
	"github.com/Konlor08/PigOnTime/trip"
)

// Engine centralizes business logic and orchestrates subsystems.
type Engine struct {
	cfg        *config.Config
	configPath string
	db         *store.DB

	live    *livepos.Manager
	tripMgr *trip.Manager
	tracker *tracking.Coordinator
	boardRd *board.Board

	Events *EventBus
}

// Config holds the parameters needed to create an Engine.
type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	DB         *store.DB
	Redis      *redis.Client
}

// New creates a new Engine. Call Start() to wire subsystems.
func New(c Config) *Engine {
	var cache *livepos.RedisStore
	if c.Redis != nil {
		cache = livepos.NewRedisStore(c.Redis)
	} else {
		log.Println("engine: running without position cache")
	}
	return &Engine{
		cfg:        c.AppConfig,
		configPath: c.ConfigPath,
		db:         c.DB,
		live:       livepos.NewManager(c.DB, cache),
		Events:     NewEventBus(),
	}
}

// Start creates all managers and wires event handlers.
func (e *Engine) Start() {
	tr := e.cfg.Tracking

	e.tripMgr = trip.NewManager(e.db, &tripEmitter{bus: e.Events},
		e.cfg.Messaging.StationID, e.cfg.Messaging.TripsTopic, tr.LookaheadDays)
	e.tracker = tracking.NewCoordinator(e.db, e.live, &trackingEmitter{bus: e.Events},
		tr.MinMoveMeters)
	e.boardRd = board.New(e.db, e.live, tr.LookaheadDays, tr.SlowSpeedKmh, tr.FallbackSpeedKmh)

	e.wireEventHandlers()

	log.Printf("engine: started station=%s lookahead=%dd min_move=%.0fm",
		e.cfg.Messaging.StationID, tr.LookaheadDays, tr.MinMoveMeters)
}

// Stop flushes in-flight position writes.
func (e *Engine) Stop() {
	if e.tracker != nil {
		e.tracker.Flush()
	}
	log.Println("engine: stopped")
}

// DB returns the database handle.
func (e *Engine) DB() *store.DB { return e.db }

// AppConfig returns the app config.
func (e *Engine) AppConfig() *config.Config { return e.cfg }

// ConfigPath returns the config file path.
func (e *Engine) ConfigPath() string { return e.configPath }

// Trips returns the trip manager.
func (e *Engine) Trips() *trip.Manager { return e.tripMgr }

// Tracker returns the tracking coordinator.
func (e *Engine) Tracker() *tracking.Coordinator { return e.tracker }

// Board returns the board reader.
func (e *Engine) Board() *board.Board { return e.boardRd }

// Live returns the live position manager.
func (e *Engine) Live() *livepos.Manager { return e.live }
