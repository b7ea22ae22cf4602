package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/keyquest/game/engine"
)

// DefaultTickInterval is the timer resolution of the elapsed-time counter
const DefaultTickInterval = time.Second

// LevelSource supplies level definitions by id
type LevelSource interface {
	FetchLevel(ctx context.Context, id string) (*engine.LevelDefinition, error)
}

// SkinSource supplies the player's configured skin
type SkinSource interface {
	Skin(ctx context.Context, userID string) (string, error)
}

// Options configures a Controller
type Options struct {
	UserID       string
	Skins        SkinSource
	Scheduler    Scheduler
	TickInterval time.Duration
}

// Controller owns one level session. Inputs, ticks and loads are serialized
// by a mutex; the timer is only started and stopped here.
type Controller struct {
	levels    LevelSource
	skins     SkinSource
	userID    string
	scheduler Scheduler
	interval  time.Duration

	mu        sync.Mutex
	state     State
	stopTimer func()
	timerID   uint64
	listeners map[int]func(Snapshot)
	nextID    int
	logger    *log.Entry
}

// NewController creates a controller in the loading phase for levelID.
// Call Load to fetch the level.
func NewController(levelID string, levels LevelSource, opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}

	return &Controller{
		levels:    levels,
		skins:     opts.Skins,
		userID:    opts.UserID,
		scheduler: opts.Scheduler,
		interval:  opts.TickInterval,
		state:     Loading(levelID, 0, ""),
		listeners: make(map[int]func(Snapshot)),
		logger:    log.WithFields(log.Fields{"level": levelID, "user": opts.UserID}),
	}
}

// Load fetches levelID and installs it with the user's current skin. Any
// previous play-through is discarded and the session waits in the loading
// phase until the fetch returns. A failed fetch leaves it there.
func (c *Controller) Load(ctx context.Context, levelID string) error {
	c.mu.Lock()
	if c.state.Phase == PhaseClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.haltTimer()
	generation := c.state.Generation + 1
	c.state = Loading(levelID, generation, c.state.Skin)
	snap := c.state.Snapshot()
	listeners := c.listenersLocked()
	c.mu.Unlock()
	notify(listeners, snap)

	skin := c.resolveSkin(ctx)

	def, err := c.levels.FetchLevel(ctx, levelID)
	if err != nil {
		c.logger.WithError(err).WithField("level", levelID).Warn("Level fetch failed")
		return fmt.Errorf("fetch level %s: %w", levelID, err)
	}

	c.mu.Lock()
	next, err := Install(c.state, generation, def, skin)
	if err != nil {
		c.mu.Unlock()
		if errors.Is(err, ErrStaleLoad) {
			c.logger.WithField("generation", generation).Debug("Discarding stale level load")
		}
		return err
	}
	c.state = next
	snap = c.state.Snapshot()
	listeners = c.listenersLocked()
	c.mu.Unlock()

	c.logger.WithFields(log.Fields{"level": levelID, "skin": skin}).Info("Level loaded")
	notify(listeners, snap)
	return nil
}

// Restart reloads the current level with the user's current skin
func (c *Controller) Restart(ctx context.Context) error {
	return c.Load(ctx, c.LevelID())
}

// HandleInput applies one directional input
func (c *Controller) HandleInput(d engine.Direction) Outcome {
	out, _ := c.Apply(d)
	return out
}

// Apply applies one directional input and returns the view of the state it
// produced, taken before any other input can run
func (c *Controller) Apply(d engine.Direction) (Outcome, Snapshot) {
	c.mu.Lock()
	next, out := Step(c.state, d)
	c.state = next

	if out.TimerStarted {
		c.startTimer()
	}
	if out.TimerStopped {
		c.haltTimer()
	}

	snap := c.state.Snapshot()
	var listeners []func(Snapshot)
	if !out.Ignored {
		listeners = c.listenersLocked()
	}
	c.mu.Unlock()

	if out.Won {
		c.logger.WithFields(log.Fields{"moves": snap.Moves, "elapsed": snap.ElapsedSeconds}).Info("Level complete")
	}
	notify(listeners, snap)
	return out, snap
}

// Close stops the timer and drops all listeners. Later inputs and loads are
// ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == PhaseClosed {
		return
	}
	c.haltTimer()
	c.state.Phase = PhaseClosed
	c.state.Generation++
	c.listeners = make(map[int]func(Snapshot))
}

// Snapshot returns the current display view
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

// LevelID returns the id of the current level
func (c *Controller) LevelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.LevelID
}

// UserID returns the user the controller resolves skins for
func (c *Controller) UserID() string {
	return c.userID
}

// Subscribe registers fn to receive a snapshot after every input-triggered
// change, load and tick. The returned func removes it.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// startTimer begins ticking. Caller holds c.mu.
func (c *Controller) startTimer() {
	c.haltTimer()
	c.timerID++
	id := c.timerID
	c.stopTimer = c.scheduler.Every(c.interval, func() { c.tick(id) })
}

// haltTimer cancels the periodic tick. Caller holds c.mu.
func (c *Controller) haltTimer() {
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
}

func (c *Controller) tick(id uint64) {
	c.mu.Lock()
	if id != c.timerID || c.stopTimer == nil || c.state.Phase != PhaseTimerRunning {
		c.mu.Unlock()
		return
	}
	c.state = Tick(c.state)
	snap := c.state.Snapshot()
	listeners := c.listenersLocked()
	c.mu.Unlock()

	notify(listeners, snap)
}

func (c *Controller) resolveSkin(ctx context.Context) string {
	if c.skins == nil || c.userID == "" {
		return engine.DefaultSkin
	}
	skin, err := c.skins.Skin(ctx, c.userID)
	if err != nil {
		c.logger.WithError(err).Warn("Profile lookup failed, using default skin")
		return engine.DefaultSkin
	}
	return skin
}

func (c *Controller) listenersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(Snapshot), snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}
