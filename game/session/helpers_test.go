package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/keyquest/game/engine"
)

var errFetch = errors.New("level server unavailable")

func scenarioLevel() *engine.LevelDefinition {
	return &engine.LevelDefinition{
		ID: "1",
		Cells: [][]string{
			{"wall", "floor", "floor"},
			{"floor", "player", "key1"},
			{"door1", "floor", "exit"},
		},
	}
}

// stubLevels serves fixed definitions. A level listed in gates blocks until
// its channel is closed.
type stubLevels struct {
	mu      sync.Mutex
	levels  map[string]*engine.LevelDefinition
	gates   map[string]chan struct{}
	started chan string
	calls   int
}

func newStubLevels() *stubLevels {
	return &stubLevels{
		levels: map[string]*engine.LevelDefinition{
			"1": scenarioLevel(),
			"npc": {
				ID:      "npc",
				Cells:   [][]string{{"player", "floor", "npc"}, {"floor", "floor", "exit"}},
				NPCText: "Hello, traveller",
			},
			"wall": {
				ID:    "wall",
				Cells: [][]string{{"player", "wall"}, {"floor", "exit"}},
			},
			"corridor": {
				ID:    "corridor",
				Cells: [][]string{{"player", "floor", "exit", "floor"}},
			},
			"unthemed": {
				ID:    "unthemed",
				Cells: [][]string{{"floor", "exit"}},
			},
			"ragged": {
				ID:    "ragged",
				Cells: [][]string{{"player", "exit"}, {"floor"}},
			},
		},
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 10),
	}
}

func (s *stubLevels) FetchLevel(ctx context.Context, id string) (*engine.LevelDefinition, error) {
	s.mu.Lock()
	s.calls++
	gate := s.gates[id]
	def, ok := s.levels[id]
	s.mu.Unlock()

	select {
	case s.started <- id:
	default:
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, errFetch
	}
	cp := *def
	return &cp, nil
}

type stubSkins struct {
	mu   sync.Mutex
	skin string
	err  error
}

func (s *stubSkins) Skin(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skin, s.err
}

func (s *stubSkins) set(skin string) {
	s.mu.Lock()
	s.skin = skin
	s.mu.Unlock()
}

// manualScheduler records jobs; tests fire them explicitly
type manualScheduler struct {
	mu   sync.Mutex
	jobs []*manualJob
}

type manualJob struct {
	fn      func()
	stopped bool
}

func (s *manualScheduler) Every(interval time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := &manualJob{fn: fn}
	s.jobs = append(s.jobs, job)
	return func() {
		s.mu.Lock()
		job.stopped = true
		s.mu.Unlock()
	}
}

// Fire runs every active job once
func (s *manualScheduler) Fire() {
	s.mu.Lock()
	var active []func()
	for _, job := range s.jobs {
		if !job.stopped {
			active = append(active, job.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range active {
		fn()
	}
}

// FireStale runs every job, including stopped ones, to mimic a tick that
// was already in flight when the timer stopped
func (s *manualScheduler) FireStale() {
	s.mu.Lock()
	jobs := append([]*manualJob(nil), s.jobs...)
	s.mu.Unlock()

	for _, job := range jobs {
		job.fn()
	}
}

func (s *manualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, job := range s.jobs {
		if !job.stopped {
			n++
		}
	}
	return n
}

func newTestController(levels *stubLevels, skins *stubSkins, sched *manualScheduler) *Controller {
	opts := Options{UserID: "alice", Scheduler: sched}
	if skins != nil {
		opts.Skins = skins
	}
	return NewController("1", levels, opts)
}

func drainStarted(levels *stubLevels) {
	for {
		select {
		case <-levels.started:
		default:
			return
		}
	}
}
