package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wricardo/keyquest/game/engine"
)

func TestController_Load(t *testing.T) {
	levels := newStubLevels()
	skins := &stubSkins{skin: "player2"}
	ctrl := newTestController(levels, skins, &manualScheduler{})

	if snap := ctrl.Snapshot(); snap.Phase != PhaseLoading {
		t.Fatalf("Expected loading before Load, got %s", snap.Phase)
	}

	if err := ctrl.Load(context.Background(), "1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	snap := ctrl.Snapshot()
	if snap.Phase != PhaseIdle {
		t.Errorf("Expected idle, got %s", snap.Phase)
	}
	if snap.Skin != "player2" {
		t.Errorf("Expected skin player2, got %q", snap.Skin)
	}
	if snap.Grid[1][1] != (engine.Player{Skin: "player2"}) {
		t.Errorf("Expected themed player, got %v", snap.Grid[1][1])
	}
}

func TestController_ProfileFailureUsesDefaultSkin(t *testing.T) {
	skins := &stubSkins{err: errors.New("redis down")}
	ctrl := newTestController(newStubLevels(), skins, &manualScheduler{})

	if err := ctrl.Load(context.Background(), "1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap := ctrl.Snapshot(); snap.Skin != engine.DefaultSkin {
		t.Errorf("Expected default skin, got %q", snap.Skin)
	}
}

func TestController_FetchFailureStaysLoading(t *testing.T) {
	sched := &manualScheduler{}
	ctrl := newTestController(newStubLevels(), nil, sched)

	err := ctrl.Load(context.Background(), "missing")
	if !errors.Is(err, errFetch) {
		t.Fatalf("Expected fetch error, got %v", err)
	}

	out := ctrl.HandleInput(engine.Right)
	if !out.Ignored {
		t.Error("Input while loading should be ignored")
	}
	snap := ctrl.Snapshot()
	if snap.Phase != PhaseLoading || snap.Grid != nil {
		t.Errorf("Expected loading with no grid, got %s", snap.Phase)
	}
	if sched.Active() != 0 {
		t.Error("Timer must not start while loading")
	}
}

func TestController_InvalidLevelStaysLoading(t *testing.T) {
	ctrl := newTestController(newStubLevels(), nil, &manualScheduler{})

	err := ctrl.Load(context.Background(), "ragged")
	if !errors.Is(err, engine.ErrInvalidLevel) {
		t.Fatalf("Expected ErrInvalidLevel, got %v", err)
	}
	if snap := ctrl.Snapshot(); snap.Phase != PhaseLoading {
		t.Errorf("Expected loading, got %s", snap.Phase)
	}
}

func TestController_TimerStartsOnBlockedInput(t *testing.T) {
	sched := &manualScheduler{}
	ctrl := newTestController(newStubLevels(), nil, sched)
	if err := ctrl.Load(context.Background(), "wall"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	out := ctrl.HandleInput(engine.Right)
	if out.Move.Allowed {
		t.Fatal("Wall should block")
	}
	if !out.TimerStarted {
		t.Error("Expected timer start on first input")
	}
	if sched.Active() != 1 {
		t.Fatalf("Expected one running timer, got %d", sched.Active())
	}

	sched.Fire()
	sched.Fire()
	if got := ctrl.Snapshot().ElapsedSeconds; got != 2 {
		t.Errorf("Expected 2 seconds, got %d", got)
	}

	ctrl.HandleInput(engine.Right)
	if sched.Active() != 1 {
		t.Error("Later inputs must not start another timer")
	}
}

func TestController_WinStopsTimer(t *testing.T) {
	sched := &manualScheduler{}
	ctrl := newTestController(newStubLevels(), nil, sched)
	if err := ctrl.Load(context.Background(), "1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var last int
	for _, d := range []engine.Direction{engine.Right, engine.Left, engine.Left, engine.Down} {
		ctrl.HandleInput(d)
		sched.Fire()
		elapsed := ctrl.Snapshot().ElapsedSeconds
		if elapsed < last {
			t.Fatalf("Elapsed time decreased from %d to %d", last, elapsed)
		}
		last = elapsed
	}

	out := ctrl.HandleInput(engine.Right)
	if !out.Won {
		t.Fatalf("Expected win, got %+v", out)
	}
	if sched.Active() != 0 {
		t.Error("Timer should stop on win")
	}

	sched.FireStale()
	snap := ctrl.Snapshot()
	if snap.ElapsedSeconds != 4 {
		t.Errorf("Expected elapsed frozen at 4, got %d", snap.ElapsedSeconds)
	}
	if !snap.Won || snap.TimerRunning {
		t.Errorf("Expected won snapshot, got %+v", snap)
	}

	ctrl.HandleInput(engine.Up)
	if sched.Active() != 0 {
		t.Error("Input after winning must not restart the timer")
	}
}

func TestController_RestartResets(t *testing.T) {
	sched := &manualScheduler{}
	skins := &stubSkins{skin: "player1"}
	ctrl := newTestController(newStubLevels(), skins, sched)
	if err := ctrl.Load(context.Background(), "1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ctrl.HandleInput(engine.Right)
	sched.Fire()
	sched.Fire()
	before := ctrl.Snapshot()
	if len(before.Inventory) != 1 || before.ElapsedSeconds != 2 {
		t.Fatalf("Unexpected state before restart: %+v", before)
	}

	skins.set("player3")
	if err := ctrl.Restart(context.Background()); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}

	after := ctrl.Snapshot()
	if len(after.Inventory) != 0 {
		t.Errorf("Expected empty inventory, got %v", after.Inventory)
	}
	if after.ElapsedSeconds != 0 {
		t.Errorf("Expected elapsed 0, got %d", after.ElapsedSeconds)
	}
	if after.Phase != PhaseIdle || after.Moves != 0 {
		t.Errorf("Expected fresh idle session, got %+v", after)
	}
	if after.Skin != "player3" {
		t.Errorf("Restart should pick up the new skin, got %q", after.Skin)
	}
	if after.LevelID != "1" {
		t.Errorf("Expected level 1, got %q", after.LevelID)
	}
	if sched.Active() != 0 {
		t.Error("Restart should stop the timer")
	}

	sched.FireStale()
	if got := ctrl.Snapshot().ElapsedSeconds; got != 0 {
		t.Errorf("Stale tick changed elapsed time to %d", got)
	}
}

func TestController_StaleLoadDiscarded(t *testing.T) {
	levels := newStubLevels()
	gate := make(chan struct{})
	levels.levels["slow"] = &engine.LevelDefinition{ID: "slow", Cells: [][]string{{"player", "exit"}}}
	levels.gates["slow"] = gate

	ctrl := newTestController(levels, nil, &manualScheduler{})

	errs := make(chan error, 1)
	go func() {
		errs <- ctrl.Load(context.Background(), "slow")
	}()

	select {
	case id := <-levels.started:
		if id != "slow" {
			t.Fatalf("Expected slow fetch first, got %s", id)
		}
	case <-time.After(time.Second):
		t.Fatal("Slow fetch never started")
	}

	if err := ctrl.Load(context.Background(), "1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	close(gate)

	select {
	case err := <-errs:
		if !errors.Is(err, ErrStaleLoad) {
			t.Errorf("Expected ErrStaleLoad, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Slow load never returned")
	}

	snap := ctrl.Snapshot()
	if snap.LevelID != "1" || snap.Phase != PhaseIdle {
		t.Errorf("Stale response overwrote the session: %+v", snap)
	}
}

func TestController_Close(t *testing.T) {
	sched := &manualScheduler{}
	ctrl := newTestController(newStubLevels(), nil, sched)
	if err := ctrl.Load(context.Background(), "1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var notified int32
	ctrl.Subscribe(func(Snapshot) { atomic.AddInt32(&notified, 1) })

	ctrl.HandleInput(engine.Up)
	if sched.Active() != 1 {
		t.Fatal("Expected running timer")
	}

	ctrl.Close()
	if sched.Active() != 0 {
		t.Error("Close should stop the timer")
	}

	before := atomic.LoadInt32(&notified)
	if out := ctrl.HandleInput(engine.Down); !out.Ignored {
		t.Error("Input after close should be ignored")
	}
	sched.FireStale()
	if atomic.LoadInt32(&notified) != before {
		t.Error("Closed controller should not notify listeners")
	}
	if err := ctrl.Load(context.Background(), "1"); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if ctrl.Snapshot().Phase != PhaseClosed {
		t.Error("Expected closed phase")
	}

	ctrl.Close()
}

func TestController_Subscribe(t *testing.T) {
	sched := &manualScheduler{}
	ctrl := newTestController(newStubLevels(), nil, sched)

	var mu sync.Mutex
	var phases []Phase
	unsubscribe := ctrl.Subscribe(func(s Snapshot) {
		mu.Lock()
		phases = append(phases, s.Phase)
		mu.Unlock()
	})

	if err := ctrl.Load(context.Background(), "1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ctrl.HandleInput(engine.Up)
	ctrl.HandleInput(engine.Direction("sideways"))
	sched.Fire()

	mu.Lock()
	got := append([]Phase(nil), phases...)
	mu.Unlock()

	expected := []Phase{PhaseLoading, PhaseIdle, PhaseTimerRunning, PhaseTimerRunning}
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Notification %d: expected %s, got %s", i, expected[i], got[i])
		}
	}

	unsubscribe()
	ctrl.HandleInput(engine.Down)

	mu.Lock()
	defer mu.Unlock()
	if len(phases) != len(expected) {
		t.Error("Unsubscribed listener was still called")
	}
}

func TestController_ConcurrentInput(t *testing.T) {
	sched := &manualScheduler{}
	ctrl := newTestController(newStubLevels(), nil, sched)
	if err := ctrl.Load(context.Background(), "1"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctrl.HandleInput(engine.Directions[i%len(engine.Directions)])
		}(i)
		if i%10 == 0 {
			sched.Fire()
		}
	}
	wg.Wait()

	snap := ctrl.Snapshot()
	players := engine.CountCells(snap.Grid, func(c engine.Cell) bool { return c.Category() == engine.CategoryPlayer })
	if players != 1 {
		t.Errorf("Expected exactly one player marker, got %d", players)
	}
	if sched.Active() > 1 {
		t.Errorf("Expected at most one running timer, got %d", sched.Active())
	}
}

func TestController_ApplySnapshotMatchesOutcome(t *testing.T) {
	ctrl := newTestController(newStubLevels(), nil, &manualScheduler{})
	if err := ctrl.Load(context.Background(), "corridor"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		moves = map[int]bool{}
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(d engine.Direction) {
			defer wg.Done()
			out, snap := ctrl.Apply(d)
			if !out.Move.Allowed {
				return
			}
			if snap.PlayerPos == nil || *snap.PlayerPos != out.Move.To {
				t.Errorf("Snapshot player at %v, move went to %s", snap.PlayerPos, out.Move.To)
			}
			mu.Lock()
			defer mu.Unlock()
			if moves[snap.Moves] {
				t.Errorf("Two inputs reported move count %d", snap.Moves)
			}
			moves[snap.Moves] = true
		}([]engine.Direction{engine.Left, engine.Right}[i%2])
	}
	wg.Wait()

	if got := ctrl.Snapshot().Moves; got != len(moves) {
		t.Errorf("Expected %d moves, got %d", len(moves), got)
	}
}

func TestTickerScheduler(t *testing.T) {
	var count int32
	stop := TickerScheduler{}.Every(5*time.Millisecond, func() { atomic.AddInt32(&count, 1) })

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&count) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("Ticker never fired")
		}
		time.Sleep(time.Millisecond)
	}

	stop()
	stop()
	n := atomic.LoadInt32(&count)
	time.Sleep(30 * time.Millisecond)
	if after := atomic.LoadInt32(&count); after > n+1 {
		t.Errorf("Ticker kept firing after stop: %d -> %d", n, after)
	}
}
