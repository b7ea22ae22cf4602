package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/keyquest/game/engine"
	"github.com/wricardo/keyquest/game/levels"
	"github.com/wricardo/keyquest/game/profile"
	"github.com/wricardo/keyquest/game/service"
	"github.com/wricardo/keyquest/game/session"
)

// MockLevelCatalog implements service.LevelCatalog for testing
type MockLevelCatalog struct {
	mu     sync.Mutex
	levels map[string]*engine.LevelDefinition
	fail   bool
	saved  []string
}

func NewMockLevelCatalog() *MockLevelCatalog {
	return &MockLevelCatalog{
		levels: map[string]*engine.LevelDefinition{
			"1": {
				ID:   "1",
				Name: "First Steps",
				Cells: [][]string{
					{"wall", "floor", "floor"},
					{"floor", "player", "key1"},
					{"door1", "floor", "exit"},
				},
			},
			"npc": {
				ID:      "npc",
				Cells:   [][]string{{"player", "floor", "npc"}, {"wall", "wall", "exit"}},
				NPCText: "Hello there",
			},
		},
	}
}

func (m *MockLevelCatalog) LoadLevel(id string) (*engine.LevelDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("disk on fire")
	}
	def, ok := m.levels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", levels.ErrLevelNotFound, id)
	}
	out := *def
	return &out, nil
}

func (m *MockLevelCatalog) ListLevels() ([]*levels.LevelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return []*levels.LevelInfo{
		levels.Describe("1", "1.json", m.levels["1"]),
		levels.Describe("npc", "npc.json", m.levels["npc"]),
	}, nil
}

func (m *MockLevelCatalog) SaveLevel(id string, def *engine.LevelDefinition) error {
	if err := engine.ValidateLevel(def); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[id] = def
	m.saved = append(m.saved, id)
	return nil
}

func (m *MockLevelCatalog) DefaultID() string { return "1" }

func (m *MockLevelCatalog) SetFail(fail bool) {
	m.mu.Lock()
	m.fail = fail
	m.mu.Unlock()
}

// MockBroadcaster records every snapshot it receives
type MockBroadcaster struct {
	mu        sync.Mutex
	snapshots map[string][]session.Snapshot
}

func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{snapshots: make(map[string][]session.Snapshot)}
}

func (b *MockBroadcaster) BroadcastSnapshot(sessionID string, snap session.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshots[sessionID] = append(b.snapshots[sessionID], snap)
}

func (b *MockBroadcaster) Received(sessionID string) []session.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]session.Snapshot(nil), b.snapshots[sessionID]...)
}

// manualScheduler keeps timer callbacks until the test fires them
type manualScheduler struct {
	mu  sync.Mutex
	fns []func()
}

func (s *manualScheduler) Every(interval time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.fns)
	s.fns = append(s.fns, fn)
	return func() {
		s.mu.Lock()
		s.fns[idx] = nil
		s.mu.Unlock()
	}
}

func (s *manualScheduler) Fire() {
	s.mu.Lock()
	fns := append([]func(){}, s.fns...)
	s.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn()
		}
	}
}

type fixture struct {
	svc         service.GameService
	catalog     *MockLevelCatalog
	profiles    *profile.MemoryStore
	broadcaster *MockBroadcaster
	sched       *manualScheduler
}

func newFixture() *fixture {
	f := &fixture{
		catalog:     NewMockLevelCatalog(),
		profiles:    profile.NewMemoryStore(),
		broadcaster: NewMockBroadcaster(),
		sched:       &manualScheduler{},
	}
	f.svc = service.NewGameService(session.NewManager(), f.catalog,
		service.WithProfiles(f.profiles),
		service.WithBroadcaster(f.broadcaster),
		service.WithScheduler(f.sched),
	)
	return f
}

func (f *fixture) create(t *testing.T, levelID string) *service.SessionInfo {
	t.Helper()
	info, err := f.svc.CreateSession(context.Background(), levelID, "alice")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return info
}

func hasEvent(events []service.GameEvent, typ string) bool {
	for _, ev := range events {
		if ev.Type == typ {
			return true
		}
	}
	return false
}

func TestGameService_CreateSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.profiles.SetSkin(ctx, "alice", "player3"); err != nil {
		t.Fatalf("SetSkin failed: %v", err)
	}

	info := f.create(t, "")
	if info.ID == "" {
		t.Error("Session ID should not be empty")
	}
	if info.LevelID != "1" {
		t.Errorf("Expected default level 1, got %q", info.LevelID)
	}
	if info.UserID != "alice" {
		t.Errorf("Expected user alice, got %q", info.UserID)
	}
	if info.State == nil || info.State.Phase != session.PhaseIdle {
		t.Fatalf("Expected idle state, got %+v", info.State)
	}
	if info.State.Skin != "player3" {
		t.Errorf("Expected profile skin player3, got %q", info.State.Skin)
	}
	if info.State.Grid[1][1] != (engine.Player{Skin: "player3"}) {
		t.Errorf("Expected skinned player marker, got %v", info.State.Grid[1][1])
	}
}

func TestGameService_CreateSession_UnknownLevel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CreateSession(ctx, "missing", "alice")
	if !errors.Is(err, levels.ErrLevelNotFound) {
		t.Fatalf("Expected ErrLevelNotFound, got %v", err)
	}

	sessions, _ := f.svc.ListSessions(ctx)
	if len(sessions) != 0 {
		t.Errorf("Failed session should be discarded, found %d", len(sessions))
	}
}

func TestGameService_Input(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info := f.create(t, "1")

	result, err := f.svc.Input(ctx, info.ID, "RIGHT")
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected move to succeed: %s", result.Message)
	}
	if !hasEvent(result.Events, service.EventTimerStarted) {
		t.Error("First input should start the timer")
	}
	if !hasEvent(result.Events, service.EventKeyCollected) {
		t.Error("Expected key_collected event")
	}
	if result.Step == nil || result.Step.PickedUp != "key1" || result.Step.TileChar != "a" {
		t.Errorf("Unexpected step info: %+v", result.Step)
	}
	if len(result.State.Inventory) != 1 || result.State.Inventory[0] != engine.Key1 {
		t.Errorf("Expected [key1], got %v", result.State.Inventory)
	}
	if !result.State.TimerRunning {
		t.Error("Expected timer to be running")
	}

	f.sched.Fire()
	snap, _ := f.svc.GetSnapshot(ctx, info.ID)
	if snap.ElapsedSeconds != 1 {
		t.Errorf("Expected 1 elapsed second, got %d", snap.ElapsedSeconds)
	}
}

func TestGameService_Input_Blocked(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info := f.create(t, "1")

	if _, err := f.svc.Input(ctx, info.ID, "up"); err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	result, err := f.svc.Input(ctx, info.ID, "left")
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}

	if result.Success {
		t.Fatal("Wall should block the move")
	}
	if result.AttemptedTo == nil {
		t.Fatal("Expected attempted_to diagnostics")
	}
	if result.AttemptedTo.Reason != "wall" || result.AttemptedTo.Passable {
		t.Errorf("Unexpected attempt info: %+v", result.AttemptedTo)
	}
	if result.AttemptedTo.Row != 0 || result.AttemptedTo.Col != 0 {
		t.Errorf("Expected attempt at (0,0), got (%d,%d)", result.AttemptedTo.Row, result.AttemptedTo.Col)
	}
	if !hasEvent(result.Events, service.EventBlocked) {
		t.Error("Expected blocked event")
	}
	if result.State.Moves != 1 {
		t.Errorf("Blocked move should not count, got %d moves", result.State.Moves)
	}
}

func TestGameService_Input_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info := f.create(t, "1")

	if _, err := f.svc.Input(ctx, info.ID, "jump"); !errors.Is(err, service.ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
	if _, err := f.svc.Input(ctx, "nope", "up"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_Input_Dialogue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info := f.create(t, "npc")

	result, err := f.svc.Input(ctx, info.ID, "right")
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if !result.State.DialogueVisible {
		t.Error("Expected dialogue next to the NPC")
	}
	found := false
	for _, ev := range result.Events {
		if ev.Type == service.EventDialogue && ev.Message == "Hello there" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected dialogue event, got %+v", result.Events)
	}
}

func TestGameService_BulkInput_Win(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info := f.create(t, "1")

	result, err := f.svc.BulkInput(ctx, info.ID, []string{"right", "left", "left", "down", "right", "up"}, false)
	if err != nil {
		t.Fatalf("BulkInput failed: %v", err)
	}

	if !result.Won {
		t.Fatalf("Expected win, got %+v", result)
	}
	if result.MovesExecuted != 5 || result.StoppedOnMove != 5 {
		t.Errorf("Expected stop on move 5, got executed=%d stopped=%d", result.MovesExecuted, result.StoppedOnMove)
	}
	if result.StopReasonCode != "won" {
		t.Errorf("Expected won stop code, got %q", result.StopReasonCode)
	}
	if !hasEvent(result.Events, service.EventDoorUnlocked) || !hasEvent(result.Events, service.EventWin) {
		t.Errorf("Expected door_unlocked and win events, got %+v", result.Events)
	}
	if result.StartPos == nil || *result.StartPos != (engine.Position{Row: 1, Col: 1}) {
		t.Errorf("Unexpected start %v", result.StartPos)
	}
	if result.EndPos == nil || *result.EndPos != (engine.Position{Row: 2, Col: 1}) {
		t.Errorf("Unexpected end %v", result.EndPos)
	}
	if result.State.TimerRunning {
		t.Error("Timer should stop on win")
	}
	if len(result.Steps) != 5 || result.Steps[3].Unlocked != "door1" {
		t.Errorf("Unexpected steps %+v", result.Steps)
	}
}

func TestGameService_BulkInput_StopsWhenBlocked(t *testing.T) {
	f := newFixture()
	info := f.create(t, "1")

	result, err := f.svc.BulkInput(context.Background(), info.ID, []string{"up", "left", "down"}, false)
	if err != nil {
		t.Fatalf("BulkInput failed: %v", err)
	}
	if result.Success {
		t.Error("Expected bulk input to report failure")
	}
	if result.MovesExecuted != 1 || result.StoppedOnMove != 2 {
		t.Errorf("Expected stop on move 2, got executed=%d stopped=%d", result.MovesExecuted, result.StoppedOnMove)
	}
	if result.StopReasonCode != "blocked_wall" {
		t.Errorf("Expected blocked_wall, got %q", result.StopReasonCode)
	}
	if result.AttemptedTo == nil || result.AttemptedTo.TileType != "wall" {
		t.Errorf("Unexpected attempt info %+v", result.AttemptedTo)
	}
}

func TestGameService_BulkInput_Truncated(t *testing.T) {
	f := newFixture()
	info := f.create(t, "1")

	moves := make([]string, 0, 60)
	for i := 0; i < 30; i++ {
		moves = append(moves, "right", "left")
	}

	result, err := f.svc.BulkInput(context.Background(), info.ID, moves, false)
	if err != nil {
		t.Fatalf("BulkInput failed: %v", err)
	}
	if !result.Truncated || result.Limit != engine.MaxBulkMoves {
		t.Errorf("Expected truncation at %d, got %+v", engine.MaxBulkMoves, result)
	}
	if result.RequestedMoves != 60 || result.MovesExecuted != engine.MaxBulkMoves {
		t.Errorf("Expected 60 requested and %d executed, got %d/%d",
			engine.MaxBulkMoves, result.RequestedMoves, result.MovesExecuted)
	}
}

func TestGameService_BulkInput_InvalidDirection(t *testing.T) {
	f := newFixture()
	info := f.create(t, "1")

	result, err := f.svc.BulkInput(context.Background(), info.ID, []string{"up", "sideways", "right"}, false)
	if err != nil {
		t.Fatalf("BulkInput failed: %v", err)
	}
	if result.StopReasonCode != "invalid_direction" || result.StoppedOnMove != 2 {
		t.Errorf("Expected invalid_direction on move 2, got %q on %d", result.StopReasonCode, result.StoppedOnMove)
	}
	if result.MovesExecuted != 1 {
		t.Errorf("Expected 1 executed move, got %d", result.MovesExecuted)
	}
}

func TestGameService_BulkInput_Restart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info := f.create(t, "1")

	f.svc.Input(ctx, info.ID, "right")

	result, err := f.svc.BulkInput(ctx, info.ID, []string{"up"}, true)
	if err != nil {
		t.Fatalf("BulkInput failed: %v", err)
	}
	if !hasEvent(result.Events, service.EventRestart) {
		t.Error("Expected restart event")
	}
	if *result.StartPos != (engine.Position{Row: 1, Col: 1}) {
		t.Errorf("Expected to start from the level start, got %v", result.StartPos)
	}
	if len(result.State.Inventory) != 0 {
		t.Errorf("Restart should clear the inventory, got %v", result.State.Inventory)
	}
	if result.State.Moves != 1 {
		t.Errorf("Expected move count reset, got %d", result.State.Moves)
	}
}

func TestGameService_Restart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info := f.create(t, "1")

	f.svc.Input(ctx, info.ID, "right")
	f.sched.Fire()
	if _, err := f.svc.SetSkin(ctx, "alice", "player2"); err != nil {
		t.Fatalf("SetSkin failed: %v", err)
	}

	snap, err := f.svc.Restart(ctx, info.ID)
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if snap.Phase != session.PhaseIdle || snap.ElapsedSeconds != 0 || snap.Moves != 0 {
		t.Errorf("Expected fresh idle state, got %+v", snap)
	}
	if snap.Skin != "player2" {
		t.Errorf("Restart should pick up the new skin, got %q", snap.Skin)
	}
}

func TestGameService_Restart_FailureLeavesLoading(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info := f.create(t, "1")

	f.catalog.SetFail(true)
	if _, err := f.svc.Restart(ctx, info.ID); err == nil {
		t.Fatal("Expected restart to fail")
	}

	snap, _ := f.svc.GetSnapshot(ctx, info.ID)
	if snap.Phase != session.PhaseLoading {
		t.Errorf("Expected loading phase, got %s", snap.Phase)
	}

	result, err := f.svc.Input(ctx, info.ID, "up")
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if !result.Ignored || result.Success {
		t.Errorf("Input while loading should be ignored, got %+v", result)
	}

	f.catalog.SetFail(false)
	if _, err := f.svc.Restart(ctx, info.ID); err != nil {
		t.Fatalf("Restart should recover: %v", err)
	}
}

func TestGameService_Broadcasts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info := f.create(t, "1")

	before := len(f.broadcaster.Received(info.ID))
	if before == 0 {
		t.Fatal("Expected snapshots from the initial load")
	}

	f.svc.Input(ctx, info.ID, "up")
	f.sched.Fire()

	received := f.broadcaster.Received(info.ID)
	if len(received) != before+2 {
		t.Fatalf("Expected input and tick snapshots, got %d new", len(received)-before)
	}
	last := received[len(received)-1]
	if last.ElapsedSeconds != 1 || last.Moves != 1 {
		t.Errorf("Unexpected last snapshot %+v", last)
	}
}

func TestGameService_DeleteSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info := f.create(t, "1")

	if err := f.svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := f.svc.GetSession(ctx, info.ID); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := f.svc.DeleteSession(ctx, info.ID); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestGameService_ListSessions(t *testing.T) {
	f := newFixture()
	for i := 0; i < 3; i++ {
		f.create(t, "1")
	}

	sessions, err := f.svc.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Errorf("Expected 3 sessions, got %d", len(sessions))
	}
}

func TestGameService_Levels(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	list, err := f.svc.ListLevels(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("Expected 2 levels, got %d (%v)", len(list), err)
	}

	def, err := f.svc.GetLevel(ctx, "npc")
	if err != nil {
		t.Fatalf("GetLevel failed: %v", err)
	}
	if def.NPCText != "Hello there" {
		t.Errorf("Unexpected level %+v", def)
	}

	info, err := f.svc.SaveLevel(ctx, "tiny", &engine.LevelDefinition{
		Name:  "Tiny",
		Cells: [][]string{{"player", "floor", "exit"}},
	})
	if err != nil {
		t.Fatalf("SaveLevel failed: %v", err)
	}
	if info.ID != "tiny" || info.Cols != 3 {
		t.Errorf("Unexpected level info %+v", info)
	}

	_, err = f.svc.SaveLevel(ctx, "bad", &engine.LevelDefinition{Cells: [][]string{{"lava"}}})
	if err == nil {
		t.Error("Expected invalid level to be rejected")
	}
}

func TestGameService_ProfilesDisabled(t *testing.T) {
	svc := service.NewGameService(session.NewManager(), NewMockLevelCatalog())
	ctx := context.Background()

	if _, err := svc.GetProfile(ctx, "alice"); !errors.Is(err, service.ErrProfilesDisabled) {
		t.Errorf("Expected ErrProfilesDisabled, got %v", err)
	}
	if _, err := svc.SetSkin(ctx, "alice", "player1"); !errors.Is(err, service.ErrProfilesDisabled) {
		t.Errorf("Expected ErrProfilesDisabled, got %v", err)
	}

	info, err := svc.CreateSession(ctx, "1", "alice")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	defer svc.DeleteSession(ctx, info.ID)
	if info.State.Skin != engine.DefaultSkin {
		t.Errorf("Expected default skin, got %q", info.State.Skin)
	}
}

func TestGameService_Profiles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.svc.SetSkin(ctx, "bob", "player4")
	if err != nil {
		t.Fatalf("SetSkin failed: %v", err)
	}
	if p.Skin != "player4" {
		t.Errorf("Expected player4, got %q", p.Skin)
	}

	if _, err := f.svc.SetSkin(ctx, "bob", "dragon"); !errors.Is(err, profile.ErrInvalidSkin) {
		t.Errorf("Expected ErrInvalidSkin, got %v", err)
	}

	got, err := f.svc.GetProfile(ctx, "bob")
	if err != nil || got.Skin != "player4" {
		t.Errorf("Expected stored skin, got %+v (%v)", got, err)
	}
}
