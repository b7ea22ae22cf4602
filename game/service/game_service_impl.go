package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/keyquest/game/engine"
	"github.com/wricardo/keyquest/game/levels"
	"github.com/wricardo/keyquest/game/profile"
	"github.com/wricardo/keyquest/game/session"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions     SessionManager
	catalog      LevelCatalog
	source       session.LevelSource
	profiles     profile.Store
	broadcaster  Broadcaster
	scheduler    session.Scheduler
	tickInterval time.Duration
}

// Option customizes the game service
type Option func(*gameServiceImpl)

// WithLevelSource fetches session levels from src instead of the catalog
func WithLevelSource(src session.LevelSource) Option {
	return func(s *gameServiceImpl) { s.source = src }
}

// WithProfiles resolves player skins and serves profile operations from store
func WithProfiles(store profile.Store) Option {
	return func(s *gameServiceImpl) { s.profiles = store }
}

// WithBroadcaster publishes every session snapshot to b
func WithBroadcaster(b Broadcaster) Option {
	return func(s *gameServiceImpl) { s.broadcaster = b }
}

// WithScheduler sets the scheduler that drives session timers
func WithScheduler(sched session.Scheduler) Option {
	return func(s *gameServiceImpl) { s.scheduler = sched }
}

// WithTickInterval sets the timer resolution for new sessions
func WithTickInterval(d time.Duration) Option {
	return func(s *gameServiceImpl) { s.tickInterval = d }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, catalog LevelCatalog, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		catalog:  catalog,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil && catalog != nil {
		s.source = catalogSource{catalog}
	}
	return s
}

// catalogSource adapts a LevelCatalog to session.LevelSource
type catalogSource struct {
	catalog LevelCatalog
}

func (c catalogSource) FetchLevel(ctx context.Context, id string) (*engine.LevelDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.catalog.LoadLevel(id)
}

// CreateSession starts a session on levelID (the default level when empty)
// and loads it. A session whose level cannot be loaded is discarded.
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID, userID string) (*SessionInfo, error) {
	if levelID == "" && s.catalog != nil {
		levelID = s.catalog.DefaultID()
	}
	if levelID == "" {
		return nil, fmt.Errorf("no level id given and no default level configured")
	}

	opts := session.Options{
		UserID:       userID,
		Scheduler:    s.scheduler,
		TickInterval: s.tickInterval,
	}
	if s.profiles != nil {
		opts.Skins = s.profiles
	}
	ctrl := session.NewController(levelID, s.source, opts)

	sess, err := s.sessions.Create("", userID, ctrl)
	if err != nil {
		ctrl.Close()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.broadcaster != nil {
		id := sess.ID
		ctrl.Subscribe(func(snap session.Snapshot) {
			s.broadcaster.BroadcastSnapshot(id, snap)
		})
	}

	if err := ctrl.Load(ctx, levelID); err != nil {
		s.sessions.Delete(sess.ID)
		return nil, fmt.Errorf("failed to load level %s: %w", levelID, err)
	}

	log.WithFields(log.Fields{"session": sess.ID, "level": levelID, "user": userID}).Info("Session started")
	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession closes and removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// Input applies one directional input to a session
func (s *gameServiceImpl) Input(ctx context.Context, sessionID, direction string) (*InputResult, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	d, ok := engine.ParseDirection(direction)
	if !ok {
		return nil, fmt.Errorf("%w: %q (use up, down, left or right)", ErrInvalidDirection, direction)
	}

	out, snap := sess.Controller.Apply(d)

	result := &InputResult{
		Success:       out.Move.Allowed,
		Ignored:       out.Ignored,
		Direction:     string(d),
		State:         &snap,
		Message:       outcomeMessage(out, snap),
		Events:        outcomeEvents(out, snap),
		PossibleMoves: possibleMoves(snap),
	}
	if out.Move.Allowed {
		step := stepInfo(1, out, snap)
		result.Step = &step
	} else if !out.Ignored && !out.NoPlayer {
		result.AttemptedTo = attemptInfo(out.Move)
	}
	return result, nil
}

// BulkInput applies up to engine.MaxBulkMoves inputs in order, stopping at
// the first blocked move or at the win
func (s *gameServiceImpl) BulkInput(ctx context.Context, sessionID string, directions []string, restart bool) (*BulkInputResult, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	ctrl := sess.Controller

	result := &BulkInputResult{
		RequestedMoves: len(directions),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if restart {
		if err := ctrl.Restart(ctx); err != nil {
			return nil, fmt.Errorf("failed to restart session %s: %w", sessionID, err)
		}
		result.Events = append(result.Events, GameEvent{
			Type:      EventRestart,
			Message:   "Level restarted",
			Timestamp: time.Now(),
		})
	}

	if len(directions) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		directions = directions[:engine.MaxBulkMoves]
	}

	start := ctrl.Snapshot()
	result.StartPos = start.PlayerPos

	for i, raw := range directions {
		d, ok := engine.ParseDirection(raw)
		if !ok {
			result.stop(i+1, "invalid_direction", fmt.Sprintf("invalid direction %q", raw))
			break
		}

		out, snap := ctrl.Apply(d)
		result.Events = append(result.Events, outcomeEvents(out, snap)...)

		if out.Ignored {
			result.stop(i+1, "not_ready", outcomeMessage(out, snap))
			break
		}
		if out.NoPlayer {
			result.stop(i+1, "no_player", outcomeMessage(out, snap))
			break
		}
		if !out.Move.Allowed {
			result.AttemptedTo = attemptInfo(out.Move)
			result.stop(i+1, "blocked_"+string(out.Move.Reason), outcomeMessage(out, snap))
			break
		}

		result.MovesExecuted++
		result.Steps = append(result.Steps, stepInfo(i+1, out, snap))
		if out.Won {
			result.Won = true
			result.StopReasonCode = "won"
			result.StoppedReason = outcomeMessage(out, snap)
			result.StoppedOnMove = i + 1
			break
		}
	}

	final := ctrl.Snapshot()
	result.State = &final
	result.EndPos = final.PlayerPos
	result.Won = result.Won || final.Won
	result.PossibleMoves = possibleMoves(final)
	if result.Message == "" {
		result.Message = fmt.Sprintf("%d of %d moves executed", result.MovesExecuted, len(directions))
	}

	log.WithFields(log.Fields{
		"session":   sessionID,
		"requested": result.RequestedMoves,
		"executed":  result.MovesExecuted,
		"stop":      result.StopReasonCode,
	}).Debug("Bulk input applied")
	return result, nil
}

func (r *BulkInputResult) stop(idx int, code, reason string) {
	r.Success = false
	r.StoppedOnMove = idx
	r.StopReasonCode = code
	r.StoppedReason = reason
	r.Message = reason
}

// Restart reloads the session's level. On failure the session stays in the
// loading phase until a later restart succeeds.
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*session.Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Controller.Restart(ctx); err != nil {
		return nil, fmt.Errorf("failed to restart session %s: %w", sessionID, err)
	}
	snap := sess.Controller.Snapshot()
	return &snap, nil
}

// GetSnapshot returns the current display state of a session
func (s *gameServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*session.Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	snap := sess.Controller.Snapshot()
	return &snap, nil
}

// ListLevels returns the levels in the catalog
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*levels.LevelInfo, error) {
	if s.catalog == nil {
		return []*levels.LevelInfo{}, nil
	}
	return s.catalog.ListLevels()
}

// GetLevel returns a level definition from the catalog
func (s *gameServiceImpl) GetLevel(ctx context.Context, levelID string) (*engine.LevelDefinition, error) {
	if s.catalog != nil {
		return s.catalog.LoadLevel(levelID)
	}
	return s.source.FetchLevel(ctx, levelID)
}

// SaveLevel validates and stores a level in the catalog
func (s *gameServiceImpl) SaveLevel(ctx context.Context, levelID string, def *engine.LevelDefinition) (*levels.LevelInfo, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("no level catalog configured")
	}
	if err := s.catalog.SaveLevel(levelID, def); err != nil {
		return nil, err
	}
	return levels.Describe(levelID, levelID+".json", def), nil
}

// GetProfile returns a user's profile
func (s *gameServiceImpl) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	if s.profiles == nil {
		return nil, ErrProfilesDisabled
	}
	return s.profiles.GetProfile(ctx, userID)
}

// SetSkin stores a user's skin. Running sessions pick it up on restart.
func (s *gameServiceImpl) SetSkin(ctx context.Context, userID, skin string) (*profile.Profile, error) {
	if s.profiles == nil {
		return nil, ErrProfilesDisabled
	}
	return s.profiles.SetSkin(ctx, userID, skin)
}

func (s *gameServiceImpl) lookup(sessionID string) (*session.Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.Touch(sessionID)
	return sess, nil
}

func sessionInfo(sess *session.Session) *SessionInfo {
	snap := sess.Controller.Snapshot()
	return &SessionInfo{
		ID:             sess.ID,
		UserID:         sess.UserID,
		LevelID:        snap.LevelID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          &snap,
	}
}

func outcomeEvents(out session.Outcome, snap session.Snapshot) []GameEvent {
	now := time.Now()
	var events []GameEvent
	add := func(typ, msg string, pos *engine.Position) {
		events = append(events, GameEvent{Type: typ, Message: msg, Timestamp: now, Position: pos})
	}

	if out.TimerStarted {
		add(EventTimerStarted, "Timer started", nil)
	}
	if out.Ignored || out.NoPlayer {
		return events
	}

	to := out.Move.To
	if !out.Move.Allowed {
		add(EventBlocked, blockMessage(out.Move), &to)
		return events
	}
	if out.Move.PickedUp != 0 {
		add(EventKeyCollected, fmt.Sprintf("Collected %s", out.Move.PickedUp), &to)
	}
	if out.Move.Unlocked != 0 {
		key, _ := out.Move.Unlocked.Key()
		add(EventDoorUnlocked, fmt.Sprintf("Unlocked %s with %s", out.Move.Unlocked, key), &to)
	}
	if out.DialogueShown {
		add(EventDialogue, snap.DialogueText, &to)
	}
	if out.Won {
		add(EventWin, fmt.Sprintf("Level complete in %d moves and %ds", snap.Moves, snap.ElapsedSeconds), &to)
	}
	return events
}

func outcomeMessage(out session.Outcome, snap session.Snapshot) string {
	switch {
	case out.Ignored && snap.Phase == session.PhaseClosed:
		return "session is closed"
	case out.Ignored:
		return "level is still loading"
	case out.NoPlayer:
		return "this level has no player"
	case out.Won:
		return fmt.Sprintf("You found the exit in %d moves!", snap.Moves)
	case !out.Move.Allowed:
		return blockMessage(out.Move)
	}
	return fmt.Sprintf("Moved %s to %s", out.Move.Direction, out.Move.To)
}

func blockMessage(m engine.MoveResult) string {
	switch m.Reason {
	case engine.BlockBoundary:
		return fmt.Sprintf("Cannot move %s: edge of the map", m.Direction)
	case engine.BlockNPC:
		return fmt.Sprintf("Cannot move %s: someone is standing there", m.Direction)
	case engine.BlockLockedDoor:
		if door, ok := m.Target.(engine.Obstacle); ok {
			key, _ := door.Key()
			return fmt.Sprintf("Cannot move %s: %s needs %s", m.Direction, door, key)
		}
		return fmt.Sprintf("Cannot move %s: the door is locked", m.Direction)
	}
	return fmt.Sprintf("Cannot move %s: blocked by %s", m.Direction, m.Reason)
}

func stepInfo(idx int, out session.Outcome, snap session.Snapshot) StepInfo {
	step := StepInfo{
		Idx:      idx,
		Dir:      string(out.Move.Direction),
		From:     out.Move.From,
		To:       out.Move.To,
		Dialogue: out.DialogueShown,
		Won:      out.Won,
	}
	if out.Move.Target != nil {
		step.TileChar = string(engine.Symbol(out.Move.Target))
		step.TileType = out.Move.Target.String()
	}
	if out.Move.PickedUp != 0 {
		step.PickedUp = out.Move.PickedUp.String()
	}
	if out.Move.Unlocked != 0 {
		step.Unlocked = out.Move.Unlocked.String()
	}
	return step
}

func attemptInfo(m engine.MoveResult) *AttemptInfo {
	info := &AttemptInfo{
		Row:    m.To.Row,
		Col:    m.To.Col,
		Reason: string(m.Reason),
	}
	if m.Target == nil {
		info.TileChar = " "
		info.TileType = "boundary"
		return info
	}
	info.TileChar = string(engine.Symbol(m.Target))
	info.TileType = m.Target.String()
	info.Passable = engine.IsPassable(m.Target)
	return info
}

func possibleMoves(snap session.Snapshot) []string {
	if snap.PlayerPos == nil || snap.Phase == session.PhaseLoading || snap.Phase == session.PhaseClosed {
		return nil
	}
	dirs := engine.PossibleMoves(snap.Grid, snap.Inventory, *snap.PlayerPos)
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = string(d)
	}
	return out
}
