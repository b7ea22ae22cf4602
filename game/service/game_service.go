package service

import (
	"context"
	"errors"

	"github.com/wricardo/keyquest/game/engine"
	"github.com/wricardo/keyquest/game/levels"
	"github.com/wricardo/keyquest/game/profile"
	"github.com/wricardo/keyquest/game/session"
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrProfilesDisabled = errors.New("profiles are not configured")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelID, userID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Input(ctx context.Context, sessionID, direction string) (*InputResult, error)
	BulkInput(ctx context.Context, sessionID string, directions []string, restart bool) (*BulkInputResult, error)
	Restart(ctx context.Context, sessionID string) (*session.Snapshot, error)

	// Game State
	GetSnapshot(ctx context.Context, sessionID string) (*session.Snapshot, error)

	// Levels
	ListLevels(ctx context.Context) ([]*levels.LevelInfo, error)
	GetLevel(ctx context.Context, levelID string) (*engine.LevelDefinition, error)
	SaveLevel(ctx context.Context, levelID string, def *engine.LevelDefinition) (*levels.LevelInfo, error)

	// Profiles
	GetProfile(ctx context.Context, userID string) (*profile.Profile, error)
	SetSkin(ctx context.Context, userID, skin string) (*profile.Profile, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, userID string, ctrl *session.Controller) (*session.Session, error)
	Get(id string) (*session.Session, error)
	List() []*session.Session
	Delete(id string) error
	Touch(id string) error
}

// LevelCatalog manages the locally stored levels
type LevelCatalog interface {
	LoadLevel(id string) (*engine.LevelDefinition, error)
	ListLevels() ([]*levels.LevelInfo, error)
	SaveLevel(id string, def *engine.LevelDefinition) error
	DefaultID() string
}

// Broadcaster pushes snapshots to the clients watching a session
type Broadcaster interface {
	BroadcastSnapshot(sessionID string, snap session.Snapshot)
}
