package service

import (
	"time"

	"github.com/wricardo/keyquest/game/engine"
	"github.com/wricardo/keyquest/game/session"
)

// Event types reported in results
const (
	EventTimerStarted = "timer_started"
	EventKeyCollected = "key_collected"
	EventDoorUnlocked = "door_unlocked"
	EventBlocked      = "blocked"
	EventDialogue     = "dialogue"
	EventWin          = "win"
	EventRestart      = "restart"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id,omitempty"`
	LevelID        string            `json:"level_id"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	State          *session.Snapshot `json:"state"`
}

// InputResult contains the result of a single directional input
type InputResult struct {
	Success       bool              `json:"success"`
	Ignored       bool              `json:"ignored,omitempty"`
	Direction     string            `json:"direction"`
	State         *session.Snapshot `json:"state"`
	Message       string            `json:"message"`
	Events        []GameEvent       `json:"events,omitempty"`
	Step          *StepInfo         `json:"step,omitempty"`
	AttemptedTo   *AttemptInfo      `json:"attempted_to,omitempty"`
	PossibleMoves []string          `json:"possible_moves,omitempty"`
}

// BulkInputResult contains the result of several inputs applied in order
type BulkInputResult struct {
	// Summary
	RequestedMoves int               `json:"requested_moves"`
	MovesExecuted  int               `json:"moves_executed"`
	Success        bool              `json:"success"`
	State          *session.Snapshot `json:"state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked_<reason>|won|invalid_direction|not_ready
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	StartPos *engine.Position `json:"start_pos,omitempty"`
	EndPos   *engine.Position `json:"end_pos,omitempty"`

	Steps       []StepInfo   `json:"steps,omitempty"`
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	Won           bool     `json:"won"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record of one applied move
type StepInfo struct {
	Idx      int             `json:"idx"`
	Dir      string          `json:"dir"`
	From     engine.Position `json:"from"`
	To       engine.Position `json:"to"`
	TileChar string          `json:"tile_char"`
	TileType string          `json:"tile_type"`
	PickedUp string          `json:"picked_up,omitempty"`
	Unlocked string          `json:"unlocked,omitempty"`
	Dialogue bool            `json:"dialogue,omitempty"`
	Won      bool            `json:"won,omitempty"`
}

// AttemptInfo details the cell a blocked move tried to enter
type AttemptInfo struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	TileChar string `json:"tile_char"`
	TileType string `json:"tile_type"`
	Reason   string `json:"reason"`
	Passable bool   `json:"passable"`
}

// GameEvent represents an event that occurred during play
type GameEvent struct {
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
}
