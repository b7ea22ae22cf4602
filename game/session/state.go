package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wricardo/keyquest/game/engine"
)

var (
	ErrStaleLoad = errors.New("level load superseded")
	ErrClosed    = errors.New("session closed")
)

// Phase is the lifecycle stage of a level play-through
type Phase string

const (
	PhaseLoading      Phase = "loading"
	PhaseIdle         Phase = "idle"
	PhaseTimerRunning Phase = "timer_running"
	PhaseWon          Phase = "won"
	PhaseClosed       Phase = "closed"
)

// State is the complete mutable state of one level session. Transitions are
// pure functions returning a new State.
type State struct {
	LevelID    string
	Generation uint64
	Phase      Phase
	Grid       engine.Grid
	Inventory  engine.Inventory
	Elapsed    int
	NPCText    string
	ShowNPC    bool
	Skin       string
	Moves      int
}

// Outcome describes what a single directional input did
type Outcome struct {
	Direction engine.Direction
	// Ignored is set when the input was dropped before reaching the engine
	Ignored bool
	// NoPlayer is set when the grid has no player marker to move
	NoPlayer     bool
	TimerStarted bool
	TimerStopped bool
	Move         engine.MoveResult
	Won          bool
	// DialogueShown is set when the dialogue became visible on this step
	DialogueShown bool
}

// Loading returns the state of a session waiting for level data. The
// generation tags the fetch that will be accepted by Install.
func Loading(levelID string, generation uint64, skin string) State {
	return State{
		LevelID:    levelID,
		Generation: generation,
		Phase:      PhaseLoading,
		Skin:       skin,
	}
}

// Install places a fetched level into a loading session. Results from an
// older generation are rejected with ErrStaleLoad; an unparsable definition
// leaves the state untouched.
func Install(s State, generation uint64, def *engine.LevelDefinition, skin string) (State, error) {
	if s.Phase == PhaseClosed {
		return s, ErrClosed
	}
	if generation != s.Generation {
		return s, ErrStaleLoad
	}

	grid, err := def.Grid()
	if err != nil {
		return s, err
	}
	if skin == "" {
		skin = engine.DefaultSkin
	}
	grid, _ = engine.SubstitutePlayer(grid, skin)

	return State{
		LevelID:    s.LevelID,
		Generation: s.Generation,
		Phase:      PhaseIdle,
		Grid:       grid,
		Inventory:  engine.Inventory{},
		NPCText:    def.NPCText,
		Skin:       skin,
	}, nil
}

// Step applies one directional input. The first recognised input from Idle
// starts the timer whether or not the move is allowed; a win stops it.
func Step(s State, d engine.Direction) (State, Outcome) {
	out := Outcome{Direction: d}

	if s.Phase == PhaseLoading || s.Phase == PhaseClosed {
		out.Ignored = true
		return s, out
	}
	dir, ok := engine.ParseDirection(string(d))
	if !ok {
		out.Ignored = true
		return s, out
	}
	out.Direction = dir

	if s.Phase == PhaseIdle {
		s.Phase = PhaseTimerRunning
		out.TimerStarted = true
	}

	pos, ok := engine.LocatePlayer(s.Grid)
	if !ok {
		out.NoPlayer = true
		return s, out
	}

	out.Move = engine.AttemptMove(s.Grid, s.Inventory, pos, dir)
	if !out.Move.Allowed {
		return s, out
	}

	s.Grid = out.Move.Grid
	s.Inventory = out.Move.Inventory
	s.Moves++

	if engine.IsWin(s.Grid, out.Move.To, dir) {
		if s.Phase == PhaseTimerRunning {
			s.Phase = PhaseWon
			out.Won = true
			out.TimerStopped = true
		}
		return s, out
	}

	visible := engine.IsNPCAdjacent(s.Grid, out.Move.To)
	out.DialogueShown = visible && !s.ShowNPC
	s.ShowNPC = visible
	return s, out
}

// Tick advances the elapsed time by one second while the timer runs
func Tick(s State) State {
	if s.Phase == PhaseTimerRunning {
		s.Elapsed++
	}
	return s
}

// Snapshot is the read-only display view of a session
type Snapshot struct {
	LevelID         string           `json:"level_id"`
	Phase           Phase            `json:"phase"`
	Grid            engine.Grid      `json:"grid"`
	Inventory       engine.Inventory `json:"inventory"`
	ElapsedSeconds  int              `json:"elapsed_seconds"`
	DialogueText    string           `json:"dialogue_text"`
	DialogueVisible bool             `json:"dialogue_visible"`
	TimerRunning    bool             `json:"timer_running"`
	Won             bool             `json:"won"`
	Moves           int              `json:"moves"`
	Skin            string           `json:"skin"`
	PlayerPos       *engine.Position `json:"player_pos,omitempty"`
	PlayerUnder     string           `json:"player_under,omitempty"`
	Generation      uint64           `json:"generation"`
}

// UnmarshalJSON restores the tile recorded under the player, which the grid
// encoding does not carry
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = Snapshot(decoded)

	if s.PlayerUnder == "" || s.PlayerPos == nil || !s.Grid.InBounds(*s.PlayerPos) {
		return nil
	}
	p, ok := s.Grid.At(*s.PlayerPos).(engine.Player)
	if !ok {
		return fmt.Errorf("player_under set but no player at %s", s.PlayerPos)
	}
	under, err := engine.ParseCell(s.PlayerUnder)
	if err != nil {
		return fmt.Errorf("player_under: %w", err)
	}
	p.Under = under
	s.Grid[s.PlayerPos.Row][s.PlayerPos.Col] = p
	return nil
}

// Snapshot copies the state into its display view
func (s State) Snapshot() Snapshot {
	snap := Snapshot{
		LevelID:         s.LevelID,
		Phase:           s.Phase,
		Grid:            s.Grid.Clone(),
		Inventory:       s.Inventory.Clone(),
		ElapsedSeconds:  s.Elapsed,
		DialogueText:    s.NPCText,
		DialogueVisible: s.ShowNPC,
		TimerRunning:    s.Phase == PhaseTimerRunning,
		Won:             s.Phase == PhaseWon,
		Moves:           s.Moves,
		Skin:            s.Skin,
		Generation:      s.Generation,
	}
	if pos, ok := engine.LocatePlayer(s.Grid); ok {
		snap.PlayerPos = &pos
		if p, ok := s.Grid.At(pos).(engine.Player); ok && p.Under != nil {
			snap.PlayerUnder = p.Under.String()
		}
	}
	return snap
}
