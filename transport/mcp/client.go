package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/keyquest/game/engine"
	"github.com/wricardo/keyquest/game/levels"
	"github.com/wricardo/keyquest/game/profile"
	"github.com/wricardo/keyquest/game/service"
	"github.com/wricardo/keyquest/game/session"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Key Quest",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Key Quest - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk the player (@) to the exit (E). Keys (a-e) open the matching doors (A-E);
each door consumes one key every time you pass through it. The level is won
when you finish a move with the exit directly ahead in the direction you moved.

AVAILABLE TOOLS:
- create_session: Start a level
- list_sessions / get_session: Inspect sessions
- game_state: Current grid, inventory and timer
- move: Single move (up/down/left/right) - requires intent explanation
- bulk_move: Several moves at once - requires intent explanation
- restart_level: Reload the level
- hint: Next move of a shortest solution from the current position
- describe_cell: What is at a given row and column
- list_levels: Available levels
- set_skin: Choose the player's skin
- game_instructions: Full rules

NOTE: The 'intent' parameter on move/bulk_move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Start a new session on a level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to play (optional, defaults to the first level)",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Player id whose profile skin is used (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current grid, inventory, timer and dialogue",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence, stopping at the first blocked move or the win", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right"},
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"restart": map[string]interface{}{
					"type":        "boolean",
					"description": "Restart the level before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_level",
		Description: "Reload the level, clearing inventory, timer and moves",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Suggest the next move of a shortest winning route from the current position",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about a specific cell in the grid, including whether it can be entered",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based, from the top)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based, from the left)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)

	// Levels and profiles
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_skin",
		Description: "Choose the player skin for a user. Running sessions pick it up on restart.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User id",
				},
				"skin": map[string]interface{}{
					"type":        "string",
					"enum":        engine.Skins,
					"description": "Skin to use",
				},
			},
			Required: []string{"user_id", "skin"},
		},
	}, c.handleSetSkin)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return errors.New(msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]string{}
	if levelID := stringArg(args, "level_id"); levelID != "" {
		body["level_id"] = levelID
	}
	if userID := stringArg(args, "user_id"); userID != "" {
		body["user_id"] = userID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s",
		info.ID, info.LevelID, formatSnapshot(info.State))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase := "unknown"
		if s.State != nil {
			phase = string(s.State.Phase)
		}
		fmt.Fprintf(&b, "- %s (Level: %s, Phase: %s, Created: %s)\n",
			s.ID, s.LevelID, phase, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := c.fetchSnapshot(ctx, stringArg(request.GetArguments(), "session_id"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSnapshot(snap)), nil
}

func (c *Client) fetchSnapshot(ctx context.Context, sessionID string) (*session.Snapshot, error) {
	var snap session.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	// intent is for the caller's benefit only
	body := map[string]interface{}{
		"direction": stringArg(args, "direction"),
	}

	var result service.InputResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/input"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatInputResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	restart, _ := args["restart"].(bool)

	var moves []string
	switch raw := args["moves"].(type) {
	case []interface{}:
		for _, m := range raw {
			if move, ok := m.(string); ok {
				moves = append(moves, move)
			}
		}
	case []string:
		moves = raw
	}

	body := map[string]interface{}{
		"directions": moves,
		"restart":    restart,
	}

	var result service.BulkInputResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-input"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkInputResult(sessionID, &result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var response struct {
		Message string            `json:"message"`
		State   *session.Snapshot `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatSnapshot(response.State))), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := c.fetchSnapshot(ctx, stringArg(request.GetArguments(), "session_id"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if snap.Won {
		return mcp.NewToolResultText("The level is already complete."), nil
	}
	if snap.PlayerPos == nil {
		return mcp.NewToolResultError("the level has no player"), nil
	}

	route, err := engine.Solve(snap.Grid, snap.Inventory)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("No winning route from here (%v). Try restart_level.", err)), nil
	}
	if len(route) == 0 {
		return mcp.NewToolResultText("No moves needed."), nil
	}
	dirs := make([]string, len(route))
	for i, d := range route {
		dirs[i] = string(d)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Next move: %s\nShortest route (%d moves): %s",
		dirs[0], len(dirs), strings.Join(dirs, ","))), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	snap, err := c.fetchSnapshot(ctx, stringArg(args, "session_id"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pos := engine.Position{Row: row, Col: col}
	if !snap.Grid.InBounds(pos) {
		return mcp.NewToolResultError(fmt.Sprintf("%s is outside the %dx%d grid", pos, snap.Grid.Rows(), snap.Grid.Cols())), nil
	}

	return mcp.NewToolResultText(describeCell(pos, snap.Grid.At(pos), snap.Inventory)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var list []levels.LevelInfo
	if err := c.apiCall(ctx, "GET", "/api/levels", nil, &list); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, l := range list {
		fmt.Fprintf(&b, "• %s: %s\n", l.ID, l.Name)
		if l.Description != "" {
			fmt.Fprintf(&b, "  %s\n", l.Description)
		}
		fmt.Fprintf(&b, "  Grid: %dx%d, Keys: %d, Doors: %d, NPC: %v\n\n", l.Rows, l.Cols, l.Keys, l.Doors, l.HasNPC)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleSetSkin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	userID := stringArg(args, "user_id")

	var p profile.Profile
	body := map[string]string{"skin": stringArg(args, "skin")}
	if err := c.apiCall(ctx, "PUT", "/api/profiles/"+url.PathEscape(userID), body, &p); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Skin for %s set to %s. Restart a level to see it.", p.UserID, p.Skin)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Key Quest - Complete Instructions

GAME OBJECTIVE:
Guide the player to the exit. The level is complete when a move ends with
the exit directly ahead of the player in the direction of that move.

GRID LEGEND:
` + engine.Legend + `

GAME MECHANICS:
• Movement: up, down, left, right; one cell per move
• Walls (#) and the NPC (N) always block
• Keys: stepping on a key (a-e) adds it to your inventory
• Doors: a door (A-E) opens for its matching key (A needs a, B needs b...)
  and consumes that key each time you step onto it. The door stays, so
  coming back through costs another key.
• Dialogue: standing directly beside the NPC shows its message
• Timer: starts with your first input, stops when you win
• Restart: reloads the level and clears keys, timer and moves

STRATEGY:
- Read the grid row by row; coordinates are (row,col) from the top-left
- Count keys before committing to a door
- Use describe_cell when unsure what a character is
- Use bulk_move for planned routes; it stops at the first blocked move
- Use hint if you are stuck

VICTORY CONDITIONS:
- Finish a move facing the exit

Good luck on your quest!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(info *service.SessionInfo) string {
	user := info.UserID
	if user == "" {
		user = "(anonymous)"
	}
	return fmt.Sprintf("Session: %s\nLevel: %s\nUser: %s\nCreated: %s\n\n%s",
		info.ID, info.LevelID, user,
		info.CreatedAt.Format("2006-01-02 15:04:05"),
		formatSnapshot(info.State))
}

func formatSnapshot(snap *session.Snapshot) string {
	if snap == nil {
		return "No game state available"
	}

	var b strings.Builder
	pos := "none"
	if snap.PlayerPos != nil {
		pos = snap.PlayerPos.String()
	}
	inv := strings.Join(snap.Inventory.Strings(), ",")
	if inv == "" {
		inv = "empty"
	}

	fmt.Fprintf(&b, "Level: %s | Phase: %s | Position: %s | Time: %ds | Moves: %d | Inventory: %s\n\n",
		snap.LevelID, snap.Phase, pos, snap.ElapsedSeconds, snap.Moves, inv)

	if snap.Phase == session.PhaseLoading {
		b.WriteString("The level is loading. Try again shortly or restart_level.\n")
		return b.String()
	}

	b.WriteString(engine.Render(snap.Grid))
	b.WriteString("\n")

	if snap.DialogueVisible {
		fmt.Fprintf(&b, "\nNPC says: %q\n", snap.DialogueText)
	}
	if snap.PlayerPos != nil && !snap.Won {
		moves := engine.PossibleMoves(snap.Grid, snap.Inventory, *snap.PlayerPos)
		names := make([]string, len(moves))
		for i, d := range moves {
			names[i] = string(d)
		}
		fmt.Fprintf(&b, "\nPossible moves: %s\n", strings.Join(names, ","))
	}
	if snap.Won {
		fmt.Fprintf(&b, "\n🎉 LEVEL COMPLETE in %d moves and %ds!\n", snap.Moves, snap.ElapsedSeconds)
	}
	return b.String()
}

func formatInputResult(result *service.InputResult) string {
	var b strings.Builder
	switch {
	case result.Ignored:
		fmt.Fprintf(&b, "… Input ignored: %s\n", result.Message)
	case result.Success:
		b.WriteString("✓ Move successful\n")
	default:
		b.WriteString("✗ Move blocked\n")
	}

	if s := result.Step; s != nil {
		fmt.Fprintf(&b, "Step: %s %s→%s tile=%s\n", s.Dir, s.From, s.To, s.TileType)
	}
	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "Blocked: attempted (%d,%d) tile=%s reason=%s\n", a.Row, a.Col, a.TileType, a.Reason)
	}
	writeEvents(&b, result.Events)

	b.WriteString("\n")
	b.WriteString(formatSnapshot(result.State))
	return b.String()
}

func formatBulkInputResult(sessionID string, result *service.BulkInputResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Executed %d/%d moves\n", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Only the first %d moves were applied\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s (%s)\n", result.StoppedOnMove, result.StoppedReason, result.StopReasonCode)
	}

	writeEvents(&b, result.Events)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			fmt.Fprintf(&b, "%d. %s %s→%s tile=%s\n", s.Idx, s.Dir, s.From, s.To, s.TileType)
		}
	}
	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "\nBlocked: attempted (%d,%d) tile=%s reason=%s\n", a.Row, a.Col, a.TileType, a.Reason)
	}

	b.WriteString("\n")
	b.WriteString(formatSnapshot(result.State))
	return b.String()
}

func writeEvents(b *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("\nEvents:\n")
	for _, event := range events {
		fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
	}
}

func describeCell(pos engine.Position, cell engine.Cell, inv engine.Inventory) string {
	var kind, description string
	passable := engine.IsPassable(cell)

	switch v := cell.(type) {
	case engine.Floor:
		if v == engine.FloorExit {
			kind = "Exit"
			description = "The goal. Finish a move facing it to win."
		} else {
			kind = "Floor"
			description = "Open floor."
		}
	case engine.Item:
		kind = "Key"
		description = fmt.Sprintf("Collect it to open %s.", v.Door())
	case engine.Obstacle:
		switch {
		case v == engine.Wall:
			kind = "Wall"
			description = "Impassable."
		case v == engine.NPC:
			kind = "NPC"
			description = "Impassable. Stand beside it to hear what it says."
		case v.IsDoor():
			key, _ := v.Key()
			kind = "Door"
			if inv.Contains(key) {
				passable = true
				description = fmt.Sprintf("Opens with %s, which you carry. Entering consumes it.", key)
			} else {
				description = fmt.Sprintf("Locked. Needs %s.", key)
			}
		}
	case engine.Player:
		kind = "Player"
		description = "You are here."
		if v.Under != nil {
			description = fmt.Sprintf("You are here, standing on %s.", v.Under)
		}
	}

	return fmt.Sprintf(`Cell at %s:
━━━━━━━━━━━━━━━━━━━━━━━━
Character: %c
Tile: %s
Type: %s
Passable: %v
Description: %s`,
		pos, engine.Symbol(cell), cell, kind, passable, description)
}
