package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/keyquest/game/engine"
	"github.com/wricardo/keyquest/game/levels"
	"github.com/wricardo/keyquest/game/profile"
	"github.com/wricardo/keyquest/game/service"
	"github.com/wricardo/keyquest/game/session"
	"github.com/wricardo/keyquest/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/sessions/{id}/view", s.handleGetView).Methods("GET")
	api.HandleFunc("/sessions/{id}/input", s.handleInput).Methods("POST")
	api.HandleFunc("/sessions/{id}/bulk-input", s.handleBulkInput).Methods("POST")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")

	// Levels
	api.HandleFunc("/levels", s.handleListLevels).Methods("GET")
	api.HandleFunc("/levels", s.handleSaveLevel).Methods("POST")
	api.HandleFunc("/levels/{id}", s.handleGetLevel).Methods("GET")

	// Profiles
	api.HandleFunc("/profiles/{user}", s.handleGetProfile).Methods("GET")
	api.HandleFunc("/profiles/{user}", s.handleSetSkin).Methods("PUT")

	// Level server payload, as consumed by levels.HTTPSource
	s.router.HandleFunc("/level/{id}", s.handleLevelPayload).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Router exposes the underlying router so callers can mount extra handlers
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors onto HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, levels.ErrLevelNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidDirection),
		errors.Is(err, engine.ErrInvalidLevel),
		errors.Is(err, engine.ErrUnknownTile),
		errors.Is(err, levels.ErrInvalidLevelID),
		errors.Is(err, profile.ErrInvalidSkin),
		errors.Is(err, profile.ErrInvalidUserID):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrProfilesDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LevelID string `json:"level_id,omitempty"`
		UserID  string `json:"user_id,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	info, err := s.service.CreateSession(r.Context(), req.LevelID, req.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return
	levelID := query.Get("level")

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if levelID != "" {
		filtered := sessions[:0]
		for _, info := range sessions {
			if info.LevelID == levelID {
				filtered = append(filtered, info)
			}
		}
		sessions = filtered
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.GetSnapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// handleGetView renders the session grid as text
func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.GetSnapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, engine.Render(snap.Grid))
	fmt.Fprintf(w, "\nlevel=%s phase=%s time=%ds moves=%d inventory=[%s]\n",
		snap.LevelID, snap.Phase, snap.ElapsedSeconds, snap.Moves, strings.Join(snap.Inventory.Strings(), ","))
	if snap.DialogueVisible {
		fmt.Fprintf(w, "npc: %s\n", snap.DialogueText)
	}
	fmt.Fprintf(w, "legend: %s\n", engine.Legend)
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Input(r.Context(), sessionID, req.Direction)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	entry := log.WithFields(log.Fields{"session": sessionID, "dir": req.Direction})
	if result.Step != nil {
		entry.WithFields(log.Fields{"from": result.Step.From, "to": result.Step.To, "tile": result.Step.TileType}).Debug("Input applied")
	} else if result.AttemptedTo != nil {
		entry.WithFields(log.Fields{"row": result.AttemptedTo.Row, "col": result.AttemptedTo.Col, "reason": result.AttemptedTo.Reason}).Debug("Input blocked")
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleBulkInput(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Directions []string `json:"directions"`
		Restart    bool     `json:"restart,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Directions) == 0 && !req.Restart {
		respondError(w, http.StatusBadRequest, "directions must not be empty")
		return
	}

	result, err := s.service.BulkInput(r.Context(), sessionID, req.Directions, req.Restart)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.WithFields(log.Fields{
		"session":  sessionID,
		"executed": result.MovesExecuted,
		"total":    result.RequestedMoves,
		"stop":     result.StopReasonCode,
	}).Debug("Bulk input applied")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Restart(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Level restarted",
		"state":   snap,
	})
}

// Level Handlers

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.ListLevels(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	def, err := s.service.GetLevel(r.Context(), levelIDVar(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, def)
}

// handleLevelPayload serves the bare {cells, npcText} level document
func (s *Server) handleLevelPayload(w http.ResponseWriter, r *http.Request) {
	def, err := s.service.GetLevel(r.Context(), levelIDVar(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cells":   def.Cells,
		"npcText": def.NPCText,
	})
}

func (s *Server) handleSaveLevel(w http.ResponseWriter, r *http.Request) {
	var def engine.LevelDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if def.ID == "" {
		respondError(w, http.StatusBadRequest, "Level id is required")
		return
	}

	info, err := s.service.SaveLevel(r.Context(), def.ID, &def)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Level saved successfully",
		"level":   info,
	})
}

func levelIDVar(r *http.Request) string {
	id := mux.Vars(r)["id"]
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		id = strings.TrimSuffix(id, ext)
	}
	return id
}

// Profile Handlers

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.service.GetProfile(r.Context(), mux.Vars(r)["user"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleSetSkin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Skin string `json:"skin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := s.service.SetSkin(r.Context(), mux.Vars(r)["user"], req.Skin)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "websocket updates are disabled", http.StatusServiceUnavailable)
		return
	}

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, info.ID, func(msg websocket.ClientMessage) error {
		ctx := context.Background()
		switch msg.Action {
		case websocket.ActionRestart:
			_, err := s.service.Restart(ctx, info.ID)
			return err
		case websocket.ActionInput:
			_, err := s.service.Input(ctx, info.ID, msg.Direction)
			return err
		}
		return fmt.Errorf("unknown action %q", msg.Action)
	})

	// Send the current state so the client can render immediately
	if info.State != nil {
		s.hub.BroadcastSnapshot(info.ID, *info.State)
	}
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
