package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"skirmish/internal/game"
	"skirmish/internal/lobby"
)

// LobbyRequest is the body of create and register calls.
type LobbyRequest struct {
	Name       string `json:"name"`
	PlayerName string `json:"player_name"`
}

// LobbyResponse tells the client where to open its WebSocket. GameState
// is only set when the lobby was just created.
type LobbyResponse struct {
	URL       string         `json:"url"`
	GameState *game.Snapshot `json:"game_state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) createLobby(w http.ResponseWriter, r *http.Request) {
	var req LobbyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	join, snap, err := s.registry.Create(req.Name, req.PlayerName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, LobbyResponse{URL: join.URL, GameState: &snap})
}

func (s *Server) deleteLobby(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(r.PathValue("name")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) enterLobby(w http.ResponseWriter, r *http.Request) {
	var req LobbyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	join, err := s.registry.Register(req.Name, req.PlayerName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Printf("Player %s registered in lobby %s", join.Player, join.Lobby)
	s.writeJSON(w, http.StatusOK, LobbyResponse{URL: join.URL})
}

func (s *Server) listLobbies(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.List())
}

// handleWebSocket claims the join token and upgrades the connection
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	codec, err := game.CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lobbyName := r.PathValue("lobby")
	ticket, err := s.registry.Claim(lobbyName, r.PathValue("token"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("WebSocket upgrade error: %v", err)
		s.registry.Release(lobbyName, ticket.Token)
		return
	}

	s.serveClient(NewClient(ticket, conn, codec, s))
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case lobby.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, lobby.ErrLobbyExists), errors.Is(err, lobby.ErrPlayerTaken), errors.Is(err, lobby.ErrTokenInUse):
		status = http.StatusConflict
	case errors.Is(err, lobby.ErrInvalidName):
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("Error writing response: %v", err)
	}
}
