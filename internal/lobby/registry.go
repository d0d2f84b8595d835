package lobby

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"skirmish/internal/game"
)

// Join tells a client where to connect.
type Join struct {
	Lobby  string
	Player string
	Token  string
	URL    string
}

// Ticket is a claimed join token: the player it admits and the lobby
// handle to use.
type Ticket struct {
	Lobby  string
	Player string
	Token  string
	Handle Handle
}

// LobbyInfo is returned by the API for the lobby list.
type LobbyInfo struct {
	Name    string `json:"name"`
	Players int    `json:"players"`
}

type reservation struct {
	player    string
	connected bool
}

type entry struct {
	session *Session
	tokens  map[string]*reservation // token -> reservation
	names   map[string]string       // player -> token
}

// Registry maps lobby names to running sessions. It never touches game
// state; it only holds handles and join reservations.
type Registry struct {
	mu      sync.RWMutex
	lobbies map[string]*entry
	cfg     Config
	logger  *log.Logger
	wg      sync.WaitGroup
}

func NewRegistry(cfg Config) *Registry {
	cfg = cfg.withDefaults()
	return &Registry{
		lobbies: make(map[string]*entry),
		cfg:     cfg,
		logger:  cfg.Logger,
	}
}

// Create starts a lobby and reserves a seat for its founder. The returned
// snapshot is the lobby's state at creation. The founder holds a seat but
// enters the simulation only when their connection attaches, so the
// snapshot has no players.
func (r *Registry) Create(name, founder string) (Join, game.Snapshot, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(founder) == "" {
		return Join{}, game.Snapshot{}, ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lobbies[name]; exists {
		return Join{}, game.Snapshot{}, fmt.Errorf("create %q: %w", name, ErrLobbyExists)
	}

	sim := game.NewGameState(game.Seconds(r.cfg.Clock()))
	snap := sim.Snapshot()
	session := NewSession(name, sim, r.cfg)
	e := &entry{
		session: session,
		tokens:  make(map[string]*reservation),
		names:   make(map[string]string),
	}
	r.lobbies[name] = e
	join := r.reserveLocked(name, e, founder)

	r.wg.Add(1)
	go r.run(session)

	r.logger.Printf("Lobby %s created by %s", name, founder)
	return join, snap, nil
}

func (r *Registry) run(session *Session) {
	defer r.wg.Done()
	name := session.Name()
	if err := session.Run(); err != nil {
		r.logger.Printf("Lobby %s failed: %v", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.lobbies[name]; ok && e.session == session {
		delete(r.lobbies, name)
	}
}

// Register reserves a seat in an existing lobby. The player is admitted
// into the simulation only once its connection attaches.
func (r *Registry) Register(name, player string) (Join, error) {
	if strings.TrimSpace(player) == "" {
		return Join{}, ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.lobbies[name]
	if !ok {
		return Join{}, fmt.Errorf("register in %q: %w", name, ErrLobbyNotFound)
	}
	if _, taken := e.names[player]; taken {
		return Join{}, fmt.Errorf("register %q in %q: %w", player, name, ErrPlayerTaken)
	}
	return r.reserveLocked(name, e, player), nil
}

func (r *Registry) reserveLocked(name string, e *entry, player string) Join {
	token := uuid.NewString()
	e.tokens[token] = &reservation{player: player}
	e.names[player] = token
	return Join{
		Lobby:  name,
		Player: player,
		Token:  token,
		URL:    fmt.Sprintf("%s/ws/%s/%s", r.cfg.PublicURL, url.PathEscape(name), token),
	}
}

// Claim marks a join token as connected. A token admits one connection
// at a time.
func (r *Registry) Claim(name, token string) (Ticket, error) {
	if _, err := uuid.Parse(token); err != nil {
		return Ticket{}, fmt.Errorf("claim: %w", ErrTokenNotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.lobbies[name]
	if !ok {
		return Ticket{}, fmt.Errorf("claim in %q: %w", name, ErrLobbyNotFound)
	}
	res, ok := e.tokens[token]
	if !ok {
		return Ticket{}, fmt.Errorf("claim in %q: %w", name, ErrTokenNotFound)
	}
	if res.connected {
		return Ticket{}, fmt.Errorf("claim %q in %q: %w", res.player, name, ErrTokenInUse)
	}
	res.connected = true
	return Ticket{Lobby: name, Player: res.player, Token: token, Handle: e.session.Handle()}, nil
}

// Release frees a reservation once its connection is gone, so the name
// can be registered again.
func (r *Registry) Release(name, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.lobbies[name]
	if !ok {
		return
	}
	if res, ok := e.tokens[token]; ok {
		delete(e.names, res.player)
		delete(e.tokens, token)
	}
}

// Leave asks the ticket's lobby to drop its player, then frees the seat.
// When the request cannot be delivered the seat stays taken, since the
// player may still be in the simulation and must not be admitted twice.
func (r *Registry) Leave(ctx context.Context, ticket Ticket) error {
	err := ticket.Handle.RemovePlayer(ctx, ticket.Player)
	if err != nil && !errors.Is(err, ErrLobbyClosed) {
		return fmt.Errorf("leave %q in %q: %w", ticket.Player, ticket.Lobby, err)
	}
	r.Release(ticket.Lobby, ticket.Token)
	return nil
}

// Delete stops a lobby. Connected clients see their subscriptions close.
func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	e, ok := r.lobbies[name]
	if ok {
		delete(r.lobbies, name)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("delete %q: %w", name, ErrLobbyNotFound)
	}
	e.session.Stop()
	r.logger.Printf("Lobby %s deleted", name)
	return nil
}

// List returns all lobbies with their reserved seat count, by name.
func (r *Registry) List() []LobbyInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]LobbyInfo, 0, len(r.lobbies))
	for name, e := range r.lobbies {
		out = append(out, LobbyInfo{Name: name, Players: len(e.names)})
	}
	slices.SortFunc(out, func(a, b LobbyInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Close stops every lobby and waits for their sessions to return.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.lobbies))
	for name, e := range r.lobbies {
		sessions = append(sessions, e.session)
		delete(r.lobbies, name)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
	r.wg.Wait()
}

// IsNotFound reports whether err means the lobby or token does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLobbyNotFound) || errors.Is(err, ErrTokenNotFound)
}
