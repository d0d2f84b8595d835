package lobby

import (
	"context"
	"errors"

	"skirmish/internal/game"
)

var (
	ErrLobbyClosed   = errors.New("lobby closed")
	ErrLobbyExists   = errors.New("lobby already exists")
	ErrLobbyNotFound = errors.New("lobby not found")
	ErrPlayerTaken   = errors.New("player name taken")
	ErrTokenNotFound = errors.New("join token not found")
	ErrTokenInUse    = errors.New("join token already connected")
	ErrInvalidName   = errors.New("name must not be empty")
)

// SetupMessage is an instruction for a session's setup inbox.
type SetupMessage interface {
	setupMessage()
}

// AddPlayer admits a player into the simulation.
type AddPlayer struct {
	Name string
}

// GetChannels asks for a fresh broadcast subscription and the lobby's
// event sender. The session answers on Reply, which should be buffered.
type GetChannels struct {
	Reply chan<- Channels
}

// RemovePlayer drops a player whose connection ended.
type RemovePlayer struct {
	Name string
}

func (AddPlayer) setupMessage()    {}
func (GetChannels) setupMessage()  {}
func (RemovePlayer) setupMessage() {}

// Channels are the handles a connection needs to take part in a lobby.
type Channels struct {
	Events *Subscription
	Sender EventSender
}

// EventSender submits client events to a session.
type EventSender struct {
	events chan<- game.Event
	done   <-chan struct{}
}

// Send queues ev for the session. It fails with ErrLobbyClosed once the
// session has stopped.
func (s EventSender) Send(ctx context.Context, ev game.Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrLobbyClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handle is how everything outside a session talks to it.
type Handle struct {
	setup chan<- SetupMessage
	done  <-chan struct{}
}

// Done is closed when the session has stopped.
func (h Handle) Done() <-chan struct{} {
	return h.done
}

func (h Handle) send(ctx context.Context, msg SetupMessage) error {
	select {
	case h.setup <- msg:
		return nil
	case <-h.done:
		return ErrLobbyClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddPlayer registers intent to join. The player is inserted on the
// session's next setup drain.
func (h Handle) AddPlayer(ctx context.Context, name string) error {
	return h.send(ctx, AddPlayer{Name: name})
}

// RemovePlayer asks the session to drop name on its next tick.
func (h Handle) RemovePlayer(ctx context.Context, name string) error {
	return h.send(ctx, RemovePlayer{Name: name})
}

// Channels requests a subscription and event sender and waits for them.
func (h Handle) Channels(ctx context.Context) (Channels, error) {
	reply := make(chan Channels, 1)
	if err := h.send(ctx, GetChannels{Reply: reply}); err != nil {
		return Channels{}, err
	}
	select {
	case ch := <-reply:
		return ch, nil
	case <-h.done:
		return Channels{}, ErrLobbyClosed
	case <-ctx.Done():
		return Channels{}, ctx.Err()
	}
}
