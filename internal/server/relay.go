package server

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"skirmish/internal/game"
	"skirmish/internal/lobby"
)

const (
	maxMessageSize = 4096
	leaveTimeout   = time.Second
)

// serveClient joins the client to its lobby and relays messages both ways
// until either side goes away.
func (s *Server) serveClient(client *Client) {
	handle := client.ticket.Handle
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		client.Conn.Close()
		s.leave(client)
	}()

	// Register intent first, then collect the handles. The subscription
	// starts with a snapshot that already includes this player.
	if err := handle.AddPlayer(ctx, client.Player); err != nil {
		s.logger.Printf("Player %s could not join lobby %s: %v", client.Player, client.Lobby, err)
		client.sendClose(websocket.CloseGoingAway, "lobby closed")
		return
	}
	channels, err := handle.Channels(ctx)
	if err != nil {
		s.logger.Printf("Player %s got no channels from lobby %s: %v", client.Player, client.Lobby, err)
		client.sendClose(websocket.CloseGoingAway, "lobby closed")
		return
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.handleClientWrites(ctx, client, channels.Events)
	}()

	s.handleClientReads(ctx, client, channels.Sender)

	cancel()
	channels.Events.Close()
	<-writerDone
}

func (s *Server) leave(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
	defer cancel()
	if err := s.registry.Leave(ctx, client.ticket); err != nil {
		s.logger.Printf("Could not remove %s from lobby %s, keeping the seat: %v", client.Player, client.Lobby, err)
	}
}

// handleClientReads reads commands from the client
func (s *Server) handleClientReads(ctx context.Context, client *Client, sender lobby.EventSender) {
	// Set read deadline and pong handler for keepalive
	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(client.pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(client.pongWait))
		return nil
	})

	for {
		_, payload, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Printf("WebSocket error for %s: %v", client.Player, err)
			}
			return
		}
		client.Conn.SetReadDeadline(time.Now().Add(client.pongWait))

		if game.IsPing(payload) {
			continue
		}

		cmd, err := client.codec.DecodeCommand(payload)
		if err != nil {
			s.logger.Printf("Discarding malformed message from %s: %v", client.Player, err)
			continue
		}
		ev, err := cmd.Event(client.Player)
		if err != nil {
			s.logger.Printf("Discarding command from %s: %v", client.Player, err)
			continue
		}

		if err := sender.Send(ctx, ev); err != nil {
			return
		}
	}
}

// handleClientWrites sends lobby events to the client
func (s *Server) handleClientWrites(ctx context.Context, client *Client, events *lobby.Subscription) {
	ticker := time.NewTicker(client.pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-events.Events():
			if !ok {
				if ctx.Err() == nil {
					client.sendClose(websocket.CloseGoingAway, "lobby closed")
				}
				return
			}
			if err := client.sendEvent(ev); err != nil {
				s.logger.Printf("Write error for %s: %v", client.Player, err)
				return
			}

		case <-ticker.C:
			if err := client.sendPing(); err != nil {
				return
			}
		}
	}
}
