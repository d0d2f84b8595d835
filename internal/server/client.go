package server

import (
	"log"
	"time"

	"github.com/gorilla/websocket"

	"skirmish/internal/game"
	"skirmish/internal/lobby"
)

// Client is one player's WebSocket connection to a lobby.
type Client struct {
	Lobby  string
	Player string
	Conn   *websocket.Conn

	ticket     lobby.Ticket
	codec      game.Codec
	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
	logger     *log.Logger
}

// NewClient creates a client for a claimed ticket
func NewClient(ticket lobby.Ticket, conn *websocket.Conn, codec game.Codec, s *Server) *Client {
	return &Client{
		Lobby:      ticket.Lobby,
		Player:     ticket.Player,
		Conn:       conn,
		ticket:     ticket,
		codec:      codec,
		writeWait:  s.cfg.WriteWait,
		pongWait:   s.cfg.PongWait,
		pingPeriod: s.cfg.PingPeriod(),
		logger:     s.logger,
	}
}

func (client *Client) frameType() int {
	if client.codec.Binary() {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// sendEvent encodes and writes one event. Encoding failures are logged and
// skipped; write failures are returned.
func (client *Client) sendEvent(ev game.Event) error {
	data, err := client.codec.EncodeEvent(ev)
	if err != nil {
		client.logger.Printf("Error marshaling %s for %s: %v", ev.Kind, client.Player, err)
		return nil
	}

	client.Conn.SetWriteDeadline(time.Now().Add(client.writeWait))
	return client.Conn.WriteMessage(client.frameType(), data)
}

func (client *Client) sendPing() error {
	client.Conn.SetWriteDeadline(time.Now().Add(client.writeWait))
	return client.Conn.WriteMessage(websocket.PingMessage, nil)
}

func (client *Client) sendClose(code int, text string) {
	client.Conn.SetWriteDeadline(time.Now().Add(client.writeWait))
	client.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
}
