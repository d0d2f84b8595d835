package lobby

import (
	"fmt"
	"log"
	"sync"
	"time"

	"skirmish/internal/game"
)

// Config tunes sessions created by a registry.
type Config struct {
	TickInterval     time.Duration
	EventBuffer      int // pending client events per lobby
	SetupBuffer      int // pending setup instructions per lobby
	SubscriberBuffer int // undelivered events per connection
	PublicURL        string
	Clock            func() time.Time
	Logger           *log.Logger
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{
		TickInterval:     33 * time.Millisecond,
		EventBuffer:      256,
		SetupBuffer:      64,
		SubscriberBuffer: 256,
		PublicURL:        "ws://127.0.0.1:8000",
		Clock:            time.Now,
		Logger:           log.Default(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = def.EventBuffer
	}
	if c.SetupBuffer <= 0 {
		c.SetupBuffer = def.SetupBuffer
	}
	if c.SubscriberBuffer <= 0 {
		c.SubscriberBuffer = def.SubscriberBuffer
	}
	if c.PublicURL == "" {
		c.PublicURL = def.PublicURL
	}
	if c.Clock == nil {
		c.Clock = def.Clock
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
	return c
}

// Session owns one lobby's simulation. Run is the only code that touches
// the simulation; everything else reaches it through the setup inbox and
// the event channel.
type Session struct {
	name      string
	sim       *game.GameState
	setup     chan SetupMessage
	events    chan game.Event
	broadcast *Broadcaster
	tick      time.Duration
	clock     func() time.Time
	logger    *log.Logger

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewSession wraps sim in a session that has not started yet. The caller
// hands sim over and must not use it afterwards.
func NewSession(name string, sim *game.GameState, cfg Config) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		name:      name,
		sim:       sim,
		setup:     make(chan SetupMessage, cfg.SetupBuffer),
		events:    make(chan game.Event, cfg.EventBuffer),
		broadcast: NewBroadcaster(cfg.SubscriberBuffer, cfg.Logger),
		tick:      cfg.TickInterval,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Name returns the lobby name.
func (s *Session) Name() string {
	return s.name
}

// Handle returns the session's external handle.
func (s *Session) Handle() Handle {
	return Handle{setup: s.setup, done: s.done}
}

// Stop asks Run to return. It does not wait.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
	})
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Run blocks until the first player joins, then ticks until Stop is
// called or the simulation reports a broken invariant. Every subscription
// is closed on return.
func (s *Session) Run() error {
	defer close(s.done)
	defer s.broadcast.Close()

	started, err := s.awaitFirstJoin()
	if err != nil || !started {
		return err
	}
	s.logger.Printf("Lobby %s running", s.name)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			s.logger.Printf("Lobby %s stopped", s.name)
			return nil
		case <-ticker.C:
			if err := s.step(); err != nil {
				return fmt.Errorf("lobby %s: %w", s.name, err)
			}
		}
	}
}

func (s *Session) awaitFirstJoin() (bool, error) {
	for {
		select {
		case <-s.quit:
			return false, nil
		case msg := <-s.setup:
			switch m := msg.(type) {
			case AddPlayer:
				s.sim.Rebase(game.Seconds(s.clock()))
				if err := s.handleSetup(m); err != nil {
					return false, fmt.Errorf("lobby %s: %w", s.name, err)
				}
				return true, nil
			case GetChannels:
				s.replyChannels(m)
			case RemovePlayer:
				// nobody has joined yet
			}
		}
	}
}

// step runs one tick: advance the simulation, fold at most one client
// event, then drain setup instructions.
func (s *Session) step() error {
	events, err := s.sim.Update(game.Seconds(s.clock()))
	s.publish(events...)
	if err != nil {
		return err
	}

	select {
	case ev := <-s.events:
		if s.sim.React(ev) {
			s.publish(ev)
		}
	default:
	}

	for {
		select {
		case msg := <-s.setup:
			if err := s.handleSetup(msg); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (s *Session) handleSetup(msg SetupMessage) error {
	switch m := msg.(type) {
	case AddPlayer:
		// Settle queued removals so a rejoin under the same name is not
		// mistaken for a duplicate.
		events, err := s.sim.ApplyPending()
		s.publish(events...)
		if err != nil {
			return err
		}

		spawn := game.Vector2{X: game.SpawnX, Y: game.SpawnY}
		if err := s.sim.AddPlayer(m.Name, spawn); err != nil {
			return err
		}
		s.logger.Printf("Player %s joined lobby %s", m.Name, s.name)
		s.publish(game.PlayerJoined(m.Name, spawn), game.StateSync(s.sim.Snapshot()))

	case GetChannels:
		s.replyChannels(m)

	case RemovePlayer:
		s.sim.Queue(game.PlayerLeft(m.Name))
		s.logger.Printf("Player %s left lobby %s", m.Name, s.name)
	}
	return nil
}

// replyChannels primes the new subscription with a snapshot so the
// requester starts from the current state.
func (s *Session) replyChannels(m GetChannels) {
	sub := s.broadcast.Subscribe(game.StateSync(s.sim.Snapshot()))
	ch := Channels{
		Events: sub,
		Sender: EventSender{events: s.events, done: s.done},
	}
	select {
	case m.Reply <- ch:
	default:
		s.logger.Printf("Lobby %s: channel request abandoned", s.name)
		sub.Close()
	}
}

func (s *Session) publish(events ...game.Event) {
	for _, ev := range events {
		s.broadcast.Publish(ev)
	}
}
