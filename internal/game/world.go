package game

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
)

var (
	ErrPlayerExists   = errors.New("player already exists")
	ErrPlayerNotFound = errors.New("player not found")
)

// Seconds converts t to fractional seconds since the Unix epoch, the clock
// unit the simulation ticks on.
func Seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// NewGameState creates an empty simulation whose clock starts at now.
func NewGameState(now float64) *GameState {
	return &GameState{
		players:      make(map[string]*PlayerState),
		bullets:      make([]BulletState, 0, 50),
		lastTickTime: now,
		pending:      make([]Action, 0, 10),
		nextBulletID: 1,
	}
}

// Rebase moves the clock to now without advancing any entity, so the next
// Update does not integrate over time spent idle.
func (gs *GameState) Rebase(now float64) {
	gs.lastTickTime = now
}

// AddPlayer inserts a new player at pos. A duplicate name means the caller
// admitted the same player twice and is reported as ErrPlayerExists.
func (gs *GameState) AddPlayer(name string, pos Vector2) error {
	if _, exists := gs.players[name]; exists {
		return fmt.Errorf("add %q: %w", name, ErrPlayerExists)
	}
	gs.players[name] = NewPlayer(name, pos)
	return nil
}

// Queue schedules an action to be applied at the start of the next tick.
func (gs *GameState) Queue(action Action) {
	gs.pending = append(gs.pending, action)
}

// ApplyPending applies every queued action in order and returns the
// events they produce.
func (gs *GameState) ApplyPending() ([]Event, error) {
	if len(gs.pending) == 0 {
		return nil, nil
	}
	queued := gs.pending
	gs.pending = gs.pending[:0:0]
	return gs.resolve(queued)
}

// Update advances the simulation to now and returns the events clients
// must see. Queued actions are settled before anything moves, so a removed
// entity never integrates again. An error is a broken invariant; the
// simulation should not be driven further.
func (gs *GameState) Update(now float64) ([]Event, error) {
	dt := float32(now - gs.lastTickTime)
	gs.lastTickTime = now

	events, err := gs.ApplyPending()
	if err != nil {
		return events, err
	}

	var actions []Action

	// Update all players against the bullets as they stood before moving
	for _, name := range slices.Sorted(maps.Keys(gs.players)) {
		if action, ok := gs.players[name].Update(dt, gs.bullets); ok {
			actions = append(actions, action)
		}
	}

	// Update bullets
	for i := range gs.bullets {
		if action, ok := gs.bullets[i].Update(dt); ok {
			actions = append(actions, action)
		}
	}

	tickEvents, err := gs.resolve(actions)
	return append(events, tickEvents...), err
}

// React folds an already-parsed client event into the state. It reports
// false when the event names a player that is not in the simulation, in
// which case nothing changed and nothing should be broadcast.
func (gs *GameState) React(event Event) bool {
	player, ok := gs.players[event.Name]
	if !ok {
		return false
	}

	switch event.Kind {
	case EventUpdateVelocity:
		player.Velocity = Vector2{X: event.X, Y: event.Y}
	case EventUpdateAngle:
		player.Angle = event.Angle
	case EventShooting:
		pos, vel := muzzle(player)
		gs.addBullet(player.Name, pos, vel)
	default:
		return false
	}
	return true
}

func (gs *GameState) addBullet(owner string, pos, vel Vector2) BulletState {
	bullet := BulletState{
		ID:       gs.nextBulletID,
		Owner:    owner,
		Position: pos,
		Velocity: vel,
		Lifetime: BulletLifetime,
	}
	gs.nextBulletID++
	gs.bullets = append(gs.bullets, bullet)
	return bullet
}
