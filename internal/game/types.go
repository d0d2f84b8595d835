package game

import "encoding/json"

// PlayerState is one player's authoritative record within a lobby.
type PlayerState struct {
	Name     string  `json:"name" msgpack:"name"`
	Position Vector2 `json:"position" msgpack:"position"`
	Velocity Vector2 `json:"velocity" msgpack:"velocity"`
	Angle    float32 `json:"angle" msgpack:"angle"` // facing, in degrees
	Health   int32   `json:"health" msgpack:"health"`
	Alive    bool    `json:"alive" msgpack:"alive"`
}

// MarshalJSON implements json.Marshaler. A non-finite angle is written
// as null.
func (p PlayerState) MarshalJSON() ([]byte, error) {
	type plain PlayerState
	return json.Marshal(struct {
		plain
		Angle jsonFloat `json:"angle"`
	}{plain(p), jsonFloat(p.Angle)})
}

// BulletState is a projectile in flight. ID is stable for the bullet's
// whole lifetime and never reused within a simulation.
type BulletState struct {
	ID       uint64  `json:"id" msgpack:"id"`
	Owner    string  `json:"owner" msgpack:"owner"`
	Position Vector2 `json:"position" msgpack:"position"`
	Velocity Vector2 `json:"velocity" msgpack:"velocity"`
	Lifetime float32 `json:"lifetime" msgpack:"lifetime"`
	Age      float32 `json:"time" msgpack:"time"`
}

// ActionKind enumerates internal state transitions.
type ActionKind uint8

const (
	ActionPlayerDied ActionKind = iota + 1
	ActionBulletExpired
	ActionPlayerLeft
)

func (k ActionKind) String() string {
	switch k {
	case ActionPlayerDied:
		return "player_died"
	case ActionBulletExpired:
		return "bullet_expired"
	case ActionPlayerLeft:
		return "player_left"
	default:
		return "unknown"
	}
}

// Action is a pending transition produced by a tick or queued between
// ticks. Name is set for player actions, BulletID for bullet actions and
// for the bullet that killed a player.
type Action struct {
	Kind     ActionKind
	Name     string
	BulletID uint64
}

// PlayerDied reports that name was hit by the bullet with the given id.
func PlayerDied(name string, bulletID uint64) Action {
	return Action{Kind: ActionPlayerDied, Name: name, BulletID: bulletID}
}

// BulletExpired reports that the bullet outlived its lifetime.
func BulletExpired(id uint64) Action {
	return Action{Kind: ActionBulletExpired, BulletID: id}
}

// PlayerLeft removes a player whose connection went away.
func PlayerLeft(name string) Action {
	return Action{Kind: ActionPlayerLeft, Name: name}
}

// GameState is the authoritative simulation of one lobby. It is not safe
// for concurrent use; a single owner goroutine drives it.
type GameState struct {
	players      map[string]*PlayerState
	bullets      []BulletState
	lastTickTime float64
	pending      []Action
	nextBulletID uint64
}
