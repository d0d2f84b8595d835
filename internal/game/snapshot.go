package game

// Snapshot is the full serialized simulation handed to newly joined
// clients for catch-up.
type Snapshot struct {
	Players  map[string]PlayerState `json:"players" msgpack:"players"`
	Bullets  []BulletState          `json:"bullets" msgpack:"bullets"`
	LastTime float64                `json:"last_time" msgpack:"last_time"`
}

// Snapshot copies the current state. The copy shares nothing with the
// simulation and may be handed to other goroutines.
func (gs *GameState) Snapshot() Snapshot {
	snap := Snapshot{
		Players:  make(map[string]PlayerState, len(gs.players)),
		Bullets:  make([]BulletState, len(gs.bullets)),
		LastTime: gs.lastTickTime,
	}
	for name, player := range gs.players {
		snap.Players[name] = *player
	}
	copy(snap.Bullets, gs.bullets)
	return snap
}

// Player returns a copy of the named player.
func (gs *GameState) Player(name string) (PlayerState, bool) {
	player, ok := gs.players[name]
	if !ok {
		return PlayerState{}, false
	}
	return *player, true
}

// Bullets returns a copy of the bullets in flight, oldest first.
func (gs *GameState) Bullets() []BulletState {
	out := make([]BulletState, len(gs.bullets))
	copy(out, gs.bullets)
	return out
}

// NumPlayers returns the number of players in the simulation.
func (gs *GameState) NumPlayers() int {
	return len(gs.players)
}

// LastTickTime returns the clock value of the latest tick, in seconds.
func (gs *GameState) LastTickTime() float64 {
	return gs.lastTickTime
}
