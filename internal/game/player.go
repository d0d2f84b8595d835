package game

// NewPlayer creates a player at pos with default values.
func NewPlayer(name string, pos Vector2) *PlayerState {
	return &PlayerState{
		Name:     name,
		Position: pos,
		Health:   DefaultHealth,
		Alive:    true,
	}
}

// Update integrates the player's position over dt and checks it against
// every bullet. A bullet hits when its squared distance to the player is
// strictly less than PlayerRadius squared.
//
// When several bullets overlap in the same step the first one in sequence
// order is reported; the others stay in flight.
func (player *PlayerState) Update(dt float32, bullets []BulletState) (Action, bool) {
	player.Position = player.Position.Add(player.Velocity.Scale(dt))

	for i := range bullets {
		if checkBulletPlayerCollision(&bullets[i], player) {
			return PlayerDied(player.Name, bullets[i].ID), true
		}
	}
	return Action{}, false
}

// checkBulletPlayerCollision compares squared distances to avoid a sqrt
func checkBulletPlayerCollision(bullet *BulletState, player *PlayerState) bool {
	return bullet.Position.DistSq(player.Position) < PlayerRadius*PlayerRadius
}
