package game

// Update advances the bullet by dt and reports expiry once its age reaches
// its lifetime.
func (bullet *BulletState) Update(dt float32) (Action, bool) {
	bullet.Position = bullet.Position.Add(bullet.Velocity.Scale(dt))
	bullet.Age += dt
	if bullet.Age >= bullet.Lifetime {
		return BulletExpired(bullet.ID), true
	}
	return Action{}, false
}

// muzzle returns where and how fast a bullet leaves a shooter.
func muzzle(shooter *PlayerState) (pos, vel Vector2) {
	pos = shooter.Position.Add(FromAngle(shooter.Angle, PlayerRadius+SpawnOffset))
	vel = FromAngle(shooter.Angle, BulletSpeed)
	return pos, vel
}
