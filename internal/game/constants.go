package game

// Entity geometry and ballistics
const (
	PlayerRadius   = 10.0
	BulletRadius   = 3.0 // drawn size only; hits test the player radius
	BulletSpeed    = 20.0
	SpawnOffset    = 1.0  // gap between the shooter's edge and a new bullet
	BulletLifetime = 10.0 // seconds
	DefaultHealth  = 100
)

// Spawn point for joining players
const (
	SpawnX = 0.0
	SpawnY = 0.0
)

// Keep-alive payloads accepted on the wire and ignored
const (
	PingMessage   = "ping"
	PingMessageNL = "ping\n"
)
