package game

import (
	"errors"
	"testing"
)

func newTestState(t *testing.T, players map[string]Vector2) *GameState {
	t.Helper()
	gs := NewGameState(100)
	for name, pos := range players {
		if err := gs.AddPlayer(name, pos); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	return gs
}

func TestAddPlayerDefaults(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"a": {X: 3, Y: 4}})

	got, ok := gs.Player("a")
	if !ok {
		t.Fatalf("player missing")
	}
	want := PlayerState{Name: "a", Position: Vector2{X: 3, Y: 4}, Health: DefaultHealth, Alive: true}
	if got != want {
		t.Fatalf("player = %+v, want %+v", got, want)
	}
}

func TestAddPlayerDuplicate(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"a": {}})

	err := gs.AddPlayer("a", Vector2{X: 1})
	if !errors.Is(err, ErrPlayerExists) {
		t.Fatalf("err = %v, want ErrPlayerExists", err)
	}
	if p, _ := gs.Player("a"); p.Position != (Vector2{}) {
		t.Fatalf("duplicate add overwrote player: %+v", p)
	}
}

func TestUpdateAdvancesClock(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"a": {}})
	gs.React(VelocityChanged("a", 2, 4))

	if _, err := gs.Update(100.5); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gs.LastTickTime() != 100.5 {
		t.Fatalf("last tick = %v", gs.LastTickTime())
	}
	if p, _ := gs.Player("a"); p.Position != (Vector2{X: 1, Y: 2}) {
		t.Fatalf("position = %+v, want {1 2}", p.Position)
	}
}

func TestShootSpawnsBulletAheadOfPlayer(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"A": {}})

	if !gs.React(PlayerShot("A")) {
		t.Fatalf("shot was not applied")
	}

	bullets := gs.Bullets()
	if len(bullets) != 1 {
		t.Fatalf("bullets = %d, want 1", len(bullets))
	}
	b := bullets[0]
	if !approx(b.Position.X, 11) || !approx(b.Position.Y, 0) {
		t.Fatalf("bullet position = %+v, want {11 0}", b.Position)
	}
	if !approx(b.Velocity.X, BulletSpeed) || !approx(b.Velocity.Y, 0) {
		t.Fatalf("bullet velocity = %+v, want {%v 0}", b.Velocity, BulletSpeed)
	}
	if b.Owner != "A" || b.Age != 0 || b.Lifetime != BulletLifetime {
		t.Fatalf("unexpected bullet %+v", b)
	}
}

func TestShootFollowsFacing(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"A": {X: 5, Y: 5}})
	gs.React(AngleChanged("A", 90))
	gs.React(PlayerShot("A"))

	b := gs.Bullets()[0]
	if !approx(b.Position.X, 5) || !approx(b.Position.Y, 16) {
		t.Fatalf("bullet position = %+v, want {5 16}", b.Position)
	}
	if !approx(b.Velocity.X, 0) || !approx(b.Velocity.Y, BulletSpeed) {
		t.Fatalf("bullet velocity = %+v", b.Velocity)
	}
}

func TestBulletIDsAreMonotonic(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"A": {}})
	for range 3 {
		gs.React(PlayerShot("A"))
	}
	for i, b := range gs.Bullets() {
		if b.ID != uint64(i+1) {
			t.Fatalf("bullet %d has id %d", i, b.ID)
		}
	}
}

func TestReactVelocityIsIdempotent(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"a": {}})
	ev := VelocityChanged("a", 3, -7)

	gs.React(ev)
	first, _ := gs.Player("a")
	gs.React(ev)
	second, _ := gs.Player("a")

	if first.Velocity != second.Velocity || first.Velocity != (Vector2{X: 3, Y: -7}) {
		t.Fatalf("velocities differ: %+v vs %+v", first.Velocity, second.Velocity)
	}
}

func TestReactUnknownPlayer(t *testing.T) {
	gs := newTestState(t, nil)

	for _, ev := range []Event{PlayerShot("ghost"), AngleChanged("ghost", 1), VelocityChanged("ghost", 1, 1)} {
		if gs.React(ev) {
			t.Fatalf("%s for unknown player was applied", ev.Kind)
		}
	}
	if len(gs.Bullets()) != 0 {
		t.Fatalf("ghost spawned a bullet")
	}
}

func TestReactIgnoresServerEvents(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"a": {}})
	if gs.React(Death("a")) {
		t.Fatalf("death must not be folded through React")
	}
	if _, ok := gs.Player("a"); !ok {
		t.Fatalf("player removed")
	}
}

func TestUpdateKillsPlayerHitByBullet(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"A": {}, "B": {X: 15}})
	gs.React(PlayerShot("A")) // spawns at (11,0), 4 away from B

	events, err := gs.Update(100.1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventDeath || events[0].Name != "B" {
		t.Fatalf("events = %+v, want a single Death(B)", events)
	}

	snap := gs.Snapshot()
	if _, ok := snap.Players["B"]; ok {
		t.Fatalf("B still in snapshot")
	}
	if _, ok := snap.Players["A"]; !ok {
		t.Fatalf("A missing from snapshot")
	}
	if len(snap.Bullets) != 0 {
		t.Fatalf("killing bullet still in flight: %+v", snap.Bullets)
	}

	events, err = gs.Update(100.2)
	if err != nil || len(events) != 0 {
		t.Fatalf("second update: events=%+v err=%v", events, err)
	}
}

func TestUpdateSharedBulletKillsBoth(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"a": {X: -5}, "b": {X: 5}})
	gs.addBullet("x", Vector2{}, Vector2{})

	events, err := gs.Update(100)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %+v, want two deaths", events)
	}
	if gs.NumPlayers() != 0 || len(gs.Bullets()) != 0 {
		t.Fatalf("players=%d bullets=%d", gs.NumPlayers(), len(gs.Bullets()))
	}
}

func TestUpdateRemovesSeveralExpiredBullets(t *testing.T) {
	gs := newTestState(t, nil)
	for i := range 5 {
		gs.addBullet("a", Vector2{X: float32(1000 * i)}, Vector2{})
		if i%2 == 0 {
			gs.bullets[len(gs.bullets)-1].Age = BulletLifetime - 1
		}
	}

	events, err := gs.Update(101)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expiry must not be broadcast, got %+v", events)
	}

	var ids []uint64
	for _, b := range gs.Bullets() {
		ids = append(ids, b.ID)
	}
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 4 {
		t.Fatalf("remaining ids = %v, want [2 4]", ids)
	}
}

func TestQueuedLeaveAppliedBeforeIntegration(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"a": {}, "b": {X: 100}})
	gs.Queue(PlayerLeft("a"))
	gs.Queue(PlayerLeft("nobody"))

	events, err := gs.Update(100.5)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventLeave || events[0].Name != "a" {
		t.Fatalf("events = %+v, want a single Leave(a)", events)
	}
	if _, ok := gs.Player("a"); ok {
		t.Fatalf("a still present")
	}

	events, _ = gs.Update(101)
	if len(events) != 0 {
		t.Fatalf("queue was not drained: %+v", events)
	}
}

func TestQueuedDeathOfMissingPlayerIsFault(t *testing.T) {
	gs := newTestState(t, nil)
	gs.Queue(PlayerDied("nobody", 0))

	if _, err := gs.Update(100); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}
}

func TestApplyPendingAllowsRejoin(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"a": {}})
	gs.Queue(PlayerLeft("a"))

	if _, err := gs.ApplyPending(); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := gs.AddPlayer("a", Vector2{}); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"a": {}})
	gs.React(PlayerShot("a"))

	snap := gs.Snapshot()
	gs.React(VelocityChanged("a", 9, 9))
	gs.bullets[0].Position.X = 999

	if snap.Players["a"].Velocity != (Vector2{}) {
		t.Fatalf("snapshot player aliased live state")
	}
	if snap.Bullets[0].Position.X == 999 {
		t.Fatalf("snapshot bullets aliased live state")
	}
	if snap.LastTime != 100 {
		t.Fatalf("last time = %v", snap.LastTime)
	}
}

func TestRebaseSkipsIdleTime(t *testing.T) {
	gs := newTestState(t, map[string]Vector2{"a": {}})
	gs.React(VelocityChanged("a", 1, 0))

	gs.Rebase(500)
	if _, err := gs.Update(501); err != nil {
		t.Fatalf("update: %v", err)
	}
	if p, _ := gs.Player("a"); p.Position.X != 1 {
		t.Fatalf("position = %+v, want x=1", p.Position)
	}
}
