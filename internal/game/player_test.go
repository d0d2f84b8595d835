package game

import "testing"

func TestPlayerUpdateIntegratesLinearly(t *testing.T) {
	player := NewPlayer("a", Vector2{X: 1, Y: 2})
	player.Velocity = Vector2{X: 4, Y: -2}

	if _, died := player.Update(0.5, nil); died {
		t.Fatalf("player died with no bullets")
	}
	if player.Position != (Vector2{X: 3, Y: 1}) {
		t.Fatalf("position = %+v, want {3 1}", player.Position)
	}
}

func TestPlayerCollisionIsStrict(t *testing.T) {
	tests := []struct {
		name   string
		bullet Vector2
		died   bool
	}{
		{"inside", Vector2{X: 9.5, Y: 0}, true},
		{"on the edge", Vector2{X: 6, Y: 8}, false}, // d² == 100
		{"outside", Vector2{X: 10.5, Y: 0}, false},
		{"centre", Vector2{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := NewPlayer("a", Vector2{})
			bullets := []BulletState{{ID: 7, Position: tt.bullet, Lifetime: BulletLifetime}}

			action, died := player.Update(0, bullets)
			if died != tt.died {
				t.Fatalf("died = %v, want %v", died, tt.died)
			}
			if died && (action.Kind != ActionPlayerDied || action.Name != "a" || action.BulletID != 7) {
				t.Fatalf("unexpected action %+v", action)
			}
		})
	}
}

func TestPlayerCollisionFirstBulletWins(t *testing.T) {
	player := NewPlayer("a", Vector2{})
	bullets := []BulletState{
		{ID: 1, Position: Vector2{X: 50}},
		{ID: 2, Position: Vector2{X: 1}},
		{ID: 3, Position: Vector2{X: 2}},
	}

	action, died := player.Update(0, bullets)
	if !died {
		t.Fatalf("expected a hit")
	}
	if action.BulletID != 2 {
		t.Fatalf("hit by bullet %d, want first overlapping bullet 2", action.BulletID)
	}
}

func TestPlayerCollisionUsesIntegratedPosition(t *testing.T) {
	player := NewPlayer("a", Vector2{X: -30})
	player.Velocity = Vector2{X: 10}
	bullets := []BulletState{{ID: 1, Position: Vector2{}}}

	if _, died := player.Update(1, bullets); died {
		t.Fatalf("player at x=-20 should not be hit")
	}
	if _, died := player.Update(1.5, bullets); !died {
		t.Fatalf("player at x=-5 should be hit")
	}
}
