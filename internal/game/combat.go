package game

import (
	"fmt"
	"log"
	"slices"
)

// resolve applies actions to the state. Bullets are dropped by id in a
// single filter pass after every action has been seen, so removing one
// never shifts another that is still waiting to be removed.
func (gs *GameState) resolve(actions []Action) ([]Event, error) {
	if len(actions) == 0 {
		return nil, nil
	}

	var events []Event
	drop := make(map[uint64]struct{})

	for _, action := range actions {
		switch action.Kind {
		case ActionPlayerDied:
			if err := gs.killPlayer(action.Name); err != nil {
				return events, err
			}
			if action.BulletID != 0 {
				drop[action.BulletID] = struct{}{}
			}
			events = append(events, Death(action.Name))
			log.Printf("Player %s was hit by bullet %d", action.Name, action.BulletID)

		case ActionBulletExpired:
			drop[action.BulletID] = struct{}{}

		case ActionPlayerLeft:
			if _, ok := gs.players[action.Name]; !ok {
				// already dead
				continue
			}
			delete(gs.players, action.Name)
			events = append(events, Leave(action.Name))

		default:
			return events, fmt.Errorf("resolve %s: unknown action", action.Kind)
		}
	}

	if len(drop) > 0 {
		gs.bullets = slices.DeleteFunc(gs.bullets, func(b BulletState) bool {
			_, gone := drop[b.ID]
			return gone
		})
	}
	return events, nil
}

// killPlayer removes a dead player. The player must be present: deaths
// are only produced for players that were just updated.
func (gs *GameState) killPlayer(name string) error {
	if _, ok := gs.players[name]; !ok {
		return fmt.Errorf("kill %q: %w", name, ErrPlayerNotFound)
	}
	delete(gs.players, name)
	return nil
}
