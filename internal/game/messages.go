package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrUnknownMessage is returned when a payload matches no variant.
	ErrUnknownMessage = errors.New("unknown message variant")
	// ErrNonFinite is returned for a command carrying NaN or an infinity.
	ErrNonFinite = errors.New("non-finite number in command")
)

// CommandKind enumerates what a client may ask for.
type CommandKind uint8

const (
	CommandUpdateVelocity CommandKind = iota + 1
	CommandShoot
	CommandUpdateAngle
)

// Command is an inbound client request. On the wire it is externally
// tagged: {"UpdateVelocity":{"x":1,"y":0}}, "Shoot" or {"UpdateAngle":90}.
type Command struct {
	Kind  CommandKind
	X, Y  float32
	Angle float32
}

// UpdateVelocity builds a velocity command.
func UpdateVelocity(x, y float32) Command {
	return Command{Kind: CommandUpdateVelocity, X: x, Y: y}
}

// Shoot builds a fire command.
func Shoot() Command {
	return Command{Kind: CommandShoot}
}

// UpdateAngle builds a facing command.
func UpdateAngle(angle float32) Command {
	return Command{Kind: CommandUpdateAngle, Angle: angle}
}

// Event returns the broadcastable event issued on behalf of player.
func (c Command) Event(player string) (Event, error) {
	switch c.Kind {
	case CommandUpdateVelocity:
		return VelocityChanged(player, c.X, c.Y), nil
	case CommandShoot:
		return PlayerShot(player), nil
	case CommandUpdateAngle:
		return AngleChanged(player, c.Angle), nil
	default:
		return Event{}, fmt.Errorf("command kind %d: %w", c.Kind, ErrUnknownMessage)
	}
}

const shootTag = "Shoot"

type velocityBody struct {
	X float32 `json:"x" msgpack:"x"`
	Y float32 `json:"y" msgpack:"y"`
}

type commandEnvelope struct {
	UpdateVelocity *velocityBody `json:"UpdateVelocity,omitempty" msgpack:"UpdateVelocity,omitempty"`
	UpdateAngle    *float32      `json:"UpdateAngle,omitempty" msgpack:"UpdateAngle,omitempty"`
}

func (env commandEnvelope) command() (Command, error) {
	switch {
	case env.UpdateVelocity != nil && env.UpdateAngle == nil:
		if !finite(env.UpdateVelocity.X, env.UpdateVelocity.Y) {
			return Command{}, ErrNonFinite
		}
		return UpdateVelocity(env.UpdateVelocity.X, env.UpdateVelocity.Y), nil
	case env.UpdateAngle != nil && env.UpdateVelocity == nil:
		if !finite(*env.UpdateAngle) {
			return Command{}, ErrNonFinite
		}
		return UpdateAngle(*env.UpdateAngle), nil
	default:
		return Command{}, ErrUnknownMessage
	}
}

func (c Command) envelope() (any, error) {
	switch c.Kind {
	case CommandShoot:
		return shootTag, nil
	case CommandUpdateVelocity:
		return commandEnvelope{UpdateVelocity: &velocityBody{X: c.X, Y: c.Y}}, nil
	case CommandUpdateAngle:
		angle := c.Angle
		return commandEnvelope{UpdateAngle: &angle}, nil
	default:
		return nil, fmt.Errorf("command kind %d: %w", c.Kind, ErrUnknownMessage)
	}
}

func commandFromTag(tag string) (Command, error) {
	if tag != shootTag {
		return Command{}, fmt.Errorf("command %q: %w", tag, ErrUnknownMessage)
	}
	return Shoot(), nil
}

// MarshalJSON implements json.Marshaler.
func (c Command) MarshalJSON() ([]byte, error) {
	env, err := c.envelope()
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Command) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return err
		}
		cmd, err := commandFromTag(tag)
		if err != nil {
			return err
		}
		*c = cmd
		return nil
	}

	var env commandEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	cmd, err := env.command()
	if err != nil {
		return err
	}
	*c = cmd
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (c Command) EncodeMsgpack(enc *msgpack.Encoder) error {
	env, err := c.envelope()
	if err != nil {
		return err
	}
	return enc.Encode(env)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (c *Command) DecodeMsgpack(dec *msgpack.Decoder) error {
	raw, err := dec.DecodeRaw()
	if err != nil {
		return err
	}

	var tag string
	if err := msgpack.Unmarshal(raw, &tag); err == nil {
		cmd, err := commandFromTag(tag)
		if err != nil {
			return err
		}
		*c = cmd
		return nil
	}

	var env commandEnvelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		return err
	}
	cmd, err := env.command()
	if err != nil {
		return err
	}
	*c = cmd
	return nil
}

// EventKind enumerates what the server broadcasts.
type EventKind uint8

const (
	EventAddPlayer EventKind = iota + 1
	EventDeath
	EventShooting
	EventUpdateAngle
	EventUpdateVelocity
	EventGameStateSync
	EventLeave
)

func (k EventKind) String() string {
	switch k {
	case EventAddPlayer:
		return "AddPlayer"
	case EventDeath:
		return "Death"
	case EventShooting:
		return "Shooting"
	case EventUpdateAngle:
		return "UpdateAngle"
	case EventUpdateVelocity:
		return "UpdateVelocity"
	case EventGameStateSync:
		return "GameStateSync"
	case EventLeave:
		return "Leave"
	default:
		return "Unknown"
	}
}

// Event is a state transition broadcast to every client of a lobby.
// X and Y carry the position for AddPlayer and the velocity for
// UpdateVelocity; State is only set for GameStateSync.
type Event struct {
	Kind  EventKind
	Name  string
	X, Y  float32
	Angle float32
	State *Snapshot
}

// PlayerJoined announces a new player at pos.
func PlayerJoined(name string, pos Vector2) Event {
	return Event{Kind: EventAddPlayer, Name: name, X: pos.X, Y: pos.Y}
}

// Death announces a player's removal after being hit.
func Death(name string) Event {
	return Event{Kind: EventDeath, Name: name}
}

// PlayerShot announces that name fired a bullet.
func PlayerShot(name string) Event {
	return Event{Kind: EventShooting, Name: name}
}

// AngleChanged announces a new facing for name.
func AngleChanged(name string, angle float32) Event {
	return Event{Kind: EventUpdateAngle, Name: name, Angle: angle}
}

// VelocityChanged announces a new velocity for name.
func VelocityChanged(name string, x, y float32) Event {
	return Event{Kind: EventUpdateVelocity, Name: name, X: x, Y: y}
}

// StateSync carries a full snapshot for catch-up.
func StateSync(snap Snapshot) Event {
	return Event{Kind: EventGameStateSync, State: &snap}
}

// Leave announces that name disconnected.
func Leave(name string) Event {
	return Event{Kind: EventLeave, Name: name}
}

type addPlayerBody struct {
	X    jsonFloat `json:"x" msgpack:"x"`
	Y    jsonFloat `json:"y" msgpack:"y"`
	Name string    `json:"name" msgpack:"name"`
}

type angleBody struct {
	Angle jsonFloat `json:"angle" msgpack:"angle"`
	Name  string    `json:"name" msgpack:"name"`
}

type namedVelocityBody struct {
	X    jsonFloat `json:"x" msgpack:"x"`
	Y    jsonFloat `json:"y" msgpack:"y"`
	Name string    `json:"name" msgpack:"name"`
}

type eventEnvelope struct {
	AddPlayer      *addPlayerBody     `json:"AddPlayer,omitempty" msgpack:"AddPlayer,omitempty"`
	Death          *string            `json:"Death,omitempty" msgpack:"Death,omitempty"`
	Shooting       *string            `json:"Shooting,omitempty" msgpack:"Shooting,omitempty"`
	UpdateAngle    *angleBody         `json:"UpdateAngle,omitempty" msgpack:"UpdateAngle,omitempty"`
	UpdateVelocity *namedVelocityBody `json:"UpdateVelocity,omitempty" msgpack:"UpdateVelocity,omitempty"`
	GameStateSync  *Snapshot          `json:"GameStateSync,omitempty" msgpack:"GameStateSync,omitempty"`
	Leave          *string            `json:"Leave,omitempty" msgpack:"Leave,omitempty"`
}

func (e Event) envelope() (eventEnvelope, error) {
	name := e.Name
	switch e.Kind {
	case EventAddPlayer:
		return eventEnvelope{AddPlayer: &addPlayerBody{X: jsonFloat(e.X), Y: jsonFloat(e.Y), Name: name}}, nil
	case EventDeath:
		return eventEnvelope{Death: &name}, nil
	case EventShooting:
		return eventEnvelope{Shooting: &name}, nil
	case EventUpdateAngle:
		return eventEnvelope{UpdateAngle: &angleBody{Angle: jsonFloat(e.Angle), Name: name}}, nil
	case EventUpdateVelocity:
		return eventEnvelope{UpdateVelocity: &namedVelocityBody{X: jsonFloat(e.X), Y: jsonFloat(e.Y), Name: name}}, nil
	case EventGameStateSync:
		if e.State == nil {
			return eventEnvelope{}, errors.New("state sync without snapshot")
		}
		return eventEnvelope{GameStateSync: e.State}, nil
	case EventLeave:
		return eventEnvelope{Leave: &name}, nil
	default:
		return eventEnvelope{}, fmt.Errorf("event kind %d: %w", e.Kind, ErrUnknownMessage)
	}
}

func (env eventEnvelope) event() (Event, error) {
	var (
		out Event
		set int
	)
	if env.AddPlayer != nil {
		out = PlayerJoined(env.AddPlayer.Name, Vector2{X: float32(env.AddPlayer.X), Y: float32(env.AddPlayer.Y)})
		set++
	}
	if env.Death != nil {
		out = Death(*env.Death)
		set++
	}
	if env.Shooting != nil {
		out = PlayerShot(*env.Shooting)
		set++
	}
	if env.UpdateAngle != nil {
		out = AngleChanged(env.UpdateAngle.Name, float32(env.UpdateAngle.Angle))
		set++
	}
	if env.UpdateVelocity != nil {
		out = VelocityChanged(env.UpdateVelocity.Name, float32(env.UpdateVelocity.X), float32(env.UpdateVelocity.Y))
		set++
	}
	if env.GameStateSync != nil {
		out = StateSync(*env.GameStateSync)
		set++
	}
	if env.Leave != nil {
		out = Leave(*env.Leave)
		set++
	}
	if set != 1 {
		return Event{}, ErrUnknownMessage
	}
	return out, nil
}

// MarshalJSON implements json.Marshaler.
func (e Event) MarshalJSON() ([]byte, error) {
	env, err := e.envelope()
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Event) UnmarshalJSON(data []byte) error {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	ev, err := env.event()
	if err != nil {
		return err
	}
	*e = ev
	return nil
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (e Event) EncodeMsgpack(enc *msgpack.Encoder) error {
	env, err := e.envelope()
	if err != nil {
		return err
	}
	return enc.Encode(env)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (e *Event) DecodeMsgpack(dec *msgpack.Decoder) error {
	var env eventEnvelope
	if err := dec.Decode(&env); err != nil {
		return err
	}
	ev, err := env.event()
	if err != nil {
		return err
	}
	*e = ev
	return nil
}
