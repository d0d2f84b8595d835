package game

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec translates between wire frames and messages for one connection.
type Codec interface {
	Name() string
	// Binary reports whether frames are binary rather than text.
	Binary() bool
	EncodeEvent(Event) ([]byte, error)
	DecodeCommand([]byte) (Command, error)

	// The client side of the protocol.
	EncodeCommand(Command) ([]byte, error)
	DecodeEvent([]byte) (Event, error)
}

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// CodecByName returns the codec registered under name. An empty name
// selects JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return JSONCodec{}, nil
	case CodecMsgpack:
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("codec %q: %w", name, ErrUnknownMessage)
	}
}

// IsPing reports whether payload is a keep-alive that carries no command.
func IsPing(payload []byte) bool {
	s := string(payload)
	return s == PingMessage || s == PingMessageNL
}

// JSONCodec speaks externally tagged JSON in text frames.
type JSONCodec struct{}

func (JSONCodec) Name() string { return CodecJSON }
func (JSONCodec) Binary() bool { return false }

func (JSONCodec) EncodeEvent(e Event) ([]byte, error) {
	return json.Marshal(e)
}

func (JSONCodec) DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	return cmd, nil
}

func (JSONCodec) EncodeCommand(c Command) ([]byte, error) {
	return json.Marshal(c)
}

func (JSONCodec) DecodeEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return e, nil
}

// MsgpackCodec speaks the same envelopes packed with msgpack in binary
// frames.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return CodecMsgpack }
func (MsgpackCodec) Binary() bool { return true }

func (MsgpackCodec) EncodeEvent(e Event) ([]byte, error) {
	return msgpack.Marshal(e)
}

func (MsgpackCodec) DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := msgpack.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	return cmd, nil
}

func (MsgpackCodec) EncodeCommand(c Command) ([]byte, error) {
	return msgpack.Marshal(c)
}

func (MsgpackCodec) DecodeEvent(data []byte) (Event, error) {
	var e Event
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return e, nil
}
