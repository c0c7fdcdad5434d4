package protocol

import (
	"errors"
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// ErrUnknownMessageType is returned for values that are not protocol messages.
var ErrUnknownMessageType = errors.New("unknown message type")

type message interface {
	msgp.Marshaler
	msgp.Unmarshaler
}

// TypeOf returns the wire type of a message value.
func TypeOf(v any) (string, error) {
	switch v.(type) {
	case *Hello:
		return TypeHello, nil
	case *Action:
		return TypeAction, nil
	case *GameStart:
		return TypeGameStart, nil
	case *ActionRequest:
		return TypeActionRequest, nil
	case *PlayerAction:
		return TypePlayerAction, nil
	case *GameOver:
		return TypeGameOver, nil
	case *Error:
		return TypeError, nil
	default:
		return "", ErrUnknownMessageType
	}
}

// Marshal serializes a message to msgpack format
func Marshal(v any) ([]byte, error) {
	if _, err := TypeOf(v); err != nil {
		return nil, err
	}
	return v.(message).MarshalMsg(nil)
}

// Unmarshal deserializes msgpack data into a message. The encoded type must
// match v.
func Unmarshal(data []byte, v any) error {
	want, err := TypeOf(v)
	if err != nil {
		return err
	}
	got, err := PeekType(data)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %s message, got %s", want, got)
	}
	_, err = v.(message).UnmarshalMsg(data)
	return err
}

// PeekType returns the type key of an encoded message without decoding the
// rest of it.
func PeekType(data []byte) (string, error) {
	n, b, err := msgp.ReadMapHeaderBytes(data)
	if err != nil {
		return "", err
	}
	for range n {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return "", err
		}
		if key == "type" {
			typ, _, err := msgp.ReadStringBytes(b)
			return typ, err
		}
		if b, err = msgp.Skip(b); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("message has no type")
}
