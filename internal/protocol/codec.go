package protocol

import (
	"github.com/tinylib/msgp/msgp"
)

// header starts a message map with n fields plus the type key.
func header(b []byte, typ string, n int) []byte {
	b = msgp.AppendMapHeader(b, uint32(n+1))
	b = msgp.AppendString(b, "type")
	return msgp.AppendString(b, typ)
}

func appendInts(b []byte, xs []int) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(xs)))
	for _, x := range xs {
		b = msgp.AppendInt(b, x)
	}
	return b
}

func appendStrings(b []byte, xs []string) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(xs)))
	for _, x := range xs {
		b = msgp.AppendString(b, x)
	}
	return b
}

func readInts(b []byte) ([]int, []byte, error) {
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	xs := make([]int, n)
	for i := range xs {
		xs[i], b, err = msgp.ReadIntBytes(b)
		if err != nil {
			return nil, b, err
		}
	}
	return xs, b, nil
}

func readStrings(b []byte) ([]string, []byte, error) {
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	xs := make([]string, n)
	for i := range xs {
		xs[i], b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
	}
	return xs, b, nil
}

// decodeMap walks a msgpack map, handing each key to field. The type key
// and keys field does not consume are skipped.
func decodeMap(b []byte, field func(key string, b []byte) ([]byte, bool, error)) ([]byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, err
	}
	for range n {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return b, err
		}
		var ok bool
		if key != "type" {
			b, ok, err = field(key, b)
			if err != nil {
				return b, msgp.WrapError(err, key)
			}
		}
		if !ok {
			if b, err = msgp.Skip(b); err != nil {
				return b, err
			}
		}
	}
	return b, nil
}

// MarshalMsg implements msgp.Marshaler
func (m *Hello) MarshalMsg(b []byte) ([]byte, error) {
	b = header(b, TypeHello, 1)
	b = msgp.AppendString(b, "name")
	return msgp.AppendString(b, m.Name), nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (m *Hello) UnmarshalMsg(b []byte) ([]byte, error) {
	return decodeMap(b, func(key string, b []byte) (o []byte, ok bool, err error) {
		switch key {
		case "name":
			m.Name, o, err = msgp.ReadStringBytes(b)
			return o, true, err
		}
		return b, false, nil
	})
}

// MarshalMsg implements msgp.Marshaler
func (m *Action) MarshalMsg(b []byte) ([]byte, error) {
	b = header(b, TypeAction, 1)
	b = msgp.AppendString(b, "action")
	return msgp.AppendString(b, m.Action), nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (m *Action) UnmarshalMsg(b []byte) ([]byte, error) {
	return decodeMap(b, func(key string, b []byte) (o []byte, ok bool, err error) {
		switch key {
		case "action":
			m.Action, o, err = msgp.ReadStringBytes(b)
			return o, true, err
		}
		return b, false, nil
	})
}

// MarshalMsg implements msgp.Marshaler
func (m *GameStart) MarshalMsg(b []byte) ([]byte, error) {
	b = header(b, TypeGameStart, 3)
	b = msgp.AppendString(b, "game_id")
	b = msgp.AppendString(b, m.GameID)
	b = msgp.AppendString(b, "seat")
	b = msgp.AppendInt(b, m.Seat)
	b = msgp.AppendString(b, "players")
	return appendStrings(b, m.Players), nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (m *GameStart) UnmarshalMsg(b []byte) ([]byte, error) {
	return decodeMap(b, func(key string, b []byte) (o []byte, ok bool, err error) {
		switch key {
		case "game_id":
			m.GameID, o, err = msgp.ReadStringBytes(b)
		case "seat":
			m.Seat, o, err = msgp.ReadIntBytes(b)
		case "players":
			m.Players, o, err = readStrings(b)
		default:
			return b, false, nil
		}
		return o, true, err
	})
}

// MarshalMsg implements msgp.Marshaler
func (m *ActionRequest) MarshalMsg(b []byte) ([]byte, error) {
	b = header(b, TypeActionRequest, 3)
	b = msgp.AppendString(b, "game_id")
	b = msgp.AppendString(b, m.GameID)
	b = msgp.AppendString(b, "timeout_ms")
	b = msgp.AppendInt(b, m.TimeoutMS)
	b = msgp.AppendString(b, "view")
	return m.View.MarshalMsg(b)
}

// UnmarshalMsg implements msgp.Unmarshaler
func (m *ActionRequest) UnmarshalMsg(b []byte) ([]byte, error) {
	return decodeMap(b, func(key string, b []byte) (o []byte, ok bool, err error) {
		switch key {
		case "game_id":
			m.GameID, o, err = msgp.ReadStringBytes(b)
		case "timeout_ms":
			m.TimeoutMS, o, err = msgp.ReadIntBytes(b)
		case "view":
			o, err = m.View.UnmarshalMsg(b)
		default:
			return b, false, nil
		}
		return o, true, err
	})
}

// MarshalMsg implements msgp.Marshaler. A View is a plain map without a
// type key since it only appears nested in ActionRequest.
func (v *View) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 12)
	b = msgp.AppendString(b, "seat")
	b = msgp.AppendInt(b, v.Seat)
	b = msgp.AppendString(b, "obs")
	b = appendInts(b, v.Obs)
	b = msgp.AppendString(b, "legal")
	b = appendStrings(b, v.Legal)
	b = msgp.AppendString(b, "top_card")
	b = msgp.AppendInt(b, v.TopCard)
	b = msgp.AppendString(b, "discard_pile")
	b = appendInts(b, v.DiscardPile)
	b = msgp.AppendString(b, "player_discards")
	b = msgp.AppendArrayHeader(b, uint32(len(v.PlayerDiscards)))
	for _, d := range v.PlayerDiscards {
		b = appendInts(b, d)
	}
	b = msgp.AppendString(b, "drawn_card")
	b = msgp.AppendInt(b, v.DrawnCard)
	b = msgp.AppendString(b, "draw_phase")
	b = msgp.AppendBool(b, v.DrawPhase)
	b = msgp.AppendString(b, "called_cambio")
	b = msgp.AppendBool(b, v.CalledCambio)
	b = msgp.AppendString(b, "current_player")
	b = msgp.AppendInt(b, v.CurrentPlayer)
	b = msgp.AppendString(b, "num_players")
	b = msgp.AppendInt(b, v.NumPlayers)
	b = msgp.AppendString(b, "deck_remaining")
	return msgp.AppendInt(b, v.DeckRemaining), nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (v *View) UnmarshalMsg(b []byte) ([]byte, error) {
	return decodeMap(b, func(key string, b []byte) (o []byte, ok bool, err error) {
		switch key {
		case "seat":
			v.Seat, o, err = msgp.ReadIntBytes(b)
		case "obs":
			v.Obs, o, err = readInts(b)
		case "legal":
			v.Legal, o, err = readStrings(b)
		case "top_card":
			v.TopCard, o, err = msgp.ReadIntBytes(b)
		case "discard_pile":
			v.DiscardPile, o, err = readInts(b)
		case "player_discards":
			var n uint32
			n, o, err = msgp.ReadArrayHeaderBytes(b)
			if err != nil {
				return o, true, err
			}
			v.PlayerDiscards = make([][]int, n)
			for i := range v.PlayerDiscards {
				v.PlayerDiscards[i], o, err = readInts(o)
				if err != nil {
					return o, true, err
				}
			}
		case "drawn_card":
			v.DrawnCard, o, err = msgp.ReadIntBytes(b)
		case "draw_phase":
			v.DrawPhase, o, err = msgp.ReadBoolBytes(b)
		case "called_cambio":
			v.CalledCambio, o, err = msgp.ReadBoolBytes(b)
		case "current_player":
			v.CurrentPlayer, o, err = msgp.ReadIntBytes(b)
		case "num_players":
			v.NumPlayers, o, err = msgp.ReadIntBytes(b)
		case "deck_remaining":
			v.DeckRemaining, o, err = msgp.ReadIntBytes(b)
		default:
			return b, false, nil
		}
		return o, true, err
	})
}

// MarshalMsg implements msgp.Marshaler
func (m *PlayerAction) MarshalMsg(b []byte) ([]byte, error) {
	b = header(b, TypePlayerAction, 3)
	b = msgp.AppendString(b, "game_id")
	b = msgp.AppendString(b, m.GameID)
	b = msgp.AppendString(b, "seat")
	b = msgp.AppendInt(b, m.Seat)
	b = msgp.AppendString(b, "action")
	return msgp.AppendString(b, m.Action), nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (m *PlayerAction) UnmarshalMsg(b []byte) ([]byte, error) {
	return decodeMap(b, func(key string, b []byte) (o []byte, ok bool, err error) {
		switch key {
		case "game_id":
			m.GameID, o, err = msgp.ReadStringBytes(b)
		case "seat":
			m.Seat, o, err = msgp.ReadIntBytes(b)
		case "action":
			m.Action, o, err = msgp.ReadStringBytes(b)
		default:
			return b, false, nil
		}
		return o, true, err
	})
}

// MarshalMsg implements msgp.Marshaler
func (m *GameOver) MarshalMsg(b []byte) ([]byte, error) {
	b = header(b, TypeGameOver, 6)
	b = msgp.AppendString(b, "game_id")
	b = msgp.AppendString(b, m.GameID)
	b = msgp.AppendString(b, "seat")
	b = msgp.AppendInt(b, m.Seat)
	b = msgp.AppendString(b, "winner")
	b = msgp.AppendInt(b, m.Winner)
	b = msgp.AppendString(b, "outcome")
	b = msgp.AppendString(b, m.Outcome)
	b = msgp.AppendString(b, "payoffs")
	b = appendInts(b, m.Payoffs)
	b = msgp.AppendString(b, "scores")
	return appendInts(b, m.Scores), nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (m *GameOver) UnmarshalMsg(b []byte) ([]byte, error) {
	return decodeMap(b, func(key string, b []byte) (o []byte, ok bool, err error) {
		switch key {
		case "game_id":
			m.GameID, o, err = msgp.ReadStringBytes(b)
		case "seat":
			m.Seat, o, err = msgp.ReadIntBytes(b)
		case "winner":
			m.Winner, o, err = msgp.ReadIntBytes(b)
		case "outcome":
			m.Outcome, o, err = msgp.ReadStringBytes(b)
		case "payoffs":
			m.Payoffs, o, err = readInts(b)
		case "scores":
			m.Scores, o, err = readInts(b)
		default:
			return b, false, nil
		}
		return o, true, err
	})
}

// MarshalMsg implements msgp.Marshaler
func (m *Error) MarshalMsg(b []byte) ([]byte, error) {
	b = header(b, TypeError, 2)
	b = msgp.AppendString(b, "code")
	b = msgp.AppendString(b, m.Code)
	b = msgp.AppendString(b, "message")
	return msgp.AppendString(b, m.Message), nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (m *Error) UnmarshalMsg(b []byte) ([]byte, error) {
	return decodeMap(b, func(key string, b []byte) (o []byte, ok bool, err error) {
		switch key {
		case "code":
			m.Code, o, err = msgp.ReadStringBytes(b)
		case "message":
			m.Message, o, err = msgp.ReadStringBytes(b)
		default:
			return b, false, nil
		}
		return o, true, err
	})
}
