package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Server to client message types.
const (
	MsgState        = "state"
	MsgRoundStart   = "roundStart"
	MsgPlayerVoted  = "playerVoted"
	MsgVotesClosed  = "votesClosed"
	MsgRulesChanged = "rulesChanged"
	MsgSystem       = "system"
	MsgWelcome      = "welcome"
)

// Client to server message types.
const (
	MsgJoin    = "join"
	MsgStart   = "start"
	MsgSubmit  = "submit"
	MsgAdvance = "advance"
)

type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RoundStart struct {
	Round int `json:"round"`
	// Duration is in milliseconds.
	Duration int64    `json:"duration"`
	Rules    []string `json:"rules"`
}

type PlayerVoted struct {
	PlayerID string `json:"playerId"`
}

type VotesClosed struct {
	Round int `json:"round"`
}

type RulesChanged struct {
	Rules []string `json:"rules"`
}

type SystemNotice struct {
	Text string `json:"text"`
}

type Welcome struct {
	ConnectionID string `json:"connectionId"`
}

type JoinRequest struct {
	Name string `json:"name"`
}

type SubmitRequest struct {
	Value *float64 `json:"value"`
}

// Encode wraps payload in an envelope of the given type. A nil payload is
// left out of the envelope.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, errors.New("envelope type is empty")
	}
	env := Envelope{Type: t}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", t, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, errors.New("empty message")
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, err
	}
	if env.Type == "" {
		return Envelope{}, errors.New("message type is empty")
	}
	return env, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Payload) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.Type)
	}
	err := json.Unmarshal(env.Payload, &out)
	return out, err
}
