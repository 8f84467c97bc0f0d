package notify

import (
	"encoding/json"
	"time"
)

// Envelope is a single message received on the notification socket.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`

	// Raw is the message exactly as received.
	Raw        json.RawMessage `json:"-"`
	ReceivedAt time.Time       `json:"-"`
}

// HasData reports whether the message carried a non-null data field.
func (e Envelope) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}

// Handler receives the data field of a message and the whole envelope.
type Handler func(data json.RawMessage, env Envelope)

func decodeEnvelope(msg []byte) (Envelope, bool, error) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return Envelope{}, false, err
	}
	if env.Type == "" {
		return Envelope{}, false, nil
	}
	env.Raw = append(json.RawMessage(nil), msg...)
	env.ReceivedAt = time.Now()
	return env, true, nil
}
